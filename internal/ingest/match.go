// match.go — Regex-with-substring-fallback URL matching, shared by the
// exclude-pattern check (spec.md §4.1) and the Query Layer's urlPattern
// filter (spec.md §4.5, §7 "invalid regex degrades to substring match").
package ingest

import (
	"regexp"
	"strings"
)

type urlMatcher struct {
	re   *regexp.Regexp
	text string // used verbatim (case-insensitive substring) when re == nil
}

func compileMatcher(pattern string) urlMatcher {
	if re, err := regexp.Compile(pattern); err == nil {
		return urlMatcher{re: re}
	}
	return urlMatcher{text: strings.ToLower(pattern)}
}

func compileMatchers(patterns []string) []urlMatcher {
	out := make([]urlMatcher, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, compileMatcher(p))
	}
	return out
}

func (m urlMatcher) match(url string) bool {
	if m.re != nil {
		return m.re.MatchString(url)
	}
	return strings.Contains(strings.ToLower(url), m.text)
}

func matchesAny(matchers []urlMatcher, url string) bool {
	for _, m := range matchers {
		if m.match(url) {
			return true
		}
	}
	return false
}
