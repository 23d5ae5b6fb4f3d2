// constants.go — Fixed vocabularies the Correlator's layers consult:
// user-event frame names (Layer 1), the action-type/URL/method pattern
// table (Layers 2-3), and the background-noise host list (Layers 2-3).
// Grounded on internal/analysis/clustering_helpers.go's framework-path
// pattern list (a fixed []string consulted by substring match) and
// internal/analysis/api_contract_analysis.go's ordered rule tables.
package correlate

import "strings"

// userEventNames is the fixed set of DOM event names that mark a stack
// frame group as "entered from a user gesture" (spec.md §4.3 Layer 1).
var userEventNames = map[string]bool{
	"click": true, "dblclick": true, "mousedown": true, "mouseup": true,
	"submit": true, "input": true, "change": true, "keydown": true,
	"keyup": true, "keypress": true, "touchstart": true, "touchend": true,
	"pointerdown": true, "pointerup": true, "focus": true, "blur": true,
}

func isUserEventName(description string) bool {
	return userEventNames[strings.ToLower(description)]
}

// backgroundHosts and backgroundSubstrings together gate the Layer 2/3
// telemetry penalty (spec.md §4.3 "Background penalty").
var backgroundHosts = []string{
	"google-analytics", "gtag", "fbevents", "segment.io", "hotjar",
	"sentry", "datadog", "newrelic",
}

var backgroundSubstrings = []string{
	"analytics", "tracking", "telemetry", "heartbeat", "health", "ping", "beacon",
}

func isBackgroundURL(url string) bool {
	lower := strings.ToLower(url)
	for _, h := range backgroundHosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	for _, s := range backgroundSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// patternRow is one row of the semantic pattern table (spec.md §4.3 Layers
// 2-3): the first row whose action text, URL, and method all match wins.
type patternRow struct {
	actionWords []string
	urlWords    []string
	method      string // "" means any method
	bonus       float64
}

var patternTable = []patternRow{
	{actionWords: []string{"login", "sign-in", "signin"}, urlWords: []string{"auth", "login", "sign-in", "session"}, method: "POST", bonus: 0.30},
	{actionWords: []string{"register", "sign-up", "signup"}, urlWords: []string{"register", "sign-up", "user"}, method: "POST", bonus: 0.30},
	{actionWords: []string{"save", "update", "submit"}, urlWords: nil, method: "POST", bonus: 0.15},
	{actionWords: []string{"delete", "remove"}, urlWords: nil, method: "DELETE", bonus: 0.25},
	{actionWords: []string{"search"}, urlWords: []string{"search", "query", "find"}, method: "GET", bonus: 0.25},
	{actionWords: []string{"load-more", "loadmore", "next"}, urlWords: []string{"page", "offset", "cursor", "limit"}, method: "GET", bonus: 0.20},
	{actionWords: []string{"logout", "sign-out", "signout"}, urlWords: []string{"logout", "sign-out", "session"}, method: "", bonus: 0.30},
}

func containsAny(haystack string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
