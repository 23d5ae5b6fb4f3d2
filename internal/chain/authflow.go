// authflow.go — auth-flow chain detection (spec.md §4.4): a login-style
// POST response carries a token in its JSON body, and a later request's
// Authorization header carries that same token. Grounded on the teacher's
// internal/capture/network_bodies.go response-body handling, using
// tidwall/gjson (brought in from the grafana-k6 example's go.mod) instead of
// encoding/json for tolerant, no-struct-required field extraction from
// response bodies of unknown shape.
package chain

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/netwatch-labs/causalnet/internal/types"
)

const authTokenPrefixLen = 20

// authURLPattern is spec.md §4.4's gate for a candidate auth request.
var authURLPattern = regexp.MustCompile(`(?i)auth|login|sign-in|token|session|oauth`)

// tokenFieldPaths are the gjson paths checked, in order, for an auth token
// in a response body (spec.md §4.4).
var tokenFieldPaths = []string{
	"token", "access_token", "jwt", "data.token", "data.access_token",
}

func isAuthCandidate(rec types.RequestRecord) bool {
	if rec.Method != "POST" {
		return false
	}
	if rec.Status < 200 || rec.Status > 299 {
		return false
	}
	return authURLPattern.MatchString(rec.URL)
}

func extractTokenPrefix(body string) string {
	if !gjson.Valid(body) {
		return ""
	}
	for _, path := range tokenFieldPaths {
		v := gjson.Get(body, path)
		if v.Exists() && v.Type == gjson.String && len(v.Str) >= authTokenPrefixLen {
			return v.Str[:authTokenPrefixLen]
		}
	}
	return ""
}

// detectAuthFlowChains finds a request carrying a freshly-issued token in an
// Authorization header (spec.md §4.4 "auth-flow chains"). At most one
// auth-flow chain is emitted per call: the first qualifying auth request
// (by the order requests was given in) that has at least one dependent wins.
func detectAuthFlowChains(requests []types.RequestRecord) []types.Chain {
	for _, authReq := range requests {
		if !isAuthCandidate(authReq) {
			continue
		}
		prefix := extractTokenPrefix(authReq.ResponseBody)
		if prefix == "" {
			continue
		}

		var followers []types.RequestRecord
		for _, cand := range requests {
			if cand.ID == authReq.ID {
				continue
			}
			if cand.Timing.StartTime <= authReq.Timing.StartTime {
				continue
			}
			authHeader, ok := types.HeaderValue(cand.RequestHeaders, "Authorization")
			if !ok || len(authHeader) < authTokenPrefixLen {
				continue
			}
			if containsToken(authHeader, prefix) {
				followers = append(followers, cand)
			}
		}
		if len(followers) == 0 {
			continue
		}

		sort.Slice(followers, func(i, j int) bool { return followers[i].Timing.StartTime < followers[j].Timing.StartTime })
		ids := make([]string, 0, len(followers)+1)
		ids = append(ids, authReq.ID)
		for _, f := range followers {
			ids = append(ids, f.ID)
		}
		return []types.Chain{{
			Kind:        types.ChainAuthFlow,
			RequestIDs:  ids,
			Description: fmt.Sprintf("token issued by %s %s used by %d later request(s)", authReq.Method, authReq.URL, len(followers)),
		}}
	}
	return nil
}

func containsToken(header, prefix string) bool {
	for i := 0; i+len(prefix) <= len(header); i++ {
		if header[i:i+len(prefix)] == prefix {
			return true
		}
	}
	return false
}
