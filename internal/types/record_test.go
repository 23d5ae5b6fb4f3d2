package types

import "testing"

func TestHeaderValue_CaseInsensitive(t *testing.T) {
	headers := map[string][]string{"Content-Type": {"application/json"}}
	v, ok := HeaderValue(headers, "content-type")
	if !ok || v != "application/json" {
		t.Fatalf("HeaderValue() = (%q, %v), want (application/json, true)", v, ok)
	}
}

func TestHeaderValue_MissingReturnsFalse(t *testing.T) {
	if _, ok := HeaderValue(map[string][]string{}, "Authorization"); ok {
		t.Fatalf("HeaderValue() ok = true, want false")
	}
}
