// event.go — Debug event wire contract consumed by the Event Ingester.
//
// Source events are loosely typed at the boundary; each kind is its own
// struct rather than one blob with optional fields, so a caller adapting a
// real remote-debugging session (e.g. Chrome DevTools Protocol's
// Network.requestWillBeSent family) only has to map field-for-field into
// whichever of these four shapes applies. A required field the adapter leaves
// out arrives as its zero value; the ingester drops a RequestSentEvent with
// an empty ID or URL, and any other event with an empty ID.
package types

// RedirectResponse is the carried-over response metadata on a RequestSent
// event that represents a redirect hop rather than a new request.
type RedirectResponse struct {
	Status  int
	Headers map[string][]string
}

// RequestSentEvent corresponds to the debug source's request-sent signal.
// The ingester reads WallTime only from the very first RequestSentEvent it
// observes (to learn the time-base offset) and ignores it afterwards;
// MonotonicTime is always populated.
type RequestSentEvent struct {
	ID            string
	URL           string
	Method        string
	Headers       map[string][]string
	PostData      string
	HasPostData   bool
	Initiator     Initiator
	WallTime      float64 // seconds since epoch; 0 if not supplied
	HasWallTime   bool
	MonotonicTime float64 // seconds since an arbitrary origin
	Redirect      *RedirectResponse
	ResourceType  string // raw source hint; mapped to ResourceKind by the ingester
}

// ResponseReceivedEvent corresponds to the debug source's response-received signal.
type ResponseReceivedEvent struct {
	ID            string
	URL           string
	Status        int
	StatusText    string
	Headers       map[string][]string
	MimeType      string
	MonotonicTime float64
	ResourceType  string
}

// LoadingFinishedEvent corresponds to the debug source's loading-finished signal.
type LoadingFinishedEvent struct {
	ID                string
	MonotonicTime     float64
	EncodedDataLength int64
}

// LoadingFailedEvent corresponds to the debug source's loading-failed signal.
type LoadingFailedEvent struct {
	ID            string
	ErrorText     string
	MonotonicTime float64
}

// BodyFetchResult is what the caller-supplied fetchBody callback returns.
type BodyFetchResult struct {
	Body           string
	Base64Encoded  bool
}
