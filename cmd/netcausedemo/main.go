// netcausedemo feeds a small canned sequence of debug events and actions
// through the pipeline and prints the resulting correlations. It exists to
// exercise the full ingest -> correlate -> chain pipeline end to end outside
// of the test suite.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/chain"
	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/pipeline"
	"github.com/netwatch-labs/causalnet/internal/types"
)

func main() {
	logLevel := flag.String("log-level", "info", "logrus level: debug, info, warn, error")
	flag.Parse()

	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(1)
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	p := pipeline.New(config.Default(), nil, entry)
	runScenario(p, entry)
}

// runScenario reproduces a login click that fires an XHR, which 302s once
// before landing on its final URL.
func runScenario(p *pipeline.Pipeline, log *logrus.Entry) {
	base := time.Now()

	action := p.RecordAction(types.ActionClick, "#login-button", "Log in", "https://app.example.com/login", base)
	log.WithField("action_id", action.ID).Info("recorded login click")

	loginID := uuid.NewString()
	p.Ingester.IngestRequestSent(types.RequestSentEvent{
		ID:     loginID,
		URL:    "https://api.example.com/v1/session",
		Method: "POST",
		Headers: map[string][]string{
			"Content-Type": {"application/json"},
		},
		HasPostData:   true,
		PostData:      `{"username":"demo"}`,
		WallTime:      float64(base.UnixNano()) / 1e9,
		HasWallTime:   true,
		MonotonicTime: 0,
		ResourceType:  "xhr",
		Initiator: types.Initiator{
			Kind: types.InitiatorScript,
			Stack: &types.StackTrace{
				CallFrames: []types.CallFrame{{FunctionName: "onLoginClick", URL: "app.js", LineNumber: 42}},
				Parent: &types.StackTrace{
					Description: "click",
				},
			},
		},
	})

	p.Ingester.IngestResponseReceived(types.ResponseReceivedEvent{
		ID:            loginID,
		Status:        302,
		StatusText:    "Found",
		MonotonicTime: 0.05,
		MimeType:      "application/json",
	})
	p.Ingester.IngestRequestSent(types.RequestSentEvent{
		ID:            loginID,
		URL:           "https://api.example.com/v1/session/complete",
		Method:        "POST",
		MonotonicTime: 0.06,
		Redirect:      &types.RedirectResponse{Status: 302, Headers: map[string][]string{"Location": {"/v1/session/complete"}}},
	})
	p.Ingester.IngestResponseReceived(types.ResponseReceivedEvent{
		ID:            loginID,
		Status:        200,
		StatusText:    "OK",
		MonotonicTime: 0.09,
		MimeType:      "application/json",
	})
	p.Ingester.IngestLoadingFinished(types.LoadingFinishedEvent{
		ID:                loginID,
		MonotonicTime:     0.1,
		EncodedDataLength: 128,
	})
	p.Ingester.WaitForPendingFetches()

	results := p.CorrelateAll()
	for _, r := range results {
		fmt.Printf("action %s (%s) -> %d request(s), aggregate confidence %.2f\n",
			r.Action.ID, r.Action.Kind, len(r.Requests), r.AggregateConfidence)
		for _, req := range r.Requests {
			fmt.Printf("  %s %s [%s, conf=%.2f]\n", req.Method, req.URL, req.Attribution.Method, req.Attribution.Confidence)
		}
		for _, c := range r.Chains {
			fmt.Printf("  chain: %s\n", chain.Describe(c))
		}
	}
	log.WithField("stats", p.GetStats()).Info("scenario complete")
}
