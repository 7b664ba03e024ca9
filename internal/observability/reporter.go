package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter forwards errors to Sentry when a DSN was configured.
type Reporter struct {
	enabled bool
}

func NewReporter(dsn, environment string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
		Environment:      environment,
	})
	if err != nil {
		return &Reporter{}, err
	}
	return &Reporter{enabled: true}, nil
}

func (r *Reporter) Enabled() bool { return r != nil && r.enabled }

func (r *Reporter) Capture(err error) {
	if !r.Enabled() || err == nil {
		return
	}
	sentry.CaptureException(err)
}

func (r *Reporter) Flush(timeout time.Duration) {
	if r.Enabled() {
		sentry.Flush(timeout)
	}
}
