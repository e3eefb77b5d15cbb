// Package retry provides the bounded exponential backoff policy applied to database commits
// and queries.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries = 8
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 90 * time.Second
)

// TransientMarkers are the error message fragments identifying quota, throttling and
// network errors worth retrying.
var TransientMarkers = []string{
	"429",
	"quota exceeded",
	"resource exhausted",
	"deadline exceeded",
	"timed out",
	"unavailable",
}

// ClassifierFunc reports whether an error is transient.
type ClassifierFunc func(error) bool

// Policy retries an operation while it fails with a transient error, waiting
// min(BaseDelay * 2^attempt, MaxDelay) between attempts.
type Policy struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	IsTransient ClassifierFunc
	// Timer is used to wait between attempts. Nil means a real timer.
	Timer  backoff.Timer
	Logger *slog.Logger
	Label  string
}

// DefaultPolicy returns a Policy with the default retry budget and the default message
// based classifier.
func DefaultPolicy() *Policy {

	p := &Policy{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		IsTransient: IsTransientMessage,
		Logger:      slog.Default(),
		Label:       "operation",
	}

	return p
}

// WithClassifier returns a copy of 'p' that also treats errors matched by 'fn' as transient.
func (p *Policy) WithClassifier(fn ClassifierFunc) *Policy {

	if fn == nil {
		return p
	}

	wrapped := *p
	previous := p.IsTransient

	wrapped.IsTransient = func(err error) bool {

		if previous != nil && previous(err) {
			return true
		}

		return fn(err)
	}

	return &wrapped
}

// Delay returns the wait before retry number 'attempt' (starting at 0).
func (p *Policy) Delay(attempt int) time.Duration {

	d := p.BaseDelay

	for i := 0; i < attempt; i++ {

		d = d * 2

		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if d > p.MaxDelay {
		return p.MaxDelay
	}

	return d
}

// Do invokes 'op' until it succeeds, fails with a non-transient error, the retry budget is
// exhausted or 'ctx' is cancelled. The last error is returned unwrapped.
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {

	is_transient := p.IsTransient

	if is_transient == nil {
		is_transient = IsTransientMessage
	}

	logger := p.Logger

	if logger == nil {
		logger = slog.Default()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = p.MaxDelay
	eb.MaxElapsedTime = 0

	max_retries := p.MaxRetries

	if max_retries < 0 {
		max_retries = 0
	}

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max_retries)), ctx)

	attempt := 0

	operation := func() error {

		err := op(ctx)

		if err == nil {
			return nil
		}

		if !is_transient(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		attempt += 1
		logger.Warn("Retrying after transient error", "label", p.Label, "attempt", attempt, "max retries", max_retries, "wait", wait, "error", err)
	}

	return backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
}

// IsTransientMessage reports whether the message of 'err' contains one of TransientMarkers.
// Context deadline errors are transient, cancellation is not.
func IsTransientMessage(err error) bool {

	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())

	for _, marker := range TransientMarkers {

		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
