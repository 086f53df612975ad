// Package service holds the visit lifecycle rules: host selection, visitor
// identity, check-in/checkout and token verification. Every write runs as a
// single transaction on the injected repository.Store.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
)

// Recorder receives lifecycle events, typically for metrics.
type Recorder interface {
	HostCreated()
	VisitCheckedIn()
	VisitCheckedOut()
}

type nopRecorder struct{}

func (nopRecorder) HostCreated()     {}
func (nopRecorder) VisitCheckedIn()  {}
func (nopRecorder) VisitCheckedOut() {}

type options struct {
	clock    func() time.Time
	tokens   func() string
	recorder Recorder
}

type Option func(*options)

// WithClock overrides the time source used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithTokenSource overrides visit token generation.
func WithTokenSource(tokens func() string) Option {
	return func(o *options) { o.tokens = tokens }
}

func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:    func() time.Time { return time.Now().UTC() },
		tokens:   uuid.NewString,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// classify leaves already classified errors alone and marks everything else
// as a storage failure.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Storage(msg, err)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	return nonEmpty(*s)
}
