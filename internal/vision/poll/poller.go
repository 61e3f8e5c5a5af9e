// Package poll drives vendor long-running operations (Azure Read) to a
// terminal state with a bounded number of fixed-interval checks.
package poll

import (
	"context"
	"fmt"
	"time"

	apperrors "go-vision-analyzer/internal/errors"
)

// Defaults for the Azure Read operation
const (
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 10
)

// Clock abstracts waiting so tests can drive the poller without sleeping
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// SystemClock waits on the wall clock
type SystemClock struct{}

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// State of a polled operation
type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
	StateCanceled  State = "canceled"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut, StateCanceled:
		return true
	}
	return false
}

// Status is what a single status check observed
type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusFailed
)

// CheckFunc queries the operation once. reason is reported for StatusFailed.
type CheckFunc func(ctx context.Context) (status Status, reason string, err error)

// Result records how an operation ended
type Result struct {
	State       State
	Attempts    int
	Reason      string
	Transitions []State
}

func (r *Result) to(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

// Poller waits Interval before every check and gives up after MaxAttempts checks
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Clock       Clock
	// Provider tags vendor errors for failed operations
	Provider string
}

// New returns a poller with the default interval and attempt budget
func New(provider string) *Poller {
	return &Poller{
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
		Clock:       SystemClock{},
		Provider:    provider,
	}
}

// Poll runs the state machine. The returned Result is never nil; the error
// is nil only when the operation succeeded.
func (p *Poller) Poll(ctx context.Context, check CheckFunc) (*Result, error) {
	res := &Result{State: StateSubmitted, Transitions: []State{StateSubmitted}}

	clock := p.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	res.to(StatePolling)
	for res.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return res, p.canceled(res, err)
		}
		select {
		case <-ctx.Done():
			return res, p.canceled(res, ctx.Err())
		case <-clock.After(p.Interval):
		}

		res.Attempts++
		status, reason, err := check(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, p.canceled(res, ctxErr)
			}
			res.Reason = err.Error()
			res.to(StateFailed)
			return res, err
		}

		switch status {
		case StatusSucceeded:
			res.to(StateSucceeded)
			return res, nil
		case StatusFailed:
			res.Reason = reason
			res.to(StateFailed)
			msg := "Text extraction operation failed"
			if reason != "" {
				msg = fmt.Sprintf("%s: %s", msg, reason)
			}
			return res, apperrors.NewVendorError(p.Provider, 0, msg, nil)
		}
	}

	res.to(StateTimedOut)
	return res, apperrors.NewOperationTimeoutError(
		fmt.Sprintf("Text extraction operation did not complete after %d attempts", maxAttempts)).WithProvider(p.Provider)
}

func (p *Poller) canceled(res *Result, err error) error {
	res.to(StateCanceled)
	if appErr := apperrors.FromContext(err, "Text extraction polling stopped"); appErr != nil {
		return appErr.WithProvider(p.Provider)
	}
	return apperrors.NewCanceledError("Text extraction polling stopped", err).WithProvider(p.Provider)
}
