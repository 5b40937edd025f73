package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryHintMargin is added to a server supplied Retry-After.
const retryHintMargin = 5 * time.Second

type RetryPolicy struct {
	Attempts int // total calls, including the first
	Base     time.Duration
	Max      time.Duration
	Jitter   float64
	PreSleep time.Duration

	// Notify is called before each wait with the failed attempt number.
	Notify func(err error, wait time.Duration, attempt int)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 5,
		Base:     2 * time.Second,
		Max:      120 * time.Second,
		Jitter:   0.25,
	}
}

// hintedBackOff prefers the provider's Retry-After over the exponential
// schedule, still bounded by max.
type hintedBackOff struct {
	backoff.BackOff
	max  time.Duration
	last *error
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	next := h.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	var se *StatusError
	if errors.As(*h.last, &se) && se.RetryAfter > 0 {
		wait := se.RetryAfter + retryHintMargin
		if h.max > 0 && wait > h.max {
			wait = h.max
		}
		return wait
	}
	return next
}

// Complete calls p until it succeeds, a non-retryable error comes back, or
// the attempts run out. The last error is returned unwrapped.
func Complete(ctx context.Context, p Provider, req Request, pol RetryPolicy) (Response, error) {
	if pol.PreSleep > 0 {
		t := time.NewTimer(pol.PreSleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return Response{}, ctx.Err()
		case <-t.C:
		}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = pol.Base
	exp.MaxInterval = pol.Max
	exp.RandomizationFactor = pol.Jitter
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0

	retries := pol.Attempts - 1
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	b := backoff.WithContext(&hintedBackOff{
		BackOff: backoff.WithMaxRetries(exp, uint64(retries)),
		max:     pol.Max,
		last:    &lastErr,
	}, ctx)

	var (
		resp    Response
		attempt int
	)
	op := func() error {
		attempt++
		r, err := p.Complete(ctx, req)
		if err != nil {
			lastErr = err
			if !Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if pol.Notify != nil {
			pol.Notify(err, wait, attempt)
		}
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return Response{}, err
	}
	return resp, nil
}
