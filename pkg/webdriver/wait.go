package webdriver

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// ErrNotYet is returned by wait predicates whose condition has not been
// reached; the wait engine keeps polling. Any other predicate error stops
// the wait immediately.
var ErrNotYet = errors.New("condition not yet met")

const (
	// DefaultWaitTimeout bounds a wait when the caller passes none.
	DefaultWaitTimeout = 30 * time.Second
	// DefaultPollInterval is the sleep between predicate invocations.
	DefaultPollInterval = 250 * time.Millisecond
)

// Wait invokes pred at a constant interval until it returns a value, the
// predicate fails, or timeout elapses. A timeout yields ErrWaitTimeout,
// distinguishable from any error the predicate itself returned. Each poll
// is a complete round-trip, so an abandoned wait leaves no command in
// flight.
func Wait[T any](ctx context.Context, timeout, interval time.Duration, pred func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	operation := func() (T, error) {
		v, err := pred(waitCtx)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrNotYet) {
			return v, err
		}
		// Transport errors caused by the wait deadline firing mid-poll
		// count as timeout, not as a predicate failure.
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return v, err
		}
		return v, backoff.Permanent(err)
	}

	v, err := backoff.RetryWithData(operation, backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx))
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		// The caller's own context ended; propagate that, not a timeout.
		return v, protocol.ErrTransport.WithCause(ctx.Err())
	}
	if waitCtx.Err() != nil {
		return v, protocol.ErrWaitTimeout.WithCause(err)
	}
	return v, err
}

// WaitFor polls cond until it reports true, using the default timeout and
// interval.
func (c *Client) WaitFor(ctx context.Context, cond func(context.Context, *Client) (bool, error)) error {
	return c.WaitForWithin(ctx, DefaultWaitTimeout, DefaultPollInterval, cond)
}

// WaitForWithin polls cond until it reports true, within an explicit
// budget.
func (c *Client) WaitForWithin(ctx context.Context, timeout, interval time.Duration, cond func(context.Context, *Client) (bool, error)) error {
	_, err := Wait(ctx, timeout, interval, func(ctx context.Context) (struct{}, error) {
		ok, err := cond(ctx, c)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, ErrNotYet
		}
		return struct{}{}, nil
	})
	return err
}

// WaitForFind polls the document until locator resolves, returning the
// found element.
func (c *Client) WaitForFind(ctx context.Context, locator Locator) (*Element, error) {
	return Wait(ctx, DefaultWaitTimeout, DefaultPollInterval, func(ctx context.Context) (*Element, error) {
		el, err := c.Find(ctx, locator)
		if protocol.IsNotFound(err) {
			return nil, ErrNotYet
		}
		return el, err
	})
}

// WaitForFind polls this element's subtree until locator resolves.
func (e *Element) WaitForFind(ctx context.Context, locator Locator) (*Element, error) {
	return Wait(ctx, DefaultWaitTimeout, DefaultPollInterval, func(ctx context.Context) (*Element, error) {
		el, err := e.Find(ctx, locator)
		if protocol.IsNotFound(err) {
			return nil, ErrNotYet
		}
		return el, err
	})
}

// WaitForNavigation waits until the browser has left baseline. A page in
// transition can make the current-url read fail transiently; such errors
// count as still-pending and are re-raised only if they persist to the
// timeout. An empty baseline waits for the first successful read after a
// brief settle.
func (c *Client) WaitForNavigation(ctx context.Context, baseline string) error {
	if baseline == "" {
		select {
		case <-time.After(DefaultPollInterval):
		case <-ctx.Done():
			return protocol.ErrTransport.WithCause(ctx.Err())
		}
	}

	var lastErr error
	_, err := Wait(ctx, DefaultWaitTimeout, DefaultPollInterval, func(ctx context.Context) (string, error) {
		current, err := c.CurrentURL(ctx)
		if err != nil {
			if protocol.IsUsage(err) {
				return "", err
			}
			lastErr = err
			return "", ErrNotYet
		}
		lastErr = nil
		if baseline == "" || current != baseline {
			return current, nil
		}
		return "", ErrNotYet
	})
	if err != nil && protocol.IsWaitTimeout(err) && lastErr != nil {
		return lastErr
	}
	return err
}
