// Package dispatch sends JSON-RPC requests with bounded retry.
//
// Language servers answer from a snapshot of the document; a request can
// race with an edit and fail with ContentModified. That class of failure is
// transient and worth absorbing with a short backoff. Cancellation and every
// other failure class propagate immediately.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// LSP-defined JSON-RPC error codes the dispatcher classifies.
const (
	// CodeRequestCancelled signals the server noticed the request was cancelled.
	CodeRequestCancelled jsonrpc2.Code = -32800

	// CodeContentModified signals the document changed under the request.
	CodeContentModified jsonrpc2.Code = -32801
)

// ErrRetriesExhausted is returned when every attempt failed with
// ContentModified. The last underlying error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("retry budget exhausted")

// DefaultDelays is the wait schedule between attempts. Attempt n+1 runs
// after DefaultDelays[n]; one final attempt follows the last delay, so the
// total attempt count is len(DefaultDelays)+1.
var DefaultDelays = []time.Duration{
	10 * time.Millisecond,
	20 * time.Millisecond,
	40 * time.Millisecond,
	80 * time.Millisecond,
	160 * time.Millisecond,
}

// Caller issues a single JSON-RPC request. jsonrpc2.Conn satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params, result interface{}) (jsonrpc2.ID, error)
}

// Dispatcher sends requests through a Caller, retrying ContentModified
// failures on a fixed schedule.
type Dispatcher struct {
	caller Caller
	logger *zap.Logger
	delays []time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDelays replaces the retry schedule. The slice length bounds the retry
// count: len(delays)+1 attempts total.
func WithDelays(delays []time.Duration) Option {
	return func(d *Dispatcher) {
		d.delays = delays
	}
}

// New creates a Dispatcher with the given options.
func New(caller Caller, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		caller: caller,
		logger: logger,
		delays: DefaultDelays,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Send issues one logical request. On ContentModified it retries per the
// schedule; after the final attempt it returns ErrRetriesExhausted. A
// cancelled ctx terminates immediately, even mid-backoff, and every other
// failure propagates without retry.
func (d *Dispatcher) Send(ctx context.Context, method string, params, result interface{}) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := d.caller.Call(ctx, method, params, result)
		if err == nil {
			return nil
		}

		// The caller may surface a mid-flight cancellation as its own
		// error; the context is the source of truth.
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if IsCancelled(err) {
			return err
		}

		if !IsContentModified(err) {
			return err
		}

		if attempt >= len(d.delays) {
			return fmt.Errorf("%w: %s failed %d times: %v", ErrRetriesExhausted, method, attempt+1, err)
		}

		d.logger.Debug("content modified, retrying",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", d.delays[attempt]))

		if serr := d.sleep(ctx, d.delays[attempt]); serr != nil {
			return serr
		}
	}
}

// IsContentModified reports whether err is the transient stale-document
// failure class.
func IsContentModified(err error) bool {
	var rpcErr *jsonrpc2.Error
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeContentModified
}

// IsCancelled reports whether err represents a cancelled request, either
// from the context or from the server's RequestCancelled response.
func IsCancelled(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var rpcErr *jsonrpc2.Error

	return errors.As(err, &rpcErr) && rpcErr.Code == CodeRequestCancelled
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
