package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// fakeCaller returns scripted errors, one per attempt. Attempts beyond the
// script succeed.
type fakeCaller struct {
	errs  []error
	calls int
}

func (f *fakeCaller) Call(_ context.Context, _ string, _, _ interface{}) (jsonrpc2.ID, error) {
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}

	f.calls++

	return jsonrpc2.ID{}, err
}

func contentModified() error {
	return jsonrpc2.NewError(CodeContentModified, "content modified")
}

// newRecorded returns a dispatcher whose backoff waits are recorded instead
// of slept.
func newRecorded(caller Caller) (*Dispatcher, *[]time.Duration) {
	d := New(caller, zap.NewNop())

	slept := &[]time.Duration{}
	d.sleep = func(_ context.Context, dur time.Duration) error {
		*slept = append(*slept, dur)

		return nil
	}

	return d, slept
}

func TestSend_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	d, slept := newRecorded(caller)

	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, caller.calls)
	assert.Empty(t, *slept)
}

func TestSend_RetriesContentModified(t *testing.T) {
	t.Parallel()

	// Five transient failures, then success on the sixth attempt.
	caller := &fakeCaller{errs: []error{
		contentModified(), contentModified(), contentModified(),
		contentModified(), contentModified(),
	}}
	d, slept := newRecorded(caller)

	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, caller.calls)
	assert.Equal(t, DefaultDelays, *slept)

	var total time.Duration
	for _, dur := range *slept {
		total += dur
	}

	assert.Equal(t, 310*time.Millisecond, total)
}

func TestSend_ExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{errs: []error{
		contentModified(), contentModified(), contentModified(),
		contentModified(), contentModified(), contentModified(),
	}}
	d, slept := newRecorded(caller)

	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 6, caller.calls)
	assert.Len(t, *slept, 5)
}

func TestSend_FatalFailsImmediately(t *testing.T) {
	t.Parallel()

	fatal := jsonrpc2.NewError(-32603, "boom")
	caller := &fakeCaller{errs: []error{fatal}}
	d, slept := newRecorded(caller)

	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.Equal(t, 1, caller.calls)
	assert.Empty(t, *slept)
}

func TestSend_ServerCancelledFailsImmediately(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{errs: []error{jsonrpc2.NewError(CodeRequestCancelled, "cancelled")}}
	d, slept := newRecorded(caller)

	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 1, caller.calls)
	assert.Empty(t, *slept)
}

func TestSend_CancelledBeforeFirstAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := &fakeCaller{}
	d, _ := newRecorded(caller)

	err := d.Send(ctx, "textDocument/inlayHint", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, caller.calls)
}

func TestSend_CancelledMidBackoff(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{errs: []error{
		contentModified(), contentModified(), contentModified(),
		contentModified(), contentModified(), contentModified(),
	}}

	ctx, cancel := context.WithCancel(context.Background())

	d := New(caller, zap.NewNop())
	d.sleep = func(ctx context.Context, _ time.Duration) error {
		// Cancellation arrives while waiting; the real sleep would
		// observe ctx.Done the same way.
		cancel()

		return ctx.Err()
	}

	err := d.Send(ctx, "textDocument/inlayHint", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, caller.calls)
}

func TestSend_CancelledDuringFlight(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	// The call itself reports content-modified, but the context was
	// cancelled while it was in flight: cancellation wins, no retry.
	caller := &cancellingCaller{cancel: cancel}
	d, slept := newRecorded(caller)

	err := d.Send(ctx, "textDocument/inlayHint", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, caller.calls)
	assert.Empty(t, *slept)
}

type cancellingCaller struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingCaller) Call(_ context.Context, _ string, _, _ interface{}) (jsonrpc2.ID, error) {
	c.calls++
	c.cancel()

	return jsonrpc2.ID{}, contentModified()
}

func TestWithDelays(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{errs: []error{contentModified(), contentModified()}}

	d := New(caller, zap.NewNop(), WithDelays([]time.Duration{time.Millisecond}))

	var slept []time.Duration
	d.sleep = func(_ context.Context, dur time.Duration) error {
		slept = append(slept, dur)

		return nil
	}

	// Two delays would be needed but the schedule only allows one, so the
	// second transient failure exhausts the budget.
	err := d.Send(context.Background(), "textDocument/inlayHint", nil, nil)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 2, caller.calls)
	assert.Equal(t, []time.Duration{time.Millisecond}, slept)
}

func TestClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, IsContentModified(contentModified()))
	assert.False(t, IsContentModified(jsonrpc2.NewError(-32603, "boom")))
	assert.False(t, IsContentModified(errors.New("plain")))

	assert.True(t, IsCancelled(context.Canceled))
	assert.True(t, IsCancelled(jsonrpc2.NewError(CodeRequestCancelled, "cancelled")))
	assert.False(t, IsCancelled(contentModified()))
}
