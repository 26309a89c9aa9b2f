package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	coreconfig "github.com/m3rciful/partyfinder/core/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDispatcherRunsQueuedJobsBeforeClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 16})

	var runs atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			runs.Add(1)
			return nil
		}))
	}
	d.Close()

	assert.EqualValues(t, 10, runs.Load())
	assert.Zero(t, d.ErrorCount())
	assert.ErrorIs(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil }), ErrQueueClosed)
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	defer d.Close()

	done := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "edit.text", "editMessageText", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not succeed")
	}
	assert.EqualValues(t, 3, calls.Load())
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("Bad Request: chat not found (400)")
	}))
	d.Close()

	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, d.ErrorCount())
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "", func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "", func() error { return nil }))
	assert.ErrorIs(t, d.Enqueue(context.Background(), "send.text", "", func() error { return nil }), ErrQueueFull)

	close(release)
	d.Close()
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(coreconfig.SenderConfig{QueueSize: 8, Workers: 3, MaxRetries: 2, RetryBackoffMS: 250})
	assert.Equal(t, Options{QueueSize: 8, Workers: 3, MaxRetries: 2, RetryBackoff: 250 * time.Millisecond}, opts)
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_token/sendMessage": EOF`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, sanitizeErrorMessage(err))
}
