package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	started atomic.Bool
	stopped atomic.Bool
	err     error
}

func (r *recordingRunner) Start(ctx context.Context) error {
	r.started.Store(true)
	<-ctx.Done()
	r.stopped.Store(true)
	return r.err
}

func TestWithDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stops-runner-after-fn", func(t *testing.T) {
		runner := &recordingRunner{}

		err := WithDispatcher(context.Background(), runner, logger, func(ctx context.Context) error {
			require.False(t, runner.stopped.Load())
			return nil
		})

		require.NoError(t, err)
		require.True(t, runner.started.Load())
		require.True(t, runner.stopped.Load())
	})

	t.Run("returns-fn-error", func(t *testing.T) {
		runner := &recordingRunner{err: errors.New("ignored")}
		fnErr := errors.New("boom")

		err := WithDispatcher(context.Background(), runner, logger, func(ctx context.Context) error {
			return fnErr
		})

		require.ErrorIs(t, err, fnErr)
		require.True(t, runner.stopped.Load())
	})
}

func TestRunUntilCancelled(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RunUntilCancelled(ctx, &recordingRunner{err: context.Canceled})
		require.NoError(t, err)
	})

	t.Run("failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RunUntilCancelled(ctx, &recordingRunner{err: errors.New("db gone")})
		require.Error(t, err)
		require.Contains(t, err.Error(), "worker error")
	})
}

func TestParseScopes(t *testing.T) {
	require.Equal(t, []string{}, parseScopes(""))
	require.Equal(t, []string{"a:read", "b:write"}, parseScopes(" a:read, ,b:write ,"))
}
