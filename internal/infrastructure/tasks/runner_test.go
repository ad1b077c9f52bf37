package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Logger:   "zerolog",
		Encoding: "json",
		Level:    "fatal",
	})
}

func TestRunner_RunsTasksToCompletion(t *testing.T) {
	r := NewRunner(testLogger(), time.Second)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		r.Go("work", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	r.Wait()

	require.Equal(t, int32(10), ran.Load())
}

func TestRunner_FailuresStayInternal(t *testing.T) {
	r := NewRunner(testLogger(), time.Second)

	r.Go("doomed", func(ctx context.Context) error {
		return errors.New("backend down")
	})
	r.Wait() // must not panic or propagate
}

func TestRunner_ContextCarriesDeadline(t *testing.T) {
	r := NewRunner(testLogger(), 50*time.Millisecond)

	var hadDeadline atomic.Bool
	r.Go("deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	})
	r.Wait()

	require.True(t, hadDeadline.Load())
}

func TestRunner_ZeroTimeoutFallsBackToDefault(t *testing.T) {
	r := NewRunner(testLogger(), 0)
	require.Equal(t, defaultTimeout, r.timeout)
}
