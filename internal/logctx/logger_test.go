package logctx

import (
	"bytes"
	"context"
	"gelfsend/internal/global"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEventFiltering(t *testing.T) {
	tests := []struct {
		name          string
		printLevel    int
		eventLevel    int
		severity      string
		message       string
		vars          []any
		expectEvents  int
		expectMessage string
	}{
		{
			name:          "event at or below print level is queued",
			printLevel:    2,
			eventLevel:    1,
			severity:      global.InfoLog,
			message:       "hello world",
			expectEvents:  1,
			expectMessage: "hello world",
		},
		{
			name:         "event above print level is dropped",
			printLevel:   1,
			eventLevel:   3,
			severity:     global.InfoLog,
			message:      "should not appear",
			expectEvents: 0,
		},
		{
			name:          "errors bypass print level",
			printLevel:    global.VerbosityNone,
			eventLevel:    global.VerbosityDebug,
			severity:      global.ErrorLog,
			message:       "failure %d",
			vars:          []any{7},
			expectEvents:  1,
			expectMessage: "failure 7",
		},
		{
			name:          "percent without vars left alone",
			printLevel:    1,
			eventLevel:    1,
			severity:      global.WarnLog,
			message:       "100% done",
			expectEvents:  1,
			expectMessage: "100% done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(global.NSTest, tt.printLevel, nil)
			ctx := WithLogger(context.Background(), logger)

			LogEvent(ctx, tt.eventLevel, tt.severity, tt.message, tt.vars...)

			require.Equal(t, tt.expectEvents, logger.Pending())
			if tt.expectEvents > 0 {
				assert.Equal(t, tt.expectMessage, logger.queue[0].Message)
				assert.Equal(t, tt.severity, logger.queue[0].Severity)
			}
		})
	}
}

func TestLogEventWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogEvent(context.Background(), 0, global.ErrorLog, "nobody listening")
	})
	assert.Nil(t, GetLogger(context.Background()))
}

func TestSetLogLevel(t *testing.T) {
	logger := NewLogger(global.NSTest, 0, nil)
	ctx := WithLogger(context.Background(), logger)

	LogEvent(ctx, 2, global.InfoLog, "dropped\n")
	SetLogLevel(ctx, 2)
	LogEvent(ctx, 2, global.InfoLog, "kept\n")

	require.Equal(t, 1, logger.Pending())
	assert.Equal(t, "kept\n", logger.queue[0].Message)
}

func TestWatcherWritesAndDrains(t *testing.T) {
	done := make(chan struct{})
	logger := NewLogger(global.NSTest, global.VerbosityStandard, done)
	ctx := WithLogger(context.Background(), logger)
	ctx = AppendCtxTag(ctx, global.NSSend)

	var output bytes.Buffer
	StartWatcher(logger, &output)

	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "first\n")
	LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "second %s\n", "event")

	require.Eventually(t, func() bool {
		return logger.Pending() == 0
	}, 2*time.Second, 5*time.Millisecond)

	close(done)
	logger.Wait()

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[Sender] [Info] first")
	assert.Contains(t, lines[1], "[Sender] [Warn] second event")
}

func TestWatcherSuppressesRepeats(t *testing.T) {
	done := make(chan struct{})
	logger := NewLogger(global.NSTest, global.VerbosityStandard, done)
	ctx := WithLogger(context.Background(), logger)

	for range 25 {
		LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "same failure\n")
	}

	var output bytes.Buffer
	StartWatcher(logger, &output)
	require.Eventually(t, func() bool {
		return logger.Pending() == 0
	}, 2*time.Second, 5*time.Millisecond)
	close(done)
	logger.Wait()

	text := output.String()
	assert.Equal(t, 1, strings.Count(text, "] same failure"))
	assert.Contains(t, text, "Suppressed 10 repeated messages: same failure")
}
