package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(out chan Record) (records []Record) {
	for {
		select {
		case record := <-out:
			records = append(records, record)
		default:
			return
		}
	}
}

func TestStreamReader(t *testing.T) {
	input := "first line\n\n  \nJan 10 01:02:03 web01 kernel: up\r\nno trailing newline"
	reader := NewStreamReader("stdin", strings.NewReader(input), 0)

	out := make(chan Record, 10)
	require.NoError(t, reader.Run(context.Background(), out))

	records := collect(out)
	require.Len(t, records, 3)
	assert.Equal(t, "first line", records[0].Text)
	assert.Equal(t, "up", records[1].Text)
	assert.Equal(t, "web01", records[1].Hostname)
	assert.Equal(t, "no trailing newline", records[2].Text)
	assert.Equal(t, "stdin", records[2].Source)

	assert.Equal(t, uint64(3), reader.Metrics.LinesRead.Load())
	assert.Equal(t, uint64(2), reader.Metrics.EmptyLines.Load())
}

func TestStreamReaderTruncates(t *testing.T) {
	input := strings.Repeat("a", 200_000) + "\nshort\n"
	reader := NewStreamReader("stdin", strings.NewReader(input), 100)

	out := make(chan Record, 10)
	require.NoError(t, reader.Run(context.Background(), out))

	records := collect(out)
	require.Len(t, records, 2)
	assert.Len(t, records[0].Text, 100)
	assert.Equal(t, "short", records[1].Text)
	assert.Equal(t, uint64(1), reader.Metrics.Truncated.Load())
}

func TestStreamReaderInterrupted(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()
	reader := NewStreamReader("stdin", pipeReader, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- reader.Run(ctx, make(chan Record, 1))
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reader still blocked after cancellation")
	}
}

func TestFileReaderFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o600))

	reader, err := NewFileReader(path, true, 10*time.Millisecond, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan Record, 10)
	done := make(chan error, 1)
	go func() {
		done <- reader.Run(ctx, out)
	}()

	first := <-out
	assert.Equal(t, "one", first.Text)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = file.WriteString("tw")
	require.NoError(t, err)
	_, err = file.WriteString("o\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	select {
	case second := <-out:
		assert.Equal(t, "two", second.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("appended line was not read")
	}

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not stop after cancellation")
	}
}

func TestFileReaderMissing(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "missing.log"), false, 0, 0)
	require.Error(t, err)
}
