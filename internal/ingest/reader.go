// Reads newline delimited log lines from external sources and converts them into records
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gelfsend/internal/global"
	"gelfsend/internal/logctx"
)

// Line source feeding the forwarder
type Reader struct {
	Name        string
	source      io.Reader
	closer      io.Closer
	interrupt   io.Closer
	follow      bool
	pollEvery   time.Duration
	maxLineSize int
	Metrics     *MetricStorage
}

// Reader over an arbitrary stream (stdin, pipes). Stops at EOF.
// Closable streams are closed on cancellation to unblock a pending read.
func NewStreamReader(name string, source io.Reader, maxLineSize int) (reader *Reader) {
	if maxLineSize <= 0 {
		maxLineSize = global.DefaultMaxLineSize
	}
	reader = &Reader{
		Name:        name,
		source:      source,
		maxLineSize: maxLineSize,
		Metrics:     &MetricStorage{},
	}
	if closer, ok := source.(io.Closer); ok {
		reader.interrupt = closer
	}
	return
}

// Reader over a file. With follow, EOF waits for appended data instead of stopping.
func NewFileReader(path string, follow bool, pollEvery time.Duration, maxLineSize int) (reader *Reader, err error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open source file: %w", err)
		return
	}

	reader = NewStreamReader(path, file, maxLineSize)
	reader.closer = file
	reader.interrupt = nil
	reader.follow = follow
	reader.pollEvery = pollEvery
	if reader.pollEvery <= 0 {
		reader.pollEvery = 250 * time.Millisecond
	}
	return
}

func (reader *Reader) SourceName() string {
	return reader.Name
}

func (reader *Reader) Storage() *MetricStorage {
	return reader.Metrics
}

func (reader *Reader) SetStorage(storage *MetricStorage) {
	reader.Metrics = storage
}

// Releases the underlying file without reading it
func (reader *Reader) Close() (err error) {
	if reader.closer != nil {
		err = reader.closer.Close()
	}
	return
}

// Pushes one Record per line to out until EOF (or cancellation when following).
// Lines longer than maxLineSize are truncated and counted.
func (reader *Reader) Run(ctx context.Context, out chan<- Record) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSmIngest)
	if reader.closer != nil {
		defer reader.closer.Close()
	}
	if reader.interrupt != nil {
		stop := context.AfterFunc(ctx, func() {
			reader.interrupt.Close()
		})
		defer stop()
	}

	buffered := bufio.NewReaderSize(reader.source, 64*1024)
	var pending []byte

	for {
		chunk, readErr := buffered.ReadSlice('\n')
		if len(pending) <= reader.maxLineSize {
			pending = append(pending, chunk...)
		}

		switch {
		case readErr == nil:
			reader.emit(ctx, out, pending)
			pending = pending[:0]
		case errors.Is(readErr, bufio.ErrBufferFull):
			// keep accumulating the line
		case errors.Is(readErr, io.EOF):
			if !reader.follow {
				if len(pending) > 0 {
					reader.emit(ctx, out, pending)
				}
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reader.pollEvery):
			}
		default:
			// Closed by cancellation (or by an earlier run)
			if ctx.Err() != nil || errors.Is(readErr, os.ErrClosed) || errors.Is(readErr, io.ErrClosedPipe) {
				return
			}
			err = fmt.Errorf("failed reading from %s: %w", reader.Name, readErr)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (reader *Reader) emit(ctx context.Context, out chan<- Record, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		reader.Metrics.EmptyLines.Add(1)
		return
	}
	if len(line) > reader.maxLineSize {
		line = line[:reader.maxLineSize]
		reader.Metrics.Truncated.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Truncated line from %s to %d bytes\n", reader.Name, reader.maxLineSize)
	}

	record := ParseLine(string(line))
	record.Source = reader.Name
	reader.Metrics.LinesRead.Add(1)

	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"Read line from %s: %s\n", reader.Name, record.Text)

	select {
	case out <- record:
	case <-ctx.Done():
	}
}
