package journald

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"gelfsend/internal/global"
	"gelfsend/internal/ingest"
	"gelfsend/internal/logctx"
)

// Streams journal entries as records until journalctl exits or ctx is cancelled.
// The cursor of the last entry read is saved for the next start.
func (mod *InModule) Run(ctx context.Context, out chan<- ingest.Record) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSmIngest)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, mod.command, mod.args...)
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		err = fmt.Errorf("failed to create stdout pipe for journalctl command: %w", err)
		return
	}
	err = cmd.Start()
	if err != nil {
		err = fmt.Errorf("failed to start journalctl command: %w", err)
		return
	}

	defer func() {
		saveErr := savePosition(mod.cursor, mod.stateFile)
		if saveErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"failed to save position in journal source: %v\n", saveErr)
		}
	}()

	reader := bufio.NewReaderSize(stdout, 64*1024)
	for {
		fields, readErr := ExtractEntry(reader)
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if ctx.Err() == nil {
				err = fmt.Errorf("error reading journal output: %w", readErr)
			}
			// Unblock journalctl so Wait returns
			cmd.Process.Kill()
			io.Copy(io.Discard, reader)
			break
		}

		if ctx.Err() != nil {
			// Stopping: later entries are read again after the saved cursor
			break
		}
		mod.handleEntry(ctx, fields, out)
	}

	waitErr := cmd.Wait()
	if waitErr != nil && err == nil && ctx.Err() == nil {
		err = fmt.Errorf("journalctl exited: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
	}
	return
}

// Hands one entry to out. The cursor only moves past entries that were queued or skipped.
func (mod *InModule) handleEntry(ctx context.Context, fields map[string]string, out chan<- ingest.Record) {
	cursor, hasCursor := fields["__CURSOR"]
	if !hasCursor {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "journal entry without cursor\n")
	}
	advance := func() {
		if hasCursor {
			mod.cursor = cursor
		}
	}

	record, err := parseFields(fields, mod.localHostname)
	if err != nil {
		advance()
		if errors.Is(err, errNoMessage) {
			mod.metrics.EmptyLines.Add(1)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "field parse error: %v\n", err)
		return
	}
	if len(record.Text) > mod.maxLineSize {
		record.Text = record.Text[:mod.maxLineSize]
		mod.metrics.Truncated.Add(1)
	}
	record.Source = mod.name
	mod.metrics.LinesRead.Add(1)

	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"Read journal entry from %s: %s\n", record.ApplicationName, record.Text)

	select {
	case out <- record:
		advance()
	case <-ctx.Done():
	}
}
