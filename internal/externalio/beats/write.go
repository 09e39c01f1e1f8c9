package beats

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gelfsend/internal/global"
	"gelfsend/internal/logctx"
	"gelfsend/pkg/gelf"
)

// Writes a message to the beats server. A failed send reconnects once and retries the batch.
func (mod *OutModule) Write(ctx context.Context, msg *gelf.Message) (logsSent int, err error) {
	if mod == nil {
		return
	}

	events := []interface{}{Event(msg)}

	if mod.sink == nil {
		err = mod.connect(ctx)
		if err != nil {
			err = fmt.Errorf("beats server unavailable: %w", err)
			return
		}
	}

	logsSent, err = mod.sink.Send(events)
	if err == nil {
		return
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Send to beats server %s failed, reconnecting: %v\n", mod.endpoint, err)
	mod.sink.Close()
	mod.sink = nil

	err = mod.connect(ctx)
	if err != nil {
		err = fmt.Errorf("beats server unavailable: %w", err)
		return
	}
	logsSent, err = mod.sink.Send(events)
	return
}

// Beats event document for a GELF message (ECS style top-level names)
func Event(msg *gelf.Message) (fields map[string]interface{}) {
	level := msg.Level()

	userFields := make(map[string]interface{}, len(msg.FieldNames()))
	for _, name := range msg.FieldNames() {
		value, err := msg.Field(name)
		if err != nil {
			continue
		}
		userFields[name] = value
	}

	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": eventTime(msg),
		"message":    msg.ShortMessage(),

		"host": map[string]interface{}{
			"name":     msg.Host(),
			"hostname": msg.Host(),
		},
		"agent": map[string]interface{}{
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     os.Getpid(),
		},
		"log": map[string]interface{}{
			"level": strings.ToLower(level.String()),
			"syslog": map[string]interface{}{
				"severity": map[string]interface{}{
					"code": int(level),
					"name": level.String(),
				},
			},
		},
		"gelf": userFields,
	}

	if full, ok := msg.FullMessage(); ok {
		fields["event"] = map[string]interface{}{
			"original": full,
		}
	}
	return
}

// Message timestamp, or now when unset/unparseable
func eventTime(msg *gelf.Message) (stamp time.Time) {
	stamp = time.Now().UTC()

	raw, ok := msg.Timestamp()
	if !ok {
		return
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}

	whole, frac := math.Modf(seconds)
	stamp = time.Unix(int64(whole), int64(math.Round(frac*1e6))*1e3).UTC()
	return
}
