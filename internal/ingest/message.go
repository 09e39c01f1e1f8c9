package ingest

import (
	"maps"
	"slices"
	"time"

	"gelfsend/internal/global"
	"gelfsend/pkg/gelf"
)

// Builds the GELF message for a parsed record, filling gaps from defaults
func ToMessage(record Record, defaults Defaults) (msg *gelf.Message) {
	host := record.Hostname
	if host == "" {
		host = defaults.Hostname
	}

	text := record.Text
	if text == "" {
		text = "-"
	}

	level := defaults.Level
	if record.LevelKnown {
		level = record.Level
	}

	msg = gelf.NewWithLevel(host, text, level).SetEscapeMode(defaults.EscapeMode)

	timestamp := record.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	msg.SetTimestampFloat(float64(timestamp.UnixMilli()) / 1000)

	if record.ApplicationName != "" {
		msg.Set(global.CFappname, record.ApplicationName)
	}

	if record.ProcessID > 0 {
		msg.SetField(global.CFprocessid, uint(record.ProcessID))
	}

	if defaults.Facility != "" {
		msg.Set(global.CFfacility, defaults.Facility)
	}
	if record.Source != "" {
		msg.Set(global.CFsource, record.Source)
	}
	for _, name := range slices.Sorted(maps.Keys(defaults.ExtraFields)) {
		msg.Set(name, defaults.ExtraFields[name])
	}
	return
}
