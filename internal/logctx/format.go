package logctx

import (
	"strings"
)

// Fixed width so columns line up across events
const timestampLayout string = "2006-01-02T15:04:05.000000000Z07:00"

// Stringify full event, omitting empty parts
func (event Event) Format() (text string) {
	var line strings.Builder

	writePart := func(part string, bracketed bool) {
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		if bracketed {
			line.WriteByte('[')
			line.WriteString(part)
			line.WriteByte(']')
			return
		}
		line.WriteString(part)
	}

	if !event.Timestamp.IsZero() {
		writePart(event.Timestamp.Format(timestampLayout), true)
	}
	if len(event.Tags) > 0 {
		writePart(strings.Join(event.Tags, "/"), true)
	}
	if event.Severity != "" {
		writePart(event.Severity, true)
	}
	if event.Message != "" {
		writePart(event.Message, false)
	}

	// Message creator decides on newlines
	text = line.String()
	return
}
