package journald

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gelfsend/internal/ingest"
	"gelfsend/pkg/gelf"
)

var errNoMessage = errors.New("journal entry has no message")

// Extracts relevant fields from a journal entry
func parseFields(fields map[string]string, localHostname string) (record ingest.Record, err error) {
	var ok bool

	record.Text, ok = fields["MESSAGE"]
	if !ok {
		err = errNoMessage
		return
	}

	// TIMESTAMP (microseconds), absent means arrival time
	if rawTimestamp, ok := fields["__REALTIME_TIMESTAMP"]; ok {
		var usec int64
		usec, err = strconv.ParseInt(rawTimestamp, 10, 64)
		if err != nil {
			err = fmt.Errorf("failed parsing journal realtime timestamp: %w", err)
			return
		}
		record.Timestamp = time.UnixMicro(usec)
	}

	// APPLICATION NAME
	for _, key := range []string{"SYSLOG_IDENTIFIER", "_SYSTEMD_USER_UNIT", "_SYSTEMD_UNIT", "_COMM"} {
		if val, ok := fields[key]; ok && val != "" {
			record.ApplicationName = val
			break
		}
	}

	// HOSTNAME
	record.Hostname, ok = fields["_HOSTNAME"]
	if !ok {
		record.Hostname = localHostname
	}

	// PRIORITY uses the same numbering as GELF levels
	if priority, ok := fields["PRIORITY"]; ok {
		record.Level, err = gelf.ParseLevel(priority)
		if err != nil {
			err = fmt.Errorf("journal message priority %q is invalid: %w", priority, err)
			return
		}
		record.LevelKnown = true
	}

	// PROCESS ID
	for _, key := range []string{"_PID", "SYSLOG_PID"} {
		pidStr, ok := fields[key]
		if !ok {
			continue
		}
		record.ProcessID, err = strconv.Atoi(pidStr)
		if err != nil {
			err = fmt.Errorf("invalid pid %q: %w", pidStr, err)
			return
		}
		break
	}
	return
}
