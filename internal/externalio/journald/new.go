package journald

import (
	"fmt"
	"os"

	"gelfsend/internal/global"
	"gelfsend/internal/ingest"
)

// Creates new journal input resuming after the cursor saved in stateFile
func NewInput(stateFile string, maxLineSize int) (new *InModule, err error) {
	cursor, err := getLastPosition(stateFile)
	if err != nil {
		return
	}

	localHostname, err := os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to retrieve current local hostname: %w", err)
		return
	}

	if maxLineSize <= 0 {
		maxLineSize = global.DefaultMaxLineSize
	}

	new = &InModule{
		name:          global.NSoJrnl,
		command:       "journalctl",
		args:          journalArgs(cursor),
		stateFile:     stateFile,
		cursor:        cursor,
		localHostname: localHostname,
		maxLineSize:   maxLineSize,
		metrics:       &ingest.MetricStorage{},
	}
	return
}

func journalArgs(cursor string) (args []string) {
	args = []string{"--output=export", "--follow", "--no-pager"}
	if cursor != "" {
		args = append(args, "--after-cursor", cursor)
	} else {
		// Only new entries on first start
		args = append(args, "--lines=0")
	}
	return
}
