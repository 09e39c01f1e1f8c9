package journald

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Last saved journal cursor. Missing or malformed state restarts at the journal tail.
func getLastPosition(stateFilePath string) (cursor string, err error) {
	data, err := os.ReadFile(stateFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
			return
		}
		err = fmt.Errorf("unable to read position file: %w", err)
		return
	}
	cursor = strings.TrimSpace(string(data))

	// Cursors look like "s=...;i=...;b=...;m=...;t=...;x=..."
	cursorFields := strings.Split(cursor, ";")
	if len(cursorFields) < 3 || !strings.HasPrefix(cursorFields[0], "s=") {
		cursor = ""
	}
	return
}

func savePosition(cursor string, stateFilePath string) (err error) {
	// Don't nuke existing cursor
	if cursor == "" {
		return
	}

	stateDirectory := filepath.Dir(stateFilePath)
	err = os.MkdirAll(stateDirectory, 0700)
	if err != nil {
		err = fmt.Errorf("failed to create missing state directory '%s': %w", stateDirectory, err)
		return
	}

	err = os.WriteFile(stateFilePath, []byte(cursor+"\n"), 0600)
	if err != nil {
		err = fmt.Errorf("failed to write current log position to state file: %w", err)
		return
	}
	return
}
