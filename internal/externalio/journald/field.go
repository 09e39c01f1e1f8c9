package journald

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxBinaryFieldSize uint64 = 10 * 1024 * 1024

// Reads one journal export entry (terminated by an empty line).
// Returns io.EOF once the stream ends with no pending entry.
// https://systemd.io/JOURNAL_EXPORT_FORMATS/#journal-export-format
func ExtractEntry(reader *bufio.Reader) (fields map[string]string, err error) {
	fields = make(map[string]string)
	for {
		var line string
		line, err = reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(fields) > 0 || line != "" {
					err = fmt.Errorf("journal entry truncated at end of stream")
				}
				return
			}
			err = fmt.Errorf("failed line read: %w", err)
			return
		}
		line = strings.TrimSuffix(line, "\n")

		if line == "" {
			break
		}

		// Text field
		if key, value, found := strings.Cut(line, "="); found {
			fields[key] = value
			continue
		}

		// Binary field: key line, 64-bit little-endian length, data, newline
		key := line
		var lenField [8]byte
		_, err = io.ReadFull(reader, lenField[:])
		if err != nil {
			err = fmt.Errorf("failed binary field length read: %w", err)
			return
		}

		size := binary.LittleEndian.Uint64(lenField[:])
		if size > maxBinaryFieldSize {
			err = fmt.Errorf("binary field size too large: %d bytes", size)
			return
		}

		data := make([]byte, size)
		_, err = io.ReadFull(reader, data)
		if err != nil {
			err = fmt.Errorf("failed binary field value read: %w", err)
			return
		}

		b, readErr := reader.ReadByte()
		if readErr != nil || b != '\n' {
			err = fmt.Errorf("binary field missing newline")
			return
		}

		fields[key] = string(data)
	}

	if len(fields) == 0 {
		err = fmt.Errorf("encountered empty entry")
		return
	}
	return
}
