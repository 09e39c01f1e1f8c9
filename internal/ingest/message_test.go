package ingest

import (
	"strconv"
	"testing"
	"time"

	"gelfsend/internal/global"
	"gelfsend/pkg/gelf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage(t *testing.T) {
	defaults := Defaults{
		Hostname: "local",
		Facility: "auth",
		Level:    gelf.Info,
		ExtraFields: map[string]string{
			"env": "prod",
			"dc":  "eu1",
		},
	}

	record := Record{
		Text:            "Accepted",
		ApplicationName: "sshd",
		Hostname:        "Host1",
		ProcessID:       4765,
		Timestamp:       time.Unix(1700000000, 250_000_000),
		Level:           gelf.Warning,
		LevelKnown:      true,
		Source:          "/var/log/auth.log",
	}

	msg := ToMessage(record, defaults)
	assert.Equal(t,
		`{"version":1.1,"host":"Host1","short_message":"Accepted","timestamp":1700000000.25,"level":4,`+
			`"_application_name":"sshd","_process_id":4765,"_facility":"auth","_source":"/var/log/auth.log","_dc":"eu1","_env":"prod"}`,
		msg.String())
}

func TestToMessageDefaults(t *testing.T) {
	defaults := Defaults{Hostname: "local", Level: gelf.Notice, EscapeMode: gelf.EscapeJSON}

	before := time.Now().Unix()
	msg := ToMessage(Record{Text: "line\\with\\slashes"}, defaults)

	assert.Equal(t, "local", msg.Host())
	assert.Equal(t, gelf.Notice, msg.Level())
	assert.Equal(t, gelf.EscapeJSON, msg.EscapeMode())

	_, err := msg.Field(global.CFprocessid)
	require.ErrorIs(t, err, gelf.ErrFieldNotSet)

	_, err = msg.Field(global.CFappname)
	require.ErrorIs(t, err, gelf.ErrFieldNotSet)

	stamp, set := msg.Timestamp()
	require.True(t, set)
	seconds, err := strconv.ParseFloat(stamp, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, int64(seconds), before)
	assert.Contains(t, msg.String(), `"short_message":"line\\with\\slashes"`)

	empty := ToMessage(Record{}, defaults)
	assert.Equal(t, "-", empty.ShortMessage())
}
