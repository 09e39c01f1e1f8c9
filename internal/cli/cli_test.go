package cli

import (
	"bytes"
	"context"
	"flag"
	"net"
	"strings"
	"testing"
	"time"

	"gelfsend/pkg/gelf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldFlags(t *testing.T) {
	var fields fieldFlags
	require.NoError(t, fields.Set("env=prod"))
	require.NoError(t, fields.Set("query=a=b"))
	require.NoError(t, fields.Set("empty="))

	assert.Equal(t, fieldFlags{{"env", "prod"}, {"query", "a=b"}, {"empty", ""}}, fields)
	assert.Equal(t, "env=prod,query=a=b,empty=", fields.String())

	assert.Error(t, fields.Set("novalue"))
	assert.Error(t, fields.Set("=value"))
}

func TestSendFlagParsing(t *testing.T) {
	var opts sendOptions
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	SetGlobalArguments(fs)
	opts.register(fs)

	err := fs.Parse([]string{"-d", "10.1.1.1", "--port", "5000", "-s", "hi", "-f", "a=1", "--field", "b=x", "--strict"})
	require.NoError(t, err)

	assert.Equal(t, "10.1.1.1", opts.destination)
	assert.Equal(t, 5000, opts.port)
	assert.Equal(t, "hi", opts.short)
	assert.Equal(t, "info", opts.level)
	assert.Len(t, opts.fields, 2)
	assert.True(t, opts.strictEscaping)
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name        string
		opts        sendOptions
		stdin       string
		interactive bool
		wantShort   string
		wantFull    string
		wantErr     bool
	}{
		{
			name:      "from flags",
			opts:      sendOptions{host: "h", short: "flag text", full: "long", level: "warning"},
			wantShort: "flag text",
			wantFull:  "long",
		},
		{
			name:      "single stdin line",
			opts:      sendOptions{host: "h", level: "info"},
			stdin:     "piped line\n",
			wantShort: "piped line",
		},
		{
			name:      "multi line stdin",
			opts:      sendOptions{host: "h", level: "info"},
			stdin:     "panic: oops\ngoroutine 1 [running]:\n",
			wantShort: "panic: oops",
			wantFull:  "panic: oops\ngoroutine 1 [running]:",
		},
		{
			name:        "interactive stdin ignored",
			opts:        sendOptions{host: "h", level: "info"},
			stdin:       "typed",
			interactive: true,
			wantErr:     true,
		},
		{
			name:    "bad level",
			opts:    sendOptions{host: "h", short: "x", level: "shouting"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := buildMessage(tt.opts, strings.NewReader(tt.stdin), tt.interactive)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShort, msg.ShortMessage())

			full, set := msg.FullMessage()
			assert.Equal(t, tt.wantFull != "", set)
			assert.Equal(t, tt.wantFull, full)
		})
	}
}

func TestBuildMessageFields(t *testing.T) {
	opts := sendOptions{
		host:        "web01",
		short:       "request done",
		level:       "3",
		noTimestamp: true,
		fields:      fieldFlags{{"status", "200"}, {"user", "alice"}, {"delta", "-5"}},
	}

	msg, err := buildMessage(opts, nil, true)
	require.NoError(t, err)

	assert.Equal(t, gelf.Error, msg.Level())
	_, set := msg.Timestamp()
	assert.False(t, set)
	assert.Equal(t,
		`{"version":1.1,"host":"web01","short_message":"request done","level":3,"_status":200,"_user":"alice","_delta":"-5"}`,
		msg.String())
}

func TestSendMessage(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	opts := sendOptions{
		destination: "127.0.0.1",
		port:        conn.LocalAddr().(*net.UDPAddr).Port,
		compression: "none",
		chunkSize:   64,
	}
	msg := gelf.New("web01", strings.Repeat("m", 100))

	require.NoError(t, sendMessage(context.Background(), opts, msg))

	var assembled []byte
	buf := make([]byte, 1024)
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		n, _, err := conn.ReadFromUDP(buf)
		require.NoError(t, err)

		header, data, err := gelf.ParseChunk(buf[:n])
		require.NoError(t, err)
		assembled = append(assembled, data...)
		if int(header.Sequence) == int(header.Total)-1 {
			break
		}
	}
	assert.Equal(t, msg.String(), string(assembled))
}

func TestSendMessageErrors(t *testing.T) {
	msg := gelf.New("h", "m")

	err := sendMessage(context.Background(), sendOptions{}, msg)
	assert.Error(t, err)

	err = sendMessage(context.Background(), sendOptions{destination: "127.0.0.1", port: 9, compression: "brotli"}, msg)
	assert.Error(t, err)
}

func TestPrintHelpMenu(t *testing.T) {
	root := DefineOptions()

	var opts sendOptions
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	SetGlobalArguments(fs)
	opts.register(fs)

	var out bytes.Buffer
	printHelpMenu(&out, fs, "send", root)
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "Usage: gelfsend send [options]\n"), text)
	assert.Contains(t, text, root.ChildCommands["send"].FullDescription)
	assert.Contains(t, text, "  -v, --verbosity")
	assert.Contains(t, text, "-d, --destination")
	assert.Contains(t, text, "[default: 12201]")
	assert.Contains(t, text, "      --chunk-size")
	assert.NotContains(t, text, "Subcommands:")
}

func TestPrintHelpMenuRoot(t *testing.T) {
	root := DefineOptions()
	fs := flag.NewFlagSet("gelfsend", flag.ContinueOnError)
	SetGlobalArguments(fs)

	var out bytes.Buffer
	printHelpMenu(&out, fs, RootCLICommand, root)
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "Usage: gelfsend [subcommand]\n"), text)
	assert.Contains(t, text, "Subcommands:")
	assert.Contains(t, text, "    forward   - Forward Log Files")
	assert.Contains(t, text, "    send      - Send One Message")
	assert.Contains(t, text, helpMenuTrailer)
}

func TestPrintHelpMenuUnknown(t *testing.T) {
	var out bytes.Buffer
	printHelpMenu(&out, flag.NewFlagSet("x", flag.ContinueOnError), "nope", DefineOptions())
	assert.Equal(t, "Unknown command: nope\n", out.String())
}
