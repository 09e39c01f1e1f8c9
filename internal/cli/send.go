package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gelfsend/internal/compress"
	"gelfsend/internal/global"
	"gelfsend/internal/logctx"
	"gelfsend/internal/network"
	"gelfsend/pkg/gelf"

	"golang.org/x/term"
)

type sendOptions struct {
	destination      string
	port             int
	host             string
	short            string
	full             string
	level            string
	fields           fieldFlags
	compression      string
	compressionLevel int
	chunkSize        int
	strictEscaping   bool
	noTimestamp      bool
}

func (opts *sendOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&opts.destination, "d", "", "Destination GELF UDP input address")
	fs.StringVar(&opts.destination, "destination", "", "Destination GELF UDP input address")
	fs.IntVar(&opts.port, "p", global.DefaultGraylogPort, "Destination port")
	fs.IntVar(&opts.port, "port", global.DefaultGraylogPort, "Destination port")
	fs.StringVar(&opts.host, "H", "", "Host field of the message (defaults to local hostname)")
	fs.StringVar(&opts.host, "host", "", "Host field of the message (defaults to local hostname)")
	fs.StringVar(&opts.short, "s", "", "Short message text (read from stdin when omitted and stdin is not a terminal)")
	fs.StringVar(&opts.short, "short", "", "Short message text (read from stdin when omitted and stdin is not a terminal)")
	fs.StringVar(&opts.full, "full", "", "Full message text")
	fs.StringVar(&opts.level, "l", "info", "Severity name or number <emergency...debug|0...7>")
	fs.StringVar(&opts.level, "level", "info", "Severity name or number <emergency...debug|0...7>")
	fs.Var(&opts.fields, "f", "Additional field as name=value (repeatable)")
	fs.Var(&opts.fields, "field", "Additional field as name=value (repeatable)")
	fs.StringVar(&opts.compression, "compression", compress.NameNone, "Payload compression <none|gzip|zlib>")
	fs.IntVar(&opts.compressionLevel, "compression-level", 0, "Compression level <1...9>")
	fs.IntVar(&opts.chunkSize, "chunk-size", 0, "Datagram size in bytes (derived from interface MTU when omitted)")
	fs.BoolVar(&opts.strictEscaping, "strict", false, "Escape strings fully per JSON instead of quotes only")
	fs.BoolVar(&opts.noTimestamp, "no-timestamp", false, "Omit the timestamp (receiver assigns arrival time)")
}

func SendMode(ctx context.Context, commandname string, args []string) {
	var opts sendOptions
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	opts.register(commandFlags)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	ctx = logctx.AppendCtxTag(ctx, global.NSSend)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	msg, err := buildMessage(opts, os.Stdin, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = sendMessage(ctx, opts, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Message from flags. A missing short message is read from stdin unless stdin is interactive:
// the first line becomes the short message and multi-line input also becomes the full message.
func buildMessage(opts sendOptions, stdin io.Reader, interactive bool) (msg *gelf.Message, err error) {
	short, full := opts.short, opts.full
	if short == "" && !interactive && stdin != nil {
		var piped []byte
		piped, err = io.ReadAll(io.LimitReader(stdin, int64(global.DefaultMaxLineSize)))
		if err != nil {
			err = fmt.Errorf("failed reading message from stdin: %w", err)
			return
		}
		text := strings.TrimRight(string(piped), "\r\n")

		scanner := bufio.NewScanner(strings.NewReader(text))
		scanner.Buffer(make([]byte, 0, 64*1024), global.DefaultMaxLineSize)
		if scanner.Scan() {
			short = strings.TrimRight(scanner.Text(), "\r")
		}
		if full == "" && strings.Contains(text, "\n") {
			full = text
		}
	}
	if short == "" {
		err = fmt.Errorf("short message required (use --short or pipe text on stdin)")
		return
	}

	level, err := gelf.ParseLevel(opts.level)
	if err != nil {
		return
	}

	host := opts.host
	if host == "" {
		host, err = os.Hostname()
		if err != nil {
			err = fmt.Errorf("failed to determine local hostname: %w", err)
			return
		}
	}

	msg = gelf.NewWithLevel(host, short, level)
	if opts.strictEscaping {
		msg.SetEscapeMode(gelf.EscapeJSON)
	}
	if full != "" {
		msg.SetFullMessage(full)
	}
	if !opts.noTimestamp {
		msg.SetTimestampFloat(float64(time.Now().UnixMilli()) / 1000)
	}

	// Unsigned integers go out as JSON numbers, anything else as strings
	for _, field := range opts.fields {
		number, parseErr := strconv.ParseUint(field.value, 10, 64)
		if parseErr == nil {
			msg.SetField(field.name, number)
			continue
		}
		msg.Set(field.name, field.value)
	}
	return
}

func sendMessage(ctx context.Context, opts sendOptions, msg *gelf.Message) (err error) {
	if opts.destination == "" {
		err = fmt.Errorf("destination address required")
		return
	}

	compressor, err := compress.New(opts.compression, opts.compressionLevel)
	if err != nil {
		return
	}

	destination := net.JoinHostPort(opts.destination, strconv.Itoa(opts.port))
	transport, err := network.DialUDP(ctx, destination, global.DefaultSendBuffer)
	if err != nil {
		return
	}
	defer transport.Close()

	chunkSize := opts.chunkSize
	if chunkSize == 0 {
		remoteIP := transport.RemoteAddr().(*net.UDPAddr).IP
		chunkSize, err = network.FindChunkSize(remoteIP.String())
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Unable to derive chunk size from MTU, using %d: %v\n", gelf.DefaultChunkSize, err)
			chunkSize = gelf.DefaultChunkSize
			err = nil
		}
	}

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "Message: %s\n", msg.String())

	err = gelf.Send(msg, transport, chunkSize, compressor)
	if err != nil {
		err = fmt.Errorf("failed sending to %s: %w", destination, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Sent message to %s (chunk size %d)\n", destination, chunkSize)
	return
}
