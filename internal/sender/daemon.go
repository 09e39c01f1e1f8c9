// Daemon forwarding log lines from configured sources to a GELF UDP input
package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"gelfsend/internal/compress"
	"gelfsend/internal/externalio/beats"
	"gelfsend/internal/externalio/journald"
	"gelfsend/internal/externalio/server"
	"gelfsend/internal/global"
	"gelfsend/internal/ingest"
	"gelfsend/internal/logctx"
	"gelfsend/internal/metrics"
	"gelfsend/internal/network"
	"gelfsend/pkg/gelf"

	"golang.org/x/time/rate"
)

// Create new forwarding daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	new = &Daemon{
		cfg:           cfg,
		stdin:         os.Stdin,
		sourceMetrics: make(map[string]*ingest.MetricStorage),
		Metrics:       metrics.New(),
	}
	return
}

// Starts pipeline worker threads in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	daemon.mu.Lock()
	defer daemon.mu.Unlock()
	if daemon.running {
		err = fmt.Errorf("daemon already running")
		return
	}

	// New contexts for the daemon (readers stop first, worker drains after)
	logger := logctx.GetLogger(globalCtx)
	baseCtx := logctx.AppendCtxTag(logctx.WithLogger(context.Background(), logger), global.NSForward)
	daemon.ctx, daemon.cancel = context.WithCancel(baseCtx)
	daemon.workerCtx, daemon.workerCancel = context.WithCancel(baseCtx)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	defer func() {
		if err != nil {
			daemon.teardown()
			daemon.cancel()
		}
	}()

	daemon.cfg.setDefaults()

	if daemon.cfg.DestinationAddress == "" {
		err = fmt.Errorf("cannot start without a destination address")
		return
	}
	if len(daemon.cfg.FileSourcePaths) == 0 && !daemon.cfg.StdinEnabled && !daemon.cfg.JournalEnabled {
		err = fmt.Errorf("cannot start without at least one input")
		return
	}

	// Message defaults
	global.Hostname = daemon.cfg.Hostname
	if global.Hostname == "" {
		global.Hostname, err = os.Hostname()
		if err != nil {
			err = fmt.Errorf("failed to determine local hostname: %w", err)
			return
		}
	}
	escapeMode := gelf.EscapeQuotes
	if daemon.cfg.StrictEscaping {
		escapeMode = gelf.EscapeJSON
	}
	daemon.defaults = ingest.Defaults{
		Hostname:    global.Hostname,
		Facility:    daemon.cfg.Facility,
		Level:       daemon.cfg.DefaultLevel,
		EscapeMode:  escapeMode,
		ExtraFields: daemon.cfg.ExtraFields,
	}

	daemon.compressor, err = compress.New(daemon.cfg.Compression, daemon.cfg.CompressionLevel)
	if err != nil {
		return
	}

	// Destination "connection"
	destination := net.JoinHostPort(daemon.cfg.DestinationAddress, strconv.Itoa(daemon.cfg.DestinationPort))
	daemon.transport, err = network.DialUDP(daemon.ctx, destination, daemon.cfg.SendBuffer)
	if err != nil {
		return
	}

	daemon.chunkSize, err = daemon.resolveChunkSize()
	if err != nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
		"Sending to %s with chunk size %d\n", daemon.transport.RemoteAddr(), daemon.chunkSize)

	if daemon.cfg.MessagesPerSecond > 0 {
		daemon.limiter = rate.NewLimiter(rate.Limit(daemon.cfg.MessagesPerSecond), daemon.cfg.Burst)
	} else {
		daemon.limiter = nil
	}

	// Optional mirror
	daemon.beats, err = beats.NewOutput(daemon.ctx, daemon.cfg.BeatsAddress, beats.Options{
		DialTimeout:      daemon.cfg.BeatsDialTimeout,
		MaxReconnectWait: daemon.cfg.BeatsMaxReconnectWait,
	})
	if err != nil {
		return
	}

	// Sources
	readers, err := daemon.newReaders()
	if err != nil {
		return
	}

	// Worker
	daemon.records = make(chan ingest.Record, daemon.cfg.QueueSize)
	daemon.done = make(chan struct{})
	workerCtx := logctx.AppendCtxTag(daemon.workerCtx, global.NSWorker)
	go daemon.runWorker(workerCtx, daemon.ctx.Done(), daemon.records, daemon.done)

	// Per run: a reader stuck in a blocking read may outlive this run
	records := daemon.records
	readerWg := &sync.WaitGroup{}
	for _, reader := range readers {
		readerCtx := logctx.AppendCtxTag(daemon.ctx, reader.SourceName())
		readerWg.Add(1)
		go func() {
			defer readerWg.Done()
			runErr := reader.Run(readerCtx, records)
			if runErr != nil {
				logctx.LogEvent(readerCtx, global.VerbosityStandard, global.ErrorLog, "%v\n", runErr)
			}
		}()
	}

	// Inputs exhausted (or stopped) closes the queue so the worker can drain and exit
	go func() {
		readerWg.Wait()
		close(records)
	}()

	// Metric Server
	if daemon.cfg.MetricServerEnabled {
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
		daemon.MetricServer = server.SetupListener(serverCtx, daemon.cfg.MetricListenAddress, daemon.Metrics.Handler())
		go server.Start(serverCtx, daemon.MetricServer)
	}

	daemon.running = true
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Configured chunk size, or one derived from the path MTU to the destination
func (daemon *Daemon) resolveChunkSize() (chunkSize int, err error) {
	if daemon.cfg.ChunkSize > 0 {
		if daemon.cfg.ChunkSize <= gelf.ChunkHeaderLen {
			err = fmt.Errorf("chunk size %d: %w", daemon.cfg.ChunkSize, gelf.ErrInvalidChunkSize)
			return
		}
		chunkSize = daemon.cfg.ChunkSize
		return
	}

	remoteIP := daemon.transport.RemoteAddr().(*net.UDPAddr).IP
	chunkSize, err = network.FindChunkSize(remoteIP.String())
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Unable to derive chunk size from MTU, using %d: %v\n", gelf.DefaultChunkSize, err)
		chunkSize = gelf.DefaultChunkSize
		err = nil
	}
	return
}

// Opens every configured input. Metric storage is carried over by source name across reloads.
func (daemon *Daemon) newReaders() (readers []ingest.Source, err error) {
	defer func() {
		if err != nil {
			for _, opened := range readers {
				opened.Close()
			}
			readers = nil
		}
	}()

	for _, path := range daemon.cfg.FileSourcePaths {
		var reader *ingest.Reader
		reader, err = ingest.NewFileReader(path, daemon.cfg.FollowFiles, daemon.cfg.PollInterval, daemon.cfg.MaxLineSize)
		if err != nil {
			err = fmt.Errorf("failed adding new file ingest instance: %w", err)
			return
		}
		readers = append(readers, reader)
	}
	if daemon.cfg.StdinEnabled {
		readers = append(readers, ingest.NewStreamReader(global.NSoStdIn, daemon.stdin, daemon.cfg.MaxLineSize))
	}
	if daemon.cfg.JournalEnabled {
		var journal *journald.InModule
		journal, err = journald.NewInput(daemon.cfg.JournalState, daemon.cfg.MaxLineSize)
		if err != nil {
			err = fmt.Errorf("failed adding new journal ingest instance: %w", err)
			return
		}
		readers = append(readers, journal)
	}

	for _, reader := range readers {
		name := reader.SourceName()
		storage, seen := daemon.sourceMetrics[name]
		if seen {
			reader.SetStorage(storage)
			continue
		}
		storage = reader.Storage()
		daemon.sourceMetrics[name] = storage

		err = daemon.Metrics.RegisterSource(name,
			func() float64 { return float64(storage.LinesRead.Load()) },
			func() float64 { return float64(storage.EmptyLines.Load()) },
			func() float64 { return float64(storage.Truncated.Load()) },
		)
		if err != nil {
			err = fmt.Errorf("failed registering metrics for %s: %w", name, err)
			return
		}
	}
	return
}

// Closed once every input is exhausted and the queue has drained.
// Already closed for a daemon that was never started.
func (daemon *Daemon) Done() <-chan struct{} {
	daemon.mu.Lock()
	defer daemon.mu.Unlock()
	if daemon.done == nil {
		finished := make(chan struct{})
		close(finished)
		return finished
	}
	return daemon.done
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.Done()
}

// Gracefully shutdown pipeline worker threads
func (daemon *Daemon) Shutdown() {
	daemon.mu.Lock()
	defer daemon.mu.Unlock()
	if !daemon.running {
		return
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	// Stop inputs, the worker keeps sending what is already queued
	daemon.cancel()

	select {
	case <-daemon.done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.SendShutdownTimeout):
		daemon.workerCancel()
		<-daemon.done
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: queue did not drain within %v seconds, remaining messages dropped\n",
			global.SendShutdownTimeout.Seconds())
	}

	daemon.teardown()
	daemon.running = false
}

// Releases outputs and the metric server. Safe on a partially started daemon.
func (daemon *Daemon) teardown() {
	if daemon.MetricServer != nil {
		err := daemon.MetricServer.Shutdown(context.Background())
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
		daemon.MetricServer = nil
	}

	if daemon.beats != nil {
		err := daemon.beats.Shutdown()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"beats output did not close cleanly: %v\n", err)
		}
		daemon.beats = nil
	}

	if daemon.transport != nil {
		err := daemon.transport.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"destination socket did not close cleanly: %v\n", err)
		}
		daemon.transport = nil
	}

	if daemon.workerCancel != nil {
		daemon.workerCancel()
	}
}

// Swaps in the configuration from ConfigPath. The previous configuration is restored if the new one fails to start.
func (daemon *Daemon) Reload(globalCtx context.Context) (err error) {
	if daemon.ConfigPath == "" {
		err = fmt.Errorf("no configuration file to reload from")
		return
	}

	jsonCfg, err := LoadConfig(daemon.ConfigPath)
	if err != nil {
		return
	}
	newCfg, err := jsonCfg.NewDaemonConf()
	if err != nil {
		return
	}

	daemon.Shutdown()

	oldCfg := daemon.cfg
	daemon.cfg = newCfg
	err = daemon.Start(globalCtx)
	if err != nil {
		err = fmt.Errorf("failed to start with reloaded configuration: %w", err)

		daemon.cfg = oldCfg
		restoreErr := daemon.Start(globalCtx)
		if restoreErr != nil {
			err = fmt.Errorf("%w (restoring previous configuration also failed: %v)", err, restoreErr)
		}
		return
	}
	return
}
