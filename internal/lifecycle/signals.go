package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gelfsend/internal/global"
	"gelfsend/internal/logctx"
)

type DaemonLike interface {
	Reload(ctx context.Context) (err error)
	Done() <-chan struct{}
	Shutdown()
}

// Handles all incoming signals from external sources.
// SIGHUP reloads configuration, SIGINT/SIGQUIT/SIGTERM (or inputs running dry) shut the daemon down and return.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, daemonManager, sigChan)
}

func handleSignals(ctx context.Context, daemonManager DaemonLike, sigChan <-chan os.Signal) {
	for {
		select {
		case <-daemonManager.Done():
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "All inputs finished\n")
		case sig := <-sigChan:
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)
			if sig == syscall.SIGHUP {
				reload(ctx, daemonManager)
				continue
			}
		}

		err := NotifyStopping(ctx)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
		}

		// Initiate daemon shutdown
		daemonManager.Shutdown()
		return
	}
}

func reload(ctx context.Context, daemonManager DaemonLike) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Beginning reload...\n")
	err := NotifyReload(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify reload failed: %v\n", err)
	}

	err = daemonManager.Reload(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Reload Error: %v\n", err)

		err = NotifyStatus(ctx, ReloadFailedStatus)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
		}
	} else {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Reload complete\n")
	}

	err = NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}
}
