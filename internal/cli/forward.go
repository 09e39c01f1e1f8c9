package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gelfsend/internal/global"
	"gelfsend/internal/lifecycle"
	"gelfsend/internal/logctx"
	"gelfsend/internal/sender"
)

func ForwardMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	jsonCfg, err := sender.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	daemonConfig, err := jsonCfg.NewDaemonConf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	forwardDaemon := sender.NewDaemon(daemonConfig)
	forwardDaemon.ConfigPath = configPath
	err = forwardDaemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting forwarding daemon: %v\n", err)
		os.Exit(1)
	}

	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}
	err = lifecycle.NotifyStatus(ctx, fmt.Sprintf("Forwarding to %s:%d", daemonConfig.DestinationAddress, daemonConfig.DestinationPort))
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
	}

	// Blocks until shutdown
	lifecycle.SignalHandler(ctx, forwardDaemon)
}
