package cli

import "gelfsend/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "GELF Sender (gelfsend)",
		FullDescription: "  Builds Graylog Extended Log Format messages and delivers them as chunked UDP datagrams",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// One-shot
	root.ChildCommands["send"] = &global.CommandSet{
		CommandName:     "send",
		UsageOption:     "[options]",
		Description:     "Send One Message",
		FullDescription: "Builds a single GELF message from arguments (or piped stdin) and sends it to a GELF UDP input",
		ChildCommands:   nil,
	}

	// Daemon
	root.ChildCommands["forward"] = &global.CommandSet{
		CommandName:     "forward",
		UsageOption:     "[options]",
		Description:     "Forward Log Files",
		FullDescription: "Reads log lines from configured files, stdin, or the systemd journal, converts them to GELF, and forwards them to the configured destination",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
