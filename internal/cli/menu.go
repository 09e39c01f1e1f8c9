package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gelfsend/internal/global"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
GELF format reference: <https://go2docs.graylog.org/current/getting_in_log_data/gelf.html>
`
	baseIndentSpaces int = 2
)

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	printHelpMenu(os.Stdout, fs, command, rootCmd)
}

func printHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	curCmdSet, parentStack, found := findCommand(command, rootCmd)
	if !found {
		fmt.Fprintf(out, "Unknown command: %s\n", command)
		return
	}

	fmt.Fprintf(out, "Usage: %s\n\n", usageLine(curCmdSet, parentStack))

	// Description
	if curCmdSet == rootCmd {
		fmt.Fprintln(out, curCmdSet.Description)
		fmt.Fprintln(out, curCmdSet.FullDescription)
		fmt.Fprintln(out)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintln(out, "  Description:")
		fmt.Fprintf(out, "    %s\n\n", curCmdSet.FullDescription)
	}

	printSubcommands(out, curCmdSet)
	printFlagOptions(out, fs)

	// Top-level trailer
	if curCmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Locates command in the tree (root, top level, or one level down) along with its parents
func findCommand(command string, rootCmd *global.CommandSet) (curCmdSet *global.CommandSet, parentStack []*global.CommandSet, found bool) {
	if command == "" || command == RootCLICommand {
		curCmdSet, found = rootCmd, true
		return
	}
	if cmd, ok := rootCmd.ChildCommands[command]; ok {
		curCmdSet, found = cmd, true
		parentStack = []*global.CommandSet{rootCmd}
		return
	}
	for _, topCmd := range rootCmd.ChildCommands {
		if sub, ok := topCmd.ChildCommands[command]; ok {
			curCmdSet, found = sub, true
			parentStack = []*global.CommandSet{rootCmd, topCmd}
			return
		}
	}
	return
}

func usageLine(curCmdSet *global.CommandSet, parentStack []*global.CommandSet) string {
	usageParts := []string{global.ProgBaseName}
	for _, parent := range parentStack {
		if parent.CommandName == RootCLICommand {
			continue
		}
		usageParts = append(usageParts, parent.CommandName)
	}
	if curCmdSet.CommandName != RootCLICommand {
		usageParts = append(usageParts, curCmdSet.CommandName)
	}

	switch len(curCmdSet.ChildCommands) {
	case 0:
	case 1:
		for name := range curCmdSet.ChildCommands {
			usageParts = append(usageParts, name)
		}
	default:
		usageParts = append(usageParts, "[subcommand]")
	}
	if curCmdSet.UsageOption != "" {
		usageParts = append(usageParts, curCmdSet.UsageOption)
	}
	return strings.Join(usageParts, " ")
}

func printSubcommands(out io.Writer, curCmdSet *global.CommandSet) {
	if len(curCmdSet.ChildCommands) == 0 {
		return
	}
	fmt.Fprintf(out, "%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))

	subNames := make([]string, 0, len(curCmdSet.ChildCommands))
	maxLen := 0
	for name := range curCmdSet.ChildCommands {
		subNames = append(subNames, name)
		maxLen = max(maxLen, len(name))
	}
	sort.Strings(subNames)

	cmdIndent := strings.Repeat(" ", baseIndentSpaces+2)
	for _, name := range subNames {
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		fmt.Fprintf(out, "%s%s%s - %s\n", cmdIndent, name, padding, curCmdSet.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

// Custom printer to deduplicate short/long usages and indent automatically
func printFlagOptions(out io.Writer, fs *flag.FlagSet) {
	const shortArgPrefix string = "-"      // like "  [-]t, --test  Some usage text"
	const shortLongArgJoiner string = ", " // like "  -t[, ]--test  Some usage text"
	const longArgPrefix string = "--"      // like "  -t, [--]test  Some usage text"
	const argToUsageSpaces int = 2         // like "  -t, --test[  ]Some usage text"

	type optInfo struct {
		names      []string
		usage      string
		defaultVal string
		hasShort   bool
	}

	// Aliases share identical usage text
	seen := make(map[string]*optInfo)
	var opts []*optInfo
	fs.VisitAll(func(arg *flag.Flag) {
		opt, ok := seen[arg.Usage]
		if !ok {
			opt = &optInfo{usage: arg.Usage, defaultVal: arg.DefValue}
			seen[arg.Usage] = opt
			opts = append(opts, opt)
		}
		if len(arg.Name) == 1 {
			opt.names = append(opt.names, shortArgPrefix+arg.Name)
			opt.hasShort = true
		} else {
			opt.names = append(opt.names, longArgPrefix+arg.Name)
		}
	})

	// Short args before long args, options ordered by first name
	for _, opt := range opts {
		sort.SliceStable(opt.names, func(a, b int) bool {
			return len(opt.names[a]) < len(opt.names[b])
		})
	}
	sort.Slice(opts, func(a, b int) bool {
		return strings.ToLower(opts[a].names[0]) < strings.ToLower(opts[b].names[0])
	})

	// Long-only options are pushed right to line up with the long half of "-x, --xx"
	longOnlyOffset := len(shortLongArgJoiner) + len(shortArgPrefix) + 1
	leftWidth := func(opt *optInfo) (width int) {
		width = len(strings.Join(opt.names, shortLongArgJoiner))
		if !opt.hasShort {
			width += longOnlyOffset
		}
		return
	}

	maxLen := 0
	for _, opt := range opts {
		maxLen = max(maxLen, leftWidth(opt))
	}

	fmt.Fprintf(out, "%sOptions:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, opt := range opts {
		indentSpaces := baseIndentSpaces
		if !opt.hasShort {
			indentSpaces += longOnlyOffset
		}
		padding := strings.Repeat(" ", max(maxLen-leftWidth(opt)+argToUsageSpaces, argToUsageSpaces))

		// Skip printing any "empty" defaults
		desc := opt.usage
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}

		fmt.Fprintf(out, "%s%s%s%s\n",
			strings.Repeat(" ", indentSpaces),
			strings.Join(opt.names, shortLongArgJoiner),
			padding,
			desc)
	}
}
