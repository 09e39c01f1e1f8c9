package cli

import (
	"flag"
	"fmt"
	"strings"

	"gelfsend/internal/global"
)

func SetGlobalArguments(fs *flag.FlagSet) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}

// Repeatable name=value flag
type fieldFlags []fieldPair

type fieldPair struct {
	name  string
	value string
}

func (fields *fieldFlags) String() string {
	if fields == nil {
		return ""
	}
	pairs := make([]string, 0, len(*fields))
	for _, pair := range *fields {
		pairs = append(pairs, pair.name+"="+pair.value)
	}
	return strings.Join(pairs, ",")
}

func (fields *fieldFlags) Set(raw string) (err error) {
	name, value, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		err = fmt.Errorf("field must be given as name=value: %q", raw)
		return
	}
	*fields = append(*fields, fieldPair{name: name, value: value})
	return
}
