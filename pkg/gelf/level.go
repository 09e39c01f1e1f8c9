package gelf

import (
	"fmt"
	"strconv"
	"strings"
)

// Syslog severity ordinal, lower is more severe
type Level uint8

const (
	Emergency Level = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
)

var levelNames = [...]string{
	Emergency: "EMERGENCY",
	Alert:     "ALERT",
	Critical:  "CRITICAL",
	Error:     "ERROR",
	Warning:   "WARNING",
	Notice:    "NOTICE",
	Info:      "INFO",
	Debug:     "DEBUG",
}

// Syslog keyword spellings (as used by rsyslog/logger)
var syslogLevelNames = map[string]Level{
	"emerg":   Emergency,
	"panic":   Emergency,
	"alert":   Alert,
	"crit":    Critical,
	"err":     Error,
	"error":   Error,
	"warn":    Warning,
	"warning": Warning,
	"notice":  Notice,
	"info":    Info,
	"debug":   Debug,
}

func (level Level) String() (name string) {
	if int(level) < len(levelNames) {
		name = levelNames[level]
		return
	}
	name = "Level(" + strconv.Itoa(int(level)) + ")"
	return
}

// Reports whether level is one of the eight defined severities
func (level Level) Valid() (valid bool) {
	valid = level <= Debug
	return
}

// Converts a symbolic name, syslog keyword, or ordinal into a Level
func ParseLevel(name string) (level Level, err error) {
	trimmed := strings.TrimSpace(name)

	if code, convErr := strconv.Atoi(trimmed); convErr == nil {
		if code < int(Emergency) || code > int(Debug) {
			err = fmt.Errorf("unknown severity code: %d", code)
			return
		}
		level = Level(code)
		return
	}

	lower := strings.ToLower(trimmed)
	for code, fullName := range levelNames {
		if strings.ToLower(fullName) == lower {
			level = Level(code)
			return
		}
	}

	level, exists := syslogLevelNames[lower]
	if !exists {
		err = fmt.Errorf("unknown severity name: %s", name)
	}
	return
}
