package ingest

import (
	"strconv"
	"strings"
	"time"

	"gelfsend/pkg/gelf"
)

const (
	bsdSyslogLayout string = "Jan _2 15:04:05"
	isoSyslogLayout string = "2006-01-02T15:04:05.999999-07:00"
	nginxLayout     string = "2006/01/02 15:04:05"
	dpkgLayout      string = "2006-01-02 15:04:05"
)

// Recognizes common log line layouts and extracts metadata.
// Unrecognized lines keep their full text and carry no timestamp.
func ParseLine(rawLine string) (record Record) {
	line := strings.TrimSpace(rawLine)

	var ok bool
	if record, ok = parseBSDSyslog(line); ok {
		return
	}
	if record, ok = parseISOSyslog(line); ok {
		return
	}
	if record, ok = parseNginx(line); ok {
		return
	}
	if record, ok = parseDpkg(line); ok {
		return
	}

	record = Record{Text: line}
	return
}

// Format: "Jul  9 18:05:33 host app[123]: text"
func parseBSDSyslog(line string) (record Record, ok bool) {
	if len(line) < len(bsdSyslogLayout) {
		return
	}
	ts, err := time.ParseInLocation(bsdSyslogLayout, line[:len(bsdSyslogLayout)], time.Local)
	if err != nil {
		return
	}

	rest := strings.TrimSpace(line[len(bsdSyslogLayout):])
	host, rest, found := strings.Cut(rest, " ")
	if !found || host == "" {
		return
	}
	header, text, found := strings.Cut(rest, ":")
	if !found || header == "" {
		return
	}

	record.Hostname = host
	record.ApplicationName, record.ProcessID = splitAppHeader(header)
	record.Text = strings.TrimSpace(text)
	record.Timestamp = withCurrentYear(ts)
	ok = true
	return
}

// Format: "2024-01-02T03:04:05.123456+00:00 host app[123]: text"
func parseISOSyslog(line string) (record Record, ok bool) {
	if len(line) < 33 || line[10] != 'T' {
		return
	}
	ts, err := time.Parse(isoSyslogLayout, line[:32])
	if err != nil {
		return
	}

	rest := strings.TrimSpace(line[32:])
	host, rest, found := strings.Cut(rest, " ")
	if !found || host == "" {
		return
	}

	record.Hostname = host
	record.Timestamp = ts
	if header, text, found := strings.Cut(rest, ":"); found && header != "" && !strings.Contains(header, " ") {
		record.ApplicationName, record.ProcessID = splitAppHeader(header)
		rest = text
	}
	record.Text = strings.TrimSpace(rest)
	ok = true
	return
}

// Format: "2024/01/02 03:04:05 [error] 123#0: *1 text"
func parseNginx(line string) (record Record, ok bool) {
	if len(line) < len(nginxLayout) {
		return
	}
	ts, err := time.ParseInLocation(nginxLayout, line[:len(nginxLayout)], time.Local)
	if err != nil {
		return
	}

	rest := strings.TrimSpace(line[len(nginxLayout):])
	if !strings.HasPrefix(rest, "[") {
		return
	}
	severity, rest, found := strings.Cut(rest[1:], "]")
	if !found {
		return
	}
	rest = strings.TrimSpace(rest)

	pidText, rest, found := strings.Cut(rest, "#")
	if !found {
		return
	}
	_, text, found := strings.Cut(rest, ":")
	if !found {
		return
	}

	record.ApplicationName = "nginx"
	record.ProcessID, _ = strconv.Atoi(pidText)
	record.Timestamp = ts
	record.Text = strings.TrimSpace(text)
	record.Level, err = gelf.ParseLevel(severity)
	record.LevelKnown = err == nil
	ok = true
	return
}

// Format: "2024-01-02 03:04:05 status installed pkg"
func parseDpkg(line string) (record Record, ok bool) {
	if len(line) < len(dpkgLayout) {
		return
	}
	ts, err := time.ParseInLocation(dpkgLayout, line[:len(dpkgLayout)], time.Local)
	if err != nil {
		return
	}

	record.ApplicationName = "dpkg"
	record.Timestamp = ts
	record.Text = strings.TrimSpace(line[len(dpkgLayout):])
	ok = true
	return
}

// Splits "app[pid]" or "app"
func splitAppHeader(header string) (app string, pid int) {
	app = header
	open := strings.IndexByte(header, '[')
	if open <= 0 {
		return
	}
	app = header[:open]
	closing := strings.IndexByte(header, ']')
	if closing > open+1 {
		pid, _ = strconv.Atoi(header[open+1 : closing])
	}
	return
}

// Adds year to timestamps that do not have one
func withCurrentYear(old time.Time) (new time.Time) {
	now := time.Now()
	new = time.Date(now.Year(), old.Month(), old.Day(), old.Hour(), old.Minute(), old.Second(), 0, time.Local)
	return
}
