package journald

import "gelfsend/internal/ingest"

// Journal input following journalctl export output
type InModule struct {
	name          string
	command       string
	args          []string
	stateFile     string
	cursor        string
	localHostname string
	maxLineSize   int
	metrics       *ingest.MetricStorage
}
