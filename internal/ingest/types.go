package ingest

import (
	"context"
	"time"

	"gelfsend/pkg/gelf"
)

// Metadata extracted from one input line
type Record struct {
	Text            string
	ApplicationName string
	Hostname        string
	ProcessID       int
	Timestamp       time.Time
	Level           gelf.Level
	LevelKnown      bool
	Source          string
}

// Values applied to forwarded messages
type Defaults struct {
	Hostname    string
	Facility    string
	Level       gelf.Level
	EscapeMode  gelf.EscapeMode
	ExtraFields map[string]string
}

// Input feeding records to the forwarder
type Source interface {
	SourceName() string
	Run(ctx context.Context, out chan<- Record) error
	Close() error
	Storage() *MetricStorage
	SetStorage(storage *MetricStorage)
}
