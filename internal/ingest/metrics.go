package ingest

import "sync/atomic"

type MetricStorage struct {
	LinesRead  atomic.Uint64
	EmptyLines atomic.Uint64
	Truncated  atomic.Uint64
}
