package logctx

import (
	"sync"
	"time"
)

// Single log line waiting to be written
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Buffered, verbosity-filtered logger carried through context
type Logger struct {
	ID         string
	CreatedAt  time.Time
	PrintLevel int
	Done       <-chan struct{}

	mutex sync.Mutex
	cond  *sync.Cond
	queue []Event
	wg    sync.WaitGroup
}

// State for collapsing bursts of identical messages
type repeatState struct {
	lastMsg      string
	count        int
	lastNotified time.Time
}
