package beats

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Connection to a beats (lumberjack v2) endpoint
type OutModule struct {
	endpoint   string
	dial       dialer
	sink       sink
	newBackoff func() backoff.BackOff
	maxRetries uint64
}

// Subset of the lumberjack client used by the module
type sink interface {
	Send(data []interface{}) (int, error)
	Close() error
}

type dialer func(endpoint string) (sink, error)

type Options struct {
	DialTimeout      time.Duration
	MaxReconnectWait time.Duration
	ReconnectRetries uint64
	CompressionLevel int
}
