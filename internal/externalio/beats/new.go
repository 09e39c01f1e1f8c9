// Mirrors forwarded GELF messages to a beats (lumberjack) server such as Logstash
package beats

import (
	"context"
	"fmt"
	"time"

	"gelfsend/internal/global"
	"gelfsend/internal/logctx"

	"github.com/cenkalti/backoff/v4"
	lumberjack "github.com/elastic/go-lumber/client/v2"
)

const (
	initialReconnectWait    time.Duration = 100 * time.Millisecond
	defaultMaxReconnectWait time.Duration = 30 * time.Second
	defaultReconnectRetries uint64        = 3
)

// Creates new beats (lumberjack) output module. Returns nil nil if no endpoint.
func NewOutput(ctx context.Context, endpoint string, opts Options) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = global.DefaultBeatsDial
	}
	if opts.MaxReconnectWait <= 0 {
		opts.MaxReconnectWait = defaultMaxReconnectWait
	}
	if opts.ReconnectRetries == 0 {
		opts.ReconnectRetries = defaultReconnectRetries
	}

	module = newModule(endpoint, lumberDialer(opts.DialTimeout, opts.CompressionLevel), opts)
	err = module.connect(ctx)
	if err != nil {
		module = nil
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}
	return
}

func newModule(endpoint string, dial dialer, opts Options) (module *OutModule) {
	maxWait := opts.MaxReconnectWait
	module = &OutModule{
		endpoint:   endpoint,
		dial:       dial,
		maxRetries: opts.ReconnectRetries,
		newBackoff: func() backoff.BackOff {
			exp := backoff.NewExponentialBackOff()
			exp.InitialInterval = initialReconnectWait
			exp.MaxInterval = maxWait
			exp.MaxElapsedTime = 0
			return exp
		},
	}
	return
}

func lumberDialer(timeout time.Duration, compressionLevel int) dialer {
	return func(endpoint string) (sink, error) {
		client, err := lumberjack.SyncDial(endpoint,
			lumberjack.CompressionLevel(compressionLevel),
			lumberjack.Timeout(timeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Dials until success, retry budget exhaustion or cancellation
func (mod *OutModule) connect(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSoBeats)

	attempt := 0
	operation := func() error {
		attempt++
		client, dialErr := mod.dial(mod.endpoint)
		if dialErr != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Connection attempt %d to %s failed: %v\n", attempt, mod.endpoint, dialErr)
			return dialErr
		}
		mod.sink = client
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(mod.newBackoff(), mod.maxRetries), ctx)
	err = backoff.Retry(operation, policy)
	if err != nil {
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Connected to beats server %s\n", mod.endpoint)
	return
}
