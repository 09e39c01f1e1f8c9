package sender

import (
	"fmt"
	"strings"
	"time"

	"gelfsend/internal/global"
	"gelfsend/pkg/gelf"

	"github.com/spf13/viper"
)

// Loads JSON config from file (optional when path is empty) with GELFSEND_* environment overrides.
// Nested keys map to upper-case underscore names, e.g. network.address -> GELFSEND_NETWORK_ADDRESS.
func LoadConfig(path string) (cfg JSONConfig, err error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetEnvPrefix(global.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		err = v.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("failed to read config file: %w", err)
			return
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Registers every key so environment overrides apply even when absent from the file
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("network.address", "")
	v.SetDefault("network.port", global.DefaultGraylogPort)
	v.SetDefault("network.chunkSize", 0)
	v.SetDefault("network.sendBuffer", global.DefaultSendBuffer)

	v.SetDefault("message.compression", "none")
	v.SetDefault("message.compressionLevel", 0)
	v.SetDefault("message.strictEscaping", false)
	v.SetDefault("message.facility", global.DefaultFacility)
	v.SetDefault("message.defaultLevel", "info")
	v.SetDefault("message.hostname", "")

	v.SetDefault("inputs.filePaths", []string{})
	v.SetDefault("inputs.follow", true)
	v.SetDefault("inputs.stdin", false)
	v.SetDefault("inputs.maxLineSize", global.DefaultMaxLineSize)
	v.SetDefault("inputs.pollInterval", "250ms")
	v.SetDefault("inputs.journal", false)
	v.SetDefault("inputs.journalStateFile", global.DefaultJournalStateFile)

	v.SetDefault("rateLimit.messagesPerSecond", 0)
	v.SetDefault("rateLimit.burst", 0)

	v.SetDefault("beats.address", "")
	v.SetDefault("beats.dialTimeout", global.DefaultBeatsDial.String())
	v.SetDefault("beats.maxReconnectWait", "30s")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listenAddress", global.HTTPListenAddr)

	v.SetDefault("queueSize", global.DefaultQueueSize)
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Network settings
	config.DestinationAddress = cfg.Network.Address
	config.DestinationPort = cfg.Network.Port
	config.ChunkSize = cfg.Network.ChunkSize
	config.SendBuffer = cfg.Network.SendBuffer

	// Rendering settings
	config.Compression = cfg.Message.Compression
	config.CompressionLevel = cfg.Message.CompressionLevel
	config.StrictEscaping = cfg.Message.StrictEscaping
	config.Facility = cfg.Message.Facility
	config.Hostname = cfg.Message.Hostname
	config.ExtraFields = cfg.Message.Fields

	config.DefaultLevel = gelf.Info
	if cfg.Message.DefaultLevel != "" {
		config.DefaultLevel, err = gelf.ParseLevel(cfg.Message.DefaultLevel)
		if err != nil {
			err = fmt.Errorf("failed to parse default level: %w", err)
			return
		}
	}

	// Source settings
	config.FileSourcePaths = cfg.Inputs.FilePaths
	config.FollowFiles = cfg.Inputs.Follow
	config.StdinEnabled = cfg.Inputs.Stdin
	config.MaxLineSize = cfg.Inputs.MaxLineSize
	config.JournalEnabled = cfg.Inputs.Journal
	config.JournalState = cfg.Inputs.JournalState
	config.PollInterval, err = parseOptionalDuration(cfg.Inputs.PollInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse input poll interval: %w", err)
		return
	}

	// Pacing
	if cfg.RateLimit.MessagesPerSecond < 0 {
		err = fmt.Errorf("rate limit must not be negative: %v", cfg.RateLimit.MessagesPerSecond)
		return
	}
	config.MessagesPerSecond = cfg.RateLimit.MessagesPerSecond
	config.Burst = cfg.RateLimit.Burst

	// Beats settings
	config.BeatsAddress = cfg.Beats.Address
	config.BeatsDialTimeout, err = parseOptionalDuration(cfg.Beats.DialTimeout)
	if err != nil {
		err = fmt.Errorf("failed to parse beats dial timeout: %w", err)
		return
	}
	config.BeatsMaxReconnectWait, err = parseOptionalDuration(cfg.Beats.MaxReconnectWait)
	if err != nil {
		err = fmt.Errorf("failed to parse beats reconnect wait: %w", err)
		return
	}

	config.QueueSize = cfg.QueueSize

	// Metric settings
	config.MetricServerEnabled = cfg.Metrics.Enabled
	config.MetricListenAddress = cfg.Metrics.ListenAddress
	return
}

func parseOptionalDuration(raw string) (duration time.Duration, err error) {
	if raw == "" {
		return
	}
	duration, err = time.ParseDuration(raw)
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Network
	if cfg.DestinationPort == 0 {
		cfg.DestinationPort = global.DefaultGraylogPort
	}
	if cfg.SendBuffer < 0 {
		cfg.SendBuffer = global.DefaultSendBuffer
	}

	// Rendering
	if cfg.Facility == "" {
		cfg.Facility = global.DefaultFacility
	}

	// Sources
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = global.DefaultMaxLineSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.JournalState == "" {
		cfg.JournalState = global.DefaultJournalStateFile
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = global.DefaultQueueSize
	}

	// Pacing
	if cfg.MessagesPerSecond > 0 && cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.MessagesPerSecond))
	}

	// Beats
	if cfg.BeatsDialTimeout <= 0 {
		cfg.BeatsDialTimeout = global.DefaultBeatsDial
	}

	// Metrics
	if cfg.MetricListenAddress == "" {
		cfg.MetricListenAddress = global.HTTPListenAddr
	}
}
