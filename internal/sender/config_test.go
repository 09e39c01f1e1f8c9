package sender

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gelfsend/internal/global"
	"gelfsend/pkg/gelf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"network": {"address": "graylog.example.net", "port": 12202, "chunkSize": 1420},
	"message": {
		"compression": "gzip",
		"strictEscaping": true,
		"facility": "edge",
		"defaultLevel": "notice",
		"fields": {"env": "prod"}
	},
	"inputs": {"filePaths": ["/var/log/syslog"], "follow": false, "pollInterval": "1s"},
	"rateLimit": {"messagesPerSecond": 50},
	"beats": {"address": "logstash:5044", "dialTimeout": "2s"},
	"metrics": {"enabled": true}
}`

func writeConfig(t *testing.T, content string) (path string) {
	path = filepath.Join(t.TempDir(), "gelfsend.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return
}

func TestLoadConfig(t *testing.T) {
	jsonCfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg, err := jsonCfg.NewDaemonConf()
	require.NoError(t, err)

	assert.Equal(t, "graylog.example.net", cfg.DestinationAddress)
	assert.Equal(t, 12202, cfg.DestinationPort)
	assert.Equal(t, 1420, cfg.ChunkSize)
	assert.Equal(t, "gzip", cfg.Compression)
	assert.True(t, cfg.StrictEscaping)
	assert.Equal(t, "edge", cfg.Facility)
	assert.Equal(t, gelf.Notice, cfg.DefaultLevel)
	assert.Equal(t, map[string]string{"env": "prod"}, cfg.ExtraFields)
	assert.Equal(t, []string{"/var/log/syslog"}, cfg.FileSourcePaths)
	assert.False(t, cfg.FollowFiles)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 50.0, cfg.MessagesPerSecond)
	assert.Equal(t, "logstash:5044", cfg.BeatsAddress)
	assert.Equal(t, 2*time.Second, cfg.BeatsDialTimeout)
	assert.Equal(t, 30*time.Second, cfg.BeatsMaxReconnectWait)
	assert.True(t, cfg.MetricServerEnabled)
	assert.Equal(t, global.HTTPListenAddr, cfg.MetricListenAddress)
	assert.Equal(t, global.DefaultQueueSize, cfg.QueueSize)
}

func TestLoadConfigDefaults(t *testing.T) {
	jsonCfg, err := LoadConfig(writeConfig(t, `{"network": {"address": "10.0.0.5"}}`))
	require.NoError(t, err)

	cfg, err := jsonCfg.NewDaemonConf()
	require.NoError(t, err)

	assert.Equal(t, global.DefaultGraylogPort, cfg.DestinationPort)
	assert.Equal(t, 0, cfg.ChunkSize)
	assert.Equal(t, "none", cfg.Compression)
	assert.Equal(t, gelf.Info, cfg.DefaultLevel)
	assert.Equal(t, global.DefaultFacility, cfg.Facility)
	assert.True(t, cfg.FollowFiles)
	assert.Equal(t, global.DefaultMaxLineSize, cfg.MaxLineSize)
	assert.False(t, cfg.JournalEnabled)
	assert.Equal(t, global.DefaultJournalStateFile, cfg.JournalState)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("GELFSEND_NETWORK_ADDRESS", "192.0.2.10")
	t.Setenv("GELFSEND_NETWORK_PORT", "5555")
	t.Setenv("GELFSEND_MESSAGE_COMPRESSION", "zlib")
	t.Setenv("GELFSEND_INPUTS_STDIN", "true")
	t.Setenv("GELFSEND_INPUTS_JOURNAL", "true")

	jsonCfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg, err := jsonCfg.NewDaemonConf()
	require.NoError(t, err)

	assert.Equal(t, "192.0.2.10", cfg.DestinationAddress)
	assert.Equal(t, 5555, cfg.DestinationPort)
	assert.Equal(t, "zlib", cfg.Compression)
	assert.True(t, cfg.StdinEnabled)
	assert.True(t, cfg.JournalEnabled)

	// untouched keys still come from the file
	assert.Equal(t, 1420, cfg.ChunkSize)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("GELFSEND_NETWORK_ADDRESS", "127.0.0.1")

	jsonCfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", jsonCfg.Network.Address)
	assert.Equal(t, global.DefaultGraylogPort, jsonCfg.Network.Port)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `{"network": `))
	assert.Error(t, err)
}

func TestNewDaemonConfErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *JSONConfig)
	}{
		{"bad level", func(cfg *JSONConfig) { cfg.Message.DefaultLevel = "loud" }},
		{"bad poll interval", func(cfg *JSONConfig) { cfg.Inputs.PollInterval = "soon" }},
		{"bad dial timeout", func(cfg *JSONConfig) { cfg.Beats.DialTimeout = "3 seconds" }},
		{"bad reconnect wait", func(cfg *JSONConfig) { cfg.Beats.MaxReconnectWait = "x" }},
		{"negative rate", func(cfg *JSONConfig) { cfg.RateLimit.MessagesPerSecond = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg JSONConfig
			tt.mutate(&cfg)
			_, err := cfg.NewDaemonConf()
			assert.Error(t, err)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := Config{MessagesPerSecond: 20.5}
	cfg.setDefaults()

	assert.Equal(t, global.DefaultGraylogPort, cfg.DestinationPort)
	assert.Equal(t, global.DefaultFacility, cfg.Facility)
	assert.Equal(t, global.DefaultMaxLineSize, cfg.MaxLineSize)
	assert.Equal(t, global.DefaultQueueSize, cfg.QueueSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, global.DefaultBeatsDial, cfg.BeatsDialTimeout)
	assert.Equal(t, global.HTTPListenAddr, cfg.MetricListenAddress)
	assert.Equal(t, global.DefaultJournalStateFile, cfg.JournalState)
}
