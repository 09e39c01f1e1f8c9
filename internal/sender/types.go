package sender

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"gelfsend/internal/externalio/beats"
	"gelfsend/internal/ingest"
	"gelfsend/internal/metrics"
	"gelfsend/internal/network"
	"gelfsend/pkg/gelf"

	"golang.org/x/time/rate"
)

type JSONConfig struct {
	Network struct {
		Address    string `json:"address" mapstructure:"address"`
		Port       int    `json:"port" mapstructure:"port"`
		ChunkSize  int    `json:"chunkSize,omitempty" mapstructure:"chunkSize"`
		SendBuffer int    `json:"sendBuffer,omitempty" mapstructure:"sendBuffer"`
	} `json:"network" mapstructure:"network"`
	Message struct {
		Compression      string            `json:"compression" mapstructure:"compression"`
		CompressionLevel int               `json:"compressionLevel,omitempty" mapstructure:"compressionLevel"`
		StrictEscaping   bool              `json:"strictEscaping" mapstructure:"strictEscaping"`
		Facility         string            `json:"facility" mapstructure:"facility"`
		DefaultLevel     string            `json:"defaultLevel" mapstructure:"defaultLevel"`
		Hostname         string            `json:"hostname,omitempty" mapstructure:"hostname"`
		Fields           map[string]string `json:"fields,omitempty" mapstructure:"fields"`
	} `json:"message" mapstructure:"message"`
	Inputs struct {
		FilePaths    []string `json:"filePaths,omitempty" mapstructure:"filePaths"`
		Follow       bool     `json:"follow" mapstructure:"follow"`
		Stdin        bool     `json:"stdin,omitempty" mapstructure:"stdin"`
		MaxLineSize  int      `json:"maxLineSize,omitempty" mapstructure:"maxLineSize"`
		PollInterval string   `json:"pollInterval,omitempty" mapstructure:"pollInterval"`
		Journal      bool     `json:"journal,omitempty" mapstructure:"journal"`
		JournalState string   `json:"journalStateFile,omitempty" mapstructure:"journalStateFile"`
	} `json:"inputs" mapstructure:"inputs"`
	RateLimit struct {
		MessagesPerSecond float64 `json:"messagesPerSecond" mapstructure:"messagesPerSecond"`
		Burst             int     `json:"burst,omitempty" mapstructure:"burst"`
	} `json:"rateLimit" mapstructure:"rateLimit"`
	Beats struct {
		Address          string `json:"address,omitempty" mapstructure:"address"`
		DialTimeout      string `json:"dialTimeout,omitempty" mapstructure:"dialTimeout"`
		MaxReconnectWait string `json:"maxReconnectWait,omitempty" mapstructure:"maxReconnectWait"`
	} `json:"beats" mapstructure:"beats"`
	Metrics struct {
		Enabled       bool   `json:"enabled" mapstructure:"enabled"`
		ListenAddress string `json:"listenAddress,omitempty" mapstructure:"listenAddress"`
	} `json:"metrics" mapstructure:"metrics"`
	QueueSize int `json:"queueSize,omitempty" mapstructure:"queueSize"`
}

type Config struct {
	// Destination
	DestinationAddress string
	DestinationPort    int
	ChunkSize          int // 0 derives from path MTU
	SendBuffer         int

	// Rendering
	Compression      string
	CompressionLevel int
	StrictEscaping   bool
	Facility         string
	DefaultLevel     gelf.Level
	Hostname         string
	ExtraFields      map[string]string

	// Source settings
	FileSourcePaths []string
	FollowFiles     bool
	StdinEnabled    bool
	MaxLineSize     int
	PollInterval    time.Duration
	JournalEnabled  bool
	JournalState    string

	// Pacing (0 disables)
	MessagesPerSecond float64
	Burst             int

	// Beats mirror
	BeatsAddress          string
	BeatsDialTimeout      time.Duration
	BeatsMaxReconnectWait time.Duration

	QueueSize int

	// Metrics
	MetricServerEnabled bool
	MetricListenAddress string
}

type Daemon struct {
	cfg        Config
	ConfigPath string // source for reloads

	mu      sync.Mutex
	running bool

	ctx          context.Context // readers
	cancel       context.CancelFunc
	workerCtx    context.Context
	workerCancel context.CancelFunc
	records      chan ingest.Record
	done         chan struct{}

	// Pipeline outputs
	transport  *network.UDPTransport
	chunkSize  int
	compressor gelf.Compressor
	limiter    *rate.Limiter
	beats      *beats.OutModule
	defaults   ingest.Defaults

	stdin         io.Reader
	sourceMetrics map[string]*ingest.MetricStorage

	Metrics      *metrics.Registry
	MetricServer *http.Server
}

// Transport wrapper tallying what one message put on the wire
type countingTransport struct {
	inner  gelf.Transport
	chunks int
	bytes  int
}
