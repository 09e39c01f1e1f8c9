package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgBaseName string = "gelfsend"
	ProgVersion  string = "v0.3.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/gelfsend.json"
	EnvPrefix         string = "GELFSEND"

	// Graylog GELF UDP input default
	DefaultGraylogPort int = 12201

	DefaultQueueSize   int           = 1024
	DefaultMaxLineSize int           = 1 << 20
	DefaultSendBuffer  int           = 0 // kernel default
	DefaultBeatsDial   time.Duration = 3 * time.Second

	// Journal cursor kept between runs
	DefaultJournalStateFile string = "/var/lib/gelfsend/journal.cursor"

	// Parsing defaults
	DefaultFacility string = "gelfsend"

	SendShutdownTimeout time.Duration = 5 * time.Second

	// Metric HTTP server
	HTTPListenAddr   string        = "localhost:22201"
	MetricsPath      string        = "/metrics"
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second

	// Namespacing Name Components
	NSTest    string = "Test"
	NSSend    string = "Sender"
	NSForward string = "Forward"
	NSWorker  string = "Worker"
	NSmIngest string = "Ingest"
	NSoStdIn  string = "Stdin"
	NSoJrnl   string = "Journal"
	NSoBeats  string = "Beats"
	NSMetric  string = "Metrics"
)

// Standard user fields attached to forwarded records
const (
	CFappname   string = "application_name"
	CFprocessid string = "process_id"
	CFfacility  string = "facility"
	CFsource    string = "source"
)
