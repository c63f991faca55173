package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string // connection string for the database
	EnableDB          bool   // if true, laps are stored in the database
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, e.g. "*:* -debug:pgx"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry (host:port or stdout)
	ProfilingPort     int    // port for profiling
	Port              int    // UDP port for incoming game telemetry
	SampleBuffer      int    // capacity of the sample channel between listener and processor
	AutoSaveFolder    string // folder for auto saved laps, empty disables auto save
	WrapFrom          int    // previous distance above this may start a lap on wrap
	WrapTo            int    // current distance below this may start a lap on wrap
	JitterTolerance   int    // max backward step in meters that is silently ignored
	ProgressEvery     int    // log progress every n samples (0 disables)
	NatsURL           string // NATS server url, empty disables the NATS sink
	NatsSubject       string // subject prefix for published laps
	OutDir            string // output directory for rendered charts
	Query             string // JSONPath expression used by inspect
)
