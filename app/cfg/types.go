package cfg

import "time"

const (
	ModeStandalone = "standalone"
	ModeServer     = "server"

	CredentialsInteractive = "interactive"
	CredentialsEnvironment = "environment"
)

type Cfg struct {
	// Run mode
	Mode string

	// Standalone monitor
	RSSURL        string
	SpreadsheetID string

	// Credentials
	CredentialsMode   string
	GoogleCredentials string
	TokenFile         string
	ClientSecretsFile string
	ExportCredentials string
	Headless          bool

	// Server mode
	DBPath       string
	FeedsDir     string
	Port         string
	APIAccessKey string

	// Polling
	FetchTimeout    time.Duration
	SinkTimeout     time.Duration
	SuccessInterval time.Duration
	ErrorInterval   time.Duration
	SeedFromSink    bool
	LogCapacity     int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
