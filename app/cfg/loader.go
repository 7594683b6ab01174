package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Mode string `long:"mode" env:"MODE" default:"standalone" choice:"standalone" choice:"server" description:"Run a single monitor from RSS_URL/SPREADSHEET_ID or serve every active monitor"`

	// Standalone monitor
	RSSURL        string `long:"rss-url" env:"RSS_URL" description:"Feed URL to monitor in standalone mode"`
	SpreadsheetID string `long:"spreadsheet-id" env:"SPREADSHEET_ID" description:"Target spreadsheet ID in standalone mode"`

	// Credentials
	CredentialsMode   string `long:"credentials-mode" env:"CREDENTIALS_MODE" default:"interactive" choice:"interactive" choice:"environment" description:"How Google credentials are obtained"`
	GoogleCredentials string `long:"google-credentials" env:"GOOGLE_CREDENTIALS" description:"Authorized user credentials as JSON or base64 encoded JSON (environment mode)"`
	TokenFile         string `long:"token-file" env:"TOKEN_FILE" default:"token.json" description:"Cached OAuth token file (interactive mode)"`
	ClientSecretsFile string `long:"client-secrets" env:"CLIENT_SECRETS_FILE" default:"credentials.json" description:"OAuth client secrets file (interactive mode)"`
	ExportCredentials string `long:"export-credentials" choice:"json" choice:"base64" description:"Print the cached token in GOOGLE_CREDENTIALS form and exit"`
	Headless          bool   `long:"headless" env:"HEADLESS" description:"Fail instead of opening the browser consent flow when no token is cached"`

	// Server mode
	DBPath       string `long:"db-path" env:"DB_PATH" default:"rss-sheets.db" description:"SQLite database path for monitor records"`
	FeedsDir     string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing monitor definition files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Polling
	FetchTimeout    int  `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	SinkTimeout     int  `long:"sink-timeout" env:"SINK_TIMEOUT" default:"30" description:"Spreadsheet call timeout in seconds"`
	SuccessInterval int  `long:"success-interval" env:"SUCCESS_INTERVAL" default:"300" description:"Sleep after a successful cycle in seconds"`
	ErrorInterval   int  `long:"error-interval" env:"ERROR_INTERVAL" default:"60" description:"Sleep after a failed cycle in seconds"`
	SeedFromSink    bool `long:"seed-from-sink" env:"SEED_FROM_SINK" description:"Mark links already present in the spreadsheet as seen before the first cycle"`
	LogCapacity     int  `long:"log-capacity" env:"LOG_CAPACITY" default:"500" description:"Number of activity log entries kept in memory"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Sheets/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses the given arguments together with the environment.
// It returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Mode:              raw.Mode,
		RSSURL:            raw.RSSURL,
		SpreadsheetID:     raw.SpreadsheetID,
		CredentialsMode:   raw.CredentialsMode,
		GoogleCredentials: raw.GoogleCredentials,
		TokenFile:         raw.TokenFile,
		ClientSecretsFile: raw.ClientSecretsFile,
		ExportCredentials: raw.ExportCredentials,
		Headless:          raw.Headless,
		DBPath:            raw.DBPath,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		FetchTimeout:      time.Duration(raw.FetchTimeout) * time.Second,
		SinkTimeout:       time.Duration(raw.SinkTimeout) * time.Second,
		SuccessInterval:   time.Duration(raw.SuccessInterval) * time.Second,
		ErrorInterval:     time.Duration(raw.ErrorInterval) * time.Second,
		SeedFromSink:      raw.SeedFromSink,
		LogCapacity:       raw.LogCapacity,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positive := map[string]time.Duration{
		"fetch timeout":    cfg.FetchTimeout,
		"sink timeout":     cfg.SinkTimeout,
		"success interval": cfg.SuccessInterval,
		"error interval":   cfg.ErrorInterval,
	}

	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if cfg.LogCapacity <= 0 {
		return fmt.Errorf("log capacity must be positive")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
