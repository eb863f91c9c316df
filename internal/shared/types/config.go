package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Source             string             `json:"source" yaml:"source" toml:"source"`
	Providers          []string           `json:"providers" yaml:"providers" toml:"providers"`
	Profiles           []string           `json:"profiles" yaml:"profiles" toml:"profiles"`
	APIURL             string             `json:"api_url" yaml:"api_url" toml:"api_url"`
	APIToken           string             `json:"api_token" yaml:"api_token" toml:"api_token"`
	BaseCurrency       string             `json:"base_currency" yaml:"base_currency" toml:"base_currency"`
	Currency           string             `json:"currency" yaml:"currency" toml:"currency"`
	Rates              map[string]float64 `json:"rates" yaml:"rates" toml:"rates"`
	Period             string             `json:"period" yaml:"period" toml:"period"`
	Granularity        string             `json:"granularity" yaml:"granularity" toml:"granularity"`
	CachePath          string             `json:"cache_path" yaml:"cache_path" toml:"cache_path"`
	ReportName         string             `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType         []string           `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                string             `json:"dir" yaml:"dir" toml:"dir"`
	S3Bucket           string             `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Prefix           string             `json:"s3_prefix" yaml:"s3_prefix" toml:"s3_prefix"`
	Concurrency        int                `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	HTTPTimeoutSeconds int                `json:"http_timeout_seconds" yaml:"http_timeout_seconds" toml:"http_timeout_seconds"`
}

// Defaults used when neither the flags nor the config file set a value.
const (
	DefaultSource       = "aws"
	DefaultBaseCurrency = "USD"
	DefaultPeriod       = "30d"
	DefaultConcurrency  = 4
	DefaultHTTPTimeout  = 30
)

// MergeConfig fills every field of args still at its zero value from cfg, then applies
// defaults. Flags always win over the file.
func MergeConfig(args *CLIArgs, cfg *Config) {
	if cfg != nil {
		if args.Source == "" {
			args.Source = cfg.Source
		}
		if len(args.Providers) == 0 {
			args.Providers = cfg.Providers
		}
		if len(args.Providers) == 0 {
			args.Providers = cfg.Profiles
		}
		if args.APIURL == "" {
			args.APIURL = cfg.APIURL
		}
		if args.APIToken == "" {
			args.APIToken = cfg.APIToken
		}
		if args.Currency == "" {
			args.Currency = cfg.Currency
		}
		if args.Period == "" && args.Start == "" {
			args.Period = cfg.Period
		}
		if args.Granularity == "" {
			args.Granularity = cfg.Granularity
		}
		if args.CachePath == "" {
			args.CachePath = cfg.CachePath
		}
		if args.ReportName == "" {
			args.ReportName = cfg.ReportName
		}
		if len(args.ReportType) == 0 {
			args.ReportType = cfg.ReportType
		}
		if args.Dir == "" {
			args.Dir = cfg.Dir
		}
		if args.S3Bucket == "" {
			args.S3Bucket = cfg.S3Bucket
		}
		if args.S3Prefix == "" {
			args.S3Prefix = cfg.S3Prefix
		}
		if args.Concurrency == 0 {
			args.Concurrency = cfg.Concurrency
		}
	}

	if args.Source == "" {
		args.Source = DefaultSource
	}
	if args.Period == "" && args.Start == "" {
		args.Period = DefaultPeriod
	}
	if len(args.ReportType) == 0 {
		args.ReportType = []string{"csv"}
	}
	if args.Concurrency <= 0 {
		args.Concurrency = DefaultConcurrency
	}
}
