package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile  string
	Source      string
	APIURL      string
	APIToken    string
	Providers   []string
	Currency    string
	Period      string
	Start       string
	End         string
	Granularity string
	ReportName  string
	ReportType  []string
	Dir         string
	CachePath   string
	S3Bucket    string
	S3Prefix    string
	Concurrency int
}
