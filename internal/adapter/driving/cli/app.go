package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diillson/multicloud-finops-go/internal/application/usecase"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
	"github.com/diillson/multicloud-finops-go/pkg/version"
)

// UseCaseFactory cria o caso de uso do dashboard para os argumentos já mesclados. cleanup
// libera o que a factory abriu e pode ser chamado sempre.
type UseCaseFactory func(ctx context.Context, args *types.CLIArgs, cfg *types.Config) (uc *usecase.DashboardUseCase, cleanup func(), err error)

// CLIApp representa a aplicação de linha de comando.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	factory    UseCaseFactory
	version    string
	banner     bool

	// checkUpdates consulta o GitHub por uma versão mais nova em segundo plano.
	checkUpdates bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, factory UseCaseFactory) *CLIApp {
	app := &CLIApp{
		version:      versionStr,
		configRepo:   configRepo,
		factory:      factory,
		banner:       true,
		checkUpdates: true,
	}

	rootCmd := &cobra.Command{
		Use:           "finops",
		Short:         "Multicloud FinOps cost dashboard",
		Long:          "Cost dashboard across cloud providers: month summary, cost series by period and cache sync.",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, (*usecase.DashboardUseCase).RunDashboard)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "Multicloud FinOps version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("source", "s", "", "Cost data source: aws or api (default: aws)")
	flags.String("api-url", "", "Base URL of the cost API (source api)")
	flags.String("api-token", "", "Bearer token for the cost API (or FINOPS_API_TOKEN)")
	flags.StringSliceP("providers", "p", nil, "Providers to report on (comma-separated); AWS profiles for source aws")
	flags.StringP("currency", "u", "", "Display currency, converted with the rates of the config file")
	flags.StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf (default: csv)")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("cache-path", "", "Path of the local history cache (default: user cache dir)")
	flags.String("s3-bucket", "", "Upload exported reports to this S3 bucket")
	flags.String("s3-prefix", "", "Key prefix for uploaded reports")
	flags.Int("concurrency", 0, "How many providers to load in parallel (default: 4)")
	flags.Bool("no-banner", false, "Do not print the welcome banner")

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Show the cost series of one provider for a period",
		Example: `  finops series -p prod --period 60d
  finops series -p prod --period 6m --granularity month
  finops series -p prod --start 2024-01-01 --end 2024-01-31 -n january -y csv,pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, (*usecase.DashboardUseCase).RunSeries)
		},
	}
	seriesCmd.Flags().String("period", "", "Period: 30d, 60d, 120d, 180d, 4m or 6m (default: 30d)")
	seriesCmd.Flags().String("start", "", "Start of a custom range (YYYY-MM-DD)")
	seriesCmd.Flags().String("end", "", "End of a custom range (YYYY-MM-DD, inclusive)")
	seriesCmd.Flags().StringP("granularity", "g", "", "Bucket size: day, week or month (default: day)")
	seriesCmd.MarkFlagsRequiredTogether("start", "end")
	seriesCmd.MarkFlagsMutuallyExclusive("period", "start")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the cached cost data of the source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, (*usecase.DashboardUseCase).RunSync)
		},
	}

	rootCmd.AddCommand(seriesCmd, syncCmd)
	app.rootCmd = rootCmd
	return app
}

// Execute executa a aplicação CLI.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext executa a aplicação CLI com ctx.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs substitui os.Args, usado nos testes.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

func (app *CLIApp) run(cmd *cobra.Command, action func(*usecase.DashboardUseCase, context.Context, *types.CLIArgs) error) error {
	cliArgs, cfg, err := app.prepare(cmd)
	if err != nil {
		return err
	}

	if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner && app.banner {
		displayWelcomeBanner(cmd.OutOrStdout())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if app.checkUpdates {
		go version.CheckLatestVersion(ctx, app.version)
	}

	uc, cleanup, err := app.factory(ctx, cliArgs, cfg)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return err
	}

	return action(uc, ctx, cliArgs)
}

// prepare lê as flags e mescla o arquivo de configuração. As flags têm precedência.
func (app *CLIApp) prepare(cmd *cobra.Command) (*types.CLIArgs, *types.Config, error) {
	cliArgs, err := parseArgs(cmd)
	if err != nil {
		return nil, nil, err
	}

	var cfg *types.Config
	if cliArgs.ConfigFile != "" {
		cfg, err = app.configRepo.LoadConfigFile(cliArgs.ConfigFile)
		if err != nil {
			return nil, nil, err
		}
	}
	types.MergeConfig(cliArgs, cfg)
	cliArgs.Source = strings.ToLower(cliArgs.Source)

	if cliArgs.Dir, err = resolveDir(cliArgs.Dir); err != nil {
		return nil, nil, err
	}
	return cliArgs, cfg, nil
}

// parseArgs converte os argumentos da linha de comando em um CLIArgs.
func parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	getString := func(name string) string {
		v, _ := flags.GetString(name)
		return strings.TrimSpace(v)
	}
	getSlice := func(name string) []string {
		v, _ := flags.GetStringSlice(name)
		return v
	}

	concurrency, _ := flags.GetInt("concurrency")
	if concurrency < 0 {
		return nil, fmt.Errorf("--concurrency must not be negative")
	}

	return &types.CLIArgs{
		ConfigFile:  getString("config-file"),
		Source:      getString("source"),
		APIURL:      getString("api-url"),
		APIToken:    getString("api-token"),
		Providers:   getSlice("providers"),
		Currency:    strings.ToUpper(getString("currency")),
		Period:      getString("period"),
		Start:       getString("start"),
		End:         getString("end"),
		Granularity: strings.ToLower(getString("granularity")),
		ReportName:  getString("report-name"),
		ReportType:  lowerAll(getSlice("report-type")),
		Dir:         getString("dir"),
		CachePath:   getString("cache-path"),
		S3Bucket:    getString("s3-bucket"),
		S3Prefix:    getString("s3-prefix"),
		Concurrency: concurrency,
	}, nil
}

// resolveDir retorna dir como caminho absoluto; vazio usa o diretório atual.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
