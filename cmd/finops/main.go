package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/api"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/aws"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/cache"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/config"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/export"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driven/storage"
	"github.com/diillson/multicloud-finops-go/internal/adapter/driving/cli"
	"github.com/diillson/multicloud-finops-go/internal/application/usecase"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
	"github.com/diillson/multicloud-finops-go/pkg/console"
	"github.com/diillson/multicloud-finops-go/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), buildUseCase)

	// Executa o aplicativo
	if err := app.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildUseCase monta os adaptadores escolhidos em args e cria o caso de uso do dashboard.
func buildUseCase(ctx context.Context, args *types.CLIArgs, cfg *types.Config) (*usecase.DashboardUseCase, func(), error) {
	config.ApplyEnv(args)
	if cfg == nil {
		cfg = &types.Config{}
	}
	consoleImpl := console.NewConsole()

	costRepo, err := costRepository(args, cfg)
	if err != nil {
		return nil, nil, err
	}

	// O cache histórico é opcional: sem ele o snapshot continua funcionando.
	var historyCache repository.HistoryCache
	cleanup := func() {}
	cachePath := args.CachePath
	if cachePath == "" {
		cachePath, err = cache.DefaultPath()
	}
	if err == nil {
		var opened *cache.HistoryCacheImpl
		if opened, err = cache.Open(cachePath); err == nil {
			historyCache = opened
			cleanup = func() { _ = opened.Close() }
		}
	}
	if err != nil {
		consoleImpl.LogWarning("History cache disabled: %v", err)
	}

	var uploader repository.ReportUploader
	if args.S3Bucket != "" {
		profile := ""
		if args.Source == aws.ProviderType && len(args.Providers) > 0 {
			profile = args.Providers[0]
		}
		s3Uploader, err := storage.NewS3UploaderFromProfile(ctx, profile, args.S3Bucket, args.S3Prefix)
		if err != nil {
			return nil, cleanup, err
		}
		uploader = s3Uploader
	}

	converter := service.NewCurrencyConverter(cfg.BaseCurrency, cfg.Rates, consoleImpl)
	snapshots := usecase.NewSnapshotService(costRepo, historyCache, consoleImpl, args.Concurrency)
	loader := usecase.NewSeriesLoader(costRepo, consoleImpl)

	uc := usecase.NewDashboardUseCase(
		costRepo,
		snapshots,
		loader,
		export.NewExportRepository(),
		uploader,
		converter,
		consoleImpl,
	)
	return uc, cleanup, nil
}

func costRepository(args *types.CLIArgs, cfg *types.Config) (repository.CostRepository, error) {
	switch args.Source {
	case aws.ProviderType:
		return aws.NewAWSRepository(), nil
	case "api":
		if args.APIURL == "" {
			return nil, fmt.Errorf("source api requires --api-url or %s", config.EnvAPIURL)
		}
		timeout := cfg.HTTPTimeoutSeconds
		if timeout <= 0 {
			timeout = types.DefaultHTTPTimeout
		}
		client := api.NewClient(args.APIURL, args.APIToken, time.Duration(timeout)*time.Second)
		return api.NewAPIRepository(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedSource, args.Source)
	}
}
