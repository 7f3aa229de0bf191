package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/config"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/export"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/loader"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/metrics"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/profiler"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driven/storage"
	"github.com/diillson/relatorio-pipeline-go/internal/adapter/driving/cli"
	"github.com/diillson/relatorio-pipeline-go/internal/application/usecase"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
	"github.com/diillson/relatorio-pipeline-go/pkg/console"
)

func main() {
	// Inicializa os repositórios que não dependem da configuração
	consoleImpl := console.NewConsole()
	configRepo := config.NewConfigRepository()
	storageRepo := storage.NewStorageRepository()
	defer storageRepo.Close()

	loadConfig := func() (*types.Config, error) {
		return config.LoadPipelineConfig(configRepo, consoleImpl)
	}

	buildUseCase := func(cfg *types.Config) (*usecase.PipelineUseCase, error) {
		csvLoader, err := loader.NewCSVLoader(storageRepo, cfg.InputEncoding, cfg.DelimiterRune())
		if err != nil {
			return nil, err
		}

		var profilerRepo repository.ProfilerRepository = profiler.NewNoopProfiler()
		if cfg.QualityReport {
			profilerRepo = profiler.NewHTMLProfiler(cfg.DateLayouts, true)
		}

		return usecase.NewPipelineUseCase(
			csvLoader,
			profilerRepo,
			export.NewExportRepository(),
			storageRepo,
			metrics.NewTextfileRepository(cfg.MetricsPath),
			consoleImpl,
		), nil
	}

	app := cli.NewCLIApp(loadConfig, buildUseCase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Execute(ctx)
	stop()
	if err != nil {
		storageRepo.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
