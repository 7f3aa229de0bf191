package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// OutputBaseName é o nome base dos arquivos exportados.
const OutputBaseName = "relatorio_limpo"

// Etapas do pipeline, usadas em types.StageError.
const (
	StageSetup      = "setup"
	StageLoad       = "load"
	StageClean      = "clean"
	StageAssertions = "assertions"
	StageSchema     = "schema"
	StageExport     = "export"
	StagePublish    = "publish"
)

// PipelineUseCase orquestra carga, perfil, limpeza, validação e exportação.
type PipelineUseCase struct {
	loader     repository.LoaderRepository
	profiler   repository.ProfilerRepository
	exportRepo repository.ExportRepository
	storage    repository.StorageRepository
	metrics    repository.MetricsRepository
	console    types.ConsoleInterface

	now      func() time.Time
	newRunID func() string
}

// NewPipelineUseCase creates a new pipeline use case.
func NewPipelineUseCase(
	loader repository.LoaderRepository,
	profiler repository.ProfilerRepository,
	exportRepo repository.ExportRepository,
	storage repository.StorageRepository,
	metrics repository.MetricsRepository,
	console types.ConsoleInterface,
) *PipelineUseCase {
	return &PipelineUseCase{
		loader:     loader,
		profiler:   profiler,
		exportRepo: exportRepo,
		storage:    storage,
		metrics:    metrics,
		console:    console,
		now:        time.Now,
		newRunID:   func() string { return uuid.New().String() },
	}
}

// Run executa o pipeline completo. Qualquer falha fatal interrompe a execução e
// é retornada como *types.StageError; nada é exportado após uma falha de validação.
func (uc *PipelineUseCase) Run(ctx context.Context, cfg *types.Config) (summary *entity.RunSummary, err error) {
	summary = &entity.RunSummary{
		RunID:     uc.newRunID(),
		Source:    cfg.InputPath,
		StartedAt: uc.now(),
	}
	defer func() {
		summary.FinishedAt = uc.now()
		summary.Success = err == nil
		uc.recordMetrics(*summary)
	}()

	uc.console.LogInfo("Iniciando pipeline de manipulação de dados (execução %s)...", summary.RunID)
	if cfg.MinPurchaseValue <= 0 {
		uc.console.LogWarning("VALOR_MINIMO_COMPRA=%s permite valores <= 0, que ficam sem categoria_valor e falham na validação.",
			formatAmount(cfg.MinPurchaseValue))
	}

	// Garante diretório de saída antes de qualquer escrita
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return summary, &types.StageError{Stage: StageSetup, Err: fmt.Errorf("error creating output directory '%s': %w", cfg.OutputDir, err)}
	}

	raw, err := uc.loader.Load(ctx, cfg.InputPath)
	if err != nil {
		var loadErr *types.LoadError
		if !errors.As(err, &loadErr) {
			err = &types.LoadError{Source: cfg.InputPath, Err: err}
		}
		uc.console.LogError("Erro ao carregar dados: %v", err)
		return summary, &types.StageError{Stage: StageLoad, Err: err}
	}
	summary.RowsLoaded = raw.Len()
	uc.console.LogInfo("Dados carregados: %s.", raw.Shape())

	uc.generateQualityReport(ctx, raw, cfg.DocsDir, summary.RunID)

	cleaned, report, err := NewCleaner(uc.console, cfg.DateLayouts).Clean(raw, cfg.MinPurchaseValue)
	summary.Cleaning = report
	if err != nil {
		uc.console.LogError("Erro na limpeza: %v", err)
		return summary, &types.StageError{Stage: StageClean, Err: err}
	}

	validator := NewValidator(uc.console)
	if err := validator.CheckInvariants(cleaned, cfg.MinPurchaseValue); err != nil {
		uc.console.LogError("%v", err)
		return summary, &types.StageError{Stage: StageAssertions, Err: err}
	}
	if err := validator.ValidateSchema(cleaned, cfg.MinPurchaseValue); err != nil {
		return summary, &types.StageError{Stage: StageSchema, Err: err}
	}
	uc.console.LogSuccess("Validação de schema concluída com sucesso.")

	files, err := uc.exportAll(cleaned, cfg.OutputDir)
	summary.ExportedFiles = files
	if err != nil {
		return summary, &types.StageError{Stage: StageExport, Err: err}
	}
	summary.RowsExported = cleaned.Len()
	summary.Categories = countCategories(cleaned)
	uc.console.LogInfo("Dados exportados em CSV, Parquet e JSON.")

	if cfg.PublishURI != "" {
		published, err := uc.publish(ctx, files, cfg.PublishURI, summary.RunID)
		summary.Published = published
		if err != nil {
			return summary, &types.StageError{Stage: StagePublish, Err: err}
		}
	}

	uc.displaySummary(summary)
	uc.console.LogSuccess("Pipeline concluído com sucesso!")
	return summary, nil
}

// generateQualityReport é best-effort: falhas são registradas e o pipeline continua.
func (uc *PipelineUseCase) generateQualityReport(ctx context.Context, raw *entity.Table, docsDir, runID string) {
	reportPath, err := uc.profiler.GenerateReport(ctx, raw, docsDir, runID)
	switch {
	case errors.Is(err, types.ErrProfilerUnavailable):
		uc.console.LogWarning("Relatório de qualidade desativado. Relatório não gerado.")
	case err != nil:
		uc.console.LogError("Erro ao gerar relatório: %v", err)
	default:
		uc.console.LogInfo("Relatório de qualidade gerado: %s", reportPath)
	}
}

// exportAll tenta os três formatos e devolve todas as falhas juntas.
// A exportação não é atômica: formatos bem-sucedidos permanecem em disco.
func (uc *PipelineUseCase) exportAll(table *entity.Table, outputDir string) ([]string, error) {
	status := uc.console.Status("Exportando dados...")
	defer status.Stop()

	exporters := []struct {
		format string
		fn     func(*entity.Table, string, string) (string, error)
	}{
		{"CSV", uc.exportRepo.ExportToCSV},
		{"Parquet", uc.exportRepo.ExportToParquet},
		{"JSON", uc.exportRepo.ExportToJSON},
	}

	var files []string
	var errs []error
	for _, exp := range exporters {
		status.Update(fmt.Sprintf("Exportando %s...", exp.format))
		p, err := exp.fn(table, OutputBaseName, outputDir)
		if err != nil {
			uc.console.LogError("Failed to export %s: %s", exp.format, err)
			errs = append(errs, fmt.Errorf("%s: %w", exp.format, err))
			continue
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", exp.format, p)
		files = append(files, p)
	}
	return files, errors.Join(errs...)
}

// publish envia os arquivos exportados para destURI (s3://bucket/prefixo ou gs://bucket/prefixo).
func (uc *PipelineUseCase) publish(ctx context.Context, files []string, destURI, runID string) ([]string, error) {
	metadata := map[string]string{"run-id": runID}
	var published []string
	for _, f := range files {
		target := strings.TrimSuffix(destURI, "/") + "/" + path.Base(filepath.ToSlash(f))
		if err := uc.storage.Upload(ctx, f, target, metadata); err != nil {
			uc.console.LogError("Falha ao publicar %s em %s: %v", f, target, err)
			return published, fmt.Errorf("upload %s: %w", target, err)
		}
		uc.console.LogSuccess("Publicado: %s", target)
		published = append(published, target)
	}
	return published, nil
}

func (uc *PipelineUseCase) recordMetrics(summary entity.RunSummary) {
	if uc.metrics == nil {
		return
	}
	if err := uc.metrics.Record(summary); err != nil {
		uc.console.LogWarning("Não foi possível gravar métricas: %v", err)
	}
}

// displaySummary exibe as contagens da limpeza e a distribuição por categoria.
func (uc *PipelineUseCase) displaySummary(summary *entity.RunSummary) {
	table := uc.console.CreateTable()
	table.AddColumn("Etapa")
	table.AddColumn("Linhas")

	r := summary.Cleaning
	table.AddRow("Carregadas", summary.RowsLoaded)
	table.AddRow("valor_compra inválido", r.InvalidValueRemoved)
	table.AddRow("nome ausente", r.MissingNameRemoved)
	table.AddRow("abaixo do mínimo", r.BelowMinimumRemoved)
	table.AddRow("duplicadas", r.DuplicatesRemoved)
	table.AddRow("datas inválidas (mantidas)", r.InvalidDates)
	table.AddRow("Exportadas", summary.RowsExported)
	uc.console.Print(table.Render())

	bars := make([]types.CategoryBar, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		bars = append(bars, types.CategoryBar{Label: c.Label, Count: c.Count})
	}
	uc.console.DisplayCategoryBars(bars)
}

func countCategories(table *entity.Table) []entity.CategoryCount {
	col, ok := table.Column(entity.ColCategoriaValor)
	if !ok {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range col.Values {
		if s, ok := v.(string); ok {
			counts[s]++
		}
	}
	out := make([]entity.CategoryCount, 0, len(entity.CategoryBins))
	for _, label := range entity.CategoryLevels() {
		out = append(out, entity.CategoryCount{Label: label, Count: counts[label]})
	}
	return out
}
