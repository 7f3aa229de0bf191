package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

type pipelineMocks struct {
	loader   *MockLoader
	profiler *MockProfiler
	exporter *MockExporter
	storage  *MockStorage
	metrics  *MockMetrics
	console  *fakeConsole
}

func newTestPipeline(t *testing.T) (*PipelineUseCase, *pipelineMocks) {
	t.Helper()
	m := &pipelineMocks{
		loader:   new(MockLoader),
		profiler: new(MockProfiler),
		exporter: new(MockExporter),
		storage:  new(MockStorage),
		metrics:  new(MockMetrics),
		console:  &fakeConsole{},
	}
	uc := NewPipelineUseCase(m.loader, m.profiler, m.exporter, m.storage, m.metrics, m.console)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return start }
	uc.newRunID = func() string { return "run-123" }
	return uc, m
}

func testConfig(t *testing.T) *types.Config {
	t.Helper()
	dir := t.TempDir()
	return &types.Config{
		MinPurchaseValue: 10,
		InputPath:        "relatorio.csv",
		OutputDir:        filepath.Join(dir, "output"),
		DocsDir:          filepath.Join(dir, "docs"),
	}
}

func sampleRaw(t *testing.T) *entity.Table {
	return rawTable(t, purchaseHeader,
		[]any{"Ana", "5.0", "2023-01-15"},
		[]any{"Bruno", "150.0", "2023-02-01"},
		[]any{"Carla", "250.0", "2023-03-10"},
		[]any{nil, "80.0", "2023-03-11"},
	)
}

func expectExports(m *pipelineMocks, dir string) {
	m.exporter.On("ExportToCSV", mock.Anything, OutputBaseName, dir).Return(filepath.Join(dir, "relatorio_limpo.csv"), nil).Once()
	m.exporter.On("ExportToParquet", mock.Anything, OutputBaseName, dir).Return(filepath.Join(dir, "relatorio_limpo.parquet"), nil).Once()
	m.exporter.On("ExportToJSON", mock.Anything, OutputBaseName, dir).Return(filepath.Join(dir, "relatorio_limpo.json"), nil).Once()
}

func TestPipelineUseCase_Run_Success(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)
	ctx := context.Background()

	m.loader.On("Load", ctx, cfg.InputPath).Return(sampleRaw(t), nil)
	m.profiler.On("GenerateReport", ctx, mock.Anything, cfg.DocsDir, "run-123").Return("/docs/relatorio_qualidade.html", nil)
	expectExports(m, cfg.OutputDir)
	m.metrics.On("Record", mock.MatchedBy(func(s entity.RunSummary) bool {
		return s.Success && s.RowsExported == 2
	})).Return(nil).Once()

	summary, err := uc.Run(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-123", summary.RunID)
	assert.Equal(t, 4, summary.RowsLoaded)
	assert.Equal(t, 2, summary.RowsExported)
	assert.Equal(t, 1, summary.Cleaning.BelowMinimumRemoved)
	assert.Equal(t, 1, summary.Cleaning.MissingNameRemoved)
	assert.Len(t, summary.ExportedFiles, 3)
	assert.Empty(t, summary.Published)
	assert.True(t, summary.Success)
	assert.Equal(t, []entity.CategoryCount{
		{Label: entity.CategoriaBaixo, Count: 0},
		{Label: entity.CategoriaMedio, Count: 1},
		{Label: entity.CategoriaAlto, Count: 1},
	}, summary.Categories)

	assert.DirExists(t, cfg.OutputDir)
	assert.Len(t, m.console.bars, 3)
	assert.True(t, m.console.hasInfo("Relatório de qualidade gerado"))

	m.loader.AssertExpectations(t)
	m.profiler.AssertExpectations(t)
	m.exporter.AssertExpectations(t)
	m.metrics.AssertExpectations(t)
	m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipelineUseCase_Run_LoadError(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)

	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(nil, errors.New("no such file"))
	m.metrics.On("Record", mock.MatchedBy(func(s entity.RunSummary) bool { return !s.Success })).Return(nil)

	_, err := uc.Run(context.Background(), cfg)

	var stageErr *types.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageLoad, stageErr.Stage)

	var loadErr *types.LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.True(t, m.console.hasError("Erro ao carregar dados"))

	m.profiler.AssertNotCalled(t, "GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.metrics.AssertExpectations(t)
}

func TestPipelineUseCase_Run_ProfilerFailureIsNotFatal(t *testing.T) {
	tests := []struct {
		name       string
		profileErr error
		check      func(c *fakeConsole) bool
	}{
		{"disabled", types.ErrProfilerUnavailable, func(c *fakeConsole) bool { return c.hasWarning("Relatório de qualidade desativado") }},
		{"failure", errors.New("disk full"), func(c *fakeConsole) bool { return c.hasError("Erro ao gerar relatório") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newTestPipeline(t)
			cfg := testConfig(t)

			m.loader.On("Load", mock.Anything, cfg.InputPath).Return(sampleRaw(t), nil)
			m.profiler.On("GenerateReport", mock.Anything, mock.Anything, cfg.DocsDir, "run-123").Return("", tt.profileErr)
			expectExports(m, cfg.OutputDir)
			m.metrics.On("Record", mock.Anything).Return(nil)

			_, err := uc.Run(context.Background(), cfg)
			require.NoError(t, err)
			assert.True(t, tt.check(m.console))
		})
	}
}

func TestPipelineUseCase_Run_MissingColumn(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)

	raw := rawTable(t, []string{"nome", "valor_compra"}, []any{"Ana", "50"})
	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(raw, nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	m.metrics.On("Record", mock.Anything).Return(nil)

	_, err := uc.Run(context.Background(), cfg)

	var stageErr *types.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageClean, stageErr.Stage)
	var schemaErr *types.SchemaError
	assert.True(t, errors.As(err, &schemaErr))

	m.exporter.AssertNotCalled(t, "ExportToCSV", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipelineUseCase_Run_SchemaFailureSkipsExport(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)
	cfg.MinPurchaseValue = 0

	// Com mínimo 0, um valor 0 passa pela limpeza mas fica sem categoria
	raw := rawTable(t, purchaseHeader,
		[]any{"Ana", "0", "2023-01-15"},
		[]any{"Bruno", "150", "2023-02-01"},
	)
	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(raw, nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	m.metrics.On("Record", mock.MatchedBy(func(s entity.RunSummary) bool {
		return !s.Success && s.RowsExported == 0
	})).Return(nil)

	summary, err := uc.Run(context.Background(), cfg)

	var stageErr *types.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageSchema, stageErr.Stage)
	var vErr *types.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Columns(), entity.ColCategoriaValor)

	assert.True(t, m.console.hasWarning("VALOR_MINIMO_COMPRA=0.00"))
	assert.Empty(t, summary.ExportedFiles)
	m.exporter.AssertNotCalled(t, "ExportToCSV", mock.Anything, mock.Anything, mock.Anything)
	m.exporter.AssertNotCalled(t, "ExportToParquet", mock.Anything, mock.Anything, mock.Anything)
	m.exporter.AssertNotCalled(t, "ExportToJSON", mock.Anything, mock.Anything, mock.Anything)
	m.metrics.AssertExpectations(t)
}

func TestPipelineUseCase_Run_ExportErrorsAreJoined(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)
	dir := cfg.OutputDir

	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(sampleRaw(t), nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	m.exporter.On("ExportToCSV", mock.Anything, OutputBaseName, dir).Return(filepath.Join(dir, "relatorio_limpo.csv"), nil)
	m.exporter.On("ExportToParquet", mock.Anything, OutputBaseName, dir).Return("", errors.New("parquet boom"))
	m.exporter.On("ExportToJSON", mock.Anything, OutputBaseName, dir).Return("", errors.New("json boom"))
	m.metrics.On("Record", mock.Anything).Return(nil)

	summary, err := uc.Run(context.Background(), cfg)

	var stageErr *types.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageExport, stageErr.Stage)
	assert.Contains(t, err.Error(), "Parquet: parquet boom")
	assert.Contains(t, err.Error(), "JSON: json boom")
	assert.Equal(t, []string{filepath.Join(dir, "relatorio_limpo.csv")}, summary.ExportedFiles)
	m.exporter.AssertExpectations(t)
}

func TestPipelineUseCase_Run_Publish(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)
	cfg.PublishURI = "s3://bucket/relatorios/"

	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(sampleRaw(t), nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	expectExports(m, cfg.OutputDir)
	metadata := map[string]string{"run-id": "run-123"}
	for _, name := range []string{"relatorio_limpo.csv", "relatorio_limpo.parquet", "relatorio_limpo.json"} {
		m.storage.On("Upload", mock.Anything, filepath.Join(cfg.OutputDir, name), "s3://bucket/relatorios/"+name, metadata).Return(nil).Once()
	}
	m.metrics.On("Record", mock.Anything).Return(nil)

	summary, err := uc.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s3://bucket/relatorios/relatorio_limpo.csv",
		"s3://bucket/relatorios/relatorio_limpo.parquet",
		"s3://bucket/relatorios/relatorio_limpo.json",
	}, summary.Published)
	m.storage.AssertExpectations(t)
}

func TestPipelineUseCase_Run_PublishFailure(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)
	cfg.PublishURI = "gs://bucket"

	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(sampleRaw(t), nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	expectExports(m, cfg.OutputDir)
	m.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied")).Once()
	m.metrics.On("Record", mock.MatchedBy(func(s entity.RunSummary) bool { return !s.Success })).Return(nil)

	summary, err := uc.Run(context.Background(), cfg)

	var stageErr *types.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StagePublish, stageErr.Stage)
	assert.Empty(t, summary.Published)
	assert.Len(t, summary.ExportedFiles, 3, "local exports are kept")
	m.storage.AssertNumberOfCalls(t, "Upload", 1)
}

func TestPipelineUseCase_Run_MetricsFailureIsLogged(t *testing.T) {
	uc, m := newTestPipeline(t)
	cfg := testConfig(t)

	m.loader.On("Load", mock.Anything, cfg.InputPath).Return(sampleRaw(t), nil)
	m.profiler.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", types.ErrProfilerUnavailable)
	expectExports(m, cfg.OutputDir)
	m.metrics.On("Record", mock.Anything).Return(errors.New("read-only"))

	_, err := uc.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, m.console.hasWarning("Não foi possível gravar métricas"))
}
