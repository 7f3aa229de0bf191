package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// fakeConsole guarda as mensagens registradas para as asserções.
type fakeConsole struct {
	infos    []string
	warnings []string
	errors   []string
	success  []string
	bars     []types.CategoryBar
}

func (c *fakeConsole) Print(a ...interface{})                 {}
func (c *fakeConsole) Printf(format string, a ...interface{}) {}
func (c *fakeConsole) Println(a ...interface{})               {}

func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.success = append(c.success, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) Status(message string) types.StatusHandle { return noopStatus{} }

func (c *fakeConsole) CreateTable() types.TableInterface { return &fakeTable{} }

func (c *fakeConsole) DisplayCategoryBars(counts []types.CategoryBar) {
	c.bars = counts
}

func (c *fakeConsole) hasInfo(substr string) bool    { return containsAny(c.infos, substr) }
func (c *fakeConsole) hasWarning(substr string) bool { return containsAny(c.warnings, substr) }
func (c *fakeConsole) hasError(substr string) bool   { return containsAny(c.errors, substr) }

func containsAny(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type noopStatus struct{}

func (noopStatus) Update(string) {}
func (noopStatus) Stop()         {}

type fakeTable struct{ rows int }

func (t *fakeTable) AddColumn(name string, options ...interface{}) {}
func (t *fakeTable) AddRow(cells ...interface{})                   { t.rows++ }
func (t *fakeTable) Render() string                                { return "" }

// rawTable monta uma tabela bruta com colunas de texto.
func rawTable(t *testing.T, columns []string, rows ...[]any) *entity.Table {
	t.Helper()
	table := entity.NewTable(len(rows))
	for j, name := range columns {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[j]
		}
		require.NoError(t, table.AddColumn(&entity.Column{Name: name, Kind: entity.KindText, Values: values}))
	}
	return table
}

func columnValues(t *testing.T, table *entity.Table, name string) []any {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "column %s missing", name)
	return col.Values
}

// MockLoader simula o LoaderRepository.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, source string) (*entity.Table, error) {
	args := m.Called(ctx, source)
	table, _ := args.Get(0).(*entity.Table)
	return table, args.Error(1)
}

// MockProfiler simula o ProfilerRepository.
type MockProfiler struct {
	mock.Mock
}

func (m *MockProfiler) GenerateReport(ctx context.Context, table *entity.Table, outputDir string, runID string) (string, error) {
	args := m.Called(ctx, table, outputDir, runID)
	return args.String(0), args.Error(1)
}

// MockExporter simula o ExportRepository.
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportToCSV(table *entity.Table, filename, outputDir string) (string, error) {
	args := m.Called(table, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) ExportToParquet(table *entity.Table, filename, outputDir string) (string, error) {
	args := m.Called(table, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) ExportToJSON(table *entity.Table, filename, outputDir string) (string, error) {
	args := m.Called(table, filename, outputDir)
	return args.String(0), args.Error(1)
}

// MockStorage simula o StorageRepository.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	args := m.Called(ctx, uri)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStorage) Upload(ctx context.Context, localPath, uri string, metadata map[string]string) error {
	args := m.Called(ctx, localPath, uri, metadata)
	return args.Error(0)
}

// MockMetrics simula o MetricsRepository.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) Record(summary entity.RunSummary) error {
	args := m.Called(summary)
	return args.Error(0)
}
