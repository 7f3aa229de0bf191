package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

func cleanedTable(t *testing.T) *entity.Table {
	t.Helper()
	d1 := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)

	table := entity.NewTable(3)
	cols := []*entity.Column{
		{Name: "nome", Kind: entity.KindText, Values: []any{"Bruno", "Carla", "Davi, o \"Grande\""}},
		{Name: "valor_compra", Kind: entity.KindNumber, Values: []any{150.0, 250.5, 99.0}},
		{Name: "data_compra", Kind: entity.KindDate, Values: []any{d1, nil, d2}},
		{Name: "ano", Kind: entity.KindInteger, Values: []any{int64(2023), nil, int64(2023)}},
		{Name: "mes", Kind: entity.KindInteger, Values: []any{int64(2), nil, int64(3)}},
		{Name: "categoria_valor", Kind: entity.KindCategory, Levels: entity.CategoryLevels(), Values: []any{"Médio", "Alto", "Baixo"}},
	}
	for _, c := range cols {
		require.NoError(t, table.AddColumn(c))
	}
	return table
}

func TestExportToCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	repo := NewExportRepository()

	path, err := repo.ExportToCSV(cleanedTable(t), "relatorio_limpo", dir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "relatorio_limpo.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "nome,valor_compra,data_compra,ano,mes,categoria_valor", lines[0])
	assert.Equal(t, "Bruno,150,2023-02-01,2023,2,Médio", lines[1])
	assert.Equal(t, "Carla,250.5,,,,Alto", lines[2])
	assert.Equal(t, `"Davi, o ""Grande""",99,2023-03-10,2023,3,Baixo`, lines[3])
}

func TestExportToCSV_DateTimeKeepsTime(t *testing.T) {
	table := entity.NewTable(2)
	require.NoError(t, table.AddColumn(&entity.Column{Name: "data_compra", Kind: entity.KindDate, Values: []any{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 2, 14, 5, 9, 0, time.UTC),
	}}))

	path, err := NewExportRepository().ExportToCSV(table, "datas", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data_compra\n2023-01-01 00:00:00\n2023-01-02 14:05:09\n", string(data))
}

func TestExport_OffsetDatesWrittenAsUTC(t *testing.T) {
	brt := time.FixedZone("BRT", -3*3600)
	instant := time.Date(2023, 1, 31, 23, 0, 0, 0, brt)
	table := entity.NewTable(1)
	require.NoError(t, table.AddColumn(&entity.Column{Name: "data_compra", Kind: entity.KindDate, Values: []any{instant}}))
	repo := NewExportRepository()
	dir := t.TempDir()

	csvPath, err := repo.ExportToCSV(table, "datas", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "data_compra\n2023-02-01 02:00:00\n", string(data))

	jsonPath, err := repo.ExportToJSON(table, "datas", dir)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, `[{"data_compra":"2023-02-01T02:00:00.000"}]`, strings.TrimSpace(string(data)))

	parquetPath, err := repo.ExportToParquet(table, "datas", dir)
	require.NoError(t, err)
	f, err := os.Open(parquetPath)
	require.NoError(t, err)
	defer f.Close()

	tbl, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer tbl.Release()

	datas := tbl.Column(0).Data().Chunk(0).(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(time.Date(2023, 2, 1, 2, 0, 0, 0, time.UTC).UnixMilli()), datas.Value(0))
}

func TestExportToJSON(t *testing.T) {
	dir := t.TempDir()

	path, err := NewExportRepository().ExportToJSON(cleanedTable(t), "relatorio_limpo", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "relatorio_limpo.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)

	assert.Equal(t, "Bruno", records[0]["nome"])
	assert.Equal(t, 150.0, records[0]["valor_compra"])
	assert.Equal(t, "2023-02-01T00:00:00.000", records[0]["data_compra"])
	assert.Equal(t, 2023.0, records[0]["ano"])
	assert.Nil(t, records[1]["data_compra"])
	assert.Nil(t, records[1]["mes"])
	assert.Contains(t, records[1], "mes", "null fields are written, not omitted")

	// Ordem das chaves segue a ordem das colunas
	first := string(data)[:strings.Index(string(data), "}")]
	assert.Less(t, strings.Index(first, `"nome"`), strings.Index(first, `"valor_compra"`))
	assert.Less(t, strings.Index(first, `"mes"`), strings.Index(first, `"categoria_valor"`))
}

func TestExportToJSON_EmptyTable(t *testing.T) {
	empty := cleanedTable(t).Filter(func(int) bool { return false })

	path, err := NewExportRepository().ExportToJSON(empty, "vazio", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestExportToParquet(t *testing.T) {
	dir := t.TempDir()

	path, err := NewExportRepository().ExportToParquet(cleanedTable(t), "relatorio_limpo", dir)
	require.NoError(t, err)
	assert.Equal(t, "relatorio_limpo.parquet", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tbl, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer tbl.Release()

	assert.EqualValues(t, 3, tbl.NumRows())
	schema := tbl.Schema()
	require.Equal(t, 6, schema.NumFields())
	assert.Equal(t, "nome", schema.Field(0).Name)
	assert.Equal(t, arrow.STRING, schema.Field(0).Type.ID())
	assert.Equal(t, arrow.FLOAT64, schema.Field(1).Type.ID())
	assert.Equal(t, arrow.TIMESTAMP, schema.Field(2).Type.ID())
	assert.Equal(t, arrow.INT64, schema.Field(3).Type.ID())
	assert.Equal(t, arrow.STRING, schema.Field(5).Type.ID())

	valores := tbl.Column(1).Data().Chunk(0).(*array.Float64)
	assert.Equal(t, 250.5, valores.Value(1))

	datas := tbl.Column(2).Data().Chunk(0).(*array.Timestamp)
	assert.True(t, datas.IsNull(1))
	assert.Equal(t, arrow.Timestamp(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli()), datas.Value(0))

	categorias := tbl.Column(5).Data().Chunk(0).(*array.String)
	assert.Equal(t, "Médio", categorias.Value(0))
}

func TestGenerateFilename(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	name, err := generateFilename("relatorio_limpo", dir, "csv")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "relatorio_limpo.csv"), name)
	assert.DirExists(t, dir)
}
