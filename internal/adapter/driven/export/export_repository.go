package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	jsoniter "github.com/json-iterator/go"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	jsonDateLayout = "2006-01-02T15:04:05.000"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	mem memory.Allocator
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{mem: memory.NewGoAllocator()}
}

// ExportToCSV grava a tabela com cabeçalho e sem índice. Células nulas ficam vazias.
func (r *ExportRepositoryImpl) ExportToCSV(table *entity.Table, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Names()); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	columns := table.Columns()
	dateOnly := make([]bool, len(columns))
	for j, col := range columns {
		dateOnly[j] = col.Kind == entity.KindDate && allMidnight(col.Values)
	}

	record := make([]string, len(columns))
	for i := 0; i < table.Len(); i++ {
		for j, col := range columns {
			record[j] = formatCSVCell(col.Values[i], dateOnly[j])
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportToJSON grava um array de objetos, um por linha, na ordem das colunas.
// Datas em ISO-8601 e nulos como null.
func (r *ExportRepositoryImpl) ExportToJSON(table *entity.Table, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	stream := json.BorrowStream(file)
	defer json.ReturnStream(stream)

	columns := table.Columns()
	stream.WriteArrayStart()
	for i := 0; i < table.Len(); i++ {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for j, col := range columns {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(col.Name)
			writeJSONValue(stream, col.Values[i])
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()

	if stream.Error != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", stream.Error)
	}
	if err := stream.Flush(); err != nil {
		return "", fmt.Errorf("error writing JSON file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportToParquet grava a tabela em Parquet (Snappy), com o schema Arrow embutido.
func (r *ExportRepositoryImpl) ExportToParquet(table *entity.Table, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "parquet")
	if err != nil {
		return "", err
	}

	schema := arrowSchema(table)
	record, err := r.buildRecord(schema, table)
	if err != nil {
		return "", err
	}
	defer record.Release()

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating Parquet file: %w", err)
	}
	defer file.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	writer, err := pqarrow.NewFileWriter(schema, file, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return "", fmt.Errorf("error creating Parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return "", fmt.Errorf("error writing Parquet data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error closing Parquet writer: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// arrowSchema mapeia o tipo de cada coluna para o tipo Arrow correspondente.
func arrowSchema(table *entity.Table) *arrow.Schema {
	fields := make([]arrow.Field, 0, table.Width())
	for _, col := range table.Columns() {
		fields = append(fields, arrow.Field{Name: col.Name, Type: arrowType(col.Kind), Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(kind entity.Kind) arrow.DataType {
	switch kind {
	case entity.KindNumber:
		return arrow.PrimitiveTypes.Float64
	case entity.KindInteger:
		return arrow.PrimitiveTypes.Int64
	case entity.KindDate:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

func (r *ExportRepositoryImpl) buildRecord(schema *arrow.Schema, table *entity.Table) (arrow.Record, error) {
	b := array.NewRecordBuilder(r.mem, schema)
	defer b.Release()

	for j, col := range table.Columns() {
		switch fb := b.Field(j).(type) {
		case *array.Float64Builder:
			for _, v := range col.Values {
				if f, ok := v.(float64); ok {
					fb.Append(f)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Int64Builder:
			for _, v := range col.Values {
				if n, ok := v.(int64); ok {
					fb.Append(n)
				} else {
					fb.AppendNull()
				}
			}
		case *array.TimestampBuilder:
			for _, v := range col.Values {
				if t, ok := v.(time.Time); ok {
					fb.Append(arrow.Timestamp(t.UnixMilli()))
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			for _, v := range col.Values {
				if v == nil {
					fb.AppendNull()
					continue
				}
				fb.Append(fmt.Sprint(v))
			}
		default:
			return nil, fmt.Errorf("unsupported column type for %s: %s", col.Name, col.Kind)
		}
	}
	return b.NewRecord(), nil
}

func formatCSVCell(v any, dateOnly bool) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		if dateOnly {
			return x.UTC().Format(dateLayout)
		}
		return x.UTC().Format(dateTimeLayout)
	default:
		return fmt.Sprint(x)
	}
}

func writeJSONValue(stream *jsoniter.Stream, v any) {
	switch x := v.(type) {
	case nil:
		stream.WriteNil()
	case string:
		stream.WriteString(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			stream.WriteNil()
			return
		}
		stream.WriteFloat64(x)
	case int64:
		stream.WriteInt64(x)
	case time.Time:
		stream.WriteString(x.UTC().Format(jsonDateLayout))
	default:
		stream.WriteVal(x)
	}
}

// allMidnight indica se todas as datas não nulas caem à meia-noite (UTC).
func allMidnight(values []any) bool {
	for _, v := range values {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		t = t.UTC()
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			return false
		}
	}
	return true
}

// generateFilename monta o caminho do arquivo e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", base, ext)), nil
}
