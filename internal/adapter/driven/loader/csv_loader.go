package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// NAValues são os marcadores tratados como "sem valor" na leitura, os mesmos reconhecidos pelo pandas.
var NAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// CSVLoader lê arquivos delimitados locais ou remotos (s3://, gs://).
type CSVLoader struct {
	storage   repository.StorageRepository
	decoder   *encoding.Decoder
	delimiter rune
}

// NewCSVLoader cria um CSVLoader para a codificação e o delimitador informados.
func NewCSVLoader(storage repository.StorageRepository, encodingName string, delimiter rune) (*CSVLoader, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVLoader{storage: storage, decoder: dec, delimiter: delimiter}, nil
}

// decoderFor resolve o nome da codificação de entrada. UTF-8 aceita BOM opcional.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return &encoding.Decoder{Transformer: unicode.BOMOverride(unicode.UTF8.NewDecoder())}, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported input encoding: %s", name)
	}
}

// Load lê a fonte e devolve uma tabela com todas as colunas como texto.
func (l *CSVLoader) Load(ctx context.Context, source string) (*entity.Table, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &types.LoadError{Source: source, Err: err}
	}
	defer rc.Close()

	table, err := l.parse(rc)
	if err != nil {
		return nil, &types.LoadError{Source: source, Err: err}
	}
	return table, nil
}

func (l *CSVLoader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isRemote(source) {
		if l.storage == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedScheme, source)
		}
		data, err := l.storage.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return os.Open(source)
}

func (l *CSVLoader) parse(r io.Reader) (*entity.Table, error) {
	reader := csv.NewReader(transform.NewReader(r, l.decoder))
	reader.Comma = l.delimiter

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, types.ErrEmptyInput
	}

	header := records[0]
	if len(records) == 1 {
		table := entity.NewTable(0)
		for _, name := range header {
			if err := table.AddColumn(&entity.Column{Name: name, Kind: entity.KindText, Values: []any{}}); err != nil {
				return nil, err
			}
		}
		return table, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NAValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("error building frame: %w", df.Err)
	}

	return fromDataFrame(df, header)
}

// fromDataFrame converte o frame em tabela, mantendo os cabeçalhos originais
// (o gota renomeia cabeçalhos vazios ou repetidos).
func fromDataFrame(df dataframe.DataFrame, header []string) (*entity.Table, error) {
	rows, cols := df.Dims()
	if cols != len(header) {
		return nil, fmt.Errorf("frame has %d columns, header has %d", cols, len(header))
	}

	table := entity.NewTable(rows)
	for j := 0; j < cols; j++ {
		values := make([]any, rows)
		for i := 0; i < rows; i++ {
			elem := df.Elem(i, j)
			if elem.IsNA() {
				continue
			}
			values[i] = elem.String()
		}
		if err := table.AddColumn(&entity.Column{Name: header[j], Kind: entity.KindText, Values: values}); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "s3://") || strings.HasPrefix(source, "gs://")
}
