package usecase

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// Cleaner aplica as etapas de limpeza e transformação à tabela bruta de compras.
type Cleaner struct {
	console     types.ConsoleInterface
	dateLayouts []string
}

// NewCleaner cria um Cleaner. Sem layouts informados, usa types.DefaultDateLayouts.
func NewCleaner(console types.ConsoleInterface, dateLayouts []string) *Cleaner {
	if len(dateLayouts) == 0 {
		dateLayouts = types.DefaultDateLayouts
	}
	return &Cleaner{
		console:     console,
		dateLayouts: dateLayouts,
	}
}

// Clean executa todas as etapas de limpeza sobre uma cópia da tabela e retorna a
// tabela limpa com as contagens de cada etapa. Problemas de qualidade nos dados
// nunca geram erro; apenas colunas obrigatórias ausentes geram *types.SchemaError.
func (c *Cleaner) Clean(raw *entity.Table, minValue float64) (*entity.Table, entity.CleaningReport, error) {
	c.console.LogInfo("Iniciando limpeza dos dados...")

	table := raw.Clone()
	report := entity.CleaningReport{RowsIn: table.Len()}

	// 1. Padroniza nomes de colunas
	if err := normalizeColumnNames(table); err != nil {
		return nil, report, err
	}
	for _, name := range entity.RequiredColumns {
		if _, ok := table.Column(name); !ok {
			return nil, report, &types.SchemaError{Column: name}
		}
	}

	// 2. Converte valor_compra para número e remove os inválidos
	valor, _ := table.Column(entity.ColValorCompra)
	numbers := make([]any, table.Len())
	for i, v := range valor.Values {
		if f, ok := toNumber(v); ok {
			numbers[i] = f
		}
	}
	if err := table.SetColumn(&entity.Column{Name: entity.ColValorCompra, Kind: entity.KindNumber, Values: numbers}); err != nil {
		return nil, report, err
	}

	before := table.Len()
	table = table.Filter(func(i int) bool { return numbers[i] != nil })
	report.InvalidValueRemoved = before - table.Len()
	c.console.LogInfo("Removidas %d linhas com valor_compra inválido.", report.InvalidValueRemoved)

	// 3. Remove linhas com nome ausente
	nome, _ := table.Column(entity.ColNome)
	before = table.Len()
	table = table.Filter(func(i int) bool { return nome.Values[i] != nil })
	report.MissingNameRemoved = before - table.Len()
	c.console.LogInfo("Removidas %d linhas com nome ausente.", report.MissingNameRemoved)

	// 4. Regra de negócio: valor mínimo
	valor, _ = table.Column(entity.ColValorCompra)
	before = table.Len()
	table = table.Filter(func(i int) bool { return valor.Values[i].(float64) >= minValue })
	report.BelowMinimumRemoved = before - table.Len()
	c.console.LogInfo("Removidas %d linhas com valor_compra < R$%s", report.BelowMinimumRemoved, formatAmount(minValue))

	// 5. Datas inválidas viram nulas, mas as linhas são mantidas
	data, _ := table.Column(entity.ColDataCompra)
	dates := make([]any, table.Len())
	for i, v := range data.Values {
		if t, ok := parseDate(v, c.dateLayouts); ok {
			dates[i] = t
		} else {
			report.InvalidDates++
		}
	}
	if err := table.SetColumn(&entity.Column{Name: entity.ColDataCompra, Kind: entity.KindDate, Values: dates}); err != nil {
		return nil, report, err
	}
	if report.InvalidDates > 0 {
		c.console.LogWarning("%d datas inválidas. Serão mantidas como nulas.", report.InvalidDates)
	}

	// 6. Remove duplicatas exatas
	before = table.Len()
	table = dropDuplicates(table)
	report.DuplicatesRemoved = before - table.Len()
	c.console.LogInfo("Removidas %d linhas duplicadas.", report.DuplicatesRemoved)

	// 7. Colunas derivadas da data
	data, _ = table.Column(entity.ColDataCompra)
	years := make([]any, table.Len())
	months := make([]any, table.Len())
	for i, v := range data.Values {
		if t, ok := v.(time.Time); ok {
			years[i] = int64(t.Year())
			months[i] = int64(t.Month())
		}
	}
	if err := table.SetColumn(&entity.Column{Name: entity.ColAno, Kind: entity.KindInteger, Values: years}); err != nil {
		return nil, report, err
	}
	if err := table.SetColumn(&entity.Column{Name: entity.ColMes, Kind: entity.KindInteger, Values: months}); err != nil {
		return nil, report, err
	}

	// 8. Categoria por faixa de valor
	valor, _ = table.Column(entity.ColValorCompra)
	categories := make([]any, table.Len())
	for i, v := range valor.Values {
		if label, ok := entity.Categorize(v.(float64)); ok {
			categories[i] = label
		}
	}
	err := table.SetColumn(&entity.Column{
		Name:   entity.ColCategoriaValor,
		Kind:   entity.KindCategory,
		Levels: entity.CategoryLevels(),
		Values: categories,
	})
	if err != nil {
		return nil, report, err
	}

	// 9. Tipos finais
	nome, _ = table.Column(entity.ColNome)
	names := make([]any, table.Len())
	for i, v := range nome.Values {
		names[i] = cast.ToString(v)
	}
	if err := table.SetColumn(&entity.Column{Name: entity.ColNome, Kind: entity.KindText, Values: names}); err != nil {
		return nil, report, err
	}

	report.RowsOut = table.Len()
	c.console.LogInfo("Limpeza concluída. Dataset final: %d linhas.", report.RowsOut)
	return table, report, nil
}

// normalizeColumnNames aplica trim e minúsculas aos cabeçalhos.
func normalizeColumnNames(table *entity.Table) error {
	table.Rename(func(name string) string {
		return strings.ToLower(strings.TrimSpace(name))
	})

	seen := make(map[string]bool, table.Width())
	for _, name := range table.Names() {
		if seen[name] {
			return &types.SchemaError{Column: name, Reason: "appears more than once after header normalization"}
		}
		seen[name] = true
	}
	return nil
}

// toNumber converte um valor para float64. Valores não conversíveis e NaN não têm valor.
// Textos numéricos fora da faixa de float64 viram ±Inf.
func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return f, true
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// parseDate interpreta v como data usando os layouts na ordem informada.
func parseDate(v any, layouts []string) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				// datas com fuso são normalizadas para UTC
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// dropDuplicates mantém apenas a primeira ocorrência de cada linha idêntica.
func dropDuplicates(table *entity.Table) *entity.Table {
	seen := make(map[string]struct{}, table.Len())
	keep := make([]bool, table.Len())
	for i := 0; i < table.Len(); i++ {
		key := rowKey(table.Row(i))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}
	return table.Filter(func(i int) bool { return keep[i] })
}

// rowKey codifica a linha com prefixo de tamanho por célula; nil é igual a nil.
func rowKey(row []any) string {
	var sb strings.Builder
	for _, v := range row {
		enc := cellKey(v)
		sb.WriteString(strconv.Itoa(len(enc)))
		sb.WriteByte(':')
		sb.WriteString(enc)
	}
	return sb.String()
}

func cellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "n"
	case string:
		return "s" + x
	case float64:
		if x == 0 {
			x = 0
		}
		return "f" + strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return "i" + strconv.FormatInt(x, 10)
	case time.Time:
		return "t" + strconv.FormatInt(x.UnixNano(), 10)
	default:
		return "v" + cast.ToString(x)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
