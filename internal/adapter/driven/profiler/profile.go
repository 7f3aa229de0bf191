package profiler

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/spf13/cast"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

// ReportTitle é o título do relatório de qualidade.
const ReportTitle = "Relatório de Qualidade dos Dados"

const topValuesLimit = 5

// BuildProfile calcula o perfil de qualidade da tabela bruta. A tabela não é alterada.
func BuildProfile(table *entity.Table, runID string, generatedAt time.Time, dateLayouts []string) entity.QualityProfile {
	profile := entity.QualityProfile{
		Title:       ReportTitle,
		RunID:       runID,
		GeneratedAt: generatedAt,
		Rows:        table.Len(),
		Columns:     table.Width(),
	}

	for _, col := range table.Columns() {
		cp := profileColumn(col, dateLayouts)
		profile.MissingCells += cp.Missing
		profile.ColumnStats = append(profile.ColumnStats, cp)
	}
	if cells := profile.Rows * profile.Columns; cells > 0 {
		profile.MissingPct = percent(profile.MissingCells, cells)
	}
	profile.DuplicateRows = countDuplicateRows(table)
	return profile
}

func profileColumn(col *entity.Column, dateLayouts []string) entity.ColumnProfile {
	cp := entity.ColumnProfile{
		Name:    col.Name,
		Count:   len(col.Values),
		Missing: col.NullCount(),
	}
	if cp.Count > 0 {
		cp.MissingPct = percent(cp.Missing, cp.Count)
	}

	freq := make(map[string]int)
	var numbers []float64
	var dates, present int
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		present++
		s := cast.ToString(v)
		freq[s]++
		if f, err := cast.ToFloat64E(strings.TrimSpace(s)); err == nil && !math.IsNaN(f) {
			numbers = append(numbers, f)
			continue
		}
		if isDate(s, dateLayouts) {
			dates++
		}
	}
	cp.Distinct = len(freq)
	cp.TopValues = topValues(freq, topValuesLimit)

	switch {
	case present == 0:
		cp.InferredType = "vazio"
	case len(numbers)*2 >= present:
		cp.InferredType = "numérico"
		cp.InvalidValues = present - len(numbers)
		cp.Numeric = numericStats(col.Name, numbers)
	case dates*2 >= present:
		cp.InferredType = "data"
		cp.InvalidValues = present - dates
	default:
		cp.InferredType = "texto"
	}
	return cp
}

// numericStats usa uma série do gota para as estatísticas descritivas.
func numericStats(name string, values []float64) *entity.NumericStats {
	s := series.New(values, series.Float, name)
	stats := &entity.NumericStats{
		Mean:   s.Mean(),
		StdDev: s.StdDev(),
		Min:    s.Min(),
		Median: s.Median(),
		Max:    s.Max(),
	}
	// desvio padrão amostral de um único valor é indefinido
	if math.IsNaN(stats.StdDev) {
		stats.StdDev = 0
	}
	return stats
}

func topValues(freq map[string]int, limit int) []entity.ValueFrequency {
	out := make([]entity.ValueFrequency, 0, len(freq))
	for v, c := range freq {
		out = append(out, entity.ValueFrequency{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func countDuplicateRows(table *entity.Table) int {
	seen := make(map[string]struct{}, table.Len())
	dups := 0
	for i := 0; i < table.Len(); i++ {
		var sb strings.Builder
		for _, v := range table.Row(i) {
			if v == nil {
				sb.WriteString("-1:")
				continue
			}
			s := cast.ToString(v)
			sb.WriteString(strconv.Itoa(len(s)))
			sb.WriteByte(':')
			sb.WriteString(s)
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func isDate(s string, layouts []string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func percent(part, total int) float64 {
	return float64(part) * 100 / float64(total)
}
