package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
)

const namespace = "relatorio_pipeline"

// Motivos de remoção usados no rótulo "motivo".
const (
	ReasonInvalidValue = "valor_invalido"
	ReasonMissingName  = "nome_ausente"
	ReasonBelowMinimum = "abaixo_minimo"
	ReasonDuplicate    = "duplicada"
)

// TextfileRepository grava as métricas da execução no formato de textfile do Prometheus
// (node_exporter textfile collector). Com caminho vazio nada é gravado.
type TextfileRepository struct {
	path string
}

// NewTextfileRepository cria o repositório de métricas.
func NewTextfileRepository(path string) repository.MetricsRepository {
	return &TextfileRepository{path: path}
}

// Record grava um snapshot das métricas da execução.
func (r *TextfileRepository) Record(summary entity.RunSummary) error {
	if r.path == "" {
		return nil
	}

	reg := prometheus.NewRegistry()

	rowsLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rows_loaded",
		Help:      "Linhas lidas da entrada.",
	})
	rowsRemoved := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rows_removed",
		Help:      "Linhas removidas na limpeza, por motivo.",
	}, []string{"motivo"})
	invalidDates := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "invalid_dates",
		Help:      "Datas inválidas mantidas como nulas.",
	})
	rowsExported := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rows_exported",
		Help:      "Linhas exportadas.",
	})
	categoryRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "category_rows",
		Help:      "Linhas exportadas por categoria_valor.",
	}, []string{"categoria"})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "duration_seconds",
		Help:      "Duração da execução.",
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_success",
		Help:      "1 se a última execução terminou com sucesso.",
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Momento da última execução bem-sucedida.",
	})

	reg.MustRegister(rowsLoaded, rowsRemoved, invalidDates, rowsExported, categoryRows, duration, success)

	c := summary.Cleaning
	rowsLoaded.Set(float64(summary.RowsLoaded))
	rowsRemoved.WithLabelValues(ReasonInvalidValue).Set(float64(c.InvalidValueRemoved))
	rowsRemoved.WithLabelValues(ReasonMissingName).Set(float64(c.MissingNameRemoved))
	rowsRemoved.WithLabelValues(ReasonBelowMinimum).Set(float64(c.BelowMinimumRemoved))
	rowsRemoved.WithLabelValues(ReasonDuplicate).Set(float64(c.DuplicatesRemoved))
	invalidDates.Set(float64(c.InvalidDates))
	rowsExported.Set(float64(summary.RowsExported))
	for _, cat := range summary.Categories {
		categoryRows.WithLabelValues(cat.Label).Set(float64(cat.Count))
	}
	if !summary.FinishedAt.IsZero() {
		duration.Set(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}
	if summary.Success {
		success.Set(1)
		reg.MustRegister(lastSuccess)
		lastSuccess.Set(float64(summary.FinishedAt.Unix()))
	} else if ts, ok := r.previousLastSuccess(); ok {
		// execução com falha mantém o último sucesso registrado
		reg.MustRegister(lastSuccess)
		lastSuccess.Set(ts)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating metrics directory '%s': %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(r.path, reg); err != nil {
		return fmt.Errorf("error writing metrics textfile: %w", err)
	}
	return nil
}

// previousLastSuccess lê last_success_timestamp_seconds do textfile existente, se houver.
func (r *TextfileRepository) previousLastSuccess() (float64, bool) {
	f, err := os.Open(r.path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return 0, false
	}
	family, ok := families[namespace+"_last_success_timestamp_seconds"]
	if !ok || len(family.GetMetric()) == 0 {
		return 0, false
	}
	return family.GetMetric()[0].GetGauge().GetValue(), true
}
