package repository

import "github.com/diillson/relatorio-pipeline-go/internal/domain/entity"

// MetricsRepository registra as métricas de uma execução.
type MetricsRepository interface {
	Record(summary entity.RunSummary) error
}
