package repository

import (
	"context"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

// ProfilerRepository gera o relatório de qualidade da tabela bruta.
// Implementações indisponíveis retornam types.ErrProfilerUnavailable.
type ProfilerRepository interface {
	GenerateReport(ctx context.Context, table *entity.Table, outputDir string, runID string) (string, error)
}
