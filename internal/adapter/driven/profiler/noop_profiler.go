package profiler

import (
	"context"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// NoopProfiler é usado quando o relatório de qualidade está desativado.
type NoopProfiler struct{}

// NewNoopProfiler cria um profiler que nunca gera relatório.
func NewNoopProfiler() repository.ProfilerRepository {
	return NoopProfiler{}
}

// GenerateReport sempre retorna types.ErrProfilerUnavailable.
func (NoopProfiler) GenerateReport(_ context.Context, _ *entity.Table, _ string, _ string) (string, error) {
	return "", types.ErrProfilerUnavailable
}
