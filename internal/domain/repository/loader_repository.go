package repository

import (
	"context"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

// LoaderRepository lê a entrada delimitada para uma tabela em memória.
// Falhas são retornadas como *types.LoadError.
type LoaderRepository interface {
	Load(ctx context.Context, source string) (*entity.Table, error)
}
