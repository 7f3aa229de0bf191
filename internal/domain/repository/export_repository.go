package repository

import (
	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

// ExportRepository serializa a tabela validada em arquivos no diretório de saída.
// Cada método retorna o caminho absoluto do arquivo gerado.
type ExportRepository interface {
	ExportToCSV(table *entity.Table, filename string, outputDir string) (string, error)
	ExportToParquet(table *entity.Table, filename string, outputDir string) (string, error)
	ExportToJSON(table *entity.Table, filename string, outputDir string) (string, error)
}
