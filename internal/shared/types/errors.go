package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
)

var (
	ErrProfilerUnavailable = errors.New("quality profiler is not available")
	ErrUnsupportedScheme   = errors.New("unsupported storage scheme")
	ErrEmptyInput          = errors.New("input has no header row")
)

// LoadError indica que a entrada não pôde ser lida ou interpretada.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError indica um problema estrutural na entrada, como uma coluna obrigatória ausente.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("required column %q is missing", e.Column)
	}
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}

// InvariantError indica que a saída da limpeza violou uma regra que ela deveria garantir.
type InvariantError struct {
	Invariant string
	Message   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Invariant, e.Message)
}

// ValidationError agrega as violações encontradas na validação estrutural.
type ValidationError struct {
	Violations []entity.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", v.Column, v.Check, v.Message))
	}
	return fmt.Sprintf("schema validation failed (%d violations): %s", len(e.Violations), strings.Join(parts, "; "))
}

// Columns retorna as colunas com violações, sem repetição.
func (e *ValidationError) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, v := range e.Violations {
		if !seen[v.Column] {
			seen[v.Column] = true
			cols = append(cols, v.Column)
		}
	}
	return cols
}

// StageError identifica a etapa do pipeline em que um erro fatal ocorreu.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
