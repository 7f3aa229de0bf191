package usecase

import (
	"fmt"
	"time"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// ValueCheck é um predicado aplicado a cada valor não nulo de uma coluna.
type ValueCheck struct {
	Name        string
	Description string
	Fn          func(v any) bool
}

// ColumnRule declara tipo, nulabilidade e predicados esperados para uma coluna.
type ColumnRule struct {
	Name     string
	Kind     entity.Kind
	Nullable bool
	Checks   []ValueCheck
}

// PurchaseSchema é o schema estrutural da tabela de compras limpa.
func PurchaseSchema(minValue float64) []ColumnRule {
	return []ColumnRule{
		{Name: entity.ColNome, Kind: entity.KindText},
		{
			Name: entity.ColValorCompra,
			Kind: entity.KindNumber,
			Checks: []ValueCheck{
				greaterOrEqual(minValue),
			},
		},
		{Name: entity.ColDataCompra, Kind: entity.KindDate, Nullable: true},
		{Name: entity.ColAno, Kind: entity.KindInteger, Nullable: true},
		{
			Name:     entity.ColMes,
			Kind:     entity.KindInteger,
			Nullable: true,
			Checks: []ValueCheck{
				inRange(1, 12),
			},
		},
		{
			Name: entity.ColCategoriaValor,
			Kind: entity.KindCategory,
			Checks: []ValueCheck{
				isIn(entity.CategoryLevels()),
			},
		},
	}
}

func greaterOrEqual(min float64) ValueCheck {
	return ValueCheck{
		Name:        "greater_than_or_equal_to",
		Description: fmt.Sprintf(">= %s", formatAmount(min)),
		Fn: func(v any) bool {
			f, ok := v.(float64)
			return ok && f >= min
		},
	}
}

func inRange(lo, hi int64) ValueCheck {
	return ValueCheck{
		Name:        "in_range",
		Description: fmt.Sprintf("between %d and %d", lo, hi),
		Fn: func(v any) bool {
			n, ok := v.(int64)
			return ok && n >= lo && n <= hi
		},
	}
}

func isIn(allowed []string) ValueCheck {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return ValueCheck{
		Name:        "isin",
		Description: fmt.Sprintf("one of %v", allowed),
		Fn: func(v any) bool {
			s, ok := v.(string)
			return ok && set[s]
		},
	}
}

// Validator verifica a tabela limpa antes da exportação.
type Validator struct {
	console types.ConsoleInterface
}

// NewValidator cria um Validator.
func NewValidator(console types.ConsoleInterface) *Validator {
	return &Validator{console: console}
}

// CheckInvariants revalida as regras de negócio sem depender da lógica de limpeza.
// Retorna *types.InvariantError na primeira regra violada.
func (v *Validator) CheckInvariants(table *entity.Table, minValue float64) error {
	valor, ok := table.Column(entity.ColValorCompra)
	if !ok {
		return &types.InvariantError{Invariant: "valor_minimo", Message: "coluna valor_compra ausente após limpeza"}
	}
	for i, val := range valor.Values {
		f, isNum := val.(float64)
		if !isNum || f < minValue {
			return &types.InvariantError{
				Invariant: "valor_minimo",
				Message:   fmt.Sprintf("Valor abaixo do mínimo encontrado após limpeza! (linha %d: %v)", i, val),
			}
		}
	}

	nome, ok := table.Column(entity.ColNome)
	if !ok {
		return &types.InvariantError{Invariant: "nome_nao_nulo", Message: "coluna nome ausente após limpeza"}
	}
	if n := nome.NullCount(); n > 0 {
		return &types.InvariantError{
			Invariant: "nome_nao_nulo",
			Message:   fmt.Sprintf("Nomes nulos não devem existir! (%d encontrados)", n),
		}
	}
	return nil
}

// ValidateSchema confere cada coluna contra PurchaseSchema e a consistência entre
// data_compra e as colunas derivadas. Todas as violações são reunidas em um
// único *types.ValidationError.
func (v *Validator) ValidateSchema(table *entity.Table, minValue float64) error {
	var violations []entity.Violation

	for _, rule := range PurchaseSchema(minValue) {
		violations = append(violations, checkColumn(table, rule)...)
	}
	violations = append(violations, checkDerivedDates(table)...)

	if len(violations) > 0 {
		for _, vi := range violations {
			v.console.LogError("Schema: coluna %s falhou em %s (%d ocorrências): %s", vi.Column, vi.Check, vi.FailureCount, vi.Message)
		}
		return &types.ValidationError{Violations: violations}
	}
	return nil
}

func checkColumn(table *entity.Table, rule ColumnRule) []entity.Violation {
	col, ok := table.Column(rule.Name)
	if !ok {
		return []entity.Violation{{
			Column:       rule.Name,
			Check:        "column_in_dataframe",
			Message:      "column is missing",
			FailureCount: 1,
		}}
	}

	if col.Kind != rule.Kind {
		return []entity.Violation{{
			Column:       rule.Name,
			Check:        "dtype",
			Message:      fmt.Sprintf("expected %s, got %s", rule.Kind, col.Kind),
			FailureCount: 1,
		}}
	}

	var violations []entity.Violation

	var badType int
	var badSample any
	for _, val := range col.Values {
		if val != nil && !valueMatchesKind(val, rule.Kind) {
			if badType == 0 {
				badSample = val
			}
			badType++
		}
	}
	if badType > 0 {
		violations = append(violations, entity.Violation{
			Column:       rule.Name,
			Check:        "dtype",
			Message:      fmt.Sprintf("values are not %s", rule.Kind),
			FailureCount: badType,
			Sample:       fmt.Sprint(badSample),
		})
	}

	if !rule.Nullable {
		if n := col.NullCount(); n > 0 {
			violations = append(violations, entity.Violation{
				Column:       rule.Name,
				Check:        "not_nullable",
				Message:      "non-nullable column contains null values",
				FailureCount: n,
			})
		}
	}

	if rule.Kind == entity.KindCategory {
		allowed := make(map[string]bool)
		for _, l := range entity.CategoryLevels() {
			allowed[l] = true
		}
		for _, l := range col.Levels {
			if !allowed[l] {
				violations = append(violations, entity.Violation{
					Column:       rule.Name,
					Check:        "category_levels",
					Message:      fmt.Sprintf("unexpected category level %q", l),
					FailureCount: 1,
				})
			}
		}
	}

	for _, check := range rule.Checks {
		var failed int
		var sample any
		for _, val := range col.Values {
			if val == nil || !valueMatchesKind(val, rule.Kind) {
				continue
			}
			if !check.Fn(val) {
				if failed == 0 {
					sample = val
				}
				failed++
			}
		}
		if failed > 0 {
			violations = append(violations, entity.Violation{
				Column:       rule.Name,
				Check:        check.Name,
				Message:      fmt.Sprintf("values must be %s", check.Description),
				FailureCount: failed,
				Sample:       fmt.Sprint(sample),
			})
		}
	}

	return violations
}

// checkDerivedDates exige que ano e mes sejam nulos exatamente quando data_compra é nula.
func checkDerivedDates(table *entity.Table) []entity.Violation {
	data, ok := table.Column(entity.ColDataCompra)
	if !ok {
		return nil
	}

	var violations []entity.Violation
	for _, name := range []string{entity.ColAno, entity.ColMes} {
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		mismatches := 0
		for i := range col.Values {
			if (col.Values[i] == nil) != (data.Values[i] == nil) {
				mismatches++
			}
		}
		if mismatches > 0 {
			violations = append(violations, entity.Violation{
				Column:       name,
				Check:        "null_iff_data_compra_null",
				Message:      "must be null exactly when data_compra is null",
				FailureCount: mismatches,
			})
		}
	}
	return violations
}

func valueMatchesKind(v any, kind entity.Kind) bool {
	switch kind {
	case entity.KindText, entity.KindCategory:
		_, ok := v.(string)
		return ok
	case entity.KindNumber:
		_, ok := v.(float64)
		return ok
	case entity.KindDate:
		_, ok := v.(time.Time)
		return ok
	case entity.KindInteger:
		_, ok := v.(int64)
		return ok
	default:
		return false
	}
}
