package entity

import (
	"fmt"
	"strings"
)

// Kind identifica a representação dos valores de uma coluna.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindInteger
	KindCategory
)

// String retorna o nome da representação usado em logs e relatórios.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindInteger:
		return "integer"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column é uma coluna nomeada e tipada. Uma célula nil representa "sem valor".
//
// Convenção dos valores não-nil por Kind: KindText e KindCategory usam string,
// KindNumber usa float64, KindDate usa time.Time e KindInteger usa int64.
type Column struct {
	Name   string
	Kind   Kind
	Levels []string // apenas para KindCategory
	Values []any
}

// NullCount conta as células sem valor.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

func (c *Column) clone() *Column {
	out := &Column{
		Name:   c.Name,
		Kind:   c.Kind,
		Values: make([]any, len(c.Values)),
	}
	if c.Levels != nil {
		out.Levels = append([]string(nil), c.Levels...)
	}
	copy(out.Values, c.Values)
	return out
}

// Table é uma coleção ordenada de colunas com o mesmo número de linhas.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable cria uma tabela vazia com o número de linhas informado.
func NewTable(rows int) *Table {
	return &Table{rows: rows}
}

// Len retorna o número de linhas.
func (t *Table) Len() int {
	return t.rows
}

// Width retorna o número de colunas.
func (t *Table) Width() int {
	return len(t.columns)
}

// Names retorna os nomes das colunas na ordem da tabela.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns retorna as colunas na ordem da tabela.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column busca uma coluna pelo nome exato.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddColumn anexa uma coluna ao final da tabela.
func (t *Table) AddColumn(col *Column) error {
	if len(col.Values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(col.Values), t.rows)
	}
	if _, exists := t.Column(col.Name); exists {
		return fmt.Errorf("column %q already exists", col.Name)
	}
	t.columns = append(t.columns, col)
	return nil
}

// SetColumn substitui a coluna de mesmo nome mantendo sua posição, ou anexa ao final.
func (t *Table) SetColumn(col *Column) error {
	if len(col.Values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(col.Values), t.rows)
	}
	for i, c := range t.columns {
		if c.Name == col.Name {
			t.columns[i] = col
			return nil
		}
	}
	t.columns = append(t.columns, col)
	return nil
}

// Rename troca os nomes das colunas aplicando fn a cada um.
func (t *Table) Rename(fn func(string) string) {
	for _, c := range t.columns {
		c.Name = fn(c.Name)
	}
}

// Row retorna os valores da linha i na ordem das colunas.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone faz uma cópia independente da tabela.
func (t *Table) Clone() *Table {
	out := &Table{rows: t.rows, columns: make([]*Column, len(t.columns))}
	for i, c := range t.columns {
		out.columns[i] = c.clone()
	}
	return out
}

// Filter retorna uma nova tabela apenas com as linhas em que keep(i) é verdadeiro,
// preservando a ordem original.
func (t *Table) Filter(keep func(i int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}

	out := &Table{rows: len(idx), columns: make([]*Column, len(t.columns))}
	for j, c := range t.columns {
		nc := &Column{Name: c.Name, Kind: c.Kind, Values: make([]any, len(idx))}
		if c.Levels != nil {
			nc.Levels = append([]string(nil), c.Levels...)
		}
		for k, i := range idx {
			nc.Values[k] = c.Values[i]
		}
		out.columns[j] = nc
	}
	return out
}

// Shape descreve a tabela no formato "N linhas, M colunas".
func (t *Table) Shape() string {
	return fmt.Sprintf("%d linhas, %d colunas", t.rows, len(t.columns))
}

// String é usado apenas para depuração.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Names(), ","))
	for i := 0; i < t.rows; i++ {
		sb.WriteString("\n")
		for j, v := range t.Row(i) {
			if j > 0 {
				sb.WriteString(",")
			}
			if v != nil {
				sb.WriteString(fmt.Sprint(v))
			}
		}
	}
	return sb.String()
}
