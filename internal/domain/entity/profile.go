package entity

import "time"

// ValueFrequency é a contagem de um valor distinto em uma coluna.
type ValueFrequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericStats são as estatísticas descritivas de uma coluna numérica.
type NumericStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// ColumnProfile descreve a qualidade de uma coluna da tabela bruta.
type ColumnProfile struct {
	Name          string           `json:"name"`
	InferredType  string           `json:"inferred_type"`
	Count         int              `json:"count"`
	Missing       int              `json:"missing"`
	MissingPct    float64          `json:"missing_pct"`
	Distinct      int              `json:"distinct"`
	Numeric       *NumericStats    `json:"numeric,omitempty"`
	TopValues     []ValueFrequency `json:"top_values"`
	InvalidValues int              `json:"invalid_values"`
}

// QualityProfile é o relatório de qualidade da tabela bruta.
type QualityProfile struct {
	Title         string          `json:"title"`
	RunID         string          `json:"run_id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Rows          int             `json:"rows"`
	Columns       int             `json:"columns"`
	MissingCells  int             `json:"missing_cells"`
	MissingPct    float64         `json:"missing_pct"`
	DuplicateRows int             `json:"duplicate_rows"`
	ColumnStats   []ColumnProfile `json:"column_stats"`
}
