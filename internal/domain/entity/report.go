package entity

import "time"

// CleaningReport acumula as contagens de cada etapa da limpeza.
type CleaningReport struct {
	RowsIn              int `json:"rows_in"`
	InvalidValueRemoved int `json:"invalid_value_removed"`
	MissingNameRemoved  int `json:"missing_name_removed"`
	BelowMinimumRemoved int `json:"below_minimum_removed"`
	InvalidDates        int `json:"invalid_dates"`
	DuplicatesRemoved   int `json:"duplicates_removed"`
	RowsOut             int `json:"rows_out"`
}

// TotalRemoved soma todas as linhas descartadas.
func (r CleaningReport) TotalRemoved() int {
	return r.InvalidValueRemoved + r.MissingNameRemoved + r.BelowMinimumRemoved + r.DuplicatesRemoved
}

// Violation descreve uma falha de validação estrutural.
type Violation struct {
	Column       string `json:"column"`
	Check        string `json:"check"`
	Message      string `json:"message"`
	FailureCount int    `json:"failure_count"`
	Sample       any    `json:"sample,omitempty"`
}

// CategoryCount é a quantidade de linhas por rótulo de categoria.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RunSummary resume uma execução do pipeline.
type RunSummary struct {
	RunID         string          `json:"run_id"`
	Source        string          `json:"source"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	RowsLoaded    int             `json:"rows_loaded"`
	Cleaning      CleaningReport  `json:"cleaning"`
	RowsExported  int             `json:"rows_exported"`
	Categories    []CategoryCount `json:"categories"`
	ExportedFiles []string        `json:"exported_files"`
	Published     []string        `json:"published,omitempty"`
	Success       bool            `json:"success"`
}
