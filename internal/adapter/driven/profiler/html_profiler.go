package profiler

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/entity"
	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// ReportBaseName é o nome base dos arquivos do relatório de qualidade.
const ReportBaseName = "relatorio_qualidade"

// HTMLProfiler gera o relatório de qualidade em HTML e uma cópia em PDF.
type HTMLProfiler struct {
	dateLayouts []string
	withPDF     bool
	now         func() time.Time
}

// NewHTMLProfiler cria o profiler. Sem layouts informados, usa types.DefaultDateLayouts.
func NewHTMLProfiler(dateLayouts []string, withPDF bool) repository.ProfilerRepository {
	if len(dateLayouts) == 0 {
		dateLayouts = types.DefaultDateLayouts
	}
	return &HTMLProfiler{
		dateLayouts: dateLayouts,
		withPDF:     withPDF,
		now:         time.Now,
	}
}

// GenerateReport grava relatorio_qualidade.html (e .pdf) em outputDir e retorna o caminho do HTML.
func (p *HTMLProfiler) GenerateReport(ctx context.Context, table *entity.Table, outputDir string, runID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating report directory '%s': %w", outputDir, err)
	}

	profile := BuildProfile(table, runID, p.now(), p.dateLayouts)

	htmlPath := filepath.Join(outputDir, ReportBaseName+".html")
	if err := writeHTML(profile, htmlPath); err != nil {
		return "", err
	}
	if p.withPDF {
		if err := writePDF(profile, filepath.Join(outputDir, ReportBaseName+".pdf")); err != nil {
			return "", err
		}
	}
	return filepath.Abs(htmlPath)
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct":    func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"num":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"moment": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 2em; color: #323232; }
h1 { background: #282828; color: #fff; padding: .4em .6em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #c8c8c8; padding: .3em .6em; text-align: left; }
th { background: #f0f0f0; }
.warn { color: #c00000; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Execução {{.RunID}} | gerado em {{moment .GeneratedAt}}</p>
<h2>Visão geral</h2>
<table>
<tr><th>Linhas</th><td>{{.Rows}}</td></tr>
<tr><th>Colunas</th><td>{{.Columns}}</td></tr>
<tr><th>Células ausentes</th><td>{{.MissingCells}} ({{pct .MissingPct}})</td></tr>
<tr><th>Linhas duplicadas</th><td{{if .DuplicateRows}} class="warn"{{end}}>{{.DuplicateRows}}</td></tr>
</table>
<h2>Colunas</h2>
{{range .ColumnStats}}
<h3>{{.Name}}</h3>
<table>
<tr><th>Tipo inferido</th><td>{{.InferredType}}</td></tr>
<tr><th>Valores</th><td>{{.Count}}</td></tr>
<tr><th>Ausentes</th><td{{if .Missing}} class="warn"{{end}}>{{.Missing}} ({{pct .MissingPct}})</td></tr>
<tr><th>Distintos</th><td>{{.Distinct}}</td></tr>
{{if .InvalidValues}}<tr><th>Inválidos</th><td class="warn">{{.InvalidValues}}</td></tr>{{end}}
{{with .Numeric}}
<tr><th>Média</th><td>{{num .Mean}}</td></tr>
<tr><th>Desvio padrão</th><td>{{num .StdDev}}</td></tr>
<tr><th>Mínimo</th><td>{{num .Min}}</td></tr>
<tr><th>Mediana</th><td>{{num .Median}}</td></tr>
<tr><th>Máximo</th><td>{{num .Max}}</td></tr>
{{end}}
</table>
{{if .TopValues}}
<table>
<tr><th>Valor mais frequente</th><th>Ocorrências</th></tr>
{{range .TopValues}}<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`))

func writeHTML(profile entity.QualityProfile, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating HTML report: %w", err)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, profile); err != nil {
		return fmt.Errorf("error rendering HTML report: %w", err)
	}
	return nil
}

func writePDF(profile entity.QualityProfile, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(6)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s | %s", profile.Title, profile.GeneratedAt.Format("2006-01-02"))), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  "+profile.Title), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Execução: %s", profile.RunID)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	drawSection("Visão geral", fmt.Sprintf(
		"Linhas: %d\nColunas: %d\nCélulas ausentes: %d (%.1f%%)\nLinhas duplicadas: %d",
		profile.Rows, profile.Columns, profile.MissingCells, profile.MissingPct, profile.DuplicateRows,
	))

	for _, cp := range profile.ColumnStats {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("Tipo inferido: %s\n", cp.InferredType))
		b.WriteString(fmt.Sprintf("Ausentes: %d (%.1f%%)\n", cp.Missing, cp.MissingPct))
		b.WriteString(fmt.Sprintf("Distintos: %d\n", cp.Distinct))
		if cp.InvalidValues > 0 {
			b.WriteString(fmt.Sprintf("Inválidos: %d\n", cp.InvalidValues))
		}
		if n := cp.Numeric; n != nil {
			b.WriteString(fmt.Sprintf("Média: %.2f | Desvio padrão: %.2f\n", n.Mean, n.StdDev))
			b.WriteString(fmt.Sprintf("Mínimo: %.2f | Mediana: %.2f | Máximo: %.2f\n", n.Min, n.Median, n.Max))
		}
		for _, tv := range cp.TopValues {
			b.WriteString(fmt.Sprintf("  - %s: %d\n", tv.Value, tv.Count))
		}
		drawSection(cp.Name, b.String())
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("error writing PDF report: %w", err)
	}
	return nil
}
