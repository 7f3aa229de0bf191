package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

const maxBarLength = 40

// Console é uma implementação do ConsoleInterface sobre o pterm.
type Console struct {
	out io.Writer
}

// NewConsole cria um novo Console que escreve na saída padrão.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(message)
	return &statusHandle{spinner: spinner}
}

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Cores usadas nos destaques do gráfico de categorias.
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable + "\n"
}

// DisplayCategoryBars exibe a distribuição de linhas por categoria_valor.
func (c *Console) DisplayCategoryBars(counts []types.CategoryBar) {
	total := 0
	maxCount := 0
	for _, bar := range counts {
		total += bar.Count
		if bar.Count > maxCount {
			maxCount = bar.Count
		}
	}

	if maxCount == 0 {
		pterm.Warning.Println("Nenhuma linha exportada para exibir por categoria.")
		return
	}

	tableData := pterm.TableData{
		{"Categoria", "Linhas", "", "%"},
	}
	for _, bar := range counts {
		length := bar.Count * maxBarLength / maxCount
		tableData = append(tableData, []string{
			bar.Label,
			BrightCyan(fmt.Sprintf("%d", bar.Count)),
			barStyle(bar.Label).Sprint(strings.Repeat("█", length)),
			BrightMagenta(fmt.Sprintf("%.1f%%", float64(bar.Count)*100/float64(total))),
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	panel := pterm.DefaultBox.WithTitle("Distribuição por categoria_valor").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)
	fmt.Fprintln(c.out, "\n"+panel)
}

func barStyle(label string) pterm.Color {
	switch label {
	case "Baixo":
		return pterm.FgGreen
	case "Médio":
		return pterm.FgYellow
	case "Alto":
		return pterm.FgRed
	default:
		return pterm.FgBlue
	}
}
