package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// barWidth é o comprimento da maior barra desenhada por DisplaySeriesBars.
const barWidth = 40

// Console é uma implementação do ConsoleInterface.
type Console struct {
	out     io.Writer
	info    pterm.PrefixPrinter
	warning pterm.PrefixPrinter
	failure pterm.PrefixPrinter
	success pterm.PrefixPrinter
}

var _ types.ConsoleInterface = (*Console)(nil)

// NewConsole cria um novo Console escrevendo em stdout.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stdout)
}

// NewConsoleWithWriter cria um Console que escreve em out.
func NewConsoleWithWriter(out io.Writer) *Console {
	return &Console{
		out:     out,
		info:    *pterm.Info.WithWriter(out),
		warning: *pterm.Warning.WithWriter(out),
		failure: *pterm.Error.WithWriter(out),
		success: *pterm.Success.WithWriter(out),
	}
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
	c.info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	c.warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	c.failure.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	c.success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(message)
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
func (t *Table) AddColumn(name string, _ ...interface{}) {
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
	return renderedTable
}

// DisplaySeriesBars exibe uma série de custos como barras horizontais, com a variação
// em relação ao bucket anterior.
func (c *Console) DisplaySeriesBars(title string, currency string, points []types.BarPoint) {
	symbol := service.Symbol(currency)

	maxCost := 0.0
	for _, p := range points {
		if p.Cost > maxCost {
			maxCost = p.Cost
		}
	}

	if maxCost == 0 {
		c.warning.Printfln("All costs are %s0.00 for this period", symbol)
		return
	}

	tableData := pterm.TableData{
		{"Period", "Cost", "", "Change"},
	}

	var prevCost *float64
	for _, p := range points {
		barLength := int(math.Round(p.Cost / maxCost * barWidth))
		if barLength < 0 {
			barLength = 0
		}
		bar := strings.Repeat("█", barLength)

		change, style := bucketChange(prevCost, p.Cost)
		tableData = append(tableData, []string{
			p.Label,
			fmt.Sprintf("%s%.2f", symbol, p.Cost),
			style.Sprint(bar),
			style.Sprint(change),
		})

		currentCost := p.Cost
		prevCost = &currentCost
	}

	renderedTable, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	panel := pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)

	fmt.Fprintln(c.out, "\n"+panel)
}

// bucketChange formata a variação percentual entre dois buckets consecutivos.
func bucketChange(prev *float64, cost float64) (string, pterm.Color) {
	if prev == nil {
		return "", pterm.FgBlue
	}
	if *prev < 0.01 {
		if cost < 0.01 {
			return "0%", pterm.FgYellow
		}
		return "N/A", pterm.FgRed
	}

	changePercent := (cost - *prev) / *prev * 100.0
	switch {
	case math.Abs(changePercent) < 0.01:
		return "0%", pterm.FgYellow
	case changePercent > 999:
		return ">+999%", pterm.FgRed
	case changePercent < -999:
		return ">-999%", pterm.FgGreen
	case changePercent > 0:
		return fmt.Sprintf("+%.2f%%", changePercent), pterm.FgRed
	default:
		return fmt.Sprintf("%.2f%%", changePercent), pterm.FgGreen
	}
}
