package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
)

// --- Funções de Exportação do Dashboard de Custos ---

// ExportSnapshotsToCSV grava uma linha por provider.
func (r *ExportRepositoryImpl) ExportSnapshotsToCSV(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := []string{
		"Provider ID", "Provider", "Currency",
		"Last Month", "Current Month", "Change %", "Forecast",
		"Credits", "Savings", "Cost By Service", "Budget Status",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, s := range data {
		code := rowCurrency(s, currency)
		symbol := service.Symbol(code)
		change := ""
		if pct := s.PercentChange(); pct != nil {
			change = fmt.Sprintf("%.2f", *pct)
		}
		record := []string{
			s.ProviderID,
			s.ProviderName,
			code,
			fmt.Sprintf("%.2f", s.LastMonth),
			fmt.Sprintf("%.2f", s.CurrentMonth),
			change,
			fmt.Sprintf("%.2f", s.Forecast),
			fmt.Sprintf("%.2f", s.Credits),
			fmt.Sprintf("%.2f", s.Savings),
			cleanRichTags(serviceLines(s.Services, symbol)),
			cleanRichTags(budgetLines(s.Budgets, symbol)),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// rowCurrency prefere a moeda do próprio snapshot; fallback é a moeda do relatório.
func rowCurrency(s entity.ProviderCostSnapshot, fallback string) string {
	if s.Currency != "" {
		return s.Currency
	}
	return fallback
}

type snapshotReport struct {
	Currency  string                        `json:"currency,omitempty"`
	Providers []entity.ProviderCostSnapshot `json:"providers"`
}

// ExportSnapshotsToJSON grava os snapshots como um documento JSON indentado.
func (r *ExportRepositoryImpl) ExportSnapshotsToJSON(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	return r.writeJSON(snapshotReport{Currency: currency, Providers: data}, filename, outputDir)
}

// ExportSnapshotsToPDF grava uma página por provider.
func (r *ExportRepositoryImpl) ExportSnapshotsToPDF(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	w := newPDFWriter()
	generated := r.now()

	for i, s := range data {
		code := rowCurrency(s, currency)
		symbol := service.Symbol(code)
		w.pdf.AddPage()
		w.header(s.ProviderName, fmt.Sprintf("Provider ID: %s", s.ProviderID), fmt.Sprintf("Currency: %s", code))

		w.sectionTitle("Cost Summary")
		costTableWidth := 95.0
		w.pdf.SetFont("Arial", "B", 10)
		w.pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		w.pdf.CellFormat(costTableWidth, 7, "Last Month", "B", 0, "L", false, 0, "")
		w.pdf.CellFormat(costTableWidth, 7, "Current Month", "B", 1, "L", false, 0, "")

		w.pdf.SetFont("Arial", "B", 16)
		w.pdf.CellFormat(costTableWidth, 12, w.tr(fmt.Sprintf("%s%.2f", symbol, s.LastMonth)), "", 0, "L", false, 0, "")

		changeText := ""
		originalTextColorR, originalTextColorG, originalTextColorB := w.pdf.GetTextColor()
		if pct := s.PercentChange(); pct != nil {
			val := *pct
			if val > 0.01 {
				w.pdf.SetTextColor(192, 0, 0)
				changeText = fmt.Sprintf("  (+%.2f%%)", val)
			} else if val < -0.01 {
				w.pdf.SetTextColor(0, 128, 0)
				changeText = fmt.Sprintf("  (%.2f%%)", val)
			} else {
				changeText = "  (0.00%)"
			}
		}

		valueStr := w.tr(fmt.Sprintf("%s%.2f", symbol, s.CurrentMonth))
		w.pdf.Cell(w.pdf.GetStringWidth(valueStr), 12, valueStr)
		w.pdf.SetFont("Arial", "", 10)
		w.pdf.CellFormat(costTableWidth-w.pdf.GetStringWidth(valueStr), 12, changeText, "", 1, "L", false, 0, "")
		w.pdf.SetTextColor(originalTextColorR, originalTextColorG, originalTextColorB)
		w.pdf.Ln(6)

		w.section("Forecast, Credits and Savings", fmt.Sprintf("Forecast: %s%.2f\nCredits: %s%.2f\nSavings: %s%.2f",
			symbol, s.Forecast, symbol, s.Credits, symbol, s.Savings))
		w.section("Cost By Service", serviceLines(s.Services, symbol))
		w.section("Budget Status", budgetLines(s.Budgets, symbol))

		w.footer("Generated by Multicloud FinOps", i+1, generated)
	}

	return w.save(outputFilename)
}

func serviceLines(services []entity.ServiceCost, symbol string) string {
	sorted := make([]entity.ServiceCost, len(services))
	copy(sorted, services)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost > sorted[j].Cost })

	var b strings.Builder
	for _, sc := range sorted {
		b.WriteString(fmt.Sprintf("%s: %s%.2f", sc.Name, symbol, sc.Cost))
		if sc.ChangePercentVsPriorPeriod != nil {
			b.WriteString(fmt.Sprintf(" (%+.1f%%)", *sc.ChangePercentVsPriorPeriod))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func budgetLines(budgets []entity.BudgetInfo, symbol string) string {
	lines := []string{}
	for _, budget := range budgets {
		lines = append(lines, fmt.Sprintf("%s: %s%.2f of %s%.2f (%.0f%%)",
			budget.Name, symbol, budget.Actual, symbol, budget.Limit, budget.UsedPercent()))
	}
	return strings.Join(lines, "\n")
}

func (r *ExportRepositoryImpl) writeJSON(payload interface{}, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}
