package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
)

// seriesPDFRows limita quantos buckets o PDF lista antes de resumir o restante.
const seriesPDFRows = 40

// ExportSeriesToCSV grava o cabeçalho seguido de uma linha por bucket.
func (r *ExportRepositoryImpl) ExportSeriesToCSV(report repository.SeriesReport, filename, outputDir string) (string, error) {
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
	rows := [][]string{{"Provider ID", "Date", "Bucket", "Cost", "Currency"}}
	for _, p := range report.Points {
		rows = append(rows, []string{
			report.ProviderID,
			p.Date.Format(entity.DateLayout),
			service.BucketLabel(p.Date, report.Granularity),
			fmt.Sprintf("%.2f", p.Cost),
			report.Currency,
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

type seriesPointJSON struct {
	Date   string  `json:"date"`
	Bucket string  `json:"bucket"`
	Cost   float64 `json:"cost"`
}

type seriesReportJSON struct {
	ProviderID   string            `json:"provider_id"`
	ProviderName string            `json:"provider_name"`
	Period       string            `json:"period"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Granularity  string            `json:"granularity"`
	Currency     string            `json:"currency"`
	Source       string            `json:"source"`
	Total        float64           `json:"total"`
	Points       []seriesPointJSON `json:"points"`
}

// ExportSeriesToJSON grava a série com as datas no formato YYYY-MM-DD.
func (r *ExportRepositoryImpl) ExportSeriesToJSON(report repository.SeriesReport, filename, outputDir string) (string, error) {
	payload := seriesReportJSON{
		ProviderID:   report.ProviderID,
		ProviderName: report.ProviderName,
		Period:       report.Period,
		Start:        report.Range.Start.Format(entity.DateLayout),
		End:          report.Range.End.Format(entity.DateLayout),
		Granularity:  string(report.Granularity),
		Currency:     report.Currency,
		Source:       report.Source,
		Total:        report.Total,
		Points: lo.Map(report.Points, func(p entity.CostDataPoint, _ int) seriesPointJSON {
			return seriesPointJSON{
				Date:   p.Date.Format(entity.DateLayout),
				Bucket: service.BucketLabel(p.Date, report.Granularity),
				Cost:   p.Cost,
			}
		}),
	}
	return r.writeJSON(payload, filename, outputDir)
}

// ExportSeriesToPDF grava a série como tabela, com uma barra proporcional por bucket.
func (r *ExportRepositoryImpl) ExportSeriesToPDF(report repository.SeriesReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	w := newPDFWriter()
	symbol := service.Symbol(report.Currency)

	w.pdf.AddPage()
	w.header(report.ProviderName,
		fmt.Sprintf("Period: %s (%s)", report.Period, report.Range),
		fmt.Sprintf("Granularity: %s | Source: %s", report.Granularity, report.Source))

	w.section("Summary", fmt.Sprintf("Total: %s%.2f\nBuckets: %d", symbol, report.Total, len(report.Points)))

	if len(report.Points) > 0 {
		w.sectionTitle("Cost Trend")
		maxCost := lo.MaxBy(report.Points, func(a, b entity.CostDataPoint) bool { return a.Cost > b.Cost }).Cost

		labelWidth, valueWidth, barWidth := 40.0, 30.0, 120.0
		w.pdf.SetFont("Arial", "", 9)
		for i, p := range report.Points {
			if i == seriesPDFRows {
				w.pdf.CellFormat(0, 6, fmt.Sprintf("... (+%d more)", len(report.Points)-seriesPDFRows), "", 1, "L", false, 0, "")
				break
			}
			w.pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			w.pdf.CellFormat(labelWidth, 6, w.tr(service.BucketLabel(p.Date, report.Granularity)), "", 0, "L", false, 0, "")
			w.pdf.CellFormat(valueWidth, 6, w.tr(fmt.Sprintf("%s%.2f", symbol, p.Cost)), "", 0, "R", false, 0, "")

			if maxCost > 0 && p.Cost > 0 {
				x, y := w.pdf.GetX(), w.pdf.GetY()
				w.pdf.SetFillColor(barColor[0], barColor[1], barColor[2])
				w.pdf.Rect(x+2, y+1, barWidth*p.Cost/maxCost, 4, "F")
			}
			w.pdf.Ln(6)
		}
	}

	w.footer("Generated by Multicloud FinOps", 1, r.now())

	return w.save(outputFilename)
}
