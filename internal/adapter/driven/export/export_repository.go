package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}

var (
	headerColor       = [3]int{40, 40, 40}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{0, 0, 0}
	bodyTextColor     = [3]int{50, 50, 50}
	lineColor         = [3]int{200, 200, 200}
	barColor          = [3]int{0, 102, 204}
)

// pdfWriter agrupa o documento e o tradutor de texto.
type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPDFWriter() *pdfWriter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (w *pdfWriter) header(title string, subtitles ...string) {
	w.pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	w.pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	w.pdf.SetFont("Arial", "B", 14)
	if len(title) > 80 {
		title = title[:77] + "..."
	}
	w.pdf.CellFormat(0, 12, w.tr(fmt.Sprintf("  %s", title)), "", 1, "L", true, 0, "")

	w.pdf.SetFont("Arial", "", 10)
	w.pdf.SetFillColor(240, 240, 240)
	w.pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	for _, sub := range subtitles {
		w.pdf.CellFormat(0, 8, w.tr(fmt.Sprintf("  %s", sub)), "", 1, "L", true, 0, "")
	}
	w.pdf.Ln(8)
}

func (w *pdfWriter) sectionTitle(title string) {
	w.pdf.SetFont("Arial", "B", 12)
	w.pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
	w.pdf.Cell(0, 8, w.tr(title))
	w.pdf.Ln(7)

	w.pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	w.pdf.Line(w.pdf.GetX(), w.pdf.GetY(), w.pdf.GetX()+190, w.pdf.GetY())
	w.pdf.Ln(4)
}

func (w *pdfWriter) section(title, content string) {
	content = cleanRichTags(content)
	if content == "" {
		return
	}
	w.sectionTitle(title)
	w.pdf.SetFont("Arial", "", 10)
	w.pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	w.pdf.MultiCell(190, 5, w.tr(content), "", "L", false)
	w.pdf.Ln(8)
}

func (w *pdfWriter) footer(label string, page int, generated time.Time) {
	w.pdf.SetY(-15)
	w.pdf.SetFont("Arial", "I", 8)
	w.pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("%s | %s", label, generated.Format("2006-01-02"))
	w.pdf.CellFormat(0, 10, w.tr(footerText), "", 0, "L", false, 0, "")
	w.pdf.CellFormat(0, 10, w.tr(fmt.Sprintf("Page %d", page)), "", 0, "R", false, 0, "")
}

func (w *pdfWriter) save(path string) (string, error) {
	if err := w.pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(path)
}
