package repository

import (
	"context"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

// SeriesReport is a rendered cost series ready to be exported.
type SeriesReport struct {
	ProviderID   string             `json:"provider_id"`
	ProviderName string             `json:"provider_name"`
	Period       string             `json:"period"`
	Range        entity.DateRange   `json:"range"`
	Granularity  entity.Granularity `json:"granularity"`
	Currency     string             `json:"currency"`
	Source       string             `json:"source"`
	Total        float64            `json:"total"`
	Points       entity.CostSeries  `json:"points"`
}

// ExportRepository writes reports to disk and returns the absolute path of the file.
type ExportRepository interface {
	ExportSnapshotsToCSV(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error)
	ExportSnapshotsToJSON(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error)
	ExportSnapshotsToPDF(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error)

	ExportSeriesToCSV(report SeriesReport, filename, outputDir string) (string, error)
	ExportSeriesToJSON(report SeriesReport, filename, outputDir string) (string, error)
	ExportSeriesToPDF(report SeriesReport, filename, outputDir string) (string, error)
}

// ReportUploader copies an exported report to remote storage and returns its location.
type ReportUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
