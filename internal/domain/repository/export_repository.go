package repository

import (
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// ExportRepository writes the usage report to disk.
type ExportRepository interface {
	ExportToCSV(report entity.UsageReport, filename, outputDir string) (string, error)
	ExportToJSON(report entity.UsageReport, filename, outputDir string) (string, error)
	ExportToPDF(report entity.UsageReport, filename, outputDir string) (string, error)
}
