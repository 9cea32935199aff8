package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implements the ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// sortedModels returns the ledger's model IDs ordered by cost descending,
// ties broken alphabetically.
func sortedModels(ledger *entity.AggregateLedger) []string {
	models := make([]string, 0, len(ledger.ByModel))
	for model := range ledger.ByModel {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool {
		ci, cj := ledger.ByModel[models[i]].Cost, ledger.ByModel[models[j]].Cost
		if ci != cj {
			return ci > cj
		}
		return models[i] < models[j]
	})
	return models
}

func sortedAliases(ledger *entity.AggregateLedger) []string {
	aliases := make([]string, 0, len(ledger.ByAuthMethod))
	for alias := range ledger.ByAuthMethod {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

func periodString(report entity.UsageReport) string {
	return fmt.Sprintf("%s to %s",
		report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))
}

func (r *ExportRepositoryImpl) ExportToCSV(report entity.UsageReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Model", "Requests", "Quantity", "Unit Price ($)", "Cost ($)"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, model := range sortedModels(report.Ledger) {
		stats := report.Ledger.ByModel[model]
		record := []string{
			cleanRichTags(model),
			fmt.Sprintf("%.0f", stats.Requests),
			fmt.Sprintf("%.0f", stats.Quantity),
			fmt.Sprintf("%.6f", stats.UnitPrice),
			fmt.Sprintf("%.4f", stats.Cost),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	total := report.Ledger.Total
	totalRecord := []string{
		"TOTAL",
		fmt.Sprintf("%.0f", total.Requests),
		fmt.Sprintf("%.0f", total.Quantity),
		"",
		fmt.Sprintf("%.4f", total.Cost),
	}
	if err := writer.Write(totalRecord); err != nil {
		return "", fmt.Errorf("error writing CSV record: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(report entity.UsageReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
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
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(report entity.UsageReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
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
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Header
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  fal.ai Usage Report"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Period: %s (%s)", periodString(report), report.Timezone)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	// Totals
	total := report.Ledger.Total
	summary := fmt.Sprintf("Total Cost: $%.4f\nTotal Requests: %.0f\nTotal Quantity: %.0f\nModels: %d",
		total.Cost, total.Requests, total.Quantity, len(report.Ledger.ByModel))
	drawSection("Summary", summary)

	// Per-model breakdown
	var models strings.Builder
	for _, model := range sortedModels(report.Ledger) {
		stats := report.Ledger.ByModel[model]
		models.WriteString(fmt.Sprintf("%s: $%.4f (requests %.0f, quantity %.0f)\n",
			model, stats.Cost, stats.Requests, stats.Quantity))
	}
	drawSection("Cost By Model", models.String())

	// Per-key breakdown
	if len(report.Ledger.ByAuthMethod) > 0 {
		var keys strings.Builder
		for _, alias := range sortedAliases(report.Ledger) {
			stats := report.Ledger.ByAuthMethod[alias]
			keys.WriteString(fmt.Sprintf("%s: $%.4f (requests %.0f, quantity %.0f)\n",
				alias, stats.Cost, stats.Requests, stats.Quantity))
		}
		drawSection("Cost By API Key", keys.String())
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by AI API Usage CLI | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Page 1"), "", 0, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// generateFilename builds a unique timestamped file name and makes sure the
// output directory exists.
func generateFilename(base, dir, ext string) (string, error) {
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
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regexes for pterm rich tags and ANSI color/style sequences.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags strips pterm formatting tags and ANSI sequences so exported
// text is plain.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
