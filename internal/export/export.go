// Package export persists the ecosystem report as a JSON artifact and
// renders the human-readable console summary.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// ArtifactName is the file the report is written to inside the output dir.
const ArtifactName = "ecosystem_metrics.json"

// ReportExporter writes aggregation reports to disk.
type ReportExporter struct {
	logger *zap.Logger
}

// NewReportExporter creates a report exporter.
func NewReportExporter(logger *zap.Logger) *ReportExporter {
	return &ReportExporter{
		logger: logger.Named("export"),
	}
}

// WriteJSON persists the report as indented JSON under outputDir and
// returns the artifact path.
func (e *ReportExporter) WriteJSON(report *metrics.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	outputPath := filepath.Join(outputDir, ArtifactName)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	e.logger.Info("Report exported",
		zap.String("file", outputPath),
		zap.Int("tokens", len(report.Tokens)))

	return outputPath, nil
}
