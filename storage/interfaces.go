package storage

import "bixi-eda/models"

// ReportWriter is the interface any analysis results sink must satisfy.
type ReportWriter interface {
	Write(report *models.InsightReport) error
	Close() error
}
