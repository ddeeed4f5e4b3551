package notify

import "github.com/tubescout/tubescout/internal/models"

// Notifier delivers batch run reports to the configured channels
type Notifier interface {
	SendReport(report *models.BatchReport) error
}
