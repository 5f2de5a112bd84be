package notifier

import (
	"github.com/pfrederiksen/sz-deals/internal/report"
)

// Notifier defines the interface for delivering a report
type Notifier interface {
	// Notify delivers the report once. There are no retries.
	Notify(rep *report.Report) error
}
