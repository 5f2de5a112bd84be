package cli

import (
	"context"
	"time"

	"github.com/pfrederiksen/sz-deals/internal/logger"
	"github.com/pfrederiksen/sz-deals/internal/notifier"
	"github.com/pfrederiksen/sz-deals/internal/record"
	"github.com/pfrederiksen/sz-deals/internal/report"
	"github.com/pfrederiksen/sz-deals/internal/storage"
)

// Fetcher returns the raw table records, or none when they could not be
// retrieved
type Fetcher interface {
	Fetch(ctx context.Context) []record.Raw
}

// Job wires the stages of one run together
type Job struct {
	Fetcher     Fetcher
	Process     func([]record.Raw) []record.Summary
	Notifier    notifier.Notifier
	Storage     *storage.Storage // optional
	Recipient   string
	PreviewRows int
	DryRun      bool
	Now         func() time.Time
}

// DefaultProcess aggregates raw records on the default marker set.
func DefaultProcess(raws []record.Raw) []record.Summary {
	return record.Aggregate(raws, record.DefaultMarkers)
}

// Run executes the job once. Failures end the run early and are described in
// the result; they are never returned as errors.
func (j *Job) Run(ctx context.Context) *RunResult {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	result := &RunResult{CheckedAt: now().UTC()}

	raws := j.Fetcher.Fetch(ctx)
	result.RawCount = len(raws)
	if len(raws) == 0 {
		result.Outcome = OutcomeFetchFailed
		return result
	}

	summaries := j.Process(raws)
	result.SummaryCount = len(summaries)
	logger.SetGauge("rows.summary", float64(len(summaries)))
	if len(summaries) == 0 {
		result.Outcome = OutcomeNoSummaries
		return result
	}
	result.Summaries = summaries

	rep, err := report.Build(summaries, now(), j.PreviewRows)
	if err != nil {
		logger.Error("Building report failed", nil, err)
		result.Outcome = OutcomeReportFailed
		result.Error = err.Error()
		return result
	}

	if j.Storage != nil {
		paths, err := j.Storage.SaveReport(rep)
		if err != nil {
			logger.Warn("Saving report copy failed", logger.Fields{"dir": j.Storage.Dir(), "error": err.Error()})
		} else {
			result.Files = paths
		}
	}

	if err := j.Notifier.Notify(rep); err != nil {
		logger.Error("Mail delivery failed", logger.Fields{"recipient": j.Recipient}, err)
		result.Outcome = OutcomeSendFailed
		result.Error = err.Error()
		return result
	}

	logger.Info("Report delivered", logger.Fields{
		"recipient": j.Recipient,
		"summaries": len(summaries),
		"file":      rep.Filename,
	})
	result.Outcome = OutcomeSent
	if j.DryRun {
		result.Outcome = OutcomeDryRun
	}
	result.Recipient = j.Recipient
	return result
}
