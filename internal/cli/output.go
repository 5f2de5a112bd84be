package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/sz-deals/internal/record"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Outcome is how a run ended
type Outcome string

const (
	OutcomeSent         Outcome = "sent"
	OutcomeDryRun       Outcome = "dry_run"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeNoSummaries  Outcome = "no_summaries"
	OutcomeReportFailed Outcome = "report_failed"
	OutcomeSendFailed   Outcome = "send_failed"
)

// Banner is printed before a text-mode run
const Banner = "=== 苏州市房产成交数据抓取开始 ==="

// RunResult contains data to be output
type RunResult struct {
	CheckedAt    time.Time        `json:"checked_at"`
	Outcome      Outcome          `json:"outcome"`
	RawCount     int              `json:"raw_count"`
	SummaryCount int              `json:"summary_count"`
	Recipient    string           `json:"recipient,omitempty"`
	Files        []string         `json:"files,omitempty"`
	Error        string           `json:"error,omitempty"`
	Summaries    []record.Summary `json:"summaries,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *RunResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the one-line diagnostic for the outcome
func writeText(w io.Writer, result *RunResult, verbose bool) error {
	if verbose {
		fmt.Fprintf(w, "Raw records: %d, summaries: %d\n", result.RawCount, result.SummaryCount)
		for _, f := range result.Files {
			fmt.Fprintf(w, "Saved %s\n", f)
		}
	}

	switch result.Outcome {
	case OutcomeSent:
		fmt.Fprintf(w, "✅ 邮件已发送至 %s\n", result.Recipient)
	case OutcomeDryRun:
		fmt.Fprintf(w, "Dry run: mail to %s was not sent\n", result.Recipient)
	case OutcomeFetchFailed:
		fmt.Fprintln(w, "❌ 数据获取失败，请检查网络或网页结构是否变更")
	case OutcomeNoSummaries:
		fmt.Fprintln(w, "⚠️ 数据处理后为空，未发送邮件")
	case OutcomeReportFailed:
		fmt.Fprintf(w, "❌ 报表生成失败: %s\n", result.Error)
	case OutcomeSendFailed:
		fmt.Fprintf(w, "❌ 邮件发送失败: %s\n", result.Error)
	default:
		return fmt.Errorf("unknown outcome: %s", result.Outcome)
	}
	return nil
}
