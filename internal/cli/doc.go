// Package cli implements the command-line interface for sz-deals.
//
// The root command runs one report: it fetches the transaction table,
// aggregates it into summary records, and mails the workbook. It coordinates
// the scraper, record, report, notifier and storage packages, and reports
// the outcome as text or JSON. Every data or delivery failure is reported
// and the command still exits 0; only invalid configuration is fatal.
package cli
