// Package report turns summary records into the daily mail: an in-memory
// xlsx workbook plus a plain-text preview of the first rows.
package report
