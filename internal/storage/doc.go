// Package storage writes copies of each generated report to a local
// directory: the workbook as attached to the mail and a JSON dump of the
// summary records. Nothing here is read back by later runs.
package storage
