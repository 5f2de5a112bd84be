// Package record provides the row types and grouping rules for the Suzhou
// housing-transaction table.
//
// Raw records are the flattened table rows produced by the scraper. Summary
// records pair each subtotal/total marker row with the detail row that
// immediately follows it, which is what the daily report contains.
package record
