// Package scraper fetches the Suzhou housing bureau sales page and flattens
// its transaction table into raw records.
//
// The table merges region cells vertically with rowspan. Rows covered by a
// merged cell omit it, so the region label is carried forward from the last
// header cell while the rows are walked top to bottom. Any failure to fetch,
// decode or locate the table yields an empty result instead of an error.
package scraper
