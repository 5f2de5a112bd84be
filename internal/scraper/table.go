package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/sz-deals/internal/logger"
	"github.com/pfrederiksen/sz-deals/internal/record"
)

// ReconstructRows flattens the rows of table into raw records. The first row
// is the column header and is skipped.
//
// A row whose first cell is a th with a rowspan opens a new region block.
// Rows with four or more cells read type, count and area from cells 1-3;
// rows with exactly three cells read them from cells 0-2 and rely on the
// carried region. Shorter rows produce nothing.
func ReconstructRows(table *goquery.Selection) ([]record.Raw, error) {
	rows := table.Find("tr")
	raws := make([]record.Raw, 0, rows.Length())

	var state record.RowSpanState
	for i := 1; i < rows.Length(); i++ {
		cells := rows.Eq(i).Find("th, td")
		if cells.Length() == 0 {
			continue
		}

		first := cells.First()
		if span, ok := first.Attr("rowspan"); ok && goquery.NodeName(first) == "th" {
			n, err := strconv.Atoi(strings.TrimSpace(span))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rowspan %q: %w", i, span, err)
			}
			state.Open(cellText(first), n)
		} else {
			state.Advance()
		}

		var offset int
		switch {
		case cells.Length() >= 4:
			offset = 1
		case cells.Length() == 3:
			offset = 0
		default:
			logger.Debug("Skipping short row", logger.Fields{"row": i, "cells": cells.Length()})
			continue
		}

		raws = append(raws, record.Raw{
			Region: state.CurrentRegion,
			Type:   cellText(cells.Eq(offset)),
			Count:  cellText(cells.Eq(offset + 1)),
			Area:   cellText(cells.Eq(offset + 2)),
		})
	}

	return raws, nil
}

// cellText joins the trimmed text fragments of a cell, dropping empty ones.
func cellText(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	return b.String()
}
