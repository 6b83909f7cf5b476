package scraper

import (
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
)

// Column positions in the planning table.
const (
	colDate = iota
	colThumbnail
	colTitle
	colPrice
	colPublisher
	colPurchase

	minCells
)

// RawRecord holds the six positional cells of a planning row, untrimmed.
type RawRecord struct {
	Row       int // 1-based row index inside the table body
	DateText  string
	Thumbnail string // img src, possibly relative
	Title     string
	Price     string
	Publisher string
	Purchase  string // purchase link href, possibly relative
}

// Extractor splits planning table markup into RawRecords.
type Extractor struct {
	Log     *logger.Logger
	Metrics *metrics.Metrics
}

// ExtractRows parses markup with a default Extractor.
func ExtractRows(markup string) (iter.Seq[RawRecord], error) {
	return (&Extractor{}).Rows(markup)
}

// Rows parses the table markup and returns a single-pass sequence of rows.
// Rows with fewer than six cells (headers, separators) are skipped.
// Ranging over the sequence a second time yields nothing.
func (e *Extractor) Rows(markup string) (iter.Seq[RawRecord], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wrapTable(markup)))
	if err != nil {
		return nil, fmt.Errorf("parsing planning markup: %w", err)
	}

	rows := doc.Find("tr")
	consumed := false

	return func(yield func(RawRecord) bool) {
		if consumed {
			return
		}
		consumed = true

		for i := range rows.Nodes {
			tr := rows.Eq(i)
			cells := tr.ChildrenFiltered("td")
			if cells.Length() < minCells {
				e.log().Debug("Skipping short row", logger.Fields{
					"row":   i + 1,
					"cells": cells.Length(),
				})
				e.Metrics.IncRow(metrics.RowSkipped)
				continue
			}

			e.Metrics.IncRow(metrics.RowExtracted)
			if !yield(rawFromCells(i+1, cells)) {
				return
			}
		}
	}, nil
}

func (e *Extractor) log() *logger.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logger.Default()
}

func rawFromCells(row int, cells *goquery.Selection) RawRecord {
	return RawRecord{
		Row:       row,
		DateText:  cells.Eq(colDate).Text(),
		Thumbnail: imageSource(cells.Eq(colThumbnail)),
		Title:     lastAnchorText(cells.Eq(colTitle)),
		Price:     cells.Eq(colPrice).Text(),
		Publisher: firstAnchorText(cells.Eq(colPublisher)),
		Purchase:  cells.Eq(colPurchase).Find("a[href]").First().AttrOr("href", ""),
	}
}

// lastAnchorText returns the text of the last link in the cell, or the cell
// text when it has no links. Title cells sometimes nest a secondary link first.
func lastAnchorText(cell *goquery.Selection) string {
	anchors := cell.Find("a")
	if anchors.Length() > 0 {
		return anchors.Last().Text()
	}
	return cell.Text()
}

func firstAnchorText(cell *goquery.Selection) string {
	anchor := cell.Find("a").First()
	if anchor.Length() > 0 {
		return anchor.Text()
	}
	return cell.Text()
}

func imageSource(cell *goquery.Selection) string {
	img := cell.Find("img").First()
	if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
		return src
	}
	return img.AttrOr("data-src", "")
}

// wrapTable makes a bare <tbody> or <tr> fragment parseable. Outside a
// <table>, the HTML parser drops table row and cell tags. Only the leading
// tag is inspected; tables nested in cells do not count.
func wrapTable(markup string) string {
	head := strings.ToLower(strings.TrimSpace(markup))
	for _, tag := range []string{"<tbody", "<thead", "<tfoot", "<tr"} {
		if strings.HasPrefix(head, tag) {
			return "<table>" + markup + "</table>"
		}
	}
	return markup
}
