package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/pfrederiksen/sz-deals/internal/config"
	"github.com/pfrederiksen/sz-deals/internal/logger"
	"github.com/pfrederiksen/sz-deals/internal/record"
)

// ErrTableNotFound is returned when the page has no table with the configured id.
var ErrTableNotFound = errors.New("transaction table not found")

// Scraper handles fetching and parsing the sales page
type Scraper struct {
	client    *http.Client
	url       string
	tableID   string
	userAgent string
	encoding  string
}

// New creates a new Scraper from the source settings
func New(src config.SourceConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: src.Timeout,
		},
		url:       src.URL,
		tableID:   src.TableID,
		userAgent: src.UserAgent,
		encoding:  src.Encoding,
	}
}

// Fetch returns the raw records of the transaction table. Every failure is
// logged and reported as an empty result.
func (s *Scraper) Fetch(ctx context.Context) []record.Raw {
	start := time.Now()
	raws, err := s.FetchRecords(ctx)
	logger.RecordTiming("fetch", time.Since(start))

	if err != nil {
		logger.IncrCounter("fetch.failed")
		logger.Warn("Fetch failed", logger.Fields{"url": s.url, "error": err.Error()})
		return nil
	}

	logger.SetGauge("rows.raw", float64(len(raws)))
	logger.Info("Fetched transaction table", logger.Fields{
		"url":  s.url,
		"rows": len(raws),
	})
	return raws
}

// FetchRecords performs the request and returns any error it meets.
func (s *Scraper) FetchRecords(ctx context.Context) ([]record.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	text, err := decode(body, s.encoding)
	if err != nil {
		return nil, err
	}

	return s.parseTable(text)
}

// parseTable locates the transaction table and reconstructs its rows
func (s *Scraper) parseTable(page string) ([]record.Raw, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find("table#" + s.tableID).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: #%s", ErrTableNotFound, s.tableID)
	}

	return ReconstructRows(table)
}

// decode converts body from the named encoding to UTF-8. The encoding is
// never sniffed from the document. Byte sequences that are invalid in the
// encoding are rejected rather than replaced.
func decode(body []byte, label string) (string, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	name, _ := htmlindex.Name(enc)
	if name == "utf-8" {
		if !utf8.Valid(body) {
			return "", fmt.Errorf("decoding body: invalid %s", name)
		}
		return string(body), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decoding body as %s: %w", label, err)
	}

	// x/text decoders substitute U+FFFD for invalid input. Any replacement
	// character not literally encoded in the source marks such a substitution.
	replaced := bytes.Count(out, replacementUTF8)
	if replaced > 0 && replaced > encodedReplacements(enc, body) {
		return "", fmt.Errorf("decoding body: invalid %s", name)
	}
	return string(out), nil
}

var replacementUTF8 = []byte(string(utf8.RuneError))

// encodedReplacements counts U+FFFD characters that body carries as valid
// text in enc. Encodings that cannot represent U+FFFD count zero.
func encodedReplacements(enc encoding.Encoding, body []byte) int {
	encoded, err := enc.NewEncoder().Bytes(replacementUTF8)
	if err != nil || len(encoded) == 0 {
		return 0
	}
	return bytes.Count(body, encoded)
}
