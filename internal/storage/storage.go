package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/sz-deals/internal/record"
	"github.com/pfrederiksen/sz-deals/internal/report"
)

// Storage handles writing report artefacts
type Storage struct {
	dataDir string
}

// Dump is the JSON form of a report's records
type Dump struct {
	GeneratedAt string           `json:"generated_at"`
	DateLabel   string           `json:"date_label"`
	Count       int              `json:"count"`
	Summaries   []record.Summary `json:"summaries"`
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved output directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// dumpPath returns the path of the JSON dump for a date label
func (s *Storage) dumpPath(label string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("summaries_%s.json", label))
}

// SaveReport writes the workbook and the JSON dump, replacing files from an
// earlier run on the same day. It returns the written paths.
func (s *Storage) SaveReport(rep *report.Report) ([]string, error) {
	xlsxPath := filepath.Join(s.dataDir, rep.Filename)
	if err := os.WriteFile(xlsxPath, rep.Attachment, 0644); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	dump := Dump{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		DateLabel:   rep.DateLabel,
		Count:       len(rep.Summaries),
		Summaries:   rep.Summaries,
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summaries: %w", err)
	}

	jsonPath := s.dumpPath(rep.DateLabel)
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing summaries: %w", err)
	}

	return []string{xlsxPath, jsonPath}, nil
}
