package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blackcoderx/brunomigrate/pkg/storage"
)

// Kind is the resource type of a ledger record.
type Kind string

const (
	KindCollection      Kind = "collection"
	KindEnvironment     Kind = "environment"
	KindGlobalVariables Kind = "global_variables"
)

// Status is the outcome of exporting one resource.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TimeFormat is the layout of the export_time column.
const TimeFormat = "2006-01-02 15:04:05"

var csvHeader = []string{"export_time", "workspace", "name", "type", "status"}

// Record is one row of the status ledger.
type Record struct {
	ExportTime time.Time `json:"export_time" yaml:"export_time"`
	Workspace  string    `json:"workspace" yaml:"workspace"`
	Name       string    `json:"name" yaml:"name"`
	Kind       Kind      `json:"type" yaml:"type"`
	Status     Status    `json:"status" yaml:"status"`
}

// Summary aggregates ledger outcomes.
type Summary struct {
	Success int `json:"success" yaml:"success"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Total   int `json:"total" yaml:"total"`
}

// Add counts one record.
func (s *Summary) Add(status Status) {
	switch status {
	case StatusSuccess:
		s.Success++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
	s.Total++
}

// Ledger accumulates per-resource outcomes in call order for one export run.
// Duplicate rows for the same resource are kept.
type Ledger struct {
	records []Record
	now     func() time.Time
}

// NewLedger creates an empty ledger. A nil clock uses time.Now.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// Add appends a record stamped with the current time, truncated to seconds.
func (l *Ledger) Add(workspace, name string, kind Kind, status Status) Record {
	r := Record{
		ExportTime: l.now().UTC().Truncate(time.Second),
		Workspace:  workspace,
		Name:       name,
		Kind:       kind,
		Status:     status,
	}
	l.records = append(l.records, r)
	return r
}

// Records returns a copy of the accumulated records.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Summary counts records by status.
func (l *Ledger) Summary() Summary {
	var s Summary
	for _, r := range l.records {
		s.Add(r.Status)
	}
	return s
}

// SaveCSV appends the ledger to path. A new file gets the header row first;
// an existing file only receives data rows. An empty ledger writes nothing.
func (l *Ledger) SaveCSV(path string) (Summary, error) {
	if len(l.records) == 0 {
		return Summary{}, nil
	}

	exists := storage.Exists(path)
	if err := storage.EnsureDirectory(filepath.Dir(path)); err != nil {
		return Summary{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open status file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(csvHeader); err != nil {
			return Summary{}, fmt.Errorf("failed to write status header: %w", err)
		}
	}
	for _, r := range l.records {
		row := []string{r.ExportTime.Format(TimeFormat), r.Workspace, r.Name, string(r.Kind), string(r.Status)}
		if err := w.Write(row); err != nil {
			return Summary{}, fmt.Errorf("failed to write status row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Summary{}, fmt.Errorf("failed to flush status file: %w", err)
	}
	return l.Summary(), nil
}

// ReadCSV loads every row of a status file written by SaveCSV.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open status file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse status file: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == csvHeader[0] {
			continue
		}
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("status file line %d: expected %d columns, got %d", i+1, len(csvHeader), len(row))
		}
		ts, err := time.Parse(TimeFormat, row[0])
		if err != nil {
			return nil, fmt.Errorf("status file line %d: %w", i+1, err)
		}
		records = append(records, Record{
			ExportTime: ts,
			Workspace:  row[1],
			Name:       row[2],
			Kind:       Kind(row[3]),
			Status:     Status(row[4]),
		})
	}
	return records, nil
}
