// Package report collects checker findings and delivers them to sinks.
//
// A Reporter is shared by every checker of a run. It applies severity
// filtering and per-file duplicate suppression, counts what it accepts and
// forwards each accepted Finding to exactly one Sink: the console, a tree
// model for user interfaces, an in-memory collector, or a document writer
// (SARIF, JSON).
package report

import "path/filepath"

// Severity is the coarse classification of a finding.
type Severity string

const (
	// SeverityInfo marks advisory findings such as style conventions.
	SeverityInfo Severity = "info"

	// SeverityError marks syntax failures and likely bugs.
	SeverityError Severity = "error"
)

// IsError reports whether s is the error severity.
func (s Severity) IsError() bool {
	return s == SeverityError
}

// Finding is one reported issue. Line is 1-based, or 0 when unknown.
type Finding struct {
	Line     int      `json:"line"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	BaseDir  string   `json:"base_dir,omitempty"`
	FileName string   `json:"file_name,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Path joins the base directory and file name of f.
func (f Finding) Path() string {
	if f.FileName == "" {
		return f.BaseDir
	}
	return filepath.Join(f.BaseDir, f.FileName)
}

// Message is the (line, text) pair kept by the Collector.
type Message struct {
	Line int
	Text string
}
