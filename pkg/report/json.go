package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONSink writes every accepted finding as one JSON array on Flush.
type JSONSink struct {
	w        io.Writer
	findings []Finding
}

// NewJSONSink returns a sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, findings: []Finding{}}
}

// Accept records f.
func (j *JSONSink) Accept(f Finding) {
	j.findings = append(j.findings, f)
}

// Flush writes the array.
func (j *JSONSink) Flush() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j.findings); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
