package report

import (
	"fmt"
	"io"

	"github.com/dkoosis/scame/pkg/sarif"
)

// SARIFSink buffers findings into a SARIF document written on Flush.
type SARIFSink struct {
	w       io.Writer
	builder *sarif.Builder
}

// NewSARIFSink returns a sink that writes a SARIF 2.1.0 document for the
// named tool to w.
func NewSARIFSink(w io.Writer, toolName, version string) *SARIFSink {
	return &SARIFSink{w: w, builder: sarif.NewBuilder(toolName, version)}
}

// Accept adds f to the document.
func (s *SARIFSink) Accept(f Finding) {
	s.builder.AddResult(f.Category, sarifLevel(f.Severity), f.Message, f.Path(), f.Line)
}

// Flush writes the document.
func (s *SARIFSink) Flush() error {
	if _, err := s.builder.WriteTo(s.w); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	return nil
}

// Document exposes the document built so far.
func (s *SARIFSink) Document() *sarif.Document {
	return s.builder.Document()
}

func sarifLevel(sev Severity) string {
	if sev.IsError() {
		return "error"
	}
	return "note"
}
