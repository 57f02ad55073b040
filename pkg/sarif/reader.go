package sarif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Read parses SARIF from an io.Reader.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("missing sarif version")
	}
	return &doc, nil
}

// ReadBytes parses SARIF from a byte slice.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// CountByLevel returns the number of results per level across all runs.
func CountByLevel(doc *Document) map[string]int {
	counts := make(map[string]int)
	for _, run := range doc.Runs {
		for _, result := range run.Results {
			counts[result.Level]++
		}
	}
	return counts
}
