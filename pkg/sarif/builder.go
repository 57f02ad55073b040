package sarif

import (
	"encoding/json"
	"io"
	"path/filepath"
)

// DefaultRuleID names findings reported without a category.
const DefaultRuleID = "scame"

// Builder constructs SARIF 2.1.0 documents one result at a time.
type Builder struct {
	doc   *Document
	rules map[string]int
}

// NewBuilder creates a SARIF builder for the given tool.
func NewBuilder(toolName, toolVersion string) *Builder {
	return &Builder{
		doc: &Document{
			Version: Version,
			Schema:  SchemaURI,
			Runs: []Run{{
				Tool: Tool{Driver: Driver{
					Name:    toolName,
					Version: toolVersion,
				}},
				Results: []Result{},
			}},
		},
		rules: make(map[string]int),
	}
}

// AddResult adds a result to the run. An empty ruleID reports under
// DefaultRuleID; a line below 1 omits the region.
func (b *Builder) AddResult(ruleID, level, message, file string, line int) *Builder {
	if ruleID == "" {
		ruleID = DefaultRuleID
	}
	run := &b.doc.Runs[0]
	r := Result{
		RuleID:    ruleID,
		RuleIndex: b.ruleIndex(ruleID),
		Level:     level,
		Message:   Message{Text: message},
	}
	if file != "" {
		loc := Location{PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: filepath.ToSlash(file)},
		}}
		if line > 0 {
			loc.PhysicalLocation.Region = &Region{StartLine: line}
		}
		r.Locations = []Location{loc}
	}
	run.Results = append(run.Results, r)
	return b
}

func (b *Builder) ruleIndex(id string) int {
	if idx, ok := b.rules[id]; ok {
		return idx
	}
	driver := &b.doc.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, Rule{ID: id})
	idx := len(driver.Rules) - 1
	b.rules[id] = idx
	return idx
}

// Document returns the constructed SARIF document.
func (b *Builder) Document() *Document {
	return b.doc
}

// WriteTo writes the SARIF document as indented JSON to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
