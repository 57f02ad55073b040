package sarif

import (
	"bytes"
	"testing"
)

func TestBuilder_BasicOutput(t *testing.T) {
	b := NewBuilder("scame", "1.0")
	b.AddResult("E222", "note", "E222 multiple spaces after operator", "lib/a.py", 4)

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("output is not valid SARIF: %v", err)
	}
	if doc.Version != "2.1.0" {
		t.Errorf("expected version 2.1.0, got %s", doc.Version)
	}
	if doc.Runs[0].Tool.Driver.Name != "scame" {
		t.Errorf("expected tool scame, got %s", doc.Runs[0].Tool.Driver.Name)
	}
	if len(doc.Runs[0].Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(doc.Runs[0].Results))
	}
	r := doc.Runs[0].Results[0]
	if r.RuleID != "E222" || r.Level != "note" {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Locations[0].PhysicalLocation.Region.StartLine != 4 {
		t.Errorf("expected line 4, got %d", r.Locations[0].PhysicalLocation.Region.StartLine)
	}
}

func TestBuilder_RulesAreShared(t *testing.T) {
	b := NewBuilder("scame", "")
	b.AddResult("", "error", "File has conflicts.", "a.txt", 3).
		AddResult("E501", "note", "E501 line too long", "a.py", 9).
		AddResult("", "note", "Line has trailing whitespace.", "a.txt", 4)

	doc := b.Document()
	rules := doc.Runs[0].Tool.Driver.Rules
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].ID != DefaultRuleID {
		t.Errorf("expected default rule first, got %s", rules[0].ID)
	}
	if doc.Runs[0].Results[2].RuleIndex != 0 {
		t.Errorf("expected rule index 0, got %d", doc.Runs[0].Results[2].RuleIndex)
	}
}

func TestBuilder_UnknownLineHasNoRegion(t *testing.T) {
	doc := NewBuilder("scame", "").AddResult("", "error", "boom", "a.xml", 0).Document()
	if doc.Runs[0].Results[0].Locations[0].PhysicalLocation.Region != nil {
		t.Error("expected no region for line 0")
	}
}

func TestCountByLevel(t *testing.T) {
	doc := NewBuilder("scame", "").
		AddResult("", "error", "a", "x", 1).
		AddResult("", "note", "b", "x", 2).
		AddResult("", "note", "c", "x", 3).
		Document()
	counts := CountByLevel(doc)
	if counts["error"] != 1 || counts["note"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestRead_MissingVersion(t *testing.T) {
	if _, err := ReadBytes([]byte(`{"runs":[]}`)); err == nil {
		t.Error("expected an error for a document without version")
	}
}
