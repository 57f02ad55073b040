package checker

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// syntaxError locates the first parse failure of a tree-sitter tree.
type syntaxError struct {
	Line   int // 1-based; 0 when unknown
	Column int
	Reason string
	Source string // the offending line, stripped
}

// Message renders e the way compile failures are reported.
func (e *syntaxError) Message() string {
	return fmt.Sprintf("Could not compile; %s: %s", e.Reason, e.Source)
}

// parse parses src with lang. The caller closes the tree.
func parse(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return tree, nil
}

// firstSyntaxError returns the first ERROR or MISSING node of root in
// document order, or nil when the tree parsed cleanly.
func firstSyntaxError(root *sitter.Node, src []byte) *syntaxError {
	if root == nil || !root.HasError() {
		return nil
	}
	node := findFirstError(root)
	if node == nil {
		return &syntaxError{Reason: "invalid syntax"}
	}

	row := int(node.StartPoint().Row)
	e := &syntaxError{
		Line:   row + 1,
		Column: int(node.StartPoint().Column),
		Reason: "invalid syntax",
	}
	if node.IsMissing() {
		e.Reason = fmt.Sprintf("expected '%s'", node.Type())
	}
	lines := splitLines(string(src))
	if row < len(lines) {
		e.Source = strings.TrimSpace(lines[row])
	}
	return e
}

// findFirstError walks node depth first.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if err := findFirstError(node.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// eachError calls fn for every ERROR and MISSING node that is not nested
// inside another one.
func eachError(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.IsError() || node.IsMissing() {
		fn(node)
		return
	}
	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		eachError(node.Child(i), fn)
	}
}

// namedChildren returns the named children of node.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	n := int(node.NamedChildCount())
	out := make([]*sitter.Node, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, node.NamedChild(i))
	}
	return out
}

// children returns every child of node, anonymous tokens included.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	n := int(node.ChildCount())
	out := make([]*sitter.Node, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, node.Child(i))
	}
	return out
}
