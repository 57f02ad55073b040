package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
)

// TreeSitterCSS validates style sheets with the tree-sitter CSS grammar.
// Syntax errors are logged at error level; properties declared twice in
// one rule set are logged as warnings.
type TreeSitterCSS struct{}

// Validate implements CSSValidator.
func (TreeSitterCSS) Validate(ctx context.Context, text string, log *slog.Logger) {
	src := []byte(text)
	tree, err := parse(ctx, css.GetLanguage(), src)
	if err != nil {
		log.Warn(err.Error())
		return
	}
	defer tree.Close()

	root := tree.RootNode()
	eachError(root, func(n *sitter.Node) {
		pos := n.StartPoint()
		issue, token := "Unexpected token.", firstLine(n.Content(src))
		if n.IsMissing() {
			issue, token = "Missing token.", n.Type()
		}
		if token == "" {
			token = n.Type()
		}
		log.Error(fmt.Sprintf("CSSValidator %s [%d:%d: %s]", issue, pos.Row+1, pos.Column+1, token))
	})
	duplicateProperties(root, src, log)
}

// duplicateProperties warns about properties repeated within a block.
func duplicateProperties(n *sitter.Node, src []byte, log *slog.Logger) {
	if n == nil {
		return
	}
	if n.Type() == "block" {
		seen := make(map[string]bool)
		for _, decl := range namedChildren(n) {
			if decl.Type() != "declaration" {
				continue
			}
			prop := decl.NamedChild(0)
			if prop == nil || prop.Type() != "property_name" {
				continue
			}
			name := prop.Content(src)
			if seen[name] {
				value := declarationValue(decl.Content(src))
				log.Warn(fmt.Sprintf("Duplicate property: (%s, %s), %d, %d",
					name, value, decl.StartPoint().Row+1, decl.StartPoint().Column+1))
			}
			seen[name] = true
		}
	}
	for _, c := range namedChildren(n) {
		duplicateProperties(c, src, log)
	}
}

func declarationValue(decl string) string {
	_, value, _ := strings.Cut(decl, ":")
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
	value = strings.ReplaceAll(value, ",", " ")
	if value == "" {
		return "-"
	}
	return value
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return strings.TrimSpace(s)
}
