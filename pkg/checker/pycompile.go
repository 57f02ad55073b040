package checker

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	reasonUnindent      = "unindent does not match any outer indentation level"
	reasonDefaultParams = "non-default argument follows default argument"
)

// compileError returns the first reason the Python compiler would reject
// src. The grammar accepts some sources the compiler does not, so a clean
// tree is checked for bad dedents and parameter order as well.
func compileError(root *sitter.Node, src []byte) *syntaxError {
	if e := firstSyntaxError(root, src); e != nil {
		return e
	}
	indent := indentError(string(src))
	params := parameterError(root, src)
	switch {
	case indent == nil:
		return params
	case params == nil || indent.Line <= params.Line:
		return indent
	}
	return params
}

// indentError finds the first logical line that dedents to a column no
// enclosing block starts at.
func indentError(text string) *syntaxError {
	run := &styleRun{Style: &Style{}}
	run.scan(text)

	levels := []int{0}
	for i := 0; i < len(run.lines); {
		if run.lines[i].blank {
			i++
			continue
		}
		ll, _ := run.logical(i)
		i = ll.end + 1
		if ll.commentOnly {
			continue
		}

		top := levels[len(levels)-1]
		switch {
		case ll.indent > top:
			levels = append(levels, ll.indent)
		case ll.indent < top:
			for len(levels) > 1 && levels[len(levels)-1] > ll.indent {
				levels = levels[:len(levels)-1]
			}
			if levels[len(levels)-1] != ll.indent {
				return &syntaxError{
					Line:   ll.start + 1,
					Column: ll.indent,
					Reason: reasonUnindent,
					Source: strings.TrimSpace(run.lines[ll.start].raw),
				}
			}
		}
	}
	return nil
}

// parameterError finds the first plain parameter that follows a parameter
// with a default, outside the keyword-only part of a signature.
func parameterError(node *sitter.Node, src []byte) *syntaxError {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "parameters", "lambda_parameters":
		if p := misorderedParameter(node); p != nil {
			row := int(p.StartPoint().Row)
			e := &syntaxError{Line: row + 1, Column: int(p.StartPoint().Column), Reason: reasonDefaultParams}
			if lines := splitLines(string(src)); row < len(lines) {
				e.Source = strings.TrimSpace(lines[row])
			}
			return e
		}
	}
	for _, child := range namedChildren(node) {
		if e := parameterError(child, src); e != nil {
			return e
		}
	}
	return nil
}

func misorderedParameter(params *sitter.Node) *sitter.Node {
	seenDefault := false
	for _, p := range children(params) {
		switch p.Type() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "identifier", "tuple_pattern":
			if seenDefault {
				return p
			}
		case "typed_parameter":
			if isSplat(p.NamedChild(0)) {
				return nil
			}
			if seenDefault {
				return p
			}
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator", "*", "**":
			return nil
		}
	}
	return nil
}

func isSplat(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "list_splat_pattern", "dictionary_splat_pattern":
		return true
	}
	return false
}
