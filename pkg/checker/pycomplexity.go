package checker

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionComplexity is the McCabe complexity of one function. Methods are
// named Class.method; nested functions count towards their parent.
type FunctionComplexity struct {
	Name       string
	Line       int
	Complexity int
}

// Complexity measures every function of the module rooted at root.
func Complexity(root *sitter.Node, src []byte) []FunctionComplexity {
	var out []FunctionComplexity
	var walk func(n *sitter.Node, prefix string)
	walk = func(n *sitter.Node, prefix string) {
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "function_definition":
				name := c.ChildByFieldName("name")
				if name == nil {
					continue
				}
				out = append(out, FunctionComplexity{
					Name:       prefix + name.Content(src),
					Line:       nodeLine(c),
					Complexity: 1 + decisions(c.ChildByFieldName("body")),
				})
			case "class_definition":
				name := c.ChildByFieldName("name")
				if name == nil {
					continue
				}
				walk(c.ChildByFieldName("body"), prefix+name.Content(src)+".")
			default:
				walk(c, prefix)
			}
		}
	}
	walk(root, "")
	return out
}

// decisions counts the branch points below n.
func decisions(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "except_group_clause", "case_clause":
			count++
		}
		count += decisions(c)
	}
	return count
}
