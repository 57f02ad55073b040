package checker

import (
	"strings"
)

// Conventions checks the layout of a style sheet: one selector per line,
// one declaration per line indented by four spaces, and a blank line
// between rule sets. It works on lines and assumes the sheet parses.
type Conventions struct {
	lines  []string
	report func(line int, msg string)
}

// Convention messages.
const (
	msgSelectorLines  = "I001 Selectors should be on separate lines."
	msgSelectorSpace  = "I002 Selector should be followed by a single space before '{'."
	msgRuleSeparation = "I003 Rule sets should be separated by a blank line."
	msgDeclarationOwn = "I004 Declaration should be on its own line indented by four spaces."
	msgSemicolon      = "I005 Declaration should end with a semicolon."
	msgClosingBrace   = "I006 Closing brace should be on its own line."
)

// NewConventions returns a checker over text calling report for every
// violation.
func NewConventions(text string, report func(line int, msg string)) *Conventions {
	return &Conventions{lines: stripCSSComments(splitLines(text)), report: report}
}

type cssBlock int

const (
	atBlock cssBlock = iota
	ruleBlock
)

// Check walks the sheet once.
func (c *Conventions) Check() {
	var stack []cssBlock
	closedAt := -1

	inRule := func() bool { return len(stack) > 0 && stack[len(stack)-1] == ruleBlock }

	for i, line := range c.lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if inRule() {
			c.checkDeclaration(n, line, trimmed, len(stack))
			switch {
			case strings.HasSuffix(trimmed, "{"):
				stack = append(stack, ruleBlock)
			case strings.Contains(trimmed, "}"):
				stack = stack[:len(stack)-1]
				if !inRule() {
					closedAt = n
				}
			}
			continue
		}

		if trimmed == "}" {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			closedAt = n
			continue
		}
		if strings.HasPrefix(trimmed, "@") {
			if strings.HasSuffix(trimmed, "{") {
				stack = append(stack, atBlock)
			}
			continue
		}

		if closedAt == n-1 {
			c.report(n, msgRuleSeparation)
		}
		selector, body, hasBrace := strings.Cut(trimmed, "{")
		if comma := strings.Index(selector, ","); comma >= 0 && comma < len(strings.TrimSpace(selector))-1 {
			c.report(n, msgSelectorLines)
		}
		if !hasBrace {
			continue
		}
		if !strings.HasSuffix(selector, " ") || strings.HasSuffix(selector, "  ") {
			c.report(n, msgSelectorSpace)
		}
		body = strings.TrimSpace(body)
		if body == "" {
			stack = append(stack, ruleBlock)
			continue
		}
		c.report(n, msgDeclarationOwn)
		if decl, _, closed := strings.Cut(body, "}"); closed {
			c.report(n, msgClosingBrace)
			c.checkSemicolon(n, strings.TrimSpace(decl))
			closedAt = n
			continue
		}
		c.checkSemicolon(n, body)
		stack = append(stack, ruleBlock)
	}
}

// checkDeclaration checks a line inside a rule set at the given depth.
func (c *Conventions) checkDeclaration(n int, line, trimmed string, depth int) {
	if trimmed == "}" {
		return
	}
	decl := trimmed
	if before, _, ok := strings.Cut(trimmed, "}"); ok {
		c.report(n, msgClosingBrace)
		decl = strings.TrimSpace(before)
		if decl == "" {
			return
		}
	}
	if strings.HasSuffix(decl, "{") {
		return
	}
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	if indent != 4*depth || strings.Contains(line[:indent], "\t") {
		c.report(n, msgDeclarationOwn)
	}
	c.checkSemicolon(n, decl)
}

// checkSemicolon allows values continued on the next line.
func (c *Conventions) checkSemicolon(n int, decl string) {
	switch {
	case decl == "", strings.HasSuffix(decl, ";"), strings.HasSuffix(decl, ","), strings.HasSuffix(decl, "("):
		return
	}
	c.report(n, msgSemicolon)
}

// stripCSSComments blanks /* */ comments, which may span lines.
func stripCSSComments(lines []string) []string {
	out := make([]string, len(lines))
	inComment := false
	for i, line := range lines {
		var b strings.Builder
		for j := 0; j < len(line); j++ {
			switch {
			case inComment && strings.HasPrefix(line[j:], "*/"):
				inComment = false
				b.WriteString("  ")
				j++
			case inComment:
				b.WriteByte(' ')
			case strings.HasPrefix(line[j:], "/*"):
				inComment = true
				b.WriteString("  ")
				j++
			default:
				b.WriteByte(line[j])
			}
		}
		out[i] = b.String()
	}
	return out
}
