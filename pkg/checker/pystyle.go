package checker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// StyleReport receives one style violation. line is 1-based and col
// 0-based; code is the rule code, such as E222.
type StyleReport func(line, col int, code, text string)

// EOFError reports a statement or string still open at the end of the
// file. No logical checks run for the unterminated statement.
type EOFError struct {
	Line int
	Msg  string
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Style checks the pycodestyle conventions of a Python module: indentation,
// whitespace, blank lines, imports, statements, comparisons and line
// length. Results go to Report as they are found.
type Style struct {
	// MaxLineLength is the longest allowed line.
	MaxLineLength int

	// HangClosing expects closing brackets of hanging indents to be
	// indented like the items; otherwise they align with the opening line.
	HangClosing bool

	Report StyleReport
}

const (
	topLevelLines = 2
	methodLines   = 1
	indentSize    = 4
)

var (
	noqaPattern          = regexp.MustCompile(`(?i)#\s*no(?:qa|pep8)\b`)
	operatorPattern      = regexp.MustCompile(`[^,\s](\s*)(?:[-+*/|!<=>%&^]+|:=)(\s*)`)
	topLevelPattern      = regexp.MustCompile(`^(async\s+def\s+|def\s+|class\s+|@)`)
	defPattern           = regexp.MustCompile(`^(async\s+def|def)\b`)
	docstringPattern     = regexp.MustCompile(`^u?r?["']`)
	indentStmtPattern    = regexp.MustCompile(`^\s*(def|async\s+def|for|async\s+for|if|elif|else|try|except|finally|with|async\s+with|class|while)\b`)
	lambdaPattern        = regexp.MustCompile(`\blambda\b`)
	compareAfterPattern  = regexp.MustCompile(`([=!]=)\s*(None|False|True)\b`)
	compareBeforePattern = regexp.MustCompile(`\b(None|False|True)\s*([=!]=)`)
)

// spacedOperators must have whitespace on both sides. Longer operators
// come first so they win over their prefixes.
var spacedOperators = []string{
	"**=", "//=", ">>=", "<<=",
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "->", ":=",
	"**", "//", "<<", ">>",
	"=", "<", ">",
}

var exemptOperators = map[string]bool{"**": true, "//": true, "<<": true, ">>": true}

// physLine is one physical line after scanning.
type physLine struct {
	raw        string
	code       string // strings masked, comment removed
	comment    string
	commentCol int
	inString   bool // starts inside a string from an earlier line
	depth      int  // bracket depth at the start of the line
	continued  bool // ends with a backslash continuation
	blank      bool
	closers    []closer
}

// closer is a closing bracket that starts its line and matches a bracket
// left hanging at the end of an earlier line.
type closer struct {
	col        int
	openerLine int
}

type opener struct {
	line, col int
}

type segment struct {
	offset int // in the logical text
	line   int // physical line index
	col    int
}

type logicalLine struct {
	start, end  int
	text        string
	indent      int
	commentOnly bool
	mapping     []segment
}

// position maps an offset of the logical text back to a physical line and
// column.
func (l *logicalLine) position(offset int) (int, int) {
	seg := segment{line: l.start}
	for _, s := range l.mapping {
		if s.offset > offset {
			break
		}
		seg = s
	}
	return seg.line, seg.col + offset - seg.offset
}

type styleRun struct {
	*Style
	lines      []physLine
	indentChar byte
	open       bool // text ends inside a bracket, string or continuation
}

// Check runs every convention over text. It returns an EOFError when a
// bracket, backslash continuation or triple-quoted string is still open at
// the end of the text.
func (s *Style) Check(text string) *EOFError {
	run := &styleRun{Style: s}
	eof := run.scan(text)
	run.check(text)
	return eof
}

func (r *styleRun) report(line, col int, code, text string) {
	if r.Report == nil || line < 0 || line >= len(r.lines) {
		return
	}
	if noqaPattern.MatchString(r.lines[line].raw) {
		return
	}
	r.Report(line+1, col, code, text)
}

// scan splits text into physical lines, masking string contents and
// tracking brackets across lines.
func (r *styleRun) scan(text string) *EOFError {
	raws := splitLines(text)
	r.lines = make([]physLine, len(raws))

	var (
		quote       byte
		triple      bool
		stringStart int
		stack       []opener
		continued   bool
	)
	for li, raw := range raws {
		pl := physLine{
			raw:        raw,
			commentCol: -1,
			inString:   quote != 0,
			depth:      len(stack),
		}
		pl.blank = strings.TrimSpace(raw) == "" && quote == 0 && len(stack) == 0 && !continued
		masked := []byte(raw)
		firstCode := true

		i := 0
	scanning:
		for i < len(raw) {
			ch := raw[i]
			if quote != 0 {
				switch {
				case ch == '\\':
					masked[i] = 'x'
					if i+1 < len(raw) {
						masked[i+1] = 'x'
					}
					i += 2
				case triple && strings.HasPrefix(raw[i:], strings.Repeat(string(quote), 3)):
					quote = 0
					i += 3
				case !triple && ch == quote:
					quote = 0
					i++
				default:
					masked[i] = 'x'
					i++
				}
				firstCode = false
				continue
			}
			switch ch {
			case '#':
				pl.commentCol = i
				break scanning
			case '\'', '"':
				quote = ch
				stringStart = li
				if strings.HasPrefix(raw[i:], strings.Repeat(string(ch), 3)) {
					triple = true
					i += 3
				} else {
					triple = false
					i++
				}
				firstCode = false
				continue
			case '(', '[', '{':
				stack = append(stack, opener{line: li, col: i})
			case ')', ']', '}':
				if n := len(stack); n > 0 {
					open := stack[n-1]
					stack = stack[:n-1]
					if firstCode && open.line < li && r.hanging(open) {
						pl.closers = append(pl.closers, closer{col: i, openerLine: open.line})
					}
				}
			}
			if ch != ' ' && ch != '\t' {
				firstCode = false
			}
			i++
		}
		if quote != 0 && !triple && !strings.HasSuffix(raw, "\\") {
			quote = 0
		}

		if pl.commentCol >= 0 {
			pl.code = string(masked[:pl.commentCol])
			pl.comment = raw[pl.commentCol:]
		} else {
			pl.code = string(masked)
		}
		continued = quote == 0 && strings.HasSuffix(strings.TrimRight(pl.code, " \t"), "\\")
		pl.continued = continued
		r.lines[li] = pl
	}

	r.open = quote != 0 || len(stack) > 0 || continued
	switch {
	case quote != 0:
		return &EOFError{Line: stringStart + 1, Msg: "EOF in multi-line string"}
	case len(stack) > 0 || continued:
		return &EOFError{Line: len(raws) + 1, Msg: "EOF in multi-line statement"}
	}
	return nil
}

// hanging reports whether open is the last code character of its line.
// It is only called once the opener's line has been stored.
func (r *styleRun) hanging(open opener) bool {
	code := strings.TrimRight(r.lines[open.line].code, " \t\\")
	return open.col == len(code)-1
}

func (r *styleRun) check(text string) {
	blankLines, blankBefore := 0, 0
	prevLogical, prevUnindented := "", ""
	prevIndent := 0

	i := 0
	for i < len(r.lines) {
		pl := r.lines[i]
		if pl.blank {
			r.physical(i, text)
			blankLines++
			i++
			continue
		}

		ll, complete := r.logical(i)
		for j := ll.start; j <= ll.end; j++ {
			r.physical(j, text)
			r.whitespace(j)
		}
		i = ll.end + 1
		if !complete {
			return
		}

		if blankBefore < blankLines {
			blankBefore = blankLines
		}
		r.indentation(ll, prevLogical, prevIndent)
		r.blankLines(ll, blankLines, blankBefore, prevLogical, prevIndent, prevUnindented)
		if !ll.commentOnly {
			r.statements(ll)
		}

		if ll.text != "" {
			prevIndent = ll.indent
			prevLogical = ll.text
			if ll.indent == 0 {
				prevUnindented = ll.text
			}
		}
		blankLines = 0
		if !ll.commentOnly {
			blankBefore = 0
		}
	}
}

// logical gathers the logical line starting at physical line start. It
// reports false when the text ends inside it.
func (r *styleRun) logical(start int) (*logicalLine, bool) {
	ll := &logicalLine{start: start, indent: expandIndent(r.lines[start].raw)}
	var sb strings.Builder
	end := start
	for {
		pl := r.lines[end]
		code := pl.code
		if pl.continued {
			code = strings.TrimSuffix(strings.TrimRight(code, " \t"), "\\")
		}
		trimmed := strings.TrimSpace(code)
		if trimmed != "" {
			lead := len(code) - len(strings.TrimLeft(code, " \t"))
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "(") &&
				!strings.HasSuffix(sb.String(), "[") && !strings.HasSuffix(sb.String(), "{") &&
				!strings.HasPrefix(trimmed, ")") && !strings.HasPrefix(trimmed, "]") &&
				!strings.HasPrefix(trimmed, "}") {
				sb.WriteByte(' ')
			}
			ll.mapping = append(ll.mapping, segment{offset: sb.Len(), line: end, col: lead})
			sb.WriteString(trimmed)
		}
		if end+1 >= len(r.lines) {
			break
		}
		next := r.lines[end+1]
		if !next.inString && next.depth == 0 && !pl.continued {
			break
		}
		end++
	}
	ll.end = end
	ll.text = sb.String()
	ll.commentOnly = ll.text == ""

	if end+1 >= len(r.lines) {
		return ll, !r.open
	}
	return ll, true
}

// physical runs the checks that look at one physical line.
func (r *styleRun) physical(i int, text string) {
	pl := r.lines[i]
	raw := pl.raw

	indent := raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))]
	if indent != "" && !pl.inString {
		if r.indentChar == 0 {
			r.indentChar = indent[0]
		}
		for col := 0; col < len(indent); col++ {
			if indent[col] != r.indentChar {
				r.report(i, col, "E101", "indentation contains mixed spaces and tabs")
				break
			}
		}
		if strings.Contains(indent, "\t") {
			r.report(i, strings.Index(indent, "\t"), "W191", "indentation contains tabs")
		}
	}

	stripped := strings.TrimRight(raw, " \t\v")
	if stripped != raw {
		if stripped != "" {
			r.report(i, len(stripped), "W291", "trailing whitespace")
		} else {
			r.report(i, 0, "W293", "whitespace on blank line")
		}
	}

	if length := utf8.RuneCountInString(strings.TrimRight(raw, " \t\v")); length > r.MaxLineLength && !r.longURL(raw) {
		r.report(i, r.MaxLineLength, "E501", fmt.Sprintf("line too long (%d > %d characters)", length, r.MaxLineLength))
	}

	if i == len(r.lines)-1 {
		endsWithNewline := strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\r")
		switch {
		case endsWithNewline && raw == "":
			r.report(i, 0, "W391", "blank line at end of file")
		case !endsWithNewline:
			r.report(i, len(raw), "W292", "no newline at end of file")
		}
	}
}

// longURL allows long lines that are a single token, such as a URL in a
// comment.
func (r *styleRun) longURL(raw string) bool {
	chunks := strings.Fields(raw)
	if len(chunks) == 1 || (len(chunks) == 2 && chunks[0] == "#") {
		last := chunks[len(chunks)-1]
		return utf8.RuneCountInString(raw)-utf8.RuneCountInString(last) < r.MaxLineLength-7
	}
	return false
}

// whitespace runs the whitespace and comment checks of one physical line.
func (r *styleRun) whitespace(i int) {
	pl := r.lines[i]
	if !pl.inString {
		lead := len(pl.code) - len(strings.TrimLeft(pl.code, " \t"))
		seg := strings.TrimRight(pl.code[lead:], " \t")
		if strings.HasSuffix(seg, "\\") {
			seg = strings.TrimRight(strings.TrimSuffix(seg, "\\"), " \t")
		}
		r.extraneous(i, lead, seg)
		r.operators(i, lead, seg)
		r.missingWhitespace(i, lead, seg, pl.depth)
	}
	if pl.commentCol >= 0 {
		r.comments(i, pl)
	}
}

func (r *styleRun) extraneous(i, lead int, seg string) {
	for j := 0; j+1 < len(seg); j++ {
		ch, next := seg[j], seg[j+1]
		switch {
		case strings.IndexByte("([{", ch) >= 0 && (next == ' ' || next == '\t'):
			r.report(i, lead+j+1, "E201", fmt.Sprintf("whitespace after '%c'", ch))
			j++
		case (ch == ' ' || ch == '\t') && strings.IndexByte("]}),;:", next) >= 0:
			if next == ':' && j+2 < len(seg) && seg[j+2] == '=' {
				continue
			}
			if j > 0 && seg[j-1] != ',' {
				code := "E203"
				if strings.IndexByte("]})", next) >= 0 {
					code = "E202"
				}
				r.report(i, lead+j, code, fmt.Sprintf("whitespace before '%c'", next))
			}
			j++
		}
	}
}

func (r *styleRun) operators(i, lead int, seg string) {
	for _, m := range operatorPattern.FindAllStringSubmatchIndex(seg, -1) {
		before := seg[m[2]:m[3]]
		after := seg[m[4]:m[5]]
		switch {
		case strings.Contains(before, "\t"):
			r.report(i, lead+m[2], "E223", "tab before operator")
		case len(before) > 1:
			r.report(i, lead+m[2], "E221", "multiple spaces before operator")
		}
		switch {
		case strings.Contains(after, "\t"):
			r.report(i, lead+m[4], "E224", "tab after operator")
		case len(after) > 1:
			r.report(i, lead+m[4], "E222", "multiple spaces after operator")
		}
	}
}

func (r *styleRun) missingWhitespace(i, lead int, seg string, depth int) {
	lambda := lambdaPattern.MatchString(seg)
	for j := 0; j < len(seg); j++ {
		ch := seg[j]
		switch ch {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		case ',':
			if j+1 < len(seg) && seg[j+1] != ' ' && seg[j+1] != '\t' && seg[j+1] != ')' && seg[j+1] != ']' {
				r.report(i, lead+j, "E231", "missing whitespace after ','")
			}
			continue
		}
		op := ""
		for _, candidate := range spacedOperators {
			if strings.HasPrefix(seg[j:], candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			continue
		}
		end := j + len(op)
		skip := exemptOperators[op] ||
			(op == "=" && (depth > 0 || lambda)) ||
			(op == "->" && !defPattern.MatchString(strings.TrimSpace(seg))) ||
			(j > 0 && strings.IndexByte("=!<>+-*/%&|^:", seg[j-1]) >= 0)
		if !skip {
			spaceBefore := j == 0 || seg[j-1] == ' ' || seg[j-1] == '\t'
			spaceAfter := end >= len(seg) || seg[end] == ' ' || seg[end] == '\t'
			if !spaceBefore || !spaceAfter {
				r.report(i, lead+j, "E225", "missing whitespace around operator")
			}
		}
		j = end - 1
	}
}

func (r *styleRun) comments(i int, pl physLine) {
	text := pl.comment
	inline := strings.TrimSpace(pl.code) != ""
	if inline {
		codeEnd := len(strings.TrimRight(pl.raw[:pl.commentCol], " \t"))
		if pl.commentCol-codeEnd < 2 {
			r.report(i, codeEnd, "E261", "at least two spaces before inline comment")
		}
	}

	symbol, rest, _ := strings.Cut(text, " ")
	badPrefix := ""
	if symbol != "#" && symbol != "#:" {
		badPrefix = "#"
		if s := strings.TrimLeft(symbol, "#"); s != "" {
			badPrefix = s[:1]
		}
	}
	switch {
	case inline:
		if badPrefix != "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
			r.report(i, pl.commentCol, "E262", "inline comment should start with '# '")
		}
	case badPrefix != "" && (badPrefix != "!" || i > 0):
		if badPrefix != "#" {
			r.report(i, pl.commentCol, "E265", "block comment should start with '# '")
		} else if rest != "" {
			r.report(i, pl.commentCol, "E266", "too many leading '#' for block comment")
		}
	}
}

// indentation checks the indent of a logical line against the previous one.
func (r *styleRun) indentation(ll *logicalLine, prevLogical string, prevIndent int) {
	code := func(n int) string { return fmt.Sprintf("E11%d", n) }
	suffix := ""
	offset := 0
	if ll.commentOnly {
		suffix = " (comment)"
		offset = 3
	}
	if ll.indent%indentSize != 0 {
		r.report(ll.start, 0, code(1+offset), "indentation is not a multiple of four"+suffix)
	}
	expect := strings.HasSuffix(prevLogical, ":")
	switch {
	case expect && ll.indent <= prevIndent:
		r.report(ll.start, 0, code(2+offset), "expected an indented block"+suffix)
	case !expect && ll.indent > prevIndent:
		r.report(ll.start, 0, code(3+offset), "unexpected indentation"+suffix)
	}
	if expect && !ll.commentOnly {
		step := indentSize
		if r.indentChar == '\t' {
			step = 8
		}
		if ll.indent > prevIndent+step {
			r.report(ll.start, 0, "E117", "over-indented")
		}
	}

	for j := ll.start; j <= ll.end; j++ {
		for _, c := range r.lines[j].closers {
			openIndent := expandIndent(r.lines[c.openerLine].raw)
			closeIndent := expandIndent(r.lines[j].raw)
			switch {
			case r.HangClosing && closeIndent == openIndent:
				r.report(j, c.col, "E133", "closing bracket is missing indentation")
			case !r.HangClosing && closeIndent > openIndent:
				r.report(j, c.col, "E123", "closing bracket does not match indentation of opening line's bracket")
			}
		}
	}
}

// blankLines checks the blank lines separating definitions.
func (r *styleRun) blankLines(ll *logicalLine, blank, blankBefore int, prevLogical string, prevIndent int, prevUnindented string) {
	line := ll.start
	if prevLogical == "" && blankBefore < topLevelLines {
		return
	}
	switch {
	case strings.HasPrefix(prevLogical, "@"):
		if blank > 0 {
			r.report(line, 0, "E304", fmt.Sprintf("blank lines found after function decorator (%d)", blank))
		}
	case blank > topLevelLines || (ll.indent > 0 && blank == methodLines+1):
		r.report(line, 0, "E303", fmt.Sprintf("too many blank lines (%d)", blank))
	case topLevelPattern.MatchString(ll.text):
		if ll.indent > 0 {
			if blankBefore == methodLines || prevIndent < ll.indent || docstringPattern.MatchString(prevLogical) {
				return
			}
			if r.nestedDefinition(ll) {
				r.report(line, 0, "E306", fmt.Sprintf("expected %d blank line before a nested definition, found 0", methodLines))
			} else {
				r.report(line, 0, "E301", fmt.Sprintf("expected %d blank line, found 0", methodLines))
			}
		} else if blankBefore != topLevelLines {
			r.report(line, 0, "E302", fmt.Sprintf("expected %d blank lines, found %d", topLevelLines, blankBefore))
		}
	case ll.text != "" && ll.indent == 0 && blankBefore != topLevelLines && topLevelPattern.MatchString(prevUnindented):
		r.report(line, 0, "E305", fmt.Sprintf("expected %d blank lines after class or function definition, found %d", topLevelLines, blankBefore))
	}
}

// nestedDefinition reports whether the nearest less indented line above ll
// is a function definition.
func (r *styleRun) nestedDefinition(ll *logicalLine) bool {
	level := ll.indent
	for j := ll.start - 1; j >= 0; j-- {
		raw := r.lines[j].raw
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if ind := expandIndent(raw); ind < level {
			level = ind
			if defPattern.MatchString(strings.TrimLeft(raw, " \t")) {
				return true
			}
			if level == 0 {
				return false
			}
		}
	}
	return false
}

// statements checks imports, compound statements and comparisons of a
// logical line.
func (r *styleRun) statements(ll *logicalLine) {
	text := ll.text
	at := func(offset int, code, msg string) {
		line, col := ll.position(offset)
		r.report(line, col, code, msg)
	}

	if strings.HasPrefix(text, "import ") {
		if k := strings.Index(text, ","); k >= 0 {
			at(k, "E401", "multiple imports on one line")
		}
	}

	r.colons(text, at)
	for k := strings.IndexByte(text, ';'); k >= 0; {
		if k < len(text)-1 {
			at(k, "E702", "multiple statements on one line (semicolon)")
		} else {
			at(k, "E703", "statement ends with a semicolon")
		}
		next := strings.IndexByte(text[k+1:], ';')
		if next < 0 {
			break
		}
		k += next + 1
	}

	for _, m := range compareAfterPattern.FindAllStringSubmatchIndex(text, -1) {
		at(m[2], singletonCode(text[m[4]:m[5]]), singletonMessage(text[m[4]:m[5]], text[m[2]:m[3]]))
	}
	for _, m := range compareBeforePattern.FindAllStringSubmatchIndex(text, -1) {
		at(m[4], singletonCode(text[m[2]:m[3]]), singletonMessage(text[m[2]:m[3]], text[m[4]:m[5]]))
	}

	if k := strings.Index(text, ".has_key("); k >= 0 {
		at(k, "W601", ".has_key() is deprecated, use 'in'")
	}
}

// colons reports compound statements followed by code on the same line
// and lambdas bound to a name.
func (r *styleRun) colons(text string, at func(int, string, string)) {
	depth := 0
	for k := 0; k < len(text)-1; k++ {
		switch text[k] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth > 0 || text[k+1] == '=' {
				continue
			}
			if loc := lambdaPattern.FindStringIndex(text[:k]); loc != nil {
				before := strings.TrimRight(text[:loc[0]], " ")
				if strings.HasSuffix(before, "=") && isIdentifier(strings.TrimSpace(before[:len(before)-1])) {
					at(0, "E731", "do not assign a lambda expression, use a def")
				}
				return
			}
			if defPattern.MatchString(text) {
				continue
			}
			if indentStmtPattern.MatchString(text) {
				at(k, "E701", "multiple statements on one line (colon)")
			}
		}
	}
}

func singletonCode(singleton string) string {
	if singleton == "None" {
		return "E711"
	}
	return "E712"
}

func singletonMessage(singleton, op string) string {
	same := op == "=="
	not := "not "
	if same {
		not = ""
	}
	msg := fmt.Sprintf("comparison to %s should be 'if cond is %s%s:'", singleton, not, singleton)
	if singleton != "None" {
		nonzero := (singleton == "True" && same) || (singleton == "False" && !same)
		prefix := "not "
		if nonzero {
			prefix = ""
		}
		msg += fmt.Sprintf(" or 'if %scond:'", prefix)
	}
	return msg
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for k, ch := range s {
		if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (k > 0 && ch >= '0' && ch <= '9') {
			continue
		}
		return false
	}
	return true
}

// expandIndent measures leading whitespace with tabs at multiples of 8.
func expandIndent(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			n++
		case '\t':
			n = n/8*8 + 8
		default:
			return n
		}
	}
	return n
}
