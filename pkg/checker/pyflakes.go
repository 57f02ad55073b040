package checker

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// IgnoreMarker suppresses every static analysis warning on its line.
const IgnoreMarker = "pyflakes:ignore"

// Warning is one static analysis result.
type Warning struct {
	Line    int
	Message string
}

type bindingKind int

const (
	bindPlain bindingKind = iota
	bindAssign
	bindParam
	bindImport
	bindFunction
	bindClass
)

type binding struct {
	name        string
	kind        bindingKind
	line        int
	used        bool
	display     string
	submodule   bool
	conditional bool
	decorated   bool
}

// redefines reports whether b replacing old is worth a warning.
func (b *binding) redefines(old *binding) bool {
	switch b.kind {
	case bindImport, bindFunction, bindClass:
	default:
		return false
	}
	switch old.kind {
	case bindImport, bindFunction, bindClass:
	default:
		return false
	}
	return !old.used && !old.conditional && !b.conditional &&
		!old.submodule && !b.submodule && !old.decorated && !b.decorated
}

type scopeKind int

const (
	moduleScope scopeKind = iota
	classScope
	functionScope
	comprehensionScope
)

type scope struct {
	kind       scopeKind
	bindings   map[string]*binding
	order      []string
	globals    map[string]bool
	nonlocals  map[string]bool
	usesLocals bool
}

func newScope(kind scopeKind) *scope {
	return &scope{
		kind:      kind,
		bindings:  make(map[string]*binding),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
	}
}

// Flakes finds undefined names, unused locals, unused imports and
// redefinitions in a parsed Python module. Function bodies are analysed
// after the module body, so functions may refer to names bound later.
type Flakes struct {
	// Ignore suppresses the warnings of a line. The default skips lines
	// containing IgnoreMarker.
	Ignore func(line int) bool

	src         []byte
	lines       []string
	warnings    []Warning
	stack       []*scope
	module      *scope
	deferred    []func()
	conditional int
	wildcard    bool
	exports     map[string]bool
}

// NewFlakes returns an analyser for src.
func NewFlakes(src []byte) *Flakes {
	f := &Flakes{
		src:     src,
		lines:   splitLines(string(src)),
		exports: make(map[string]bool),
	}
	f.Ignore = f.hasIgnoreMarker
	return f
}

func (f *Flakes) hasIgnoreMarker(line int) bool {
	i := line - 1
	return i >= 0 && i < len(f.lines) && strings.Contains(f.lines[i], IgnoreMarker)
}

// Check analyses the module rooted at root. Warnings are ordered by line,
// in emission order within a line.
func (f *Flakes) Check(root *sitter.Node) []Warning {
	f.module = newScope(moduleScope)
	f.stack = []*scope{f.module}
	f.visitChildren(root)

	for len(f.deferred) > 0 {
		pending := f.deferred
		f.deferred = nil
		for _, run := range pending {
			run()
		}
	}
	f.stack = []*scope{f.module}
	f.reportUnused(f.module)

	sort.SliceStable(f.warnings, func(i, j int) bool {
		return f.warnings[i].Line < f.warnings[j].Line
	})
	return f.warnings
}

func (f *Flakes) report(line int, format string, args ...any) {
	if f.Ignore != nil && f.Ignore(line) {
		return
	}
	f.warnings = append(f.warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (f *Flakes) current() *scope {
	return f.stack[len(f.stack)-1]
}

func (f *Flakes) push(kind scopeKind) {
	f.stack = append(f.stack, newScope(kind))
}

func (f *Flakes) pop() {
	f.stack = f.stack[:len(f.stack)-1]
}

func (f *Flakes) text(n *sitter.Node) string {
	return n.Content(f.src)
}

func nodeLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (f *Flakes) visitChildren(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		f.visit(c)
	}
}

func (f *Flakes) visit(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		f.load(n)
	case "dotted_name":
		if first := n.NamedChild(0); first != nil {
			f.load(first)
		}
	case "attribute":
		f.visit(n.ChildByFieldName("object"))
	case "keyword_argument":
		f.visit(n.ChildByFieldName("value"))
	case "import_statement":
		f.importStatement(n)
	case "import_from_statement":
		f.importFrom(n)
	case "future_import_statement":
	case "function_definition":
		f.functionDef(n, false)
	case "class_definition":
		f.classDef(n, false)
	case "decorated_definition":
		f.decoratedDef(n)
	case "lambda":
		f.lambda(n)
	case "assignment":
		f.assignment(n)
	case "augmented_assignment":
		f.visit(n.ChildByFieldName("right"))
		left := n.ChildByFieldName("left")
		f.visit(left)
		f.bindTargets(left, bindPlain)
	case "named_expression":
		f.visit(n.ChildByFieldName("value"))
		if name := n.ChildByFieldName("name"); name != nil {
			f.bindNamed(name)
		}
	case "for_statement":
		f.visit(n.ChildByFieldName("right"))
		f.bindTargets(n.ChildByFieldName("left"), bindPlain)
		f.visit(n.ChildByFieldName("body"))
		f.visit(n.ChildByFieldName("alternative"))
	case "with_item":
		f.withItem(n)
	case "except_clause", "except_group_clause":
		f.exceptClause(n)
	case "global_statement":
		for _, c := range namedChildren(n) {
			f.current().globals[f.text(c)] = true
		}
	case "nonlocal_statement":
		for _, c := range namedChildren(n) {
			f.current().nonlocals[f.text(c)] = true
		}
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		f.comprehension(n)
	case "if_statement", "try_statement":
		f.conditional++
		f.visitChildren(n)
		f.conditional--
	case "case_clause":
		f.caseClause(n)
	case "comment", "string_start", "string_content", "string_end", "escape_sequence",
		"integer", "float", "true", "false", "none", "ellipsis", "type_conversion":
	default:
		f.visitChildren(n)
	}
}

// lookup resolves name from the innermost scope outwards. Class scopes are
// only visible from their own body.
func (f *Flakes) lookup(name string) *binding {
	innermost := len(f.stack) - 1
	for i := innermost; i >= 0; i-- {
		s := f.stack[i]
		if s.kind == classScope && i != innermost {
			continue
		}
		if b, ok := s.bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (f *Flakes) declared(name string) bool {
	for _, s := range f.stack {
		if s.globals[name] || s.nonlocals[name] {
			return true
		}
	}
	return false
}

func (f *Flakes) load(n *sitter.Node) {
	name := f.text(n)
	if name == "locals" {
		for i := len(f.stack) - 1; i >= 0; i-- {
			if f.stack[i].kind == functionScope {
				f.stack[i].usesLocals = true
				break
			}
		}
	}
	if b := f.lookup(name); b != nil {
		b.used = true
		return
	}
	if builtins[name] || f.wildcard || f.declared(name) {
		return
	}
	f.report(nodeLine(n), "undefined name '%s'", name)
}

func (f *Flakes) bindIn(s *scope, n *sitter.Node, name string, kind bindingKind) *binding {
	if s.globals[name] {
		s = f.module
	} else if s.nonlocals[name] {
		return nil
	}
	b := &binding{
		name:        name,
		kind:        kind,
		line:        nodeLine(n),
		conditional: f.conditional > 0,
	}
	if old, ok := s.bindings[name]; ok {
		if b.redefines(old) {
			f.report(b.line, "redefinition of unused '%s' from line %d", name, old.line)
		}
		b.used = old.used
	} else {
		s.order = append(s.order, name)
	}
	s.bindings[name] = b
	return b
}

func (f *Flakes) bind(n *sitter.Node, kind bindingKind) *binding {
	return f.bindIn(f.current(), n, f.text(n), kind)
}

// bindNamed binds an assignment expression target in the nearest scope
// that is not a comprehension.
func (f *Flakes) bindNamed(n *sitter.Node) {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].kind != comprehensionScope {
			f.bindIn(f.stack[i], n, f.text(n), bindPlain)
			return
		}
	}
}

// bindTargets binds the names of an assignment target. Unpacked names are
// never reported as unused; attributes and subscripts are loads.
func (f *Flakes) bindTargets(n *sitter.Node, kind bindingKind) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		f.bind(n, kind)
	case "parenthesized_expression", "as_pattern_target":
		for _, c := range namedChildren(n) {
			f.bindTargets(c, kind)
		}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"expression_list", "list_splat_pattern", "list_splat":
		for _, c := range namedChildren(n) {
			f.bindTargets(c, bindPlain)
		}
	case "comment":
	default:
		f.visit(n)
	}
}

func (f *Flakes) assignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	f.visit(n.ChildByFieldName("type"))
	f.visit(right)

	kind := bindAssign
	if right == nil {
		kind = bindPlain
	}
	f.bindTargets(left, kind)

	if left != nil && left.Type() == "identifier" && f.text(left) == "__all__" && f.current() == f.module {
		f.collectExports(right)
	}
}

// collectExports records the names listed in a module's __all__.
func (f *Flakes) collectExports(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "list", "tuple":
		for _, c := range namedChildren(n) {
			if c.Type() == "string" {
				f.exports[strings.Trim(f.text(c), `'"`)] = true
			}
		}
	}
}

func (f *Flakes) importStatement(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "dotted_name":
			full := f.text(c)
			first := c.NamedChild(0)
			if first == nil {
				continue
			}
			b := f.bind(first, bindImport)
			if b != nil {
				b.display = full
				b.submodule = strings.Contains(full, ".")
			}
		case "aliased_import":
			name := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			if b := f.bind(alias, bindImport); b != nil {
				b.display = f.text(name) + " as " + f.text(alias)
			}
		}
	}
}

func (f *Flakes) importFrom(n *sitter.Node) {
	module := n.ChildByFieldName("module_name")
	moduleName := ""
	if module != nil {
		moduleName = f.text(module)
	}
	for _, c := range namedChildren(n) {
		if module != nil && c.StartByte() == module.StartByte() {
			continue
		}
		switch c.Type() {
		case "wildcard_import":
			if f.current() == f.module {
				f.wildcard = true
			}
			f.report(nodeLine(c), "'from %s import *' used; unable to detect undefined names", moduleName)
		case "dotted_name":
			if b := f.bind(c, bindImport); b != nil {
				b.display = qualify(moduleName, f.text(c))
			}
		case "aliased_import":
			name := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			if b := f.bind(alias, bindImport); b != nil {
				b.display = qualify(moduleName, f.text(name)) + " as " + f.text(alias)
			}
		}
	}
}

func qualify(module, name string) string {
	if strings.HasSuffix(module, ".") {
		return module + name
	}
	return module + "." + name
}

// paramExprs evaluates defaults and annotations in the defining scope.
func (f *Flakes) paramExprs(params *sitter.Node) {
	for _, p := range namedChildren(params) {
		switch p.Type() {
		case "default_parameter":
			f.visit(p.ChildByFieldName("value"))
		case "typed_parameter":
			f.visit(p.ChildByFieldName("type"))
		case "typed_default_parameter":
			f.visit(p.ChildByFieldName("type"))
			f.visit(p.ChildByFieldName("value"))
		}
	}
}

func (f *Flakes) bindParams(params *sitter.Node) {
	for _, p := range namedChildren(params) {
		switch p.Type() {
		case "identifier":
			f.bind(p, bindParam)
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				f.bindParamNames(name)
			}
		case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			for _, c := range namedChildren(p) {
				if c.Type() == "type" {
					continue
				}
				f.bindParamNames(c)
			}
		}
	}
}

func (f *Flakes) bindParamNames(n *sitter.Node) {
	if n.Type() == "identifier" {
		f.bind(n, bindParam)
		return
	}
	for _, c := range namedChildren(n) {
		f.bindParamNames(c)
	}
}

// deferFunction analyses a function body once the enclosing module has
// been fully bound.
func (f *Flakes) deferFunction(params, body *sitter.Node) {
	saved := append([]*scope(nil), f.stack...)
	f.deferred = append(f.deferred, func() {
		f.stack = append(saved, newScope(functionScope))
		outer := f.conditional
		f.conditional = 0
		f.bindParams(params)
		if body != nil && body.Type() != "block" {
			f.visit(body)
		} else {
			f.visitChildren(body)
		}
		f.reportUnused(f.current())
		f.conditional = outer
	})
}

func (f *Flakes) functionDef(n *sitter.Node, decorated bool) {
	params := n.ChildByFieldName("parameters")
	f.paramExprs(params)
	f.visit(n.ChildByFieldName("return_type"))
	if name := n.ChildByFieldName("name"); name != nil {
		if b := f.bind(name, bindFunction); b != nil {
			b.decorated = decorated
		}
	}
	f.deferFunction(params, n.ChildByFieldName("body"))
}

func (f *Flakes) lambda(n *sitter.Node) {
	params := n.ChildByFieldName("parameters")
	f.paramExprs(params)
	f.deferFunction(params, n.ChildByFieldName("body"))
}

func (f *Flakes) classDef(n *sitter.Node, decorated bool) {
	f.visit(n.ChildByFieldName("superclasses"))
	f.push(classScope)
	f.visitChildren(n.ChildByFieldName("body"))
	f.pop()
	if name := n.ChildByFieldName("name"); name != nil {
		if b := f.bind(name, bindClass); b != nil {
			b.decorated = decorated
		}
	}
}

func (f *Flakes) decoratedDef(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		if c.Type() == "decorator" {
			f.visitChildren(c)
		}
	}
	def := n.ChildByFieldName("definition")
	if def == nil {
		return
	}
	switch def.Type() {
	case "function_definition":
		f.functionDef(def, true)
	case "class_definition":
		f.classDef(def, true)
	default:
		f.visit(def)
	}
}

func (f *Flakes) withItem(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	if value != nil && value.Type() == "as_pattern" {
		if expr := value.NamedChild(0); expr != nil {
			f.visit(expr)
		}
		f.bindTargets(value.ChildByFieldName("alias"), bindPlain)
	} else {
		f.visit(value)
	}
	f.bindTargets(n.ChildByFieldName("alias"), bindPlain)
}

func (f *Flakes) exceptClause(n *sitter.Node) {
	kids := children(n)
	for i := 0; i < len(kids); i++ {
		c := kids[i]
		switch {
		case c.Type() == "as_pattern":
			if expr := c.NamedChild(0); expr != nil {
				f.visit(expr)
			}
			f.bindTargets(c.ChildByFieldName("alias"), bindPlain)
		case !c.IsNamed() && (c.Type() == "as" || c.Type() == ","):
			if i+1 < len(kids) {
				f.bindTargets(kids[i+1], bindPlain)
				i++
			}
		case c.IsNamed():
			f.visit(c)
		}
	}
}

func (f *Flakes) comprehension(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	f.push(comprehensionScope)
	for _, c := range namedChildren(n) {
		if body != nil && c.StartByte() == body.StartByte() && c.Type() == body.Type() {
			continue
		}
		switch c.Type() {
		case "for_in_clause":
			f.visit(c.ChildByFieldName("right"))
			f.bindTargets(c.ChildByFieldName("left"), bindPlain)
		default:
			f.visit(c)
		}
	}
	f.visit(body)
	f.pop()
}

// caseClause binds capture names of a match case. Names already bound are
// treated as value patterns.
func (f *Flakes) caseClause(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		if c.Type() == "case_pattern" {
			f.bindCaptures(c)
			continue
		}
		f.visit(c)
	}
}

func (f *Flakes) bindCaptures(n *sitter.Node) {
	if n.Type() == "identifier" {
		if b := f.lookup(f.text(n)); b != nil {
			b.used = true
			return
		}
		if !builtins[f.text(n)] {
			f.bind(n, bindPlain)
		}
		return
	}
	for _, c := range namedChildren(n) {
		f.bindCaptures(c)
	}
}

// reportUnused reports the unused imports of s and, in functions, the
// unused local assignments.
func (f *Flakes) reportUnused(s *scope) {
	for _, name := range s.order {
		b := s.bindings[name]
		if b.used || s.globals[name] {
			continue
		}
		switch b.kind {
		case bindImport:
			if s == f.module && f.exports[name] {
				continue
			}
			f.report(b.line, "'%s' imported but unused", b.display)
		case bindAssign:
			if s.kind != functionScope || name == "_" || s.usesLocals {
				continue
			}
			f.report(b.line, "local variable '%s' is assigned to but never used", name)
		}
	}
}

var builtins = func() map[string]bool {
	names := []string{
		"__name__", "__file__", "__doc__", "__builtins__", "__package__",
		"__spec__", "__loader__", "__path__", "__annotations__", "__dict__",
		"__module__", "__qualname__", "__class__", "__debug__", "__import__",
		"abs", "aiter", "all", "anext", "any", "ascii", "bin", "bool",
		"breakpoint", "bytearray", "bytes", "callable", "chr", "classmethod",
		"compile", "complex", "copyright", "credits", "delattr", "dict", "dir",
		"divmod", "enumerate", "eval", "exec", "exit", "filter", "float",
		"format", "frozenset", "getattr", "globals", "hasattr", "hash", "help",
		"hex", "id", "input", "int", "isinstance", "issubclass", "iter", "len",
		"license", "list", "locals", "map", "max", "memoryview", "min", "next",
		"object", "oct", "open", "ord", "pow", "print", "property", "quit",
		"range", "repr", "reversed", "round", "set", "setattr", "slice",
		"sorted", "staticmethod", "str", "sum", "super", "tuple", "type",
		"vars", "zip", "NotImplemented", "Ellipsis", "True", "False", "None",
		// Python 2
		"apply", "basestring", "buffer", "cmp", "coerce", "execfile", "file",
		"intern", "long", "raw_input", "reduce", "reload", "unichr", "unicode",
		"xrange", "WindowsError",
		// exceptions and warnings
		"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
		"BaseExceptionGroup", "BlockingIOError", "BrokenPipeError",
		"BufferError", "BytesWarning", "ChildProcessError",
		"ConnectionAbortedError", "ConnectionError", "ConnectionRefusedError",
		"ConnectionResetError", "DeprecationWarning", "EncodingWarning",
		"EnvironmentError", "EOFError", "Exception", "ExceptionGroup",
		"FileExistsError", "FileNotFoundError", "FloatingPointError",
		"FutureWarning", "GeneratorExit", "ImportError", "ImportWarning",
		"IndentationError", "IndexError", "InterruptedError", "IOError",
		"IsADirectoryError", "KeyboardInterrupt", "KeyError", "LookupError",
		"MemoryError", "ModuleNotFoundError", "NameError",
		"NotADirectoryError", "NotImplementedError", "OSError",
		"OverflowError", "PendingDeprecationWarning", "PermissionError",
		"ProcessLookupError", "RecursionError", "ReferenceError",
		"ResourceWarning", "RuntimeError", "RuntimeWarning",
		"StandardError", "StopAsyncIteration", "StopIteration", "SyntaxError",
		"SyntaxWarning", "SystemError", "SystemExit", "TabError",
		"TimeoutError", "TypeError", "UnboundLocalError",
		"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeError",
		"UnicodeTranslateError", "UnicodeWarning", "UserWarning",
		"ValueError", "Warning", "ZeroDivisionError",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()
