package checker

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// CSSValidator parses a style sheet and logs every problem it finds to
// log. Records are translated into findings by their message shape.
type CSSValidator interface {
	Validate(ctx context.Context, text string, log *slog.Logger)
}

// CSS checks style sheets: validation, line checks and then the coding
// conventions, which rely on the earlier passes.
type CSS struct {
	Base
	Validator CSSValidator
}

// NewCSS is the Factory of CSS. It validates with the tree-sitter parser.
func NewCSS(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &CSS{Base: NewBase(path, text, r, opts), Validator: TreeSitterCSS{}}
}

// CSSWith returns a Factory validating with v. A nil validator skips
// validation.
func CSSWith(v CSSValidator) Factory {
	return func(path, text string, r *report.Reporter, opts *options.Options) Checker {
		return &CSS{Base: NewBase(path, text, r, opts), Validator: v}
	}
}

// Check implements Checker.
func (c *CSS) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()

	c.validate(ctx)
	c.eachLine(c.checkLength, c.checkTrailingWhitespace, c.checkConflicts, c.checkTab)
	NewConventions(c.Text, func(line int, msg string) {
		c.Message(line, msg, report.SeverityInfo, "csscc")
	}).Check()
}

// validate runs the validator with a logger that lives for this call only.
func (c *CSS) validate(ctx context.Context) {
	if c.Validator == nil {
		return
	}
	c.Validator.Validate(ctx, c.Text, slog.New(&cssLogHandler{checker: c}))
}

var (
	// "CSSValidator Unexpected token. [3:5: color]"
	cssPositionPattern = regexp.MustCompile(`^[^ ]+ (?P<issue>.*) \[(?P<lineno>\d+):\d+: (?P<text>.+)\]`)

	// "Duplicate property: (color, red), 4, 3"
	cssTuplePattern = regexp.MustCompile(`^(?P<issue>[^(]+): \((?P<text>[^,]+, [^,)]+)\), (?P<lineno>\d+).*`)
)

// cssLogHandler is a slog.Handler reporting each record as a finding.
type cssLogHandler struct {
	checker *CSS
	attrs   []slog.Attr
}

func (h *cssLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (h *cssLogHandler) Handle(_ context.Context, rec slog.Record) error {
	sev := report.SeverityInfo
	if rec.Level >= slog.LevelError {
		sev = report.SeverityError
	}
	line, msg := translateCSSRecord(rec.Message)
	h.checker.Message(line, msg, sev, "css")
	return nil
}

func (h *cssLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cssLogHandler{checker: h.checker, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h *cssLogHandler) WithGroup(string) slog.Handler {
	return h
}

// translateCSSRecord extracts the line and message of a validator record.
// Records of unknown shape are reported whole at line 0.
func translateCSSRecord(message string) (int, string) {
	for _, re := range []*regexp.Regexp{cssPositionPattern, cssTuplePattern} {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		line, err := strconv.Atoi(m[re.SubexpIndex("lineno")])
		if err != nil {
			continue
		}
		return line, m[re.SubexpIndex("issue")] + ": " + m[re.SubexpIndex("text")]
	}
	return 0, message
}
