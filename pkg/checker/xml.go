package checker

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/language"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// xhtmlDoctype is injected into documents without a DOCTYPE. It spans
// doctypeLines lines, which are subtracted from reported error lines.
const xhtmlDoctype = `
        <!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN"
          "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
        `

const doctypeLines = 3

var xmlDeclPattern = regexp.MustCompile(`<\?xml .*?\?>`)

// XML checks that XML-family documents are well formed. HTML entities are
// always known. HTML files are parsed leniently with automatic closing of
// void elements.
type XML struct {
	Base
	lenient bool
}

// NewXML is the Factory of XML.
func NewXML(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &XML{
		Base:    NewBase(path, text, r, opts),
		lenient: language.Classify(path) == language.HTML,
	}
}

// Check implements Checker.
func (c *XML) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()
	if line, msg, err := c.parse(); err != nil {
		logging.Scoped(ctx, "xml").Debug("parse failed", "file", c.Path, "error", err)
		c.Message(line, msg, report.SeverityError, "xml")
	}
	c.eachLine(c.checkTrailingWhitespace, c.checkConflicts)
}

// parse decodes the whole document. On failure it returns the line of the
// error in the original text and its message.
func (c *XML) parse() (int, string, error) {
	text, offset := withDoctype(c.Text)

	d := xml.NewDecoder(strings.NewReader(text))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charsetReader
	if c.lenient {
		d.Strict = false
		d.AutoClose = xml.HTMLAutoClose
	}
	at := func(line int) int { return max(line-offset, 0) }

	depth, roots := 0, 0
	for {
		startLine, _ := d.InputPos()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if roots == 0 {
				line, _ := d.InputPos()
				return at(line), "no element found", errNoRoot
			}
			return 0, "", nil
		}
		if err == nil {
			if msg := outsideRoot(tok, depth, roots); msg != "" {
				line := startLine
				if data, ok := tok.(xml.CharData); ok {
					line += strings.Count(string(data[:len(data)-len(bytes.TrimLeft(data, " \t\r\n"))]), "\n")
				}
				return at(line), msg, errOutsideRoot
			}
			switch tok.(type) {
			case xml.StartElement:
				if depth == 0 {
					roots++
				}
				depth++
			case xml.EndElement:
				depth--
			}
			continue
		}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return at(syntaxErr.Line), syntaxErr.Msg, err
		}
		return 0, err.Error(), err
	}
}

var (
	errNoRoot      = errors.New("document has no root element")
	errOutsideRoot = errors.New("content outside the root element")
)

// outsideRoot checks a token against the single root element rule. The
// decoder accepts any sequence of elements, so it cannot catch these.
func outsideRoot(tok xml.Token, depth, roots int) string {
	if depth > 0 {
		return ""
	}
	switch t := tok.(type) {
	case xml.StartElement:
		if roots > 0 {
			return "junk after document element"
		}
	case xml.CharData:
		if len(bytes.TrimSpace(t)) == 0 {
			return ""
		}
		if roots > 0 {
			return "junk after document element"
		}
		return "syntax error"
	}
	return ""
}

// withDoctype injects the XHTML DOCTYPE unless the text has one, in place
// of the XML declaration when there is one.
func withDoctype(text string) (string, int) {
	if strings.Contains(text, "<!DOCTYPE") {
		return text, 0
	}
	if loc := xmlDeclPattern.FindStringIndex(text); loc != nil {
		return text[:loc[0]] + xhtmlDoctype + text[loc[1]:], doctypeLines
	}
	return xhtmlDoctype + text, doctypeLines
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
