// Package language classifies source files by path.
//
// Classification never looks at file contents: the same path always
// yields the same Language.
package language

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Language identifies which checker battery applies to a file.
type Language int

const (
	Unknown Language = iota
	Text
	Python
	Doctest
	CSS
	JavaScript
	SH
	XML
	XSLT
	HTML
	Template
	Config
	DocBook
	Log
	SQL
)

var names = map[Language]string{
	Unknown:    "unknown",
	Text:       "text",
	Python:     "python",
	Doctest:    "doctest",
	CSS:        "css",
	JavaScript: "javascript",
	SH:         "sh",
	XML:        "xml",
	XSLT:       "xslt",
	HTML:       "html",
	Template:   "template",
	Config:     "config",
	DocBook:    "docbook",
	Log:        "log",
	SQL:        "sql",
}

func (l Language) String() string {
	if n, ok := names[l]; ok {
		return n
	}
	return "unknown"
}

// IsXMLLike reports whether l is checked as markup.
func (l Language) IsXMLLike() bool {
	switch l {
	case XML, XSLT, HTML, Template, Config, DocBook:
		return true
	}
	return false
}

// Doctests are easily mistyped by extension, so the path pattern wins.
var doctestPattern = regexp.MustCompile(`^.*(doc|test|stories).*/.*\.(txt|doctest)$`)

// mimeTypes maps lower-case extensions to mime-like signatures. It covers
// the common source and binary formats plus the project specific ones.
var mimeTypes = map[string]string{
	".txt":     "text/plain",
	".text":    "text/plain",
	".rst":     "text/x-rst",
	".md":      "text/markdown",
	".csv":     "text/csv",
	".py":      "text/x-python",
	".pyw":     "text/x-python",
	".tac":     "text/x-twisted-application",
	".doctest": "text/x-python-doctest",
	".css":     "text/css",
	".html":    "text/html",
	".htm":     "text/html",
	".xhtml":   "application/xhtml+xml",
	".js":      "application/javascript",
	".mjs":     "application/javascript",
	".json":    "application/json",
	".xml":     "application/xml",
	".xsd":     "application/xml",
	".xsl":     "application/xslt+xml",
	".xslt":    "application/xslt+xml",
	".dbk":     "application/docbook+xml",
	".docbook": "application/docbook+xml",
	".svg":     "image/svg+xml",
	".rss":     "application/rss+xml",
	".zcml":    "application/x-zope-configuration",
	".pt":      "application/x-zope-page-template",
	".sh":      "application/x-sh",
	".bash":    "application/x-sh",
	".sql":     "text/x-sql",
	".log":     "text/x-log",
	".c":       "text/x-csrc",
	".h":       "text/x-chdr",
	".cfg":     "text/plain",
	".ini":     "text/plain",
	".bin":     "application/octet-stream",
	".exe":     "application/octet-stream",
	".so":      "application/octet-stream",
	".pyc":     "application/x-python-code",
	".png":     "image/png",
	".gif":     "image/gif",
	".jpg":     "image/jpeg",
	".jpeg":    "image/jpeg",
	".ico":     "image/vnd.microsoft.icon",
	".pdf":     "application/pdf",
	".zip":     "application/zip",
	".gz":      "application/gzip",
	".tar":     "application/x-tar",
}

var mimeLanguage = map[string]Language{
	"text/x-python":                    Python,
	"text/x-twisted-application":       Python,
	"text/x-python-doctest":            Doctest,
	"text/css":                         CSS,
	"text/html":                        HTML,
	"text/plain":                       Text,
	"text/x-sql":                       SQL,
	"text/x-log":                       Log,
	"application/javascript":           JavaScript,
	"application/xml":                  XML,
	"application/xslt+xml":             XSLT,
	"application/docbook+xml":          DocBook,
	"application/x-sh":                 SH,
	"application/x-zope-configuration": Config,
	"application/x-zope-page-template": Template,
}

// xmlFamily lists signatures that are markup without a dedicated tag.
var xmlFamily = map[string]bool{
	"text/xml":              true,
	"application/xhtml+xml": true,
}

// MimeType returns the mime-like signature derived from the extension of
// path, or "" when the extension is not known.
func MimeType(path string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(path))]
}

// Classify returns the Language of the file at path.
func Classify(path string) Language {
	lang, _ := ClassifyWithConfidence(path)
	return lang
}

// ClassifyWithConfidence is Classify that also reports whether the result
// came from a known signature. A false confidence means the file had no
// signature and was assumed to be text.
func ClassifyWithConfidence(path string) (Language, bool) {
	if doctestPattern.MatchString(filepath.ToSlash(path)) {
		return Doctest, true
	}
	mime := MimeType(path)
	if mime == "" {
		// This could be a very bad guess.
		return Text, false
	}
	if lang, ok := mimeLanguage[mime]; ok {
		return lang, true
	}
	if xmlFamily[mime] || strings.HasSuffix(mime, "+xml") {
		return XML, true
	}
	if strings.HasPrefix(mime, "text/") {
		return Text, true
	}
	return Unknown, true
}

// IsEditable reports whether path looks like a source file that can be
// checked. Binary and application data formats are not editable.
func IsEditable(path string) bool {
	return Classify(path) != Unknown
}
