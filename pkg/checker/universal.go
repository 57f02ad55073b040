package checker

import (
	"context"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/language"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// factories maps a language to its checker. Markup languages share the
// XML checker and are resolved by Lookup.
var factories = map[language.Language]Factory{
	language.Python:     NewPython,
	language.Doctest:    NewDoctest,
	language.CSS:        NewCSS,
	language.JavaScript: NewJavaScript,
	language.SQL:        NewSQL,
	language.SH:         NewShell,
}

// Lookup returns the Factory for lang. Log files have none.
func Lookup(lang language.Language) (Factory, bool) {
	if f, ok := factories[lang]; ok {
		return f, true
	}
	switch {
	case lang == language.Log:
		return nil, false
	case lang.IsXMLLike():
		return NewXML, true
	}
	return NewAnyText, true
}

// Universal checks text as a file of the given language.
func Universal(ctx context.Context, path, text string, lang language.Language, r *report.Reporter, opts *options.Options) {
	factory, ok := Lookup(lang)
	if !ok {
		logging.Scoped(ctx, "checker").Debug("no checker", "file", path, "language", lang)
		return
	}
	logging.Scoped(ctx, "checker").Debug("checking", "file", path, "language", lang)
	factory(path, text, r, opts).Check(ctx)
}
