package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"foo/tests/sample.doctest", Doctest},
		{"docs/usage.txt", Doctest},
		{"lib/stories/intro.txt", Doctest},
		{"notes.txt", Text},
		{"style.css", CSS},
		{"pkg/module.py", Python},
		{"server.tac", Python},
		{"script.js", JavaScript},
		{"page.html", HTML},
		{"page.xhtml", XML},
		{"data.xml", XML},
		{"transform.xsl", XSLT},
		{"book.docbook", DocBook},
		{"icon.svg", XML},
		{"configure.zcml", Config},
		{"view.pt", Template},
		{"build.sh", SH},
		{"schema.sql", SQL},
		{"server.log", Log},
		{"README", Text},
		{"main.c", Text},
		{"unknown.bin", Unknown},
		{"logo.png", Unknown},
		{"data.json", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Doctest, Classify("foo/tests/sample.doctest"))
		assert.Equal(t, CSS, Classify("style.css"))
	}
}

func TestClassifyWithConfidence_NoSignature(t *testing.T) {
	lang, confident := ClassifyWithConfidence("Makefile")
	assert.Equal(t, Text, lang)
	assert.False(t, confident)

	lang, confident = ClassifyWithConfidence("a.py")
	assert.Equal(t, Python, lang)
	assert.True(t, confident)
}

func TestIsEditable(t *testing.T) {
	assert.True(t, IsEditable("a.py"))
	assert.True(t, IsEditable("README"))
	assert.False(t, IsEditable("unknown.bin"))
	assert.False(t, IsEditable("archive.zip"))
}

func TestIsXMLLike(t *testing.T) {
	for _, l := range []Language{XML, XSLT, HTML, Template, Config, DocBook} {
		assert.True(t, l.IsXMLLike(), l.String())
	}
	for _, l := range []Language{Text, Python, CSS, SQL, Log, Unknown} {
		assert.False(t, l.IsXMLLike(), l.String())
	}
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "text/css", MimeType("a/B.CSS"))
	assert.Equal(t, "", MimeType("Makefile"))
}
