package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LevelFollowsDebug(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(Config{Writer: &buf})
	quiet.Debug("hidden")
	quiet.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	loud := New(Config{Writer: &buf, Debug: true})
	loud.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, JSON: true}).Warn("x", "file", "a.py")
	assert.Contains(t, buf.String(), `"file":"a.py"`)
}

func TestScoped_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Writer: &buf, Debug: true}))
	Scoped(ctx, "css").Debug("parsed")
	assert.Contains(t, buf.String(), "component=css")
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv("SCAME_DEBUG", "true")
	assert.True(t, DebugFromEnv())
	t.Setenv("SCAME_DEBUG", "")
	assert.False(t, DebugFromEnv())
}
