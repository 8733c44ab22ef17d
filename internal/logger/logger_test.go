package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("fetched source", "source", "weibo", "records", 50)

	out := buf.String()
	assert.Contains(t, out, "fetched source")
	assert.Contains(t, out, "source=weibo")
	assert.Contains(t, out, "records=50")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestInfoAndWarn_AlwaysEmitted(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Info("snapshot saved", "id", 7)
	Warn("source failed", "source", "cls")

	out := buf.String()
	assert.Contains(t, out, "snapshot saved")
	assert.Contains(t, out, "id=7")
	assert.Contains(t, out, "source failed")
}

func TestComponent_AddsAttribute(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Component("scheduler").Info("tick")

	assert.Contains(t, buf.String(), "component=scheduler")
}

func TestSection(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Ingestion")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Section("Ingestion")
	assert.Equal(t, "\n=== Ingestion ===\n", buf.String())
}

func TestNew_NoColorForBuffers(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("plain")

	assert.NotContains(t, buf.String(), "\x1b[")
}
