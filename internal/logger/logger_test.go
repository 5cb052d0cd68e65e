package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepDefault(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })
}

func TestInitLevels(t *testing.T) {
	keepDefault(t)

	var buf bytes.Buffer
	require.NoError(t, Init(Options{NoColor: true, Output: &buf}))
	log.Info("hidden")
	log.Warn("shown", "fn", "main")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "IRVM")
	assert.Contains(t, buf.String(), "shown fn=main")

	buf.Reset()
	require.NoError(t, Init(Options{NoColor: true, Level: "info", Output: &buf}))
	log.Info("info line")
	assert.Contains(t, buf.String(), "info line")

	buf.Reset()
	require.NoError(t, Init(Options{NoColor: true, Verbose: true, Level: "error", Output: &buf}))
	log.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestInitBadLevel(t *testing.T) {
	keepDefault(t)
	assert.Error(t, Init(Options{Level: "loud"}))
}
