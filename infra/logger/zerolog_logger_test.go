package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZerologLoggerFields(t *testing.T) {
	t.Setenv("TRANSOPT_ENV", "")
	t.Setenv("TRANSOPT_LOG_LEVEL", "debug")

	var buf bytes.Buffer
	log := newZerologLogger("solver", &buf)
	log.Infof("case %s loaded", "corridor")
	log.Debugw("solving", map[string]any{"rows": 4})

	out := buf.String()
	require.Contains(t, out, `"component":"solver"`)
	require.Contains(t, out, "case corridor loaded")
	require.Contains(t, out, `"rows":4`)
}

func TestZerologLoggerDefaultLevel(t *testing.T) {
	t.Setenv("TRANSOPT_ENV", "")
	t.Setenv("TRANSOPT_LOG_LEVEL", "")

	var buf bytes.Buffer
	log := newZerologLogger("assemble", &buf)
	log.Debugf("hidden")
	log.Warnf("visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}
