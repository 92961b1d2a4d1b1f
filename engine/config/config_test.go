package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.GreaterOrEqual(t, c.Workers, 1)
	assert.Equal(t, 256, c.QueueSize)
	assert.Equal(t, time.Second, c.IdleTimeout)
	assert.Equal(t, raycast.PickNearest, c.Pick())
	assert.Equal(t, time.Second/60, c.FramePeriod())
	assert.Nil(t, c.NewLogger(&bytes.Buffer{}))
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
workers: 3
idle_timeout: 250ms
frame_rate: 0
profiling: true
pick_mode: all
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, 256, c.QueueSize, "unset keys keep the default")
	assert.Equal(t, 250*time.Millisecond, c.IdleTimeout)
	assert.Zero(t, c.FramePeriod())
	assert.True(t, c.Profiling)
	assert.Equal(t, raycast.PickAll, c.Pick())

	var buf bytes.Buffer
	l := c.NewLogger(&buf)
	require.NotNil(t, l)
	l.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"workers", "workers: -2"},
		{"queue size", "queue_size: -1"},
		{"idle timeout", "idle_timeout: -1s"},
		{"frame rate", "frame_rate: -5"},
		{"pick mode", "pick_mode: first"},
		{"log level", "log: {level: loud}"},
		{"log format", "log: {format: xml}"},
		{"malformed", "workers: [1"},
		{"wrong type", "workers: many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseZeroValuesMeanDefault(t *testing.T) {
	c, err := Parse([]byte(`
workers: 0
queue_size: 0
idle_timeout: 0s
pick_mode: ""
log: {level: "", format: ""}
`))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestWithDefaultsKeepsMeaningfulZeros(t *testing.T) {
	c := Config{Workers: 5}.WithDefaults()
	require.NoError(t, c.Validate())

	d := Default()
	assert.Equal(t, 5, c.Workers)
	assert.Equal(t, d.QueueSize, c.QueueSize)
	assert.Equal(t, d.IdleTimeout, c.IdleTimeout)
	assert.Equal(t, d.PickMode, c.PickMode)
	assert.Equal(t, d.Log, c.Log)
	assert.Zero(t, c.FrameRate, "0 stays uncapped")
	assert.False(t, c.Profiling)
}

func TestNewLoggerText(t *testing.T) {
	c := Default()
	c.Log = LogConfig{Level: "warn", Format: LogFormatText}

	var buf bytes.Buffer
	l := c.NewLogger(&buf)
	require.NotNil(t, l)
	l.Info("dropped")
	l.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue_size: 64\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, c.QueueSize)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
