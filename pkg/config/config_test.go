package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/logger"
)

const testYAML = `
token: abc
rest:
  timeout: 5s
  user_agent: test-bot
gateway:
  compress: true
  encoding: cbor
collections:
  messages: 10
log:
  level: debug
  format: console
`

func writeTestConfig(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.Load())

	s, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, "https://www.guilded.gg/api/v1", s.REST.BaseURL)
	assert.Equal(t, 15*time.Second, s.REST.Timeout)
	assert.Equal(t, 30*time.Second, s.REST.LatencyThreshold)
	assert.True(t, s.Gateway.Reconnect)
	assert.True(t, s.Gateway.ReplayMissedEvents)
	assert.Equal(t, 1, s.Gateway.ReconnectAttemptLimit)
	assert.Equal(t, 100, s.Collections.Topics)
	assert.Equal(t, "json", s.Gateway.Encoding)
	assert.False(t, s.Tracing.Enabled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, "bot.yaml", testYAML)

	c := New(WithConfigFile(path))
	require.NoError(t, c.Load())
	assert.Equal(t, path, c.ConfigFileUsed())

	s, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, "abc", s.Token)
	assert.Equal(t, 5*time.Second, s.REST.Timeout)
	assert.Equal(t, "test-bot", s.REST.UserAgent)
	assert.True(t, s.Gateway.Compress)
	assert.Equal(t, "cbor", s.Gateway.Encoding)
	assert.Equal(t, 10, s.Collections.Messages)
	assert.Equal(t, 100, s.Collections.Docs)

	lc, err := s.Log.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, lc.Level)
	assert.Equal(t, logger.ConsoleFormat, lc.Format)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GUILDED_TOKEN", "from-env")
	t.Setenv("GUILDED_GATEWAY_RECONNECT", "false")

	c := New()
	require.NoError(t, c.Load())
	s, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Token)
	assert.False(t, s.Gateway.Reconnect)
}

func TestLoadMissingName(t *testing.T) {
	c := New(WithConfigName("missing"), WithConfigType("yaml"), WithConfigPaths(t.TempDir()))
	err := c.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestInvalidEncoding(t *testing.T) {
	c := New(WithDefaults(map[string]any{"gateway.encoding": "xml"}))
	require.NoError(t, c.Load())
	_, err := c.Settings()
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, "bot.yaml", testYAML)

	changed := make(chan *Settings, 4)
	c := New(
		WithConfigFile(path),
		WithAutoWatch(true),
		WithOnChange(func(s *Settings) {
			select {
			case changed <- s:
			default:
			}
		}),
	)
	require.NoError(t, c.Load())
	defer c.Close()
	assert.True(t, c.IsWatching())

	time.Sleep(50 * time.Millisecond)
	writeTestConfig(t, dir, "bot.yaml", "token: rotated\ngateway:\n  encoding: json\n")

	// 写入可能触发多次事件，等待最终内容
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s := <-changed:
			if s.Token == "rotated" {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestGet(t *testing.T) {
	c := New()
	require.NoError(t, c.Load())
	c.Set("custom.flag", true)
	assert.True(t, Get[bool](c, "custom.flag"))
	assert.Equal(t, 0, Get[int](c, "custom.flag"))
	assert.True(t, c.IsSet("custom.flag"))
	assert.Equal(t, "json", c.GetString("gateway.encoding"))
}
