package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oicur0t/gelfwd/pkg/gelf"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
global:
  log_source: journal
  sender_port: 5001
logging:
  level: debug
  format: console
graylog_addr: graylog.internal:12201
graylog_addr_ttl: 30s
compression: zlib
team: platform
service: api
log_level_system: warning
log_level_message: error
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceJournal, cfg.Global.LogSource)
	assert.Equal(t, 5001, cfg.Global.SenderPort)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.Equal(t, "graylog.internal:12201", cfg.Watched.GraylogAddr)
	assert.Equal(t, 30*time.Second, cfg.Watched.GraylogAddrTTL)
	assert.Equal(t, gelf.CompressZlib, cfg.Watched.Compression)
	assert.Equal(t, "platform", cfg.Watched.Team)
	assert.Equal(t, "api", cfg.Watched.Service)
	assert.Equal(t, gelf.LevelWarning, cfg.Watched.LogLevelSystem)
	require.NotNil(t, cfg.Watched.LogLevelMessage)
	assert.Equal(t, gelf.MsgError, *cfg.Watched.LogLevelMessage)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
global:
  log_source: stdin
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceStdin, cfg.Global.LogSource)
	assert.Equal(t, 5000, cfg.Global.SenderPort)
	assert.Equal(t, "localhost:9000", cfg.Watched.GraylogAddr)
	assert.Equal(t, 60*time.Second, cfg.Watched.GraylogAddrTTL)
	assert.Equal(t, gelf.CompressGzip, cfg.Watched.Compression)
	assert.Equal(t, gelf.LevelInformational, cfg.Watched.LogLevelSystem)
	assert.Nil(t, cfg.Watched.LogLevelMessage)
	assert.Empty(t, cfg.Watched.Team)
	assert.Empty(t, cfg.Watched.Service)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown log source",
			content: "global:\n  log_source: kafka\n",
		},
		{
			name:    "missing log source",
			content: "graylog_addr: localhost:12201\n",
		},
		{
			name:    "file source without path",
			content: "global:\n  log_source: file\n",
		},
		{
			name:    "unknown compression",
			content: "global:\n  log_source: stdin\ncompression: zstd\n",
		},
		{
			name:    "unknown system level",
			content: "global:\n  log_source: stdin\nlog_level_system: verbose\n",
		},
		{
			name:    "unknown message level",
			content: "global:\n  log_source: stdin\nlog_level_message: verbose\n",
		},
		{
			name:    "sender port out of range",
			content: "global:\n  log_source: stdin\n  sender_port: 70000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFileSource(t *testing.T) {
	path := writeConfig(t, `
global:
  log_source: file
  log_file: /var/log/app/records.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Global.LogSource)
	assert.Equal(t, "/var/log/app/records.json", cfg.Global.LogFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
