package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[receipts]
dir = "saida"

[database]
driver = "sqlite"
sqlite_dir = "./data"

[marketplace]
requests_per_second = 2.5
timeout = "45s"
optimistic_edits = false
max_retries = 4

[kafka]
brokers = ["k1:9092", "k2:9092"]
topic = "autopecas.outcomes"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigStore_ReadsNestedKeys(t *testing.T) {
	s, err := NewConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "saida", s.GetString("receipts.dir"))
	assert.Equal(t, "sqlite", s.GetString("database.driver"))
	assert.InDelta(t, 2.5, s.GetFloat("marketplace.requests_per_second"), 1e-9)
	assert.Equal(t, "45s", s.GetString("marketplace.timeout"))
	assert.False(t, s.GetBool("marketplace.optimistic_edits"))
	assert.Equal(t, 4, s.GetInt("marketplace.max_retries"))
	assert.InDelta(t, 4.0, s.GetFloat("marketplace.max_retries"), 1e-9)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, s.GetStringSlice("kafka.brokers"))

	_, ok := s.Get("database.driver")
	assert.True(t, ok)
	_, ok = s.Get("database")
	assert.False(t, ok)
}

func TestConfigStore_WrongTypes(t *testing.T) {
	s, err := NewConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Empty(t, s.GetString("marketplace.requests_per_second"))
	assert.Zero(t, s.GetInt("database.driver"))
	assert.Zero(t, s.GetFloat("database.driver"))
	assert.False(t, s.GetBool("database.driver"))
	assert.Nil(t, s.GetStringSlice("database.driver"))
	assert.Nil(t, s.GetStringSlice("missing"))
}

func TestConfigStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")
	s, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	assert.Empty(t, s.GetString("database.driver"))
}

func TestConfigStore_DefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	s, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, s.Path())
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	_, err := NewConfigStore(writeConfig(t, "[database\ndriver = "))
	assert.Error(t, err)
}

func TestConfigStore_Reload(t *testing.T) {
	path := writeConfig(t, `[log]
level = "info"`)
	s, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, "info", s.GetString("log.level"))

	require.NoError(t, os.WriteFile(path, []byte(`[log]
level = "debug"`), 0o600))
	require.NoError(t, s.Load())
	assert.Equal(t, "debug", s.GetString("log.level"))
}
