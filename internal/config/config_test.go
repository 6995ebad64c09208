package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1000, cfg.Index.MaxFeatures)
	assert.Equal(t, 2, cfg.Index.MinDocuments)
	assert.Equal(t, 0.1, cfg.Query.RelevanceFloor)
	assert.Equal(t, 5, cfg.Query.DefaultLimit)
	assert.Equal(t, 200, cfg.Query.ExcerptChars)
	assert.Equal(t, "llm_summary", cfg.Query.SummaryField)
	assert.Equal(t, 4, cfg.Trends.DefaultWindow)
	assert.Equal(t, "frequency", cfg.Summarizer.Type)
	assert.Nil(t, cfg.Summarizer.Anthropic)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
query:
  default_limit: 3
summarizer:
  type: anthropic
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Query.DefaultLimit)
	assert.Equal(t, 0.1, cfg.Query.RelevanceFloor)
	require.NotNil(t, cfg.Summarizer.Anthropic)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.Summarizer.Anthropic.APIKeyEnv)
	assert.Equal(t, 2, cfg.Summarizer.Anthropic.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Query.SummaryField = "insight_summary"
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "recall", "config.yaml"), path)
	assert.Equal(t, Default(), cfg)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
