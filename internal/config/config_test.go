package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, BackendAzure, cfg.Backend)
	assert.Equal(t, "2024-12-01-preview", cfg.AOAI.APIVersion)
	assert.Equal(t, "text-embedding-3-small", cfg.AOAI.EmbedDeployment)
	assert.Equal(t, "entraid-app-guide-index", cfg.Search.Index)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.TopK)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend: local
rag:
  chunk_size: 200
  chunk_overlap: 20
  top_k: 5
local:
  path: /tmp/idx
  collection: test_collection
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, 200, cfg.RAG.ChunkSize)
	assert.Equal(t, 20, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, "/tmp/idx", cfg.Local.Path)
	assert.Equal(t, "test_collection", cfg.Local.Collection)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AOAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AOAI_API_KEY", "key123")
	t.Setenv("AIS_INDEX", "custom-index")
	t.Setenv("RAG_TOP_K", "7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.openai.azure.com", cfg.AOAI.Endpoint)
	assert.Equal(t, "key123", cfg.AOAI.APIKey)
	assert.Equal(t, "custom-index", cfg.Search.Index)
	assert.Equal(t, 7, cfg.RAG.TopK)
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig("./does-not-exist.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [broken"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_AzureMissingKeys(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"AOAI_ENDPOINT", "AOAI_API_KEY", "AOAI_DEPLOYMENT", "AIS_ENDPOINT", "AIS_API_KEY"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_AzureComplete(t *testing.T) {
	cfg := &Config{
		AOAI: AzureOpenAIConfig{
			Endpoint:   "https://example.openai.azure.com",
			APIKey:     "k",
			Deployment: "gpt-4o-mini",
		},
		Search: SearchConfig{
			Endpoint: "https://example.search.windows.net",
			APIKey:   "k",
		},
	}
	cfg.applyDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LocalBackend(t *testing.T) {
	cfg := &Config{Backend: BackendLocal}
	cfg.applyDefaults()
	// local backend has workable defaults
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "cloudx"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
