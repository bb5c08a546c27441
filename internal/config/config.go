package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// backend selects which search index implementation the app talks to
const (
	BackendAzure = "azure"
	BackendLocal = "local"
)

const (
	defaultAPIVersion      = "2024-12-01-preview"
	defaultEmbedDeployment = "text-embedding-3-small"
	defaultSearchIndex     = "entraid-app-guide-index"
	defaultOllamaURL       = "http://localhost:11434"
	defaultOllamaModel     = "nomic-embed-text"
	defaultChunkSize       = 500
	defaultChunkOverlap    = 50
	defaultTopK            = 3
)

// AzureOpenAIConfig holds the Azure OpenAI endpoint used for both
// embeddings and chat completions.
type AzureOpenAIConfig struct {
	Endpoint        string `yaml:"endpoint"`
	APIKey          string `yaml:"api_key"`
	APIVersion      string `yaml:"api_version"`
	Deployment      string `yaml:"deployment"`
	EmbedDeployment string `yaml:"embed_deployment"`
}

// SearchConfig holds the Azure AI Search connection settings.
type SearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Index    string `yaml:"index"`
}

// LLMConfig is an ollama or openai-compatible endpoint used by the local
// backend.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

// LocalConfig configures the chromem-go backed local index.
type LocalConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// DatabaseConfig is the Postgres conversation log store.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// RAGConfig controls chunking and retrieval.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type Config struct {
	Backend  string            `yaml:"backend"`
	AOAI     AzureOpenAIConfig `yaml:"azure_openai"`
	Search   SearchConfig      `yaml:"azure_search"`
	EmbedLLM LLMConfig         `yaml:"embed_llm"`
	Local    LocalConfig       `yaml:"local"`
	Database DatabaseConfig    `yaml:"database"`
	RAG      RAGConfig         `yaml:"rag"`
}

// LoadConfig reads the yaml config file if present, then applies .env and
// environment overrides. A missing file is not an error; the environment
// alone can fully configure the app.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.Backend, "BACKEND")
	setIfEnv(&c.AOAI.Endpoint, "AOAI_ENDPOINT")
	setIfEnv(&c.AOAI.APIKey, "AOAI_API_KEY")
	setIfEnv(&c.AOAI.APIVersion, "AOAI_API_VERSION")
	setIfEnv(&c.AOAI.Deployment, "AOAI_DEPLOYMENT")
	setIfEnv(&c.AOAI.EmbedDeployment, "AOAI_EMBED_DEPLOYMENT")
	setIfEnv(&c.Search.Endpoint, "AIS_ENDPOINT")
	setIfEnv(&c.Search.APIKey, "AIS_API_KEY")
	setIfEnv(&c.Search.Index, "AIS_INDEX")
	setIfEnv(&c.EmbedLLM.BaseURL, "OLLAMA_URL")
	setIfEnv(&c.EmbedLLM.Model, "OLLAMA_EMBED_MODEL")
	setIfEnv(&c.Database.DSN, "PG_DSN")
	setIfEnv(&c.Database.Password, "PG_PASSWORD")
	if v := os.Getenv("RAG_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			c.RAG.TopK = k
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendAzure
	}
	if c.AOAI.APIVersion == "" {
		c.AOAI.APIVersion = defaultAPIVersion
	}
	if c.AOAI.EmbedDeployment == "" {
		c.AOAI.EmbedDeployment = defaultEmbedDeployment
	}
	if c.Search.Index == "" {
		c.Search.Index = defaultSearchIndex
	}
	if c.EmbedLLM.BaseURL == "" {
		c.EmbedLLM.BaseURL = defaultOllamaURL
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = defaultOllamaModel
	}
	if c.Local.Path == "" {
		c.Local.Path = "./chromemdb"
	}
	if c.Local.Collection == "" {
		c.Local.Collection = "guide_collection"
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}
}

// Validate fails fast when required settings for the selected backend are
// missing, naming every absent variable in one error.
func (c *Config) Validate() error {
	var missing []string
	switch c.Backend {
	case BackendAzure:
		if c.AOAI.Endpoint == "" {
			missing = append(missing, "AOAI_ENDPOINT")
		}
		if c.AOAI.APIKey == "" {
			missing = append(missing, "AOAI_API_KEY")
		}
		if c.AOAI.Deployment == "" {
			missing = append(missing, "AOAI_DEPLOYMENT")
		}
		if c.Search.Endpoint == "" {
			missing = append(missing, "AIS_ENDPOINT")
		}
		if c.Search.APIKey == "" {
			missing = append(missing, "AIS_API_KEY")
		}
		if c.Search.Index == "" {
			missing = append(missing, "AIS_INDEX")
		}
	case BackendLocal:
		if c.EmbedLLM.BaseURL == "" {
			missing = append(missing, "OLLAMA_URL")
		}
		if c.EmbedLLM.Model == "" {
			missing = append(missing, "OLLAMA_EMBED_MODEL")
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
