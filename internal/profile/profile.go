// Package profile holds the runtime configuration for the QA platform server.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Server
	Mode string // "prod", "dev" or "demo"
	Addr string
	Port int
	Data string // data directory for the history database
	DSN  string // sqlite DSN, derived from Data when empty

	// LLM (Answer Generator backend, OpenAI-compatible protocol)
	LLMProvider string // openai, deepseek, zai, siliconflow, dashscope, openrouter, ollama
	LLMAPIKey   string
	LLMBaseURL  string // optional, has a default per provider
	LLMModel    string
	LLMTimeout  int // generation timeout in seconds (default: 30)

	// Collaborators
	RetrievalURL        string // knowledge retrieval service base URL
	AgentURL            string // business agent service base URL; empty enables the built-in static agent
	CollaboratorTimeout int    // shared retrieval/agent timeout in seconds (default: 10)

	// Evidence confidence constants. The retrieval service does not compute
	// per-document relevance into the bundle score, and the agent values are
	// placeholders carried over from upstream system contracts.
	RetrievalConfidence  float64 // default: 0.85
	AgentSalesConfidence float64 // default: 0.95
	AgentHRConfidence    float64 // default: 0.90

	// Answer cache
	CacheCapacity int // max cached answers (default: 1000)
	CacheTTL      int // answer TTL in seconds (default: 3600)

	// Rate limiting on the ask endpoint, requests per second (0 disables).
	AskRateLimit float64

	Version string
}

// Provider default configurations for the LLM backend.
// Used when AICP_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"zai": {
		BaseURL: "https://open.bigmodel.cn/api/paas/v4",
		Model:   "glm-4.7",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"dashscope": {
		BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:   "qwen-max-latest",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsGeneratorConfigured returns true if the answer generator has an API key.
// The ollama provider runs locally and needs no key.
func (p *Profile) IsGeneratorConfigured() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("AICP_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("AICP_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("AICP_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("AICP_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("AICP_LLM_TIMEOUT_SECONDS", 30)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("unknown LLM provider, using default: openai", "provider", p.LLMProvider)
		p.LLMProvider = "openai"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.RetrievalURL = getEnvOrDefault("AICP_RETRIEVAL_URL", "http://localhost:8003")
	p.AgentURL = getEnvOrDefault("AICP_AGENT_URL", "")
	p.CollaboratorTimeout = getEnvOrDefaultInt("AICP_COLLABORATOR_TIMEOUT_SECONDS", 10)

	p.RetrievalConfidence = getEnvOrDefaultFloat("AICP_RETRIEVAL_CONFIDENCE", 0.85)
	p.AgentSalesConfidence = getEnvOrDefaultFloat("AICP_AGENT_SALES_CONFIDENCE", 0.95)
	p.AgentHRConfidence = getEnvOrDefaultFloat("AICP_AGENT_HR_CONFIDENCE", 0.90)

	p.CacheCapacity = getEnvOrDefaultInt("AICP_CACHE_CAPACITY", 1000)
	p.CacheTTL = getEnvOrDefaultInt("AICP_CACHE_TTL_SECONDS", 3600)

	p.AskRateLimit = getEnvOrDefaultFloat("AICP_ASK_RATE_LIMIT", 0)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fails on unusable configuration.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.DSN == "" {
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("aicp_%s.db", p.Mode))
	}

	if p.CollaboratorTimeout <= 0 {
		p.CollaboratorTimeout = 10
	}
	if p.LLMTimeout <= 0 {
		p.LLMTimeout = 30
	}
	if p.CacheCapacity <= 0 {
		p.CacheCapacity = 1000
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = 3600
	}

	return nil
}
