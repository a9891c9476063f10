// Package config provides configuration loading for the medassist CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kdl "github.com/sblinch/kdl-go"
)

// ConfigFileName is the name of the medassist configuration file.
const ConfigFileName = ".medassist.kdl"

// Config represents the medassist configuration.
type Config struct {
	// Web is the main clinic web app
	Web *WebConfig `kdl:"web"`

	// RAG is the assistant API server
	RAG *RAGConfig `kdl:"rag"`

	// Storage locates the flat-file appointment store
	Storage *StorageConfig `kdl:"storage"`

	// Supervisor controls the launch supervisor for the RAG child process
	Supervisor *SupervisorConfig `kdl:"supervisor"`
}

// WebConfig configures the clinic web app server.
type WebConfig struct {
	Host string `kdl:"host"`
	Port int    `kdl:"port"`
}

// RAGConfig configures the assistant API server and pipeline.
type RAGConfig struct {
	Host string `kdl:"host"`

	// Port is a bound value: the supervisor, the web app's chat widget and
	// the server itself all agree on it. It is never negotiated at runtime.
	Port int `kdl:"port"`

	// Provider selects the chat-completion backend: "openai" or "anthropic"
	Provider string `kdl:"provider"`

	// Model is the chat model name for the selected provider
	Model string `kdl:"model"`

	// EmbeddingModel is the OpenAI embedding model used for retrieval
	EmbeddingModel string `kdl:"embedding-model"`

	// Namespace is the vector index namespace to search
	Namespace string `kdl:"namespace"`

	// TopK is the number of context snippets retrieved per question
	TopK int `kdl:"top-k"`
}

// StorageConfig configures flat-file storage.
type StorageConfig struct {
	AppointmentsFile string `kdl:"appointments-file"`
}

// SupervisorConfig configures the RAG child process supervisor.
type SupervisorConfig struct {
	PIDFile string `kdl:"pid-file"`
	LogFile string `kdl:"log-file"`

	// Hosted selects managed-environment behavior: "auto", "on", or "off".
	// In hosted mode the aggressive port sweep is skipped.
	Hosted string `kdl:"hosted"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Web: &WebConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		RAG: &RAGConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Namespace:      "clinic",
			TopK:           4,
		},
		Storage: &StorageConfig{
			AppointmentsFile: "appointments.json",
		},
		Supervisor: &SupervisorConfig{
			PIDFile: ".rag_pid",
			LogFile: "rag_server.log",
			Hosted:  "auto",
		},
	}
}

// LoadConfig loads configuration from the specified directory.
// It looks for .medassist.kdl in the directory and its parents.
func LoadConfig(dir string) (*Config, error) {
	configPath := FindConfigFile(dir)
	if configPath == "" {
		return DefaultConfig(), nil
	}

	return LoadConfigFile(configPath)
}

// FindConfigFile searches for .medassist.kdl starting from dir and walking up.
func FindConfigFile(dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(absDir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			// Reached root
			break
		}
		absDir = parent
	}

	return ""
}

// LoadConfigFile loads configuration from a specific file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(string(data))
}

// ParseConfig parses KDL configuration data over the defaults.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()

	if err := kdl.Unmarshal([]byte(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// RAGBaseURL returns the base URL of the assistant API server.
func (c *Config) RAGBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.RAG.Host, c.RAG.Port)
}

// WriteDefaultConfig writes a default configuration file with documentation.
func WriteDefaultConfig(path string) error {
	defaultKDL := `// Medassist Configuration
// This file configures the clinic web app, the assistant API server,
// and the supervisor that manages the assistant server process.

// Clinic web app (booking form, appointment list, chat widget)
web {
    host "127.0.0.1"
    port 8000
}

// Assistant API server (RAG pipeline over HTTP)
rag {
    host "127.0.0.1"
    port 8080

    // Chat-completion backend: "openai" or "anthropic"
    provider "openai"
    model "gpt-4o-mini"

    // Retrieval settings (Pinecone index + OpenAI embeddings)
    embedding-model "text-embedding-3-small"
    namespace "clinic"
    top-k 4
}

// Flat-file storage
storage {
    appointments-file "appointments.json"
}

// Supervisor for the assistant server child process
supervisor {
    pid-file ".rag_pid"
    log-file "rag_server.log"

    // "auto" detects container/managed environments; "on"/"true" and
    // "off"/"false" force it. In hosted mode the port sweep fallback is
    // skipped.
    hosted "auto"
}

// Secrets are read from the environment (or a .env file):
//   OPENAI_API_KEY, ANTHROPIC_API_KEY, PINECONE_API_KEY, PINECONE_HOST
`

	if err := os.WriteFile(path, []byte(defaultKDL), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
