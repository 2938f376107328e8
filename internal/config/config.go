// Package config handles workspace discovery and configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the workspace configuration stored in .citecheck/config.yml.
type Config struct {
	GrobidURL        string `yaml:"grobid_url,omitempty"`         // Extraction service base URL
	OracleModel      string `yaml:"oracle_model,omitempty"`       // Verification model identifier
	MissingRefPolicy string `yaml:"missing_ref_policy,omitempty"` // skip, log, prompt, or fetch
	StoreRoot        string `yaml:"store_root,omitempty"`         // Document store root, relative to the workspace
	MaxEvidenceChars int    `yaml:"max_evidence_chars,omitempty"` // Document content budget per oracle call
	ListenAddr       string `yaml:"listen_addr,omitempty"`        // Address for serve mode
}

const (
	CitecheckDir  = ".citecheck"
	ConfigFile    = "config.yml"
	FetchListFile = "fetchlist.json"
	StoreDir      = "store"

	DefaultListenAddr = ":8870"
)

// EnvAPIKey names the environment variable carrying the oracle API key.
const EnvAPIKey = "ANTHROPIC_API_KEY"

// EnvGrobidURL overrides the extraction service URL when set.
const EnvGrobidURL = "GROBID_URL"

// CitecheckPath returns the path to the .citecheck directory from a root.
func CitecheckPath(root string) string {
	return filepath.Join(root, CitecheckDir)
}

// ConfigPath returns the path to config.yml from a root.
func ConfigPath(root string) string {
	return filepath.Join(root, CitecheckDir, ConfigFile)
}

// FetchListPath returns the path to the fetch list from a root.
func FetchListPath(root string) string {
	return filepath.Join(root, CitecheckDir, FetchListFile)
}

// StorePath returns the document store root for a workspace, honoring a
// configured override.
func (c *Config) StorePath(root string) string {
	if c.StoreRoot != "" {
		if filepath.IsAbs(c.StoreRoot) {
			return c.StoreRoot
		}
		return filepath.Join(root, c.StoreRoot)
	}
	return filepath.Join(root, CitecheckDir, StoreDir)
}

// IsWorkspace checks if the given path contains a citecheck workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(CitecheckPath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a citecheck workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a citecheck workspace (no %s directory found; run 'cv init')", CitecheckDir)
		}
		abs = parent
	}
}

// Init creates the workspace skeleton at root and writes a default config.
func Init(root string) (*Config, error) {
	if err := os.MkdirAll(CitecheckPath(root), 0755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}
	cfg := &Config{}
	if _, err := os.Stat(ConfigPath(root)); os.IsNotExist(err) {
		if err := cfg.Save(root); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Load reads configuration from the workspace at the given root. A missing
// config file yields defaults, not an error. Environment variables, loaded
// through .env when one exists, override file values.
func Load(root string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	var cfg Config
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if url := os.Getenv(EnvGrobidURL); url != "" {
		cfg.GrobidURL = url
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return &cfg, nil
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// APIKey returns the oracle API key from the environment.
func APIKey() string {
	return os.Getenv(EnvAPIKey)
}
