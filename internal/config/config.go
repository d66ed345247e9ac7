// internal/config/config.go
//
// This package handles configuration and the .briefing directory structure.
// Every project that uses briefing-studio gets a .briefing/ folder created in
// its root holding config.yaml, the session token, logs, and the archive.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// BriefingDir is the name of the directory we create in each project
	BriefingDir = ".briefing"

	// EnvEndpoint overrides the Briefing Service base URL.
	EnvEndpoint = "API_ENDPOINT"

	// DefaultEndpoint is used when neither the environment nor config.yaml name one.
	DefaultEndpoint = "http://206.42.50.24:3000"

	// DefaultTimeout bounds a single request to the Briefing Service.
	DefaultTimeout = 2 * time.Minute
)

const defaultProjectConfigYAML = `# briefing-studio project configuration
version: 1

api:
  # Base URL of the Briefing Service. API_ENDPOINT (environment or .env) wins over this value.
  # endpoint: http://localhost:3000
  # Per-request timeout; generation can take a while.
  timeout: 2m

archive:
  # Save every generated briefing under .briefing/archive/.
  enabled: true
`

// APIConfig configures the remote Briefing Service.
type APIConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

// ArchiveConfig configures the local archive of generated briefings.
type ArchiveConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// ProjectConfig models .briefing/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Archive ArchiveConfig `yaml:"archive"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory where the user ran `briefing` from
	ProjectDir string

	// BriefingProjectDir is ProjectDir/.briefing
	BriefingProjectDir string

	Project ProjectConfig

	endpoint string
	timeout  time.Duration
}

// InitBriefingDir creates the .briefing directory structure in the given project directory.
//
// Structure created:
// .briefing/
// ├── logs/      <- journey.log and briefing.log
// ├── session/   <- bearer token (0600)
// └── archive/   <- generated briefings (markdown + frontmatter)
func InitBriefingDir(projectDir string) error {
	briefingDir := filepath.Join(projectDir, BriefingDir)

	dirs := []string{
		filepath.Join(briefingDir, "logs"),
		filepath.Join(briefingDir, "archive"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Join(briefingDir, "session"), 0o700); err != nil {
		return err
	}

	return ensureProjectConfig(filepath.Join(briefingDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
// A .env file in the project directory is loaded first so API_ENDPOINT can be
// kept next to the project; variables already set in the process win.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectDir:         projectDir,
		BriefingProjectDir: filepath.Join(projectDir, BriefingDir),
		Project:            defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.resolve()

	return cfg, nil
}

// Endpoint returns the Briefing Service base URL without a trailing slash.
func (c *Config) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.timeout <= 0 {
		return DefaultTimeout
	}
	return c.timeout
}

// ArchiveEnabled reports whether generated briefings are saved locally.
func (c *Config) ArchiveEnabled() bool {
	if c.Project.Archive.Enabled == nil {
		return true
	}
	return *c.Project.Archive.Enabled
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.BriefingProjectDir, "logs")
}

// JourneyLogPath returns the path of the user-facing journey log
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// SessionTokenPath returns the file holding the bearer token
func (c *Config) SessionTokenPath() string {
	return filepath.Join(c.BriefingProjectDir, "session", "token")
}

// ArchiveDir returns the directory holding generated briefings
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.BriefingProjectDir, "archive")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.BriefingProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// resolve applies the endpoint precedence: environment, config.yaml, default.
func (c *Config) resolve() {
	endpoint := strings.TrimSpace(os.Getenv(EnvEndpoint))
	if endpoint == "" {
		endpoint = c.Project.API.Endpoint
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c.endpoint = normalizeEndpoint(endpoint)
	c.timeout = DefaultTimeout
	if raw := c.Project.API.Timeout; raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.timeout = d
		}
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{Version: 1}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
}

func (pc *ProjectConfig) normalize() {
	pc.API.Endpoint = normalizeEndpoint(pc.API.Endpoint)
	pc.API.Timeout = strings.TrimSpace(pc.API.Timeout)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if ep := pc.API.Endpoint; ep != "" && !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
		return fmt.Errorf("api.endpoint must start with http:// or https://")
	}
	if raw := pc.API.Timeout; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("api.timeout must be positive")
		}
	}
	return nil
}

func normalizeEndpoint(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

// SetEndpoint updates api.endpoint and persists the value back to
// .briefing/config.yaml. The environment override still wins at runtime.
func (c *Config) SetEndpoint(endpoint string) error {
	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" {
		return fmt.Errorf("config: endpoint is required")
	}
	c.Project.API.Endpoint = endpoint
	if err := c.saveProjectConfig(); err != nil {
		return err
	}
	c.resolve()
	return nil
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.BriefingProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure briefing dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
