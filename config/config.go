package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ModelConfig struct {
	Provider string `toml:"provider"`
	Host     string `toml:"host"`
	Name     string `toml:"name"`
	APIKey   string `toml:"api_key,omitempty"`
}

// KitchenConfig describes what the cook has on hand
type KitchenConfig struct {
	Pantry    []string `toml:"pantry"`
	Equipment []string `toml:"equipment"`
}

type ToolsConfig struct {
	MealNotesLimit      int  `toml:"meal_notes_limit"`
	RecentRequestsLimit int  `toml:"recent_requests_limit"`
	FoodLookup          bool `toml:"food_lookup"`
	CallsPerMinute      int  `toml:"calls_per_minute"`
	ReportUnknown       bool `toml:"report_unknown"`
}

type SessionConfig struct {
	MaxToolRounds int `toml:"max_tool_rounds"`
}

type UserConfig struct {
	Model   ModelConfig   `toml:"model"`
	Kitchen KitchenConfig `toml:"kitchen"`
	Tools   ToolsConfig   `toml:"tools"`
	Session SessionConfig `toml:"session"`
}

type Config struct {
	DataDirectory string
	Provider      string
	Host          string
	ModelName     string
	APIKey        string
	MaxToolRounds int
	Kitchen       KitchenConfig
	Tools         ToolsConfig
}

var Debug = false
var DebugLog *log.Logger

// RunID identifies one process run in the debug log
var RunID = uuid.NewString()

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// DatabasePath is where conversations and annotations are stored
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), "persist.db")
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	c.Provider = userCfg.Model.Provider
	c.Host = userCfg.Model.Host
	c.ModelName = userCfg.Model.Name
	c.APIKey = userCfg.Model.APIKey
	c.MaxToolRounds = userCfg.Session.MaxToolRounds
	c.Kitchen = userCfg.Kitchen
	c.Tools = userCfg.Tools
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("MEALPLAN_OLLAMA_HOST"); host != "" {
		c.Host = host
	}
	if model := os.Getenv("MEALPLAN_MODEL"); model != "" {
		c.ModelName = model
	}
	if dataDir := os.Getenv("MEALPLAN_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("MEALPLAN_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if key := os.Getenv("MEALPLAN_API_KEY"); key != "" {
		c.APIKey = key
	}
}

// Validate checks that the loaded values can drive a session
func (c *Config) Validate() error {
	if !IsKnownProvider(c.Provider) {
		return fmt.Errorf("unknown provider %q (expected one of %v)", c.Provider, Providers)
	}
	if c.ModelName == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Provider != ProviderOllama && c.APIKey == "" {
		return fmt.Errorf("%s requires an api_key (or MEALPLAN_API_KEY)", ProviderDisplayName(c.Provider))
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be positive, got %d", c.MaxToolRounds)
	}
	if c.Tools.MealNotesLimit < 0 || c.Tools.RecentRequestsLimit < 0 || c.Tools.CallsPerMinute < 0 {
		return fmt.Errorf("tool limits must not be negative")
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("MEALPLAN_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600, the log may contain conversation content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	prefix := fmt.Sprintf("[%s] ", RunID[:8])
	DebugLog = log.New(f, prefix, log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (MEALPLAN_DEBUG=%s, run %s) ===", os.Getenv("MEALPLAN_DEBUG"), RunID)
	DebugLog.Printf("Log path: %s", logPath)
}

// HasAnyEnvVar reports whether the user started configuring through the environment
func HasAnyEnvVar() bool {
	return os.Getenv("MEALPLAN_OLLAMA_HOST") != "" ||
		os.Getenv("MEALPLAN_MODEL") != "" ||
		os.Getenv("MEALPLAN_DATA_DIR") != ""
}

func HasAllEnvVars() bool {
	return os.Getenv("MEALPLAN_OLLAMA_HOST") != "" &&
		os.Getenv("MEALPLAN_MODEL") != "" &&
		os.Getenv("MEALPLAN_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("MEALPLAN_OLLAMA_HOST") == "" {
		return "MEALPLAN_OLLAMA_HOST"
	}
	if os.Getenv("MEALPLAN_MODEL") == "" {
		return "MEALPLAN_MODEL"
	}
	if os.Getenv("MEALPLAN_DATA_DIR") == "" {
		return "MEALPLAN_DATA_DIR"
	}
	return ""
}

// Load reads settings.toml and the user config, applies environment
// overrides and makes sure the data directory exists.
func Load() (*Config, error) {
	defaults := DefaultUserConfig()
	cfg := &Config{DataDirectory: DefaultSystemConfig().DataDirectory}
	cfg.applyUserConfig(defaults)

	if SystemConfigExists() || !HasAllEnvVars() {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
		if dataDir := os.Getenv("MEALPLAN_DATA_DIR"); dataDir != "" {
			cfg.DataDirectory = dataDir
		}

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.applyUserConfig(userCfg)
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
