package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// ProjectConfigName is the per-project config file, looked up in the
// working directory.
const ProjectConfigName = ".satchel.json"

// DefaultDatabase is the database file used when neither config nor flags
// name one.
const DefaultDatabase = "satchel.db"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errDatabaseEmpty      = errors.New("database cannot be empty")
	errFormatInvalid      = errors.New(`format must be "text" or "json"`)
)

// Config holds file-level configuration. Files are JWCC (JSON with commas
// and comments), so a config can be annotated.
type Config struct {
	Database string `json:"database"`
	Format   string `json:"format,omitempty"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Database: DefaultDatabase}
}

// globalConfigPath returns the global config file path. Uses
// $XDG_CONFIG_HOME/satchel/config.json if set, otherwise
// ~/.config/satchel/config.json. Empty when no home directory is known.
func globalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "satchel", "config.json")
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "satchel", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "satchel", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/satchel/config.json)
//  3. Project config in workDir (.satchel.json, if present)
//  4. Explicit config file via configPath (if non-empty)
//
// Flag overrides sit above all of these; the root command applies them
// after loading.
func LoadConfig(workDir, configPath string, env []string) (Config, ConfigSources, error) {
	cfg := DefaultConfig()

	var sources ConfigSources

	globalCfg, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}
	sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}
	sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if err := validateConfig(cfg); err != nil {
		return Config{}, ConfigSources{}, err
	}

	return cfg, sources, nil
}

// loadGlobalConfig loads the global user config file if it exists.
func loadGlobalConfig(env []string) (Config, string, error) {
	path := globalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, "", err
	}
	if !loaded {
		return Config{}, "", nil
	}
	if explicitEmpty["database"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, path, errDatabaseEmpty)
	}

	return cfg, path, nil
}

// loadProjectConfig loads the project config (.satchel.json) or an explicit
// config file. Explicit files must exist; the project file is optional.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string
	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}
		mustExist = true

		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, "", fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ProjectConfigName)
		mustExist = false
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}
	if !loaded {
		return Config{}, "", nil
	}
	if explicitEmpty["database"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, cfgFile, errDatabaseEmpty)
	}

	return cfg, cfgFile, nil
}

// loadConfigFile loads one config file. Missing optional files return zero
// config. Returns the config, a map of explicitly empty fields, and whether
// the file was loaded.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}
		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

// parseConfig parses JWCC config bytes. A field set to the empty string is
// recorded in explicitEmpty: "database": "" is a mistake worth rejecting
// rather than silently falling back to the default.
func parseConfig(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JWCC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any
	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)
	if val, exists := raw["database"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["database"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Database != "" {
		base.Database = overlay.Database
	}
	if overlay.Format != "" {
		base.Format = overlay.Format
	}
	return base
}

func validateConfig(cfg Config) error {
	if cfg.Database == "" {
		return errDatabaseEmpty
	}
	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return fmt.Errorf("%w: got %q", errFormatInvalid, cfg.Format)
	}
	return nil
}
