package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/lang"
	"github.com/Aman-CERP/sitesearch/internal/route"
)

// Project config file names, in lookup order.
var projectConfigNames = []string{".sitesearch.yaml", ".sitesearch.yml", ".sitesearch.toml"}

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SITESEARCH_"

// Config represents the complete sitesearch configuration.
type Config struct {
	Version int           `yaml:"version" toml:"version" json:"version"`
	Site    SiteConfig    `yaml:"site" toml:"site" json:"site"`
	Search  SearchConfig  `yaml:"search" toml:"search" json:"search"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch" json:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// SiteConfig describes the generated site.
type SiteConfig struct {
	// OutDir is the directory the site generator rendered into.
	OutDir string `yaml:"out_dir" toml:"out_dir" json:"out_dir"`
	// BaseURL is the public path prefix the site is served under.
	// Always normalized to start and end with "/".
	BaseURL string `yaml:"base_url" toml:"base_url" json:"base_url"`
	// RoutesFile optionally lists the generator's routes (JSON array or one
	// route per line). When empty, routes are discovered from OutDir.
	RoutesFile string `yaml:"routes_file" toml:"routes_file" json:"routes_file"`
}

// SearchConfig configures what gets indexed and how.
type SearchConfig struct {
	// Language is a single code ("fr") or a list (["en", "ja"]).
	Language any `yaml:"language" toml:"language" json:"language"`
	// ExcludeRoutes are glob patterns of routes to leave out of the index.
	ExcludeRoutes []string `yaml:"exclude_routes" toml:"exclude_routes" json:"exclude_routes"`
	// IncludeRoutes restricts indexing to matching routes. Empty means all.
	IncludeRoutes []string `yaml:"include_routes" toml:"include_routes" json:"include_routes"`
	// IndexBaseURL indexes the site's landing page too.
	IndexBaseURL *bool `yaml:"index_base_url" toml:"index_base_url" json:"index_base_url"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce" toml:"debounce" json:"debounce"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level     string `yaml:"level" toml:"level" json:"level"`
	File      string `yaml:"file" toml:"file" json:"file"`
	Format    string `yaml:"format" toml:"format" json:"format"`
	MaxSizeMB int    `yaml:"max_size_mb" toml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" toml:"max_files" json:"max_files"`
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	// Textfile is where build metrics are written after each build.
	// Empty disables the export.
	Textfile string `yaml:"textfile" toml:"textfile" json:"textfile"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	indexBaseURL := false
	return &Config{
		Version: 1,
		Site: SiteConfig{
			OutDir:  "build",
			BaseURL: "/",
		},
		Search: SearchConfig{
			Language:      lang.DefaultLanguage,
			ExcludeRoutes: []string{},
			IncludeRoutes: []string{},
			IndexBaseURL:  &indexBaseURL,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "auto",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/sitesearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/sitesearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitesearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "sitesearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "sitesearch", "config.yaml")
}

// loadUserConfig loads the user config. A missing file is not an error.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	parsed, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/sitesearch/config.yaml)
//  3. Project config (.sitesearch.yaml, .sitesearch.yml or .sitesearch.toml)
//  4. Environment variables (SITESEARCH_*)
//
// Relative site paths are resolved against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if path := ProjectConfigPath(dir); path != "" {
		parsed, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		cfg.mergeWith(parsed)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.Site.BaseURL = NormalizeBaseURL(cfg.Site.BaseURL)
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the first project config file found in dir, or
// "" when there is none.
func ProjectConfigPath(dir string) string {
	for _, name := range projectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// parseFile decodes a YAML or TOML config file by extension.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &parsed)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &parsed)
	default:
		return nil, serrors.ConfigError(
			fmt.Sprintf("config file %s must be .yaml, .yml or .toml", path), nil)
	}
	if err != nil {
		return nil, serrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return &parsed, nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Site.OutDir != "" {
		c.Site.OutDir = other.Site.OutDir
	}
	if other.Site.BaseURL != "" {
		c.Site.BaseURL = other.Site.BaseURL
	}
	if other.Site.RoutesFile != "" {
		c.Site.RoutesFile = other.Site.RoutesFile
	}

	if other.Search.Language != nil {
		c.Search.Language = other.Search.Language
	}
	if len(other.Search.ExcludeRoutes) > 0 {
		c.Search.ExcludeRoutes = other.Search.ExcludeRoutes
	}
	if len(other.Search.IncludeRoutes) > 0 {
		c.Search.IncludeRoutes = other.Search.IncludeRoutes
	}
	if other.Search.IndexBaseURL != nil {
		v := *other.Search.IndexBaseURL
		c.Search.IndexBaseURL = &v
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

// applyEnvOverrides applies SITESEARCH_* environment variable overrides.
// List values are comma-separated.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvPrefix + "OUT_DIR"); v != "" {
		c.Site.OutDir = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "ROUTES_FILE"); v != "" {
		c.Site.RoutesFile = v
	}
	if v := os.Getenv(EnvPrefix + "LANGUAGE"); v != "" {
		if strings.Contains(v, ",") {
			c.Search.Language = splitList(v)
		} else {
			c.Search.Language = strings.TrimSpace(v)
		}
	}
	if v := os.Getenv(EnvPrefix + "EXCLUDE_ROUTES"); v != "" {
		c.Search.ExcludeRoutes = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "INCLUDE_ROUTES"); v != "" {
		c.Search.IncludeRoutes = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "INDEX_BASE_URL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return serrors.ConfigError(
				fmt.Sprintf("%sINDEX_BASE_URL must be a boolean, got %q", EnvPrefix, v), err)
		}
		c.Search.IndexBaseURL = &b
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvPrefix + "METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolvePaths makes relative site paths absolute against dir.
func (c *Config) resolvePaths(dir string) {
	if c.Site.OutDir != "" && !filepath.IsAbs(c.Site.OutDir) {
		c.Site.OutDir = filepath.Join(dir, c.Site.OutDir)
	}
	if c.Site.RoutesFile != "" && !filepath.IsAbs(c.Site.RoutesFile) {
		c.Site.RoutesFile = filepath.Join(dir, c.Site.RoutesFile)
	}
	if c.Metrics.Textfile != "" && !filepath.IsAbs(c.Metrics.Textfile) {
		c.Metrics.Textfile = filepath.Join(dir, c.Metrics.Textfile)
	}
}

// NormalizeBaseURL ensures base starts and ends with "/".
func NormalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// LanguageSpec returns the configured search language.
func (c *Config) LanguageSpec() (lang.Spec, error) {
	return lang.ParseSpec(c.Search.Language)
}

// RouteOptions returns the resolver options for this configuration.
func (c *Config) RouteOptions() route.Options {
	return route.Options{
		ExcludeRoutes: c.Search.ExcludeRoutes,
		IncludeRoutes: c.Search.IncludeRoutes,
		IndexBaseURL:  c.Search.IndexBaseURL != nil && *c.Search.IndexBaseURL,
	}
}

// WatchDebounce returns the parsed debounce interval.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// FindProjectRoot walks up from startDir looking for a sitesearch config
// file. It returns the absolute startDir when none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if ProjectConfigPath(current) != "" {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Site.OutDir == "" {
		return serrors.ConfigError("site.out_dir must not be empty", nil)
	}

	spec, err := c.LanguageSpec()
	if err != nil {
		return err
	}
	for _, code := range spec.Codes() {
		if !lang.IsSupported(code) {
			return serrors.UnknownLanguageError(code)
		}
	}

	if err := route.ValidatePatterns(c.Search.ExcludeRoutes); err != nil {
		return serrors.ConfigError("search.exclude_routes contains an invalid pattern", err)
	}
	if err := route.ValidatePatterns(c.Search.IncludeRoutes); err != nil {
		return serrors.ConfigError("search.include_routes contains an invalid pattern", err)
	}

	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return serrors.ConfigError(
				fmt.Sprintf("watch.debounce must be a duration, got %q", c.Watch.Debounce), err)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return serrors.ConfigError(
			fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}
	validFormats := map[string]bool{"auto": true, "json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return serrors.ConfigError(
			fmt.Sprintf("logging.format must be 'auto', 'json', or 'text', got %s", c.Logging.Format), nil)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return serrors.InternalError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return serrors.IOError("failed to write config file", err).WithDetail("path", path)
	}
	return nil
}
