package config

import (
	"errors"
	"fmt"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"io/fs"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"

	// DefaultPath is used when no --config flag is given.
	DefaultPath = "config/config.yaml"

	// DefaultPackagePrefix is stripped from page object type names to build hidden-elements keys.
	DefaultPackagePrefix = "github.com/dskochubey/selenium-automation-bundle/internal/pages/"

	defaultTimeout   = 4000
	defaultBrowser   = "chrome"
	defaultThreshold = 0.1
	defaultWidth     = 1920
	defaultHeight    = 1080
)

var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig holds the bundle configuration.
type AppConfig struct {
	Version        string              `yaml:"version"`
	Debug          bool                `yaml:"debug"`
	Driver         string              `yaml:"driver"`
	Headless       bool                `yaml:"headless"`
	BaseURL        string              `yaml:"base-url"`
	Timeout        int                 `yaml:"timeout"`
	Platform       string              `yaml:"platform"`
	Browser        AppConfigBrowser    `yaml:"browser"`
	HiddenElements AppConfigHidden     `yaml:"hidden-elements"`
	Visual         AppConfigVisual     `yaml:"visual"`
	Snapshots      []AppConfigSnapshot `yaml:"snapshots"`
}

type AppConfigBrowser struct {
	Name         string   `yaml:"name"`
	Path         string   `yaml:"path"`
	Args         []string `yaml:"args"`
	UserDataDir  string   `yaml:"user-data-dir,omitempty"`
	WindowWidth  int      `yaml:"window-width"`
	WindowHeight int      `yaml:"window-height"`
}

type AppConfigHidden struct {
	File          string `yaml:"file"`
	PackagePrefix string `yaml:"package-prefix"`
}

type AppConfigVisual struct {
	BaselineDir   string  `yaml:"baseline-dir"`
	OutputDir     string  `yaml:"output-dir"`
	Threshold     float64 `yaml:"threshold"`
	MaxDiffPixels int     `yaml:"max-diff-pixels"`
}

// AppConfigSnapshot describes one page visited by the snapshot runner.
type AppConfigSnapshot struct {
	Name    string   `yaml:"name"`
	Key     string   `yaml:"key"`
	URL     string   `yaml:"url"`
	Wait    []string `yaml:"wait"`
	WaitAll []string `yaml:"wait-all"`
}

// LoadConfig loads the configuration file at path. A .env file in the working
// directory is applied first when present; BUNDLE_* variables override the file.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document and applies environment overrides and defaults.
func Parse(data []byte) (*AppConfig, error) {
	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv("BUNDLE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("BUNDLE_DRIVER"); v != "" {
		c.Driver = v
	}
	if v := os.Getenv("BUNDLE_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: BUNDLE_HEADLESS=%q", ErrInvalidConfig, v)
		}
		c.Headless = b
	}
	if v := os.Getenv("BUNDLE_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: BUNDLE_DEBUG=%q", ErrInvalidConfig, v)
		}
		c.Debug = b
	}
	return nil
}

func (c *AppConfig) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverChromedp
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Platform == "" {
		c.Platform = runtime.GOOS
	}
	if c.Browser.Name == "" {
		c.Browser.Name = defaultBrowser
	}
	if c.Browser.WindowWidth == 0 {
		c.Browser.WindowWidth = defaultWidth
	}
	if c.Browser.WindowHeight == 0 {
		c.Browser.WindowHeight = defaultHeight
	}
	if c.HiddenElements.PackagePrefix == "" {
		c.HiddenElements.PackagePrefix = DefaultPackagePrefix
	}
	if c.Visual.Threshold == 0 {
		c.Visual.Threshold = defaultThreshold
	}
	if c.Visual.BaselineDir == "" {
		c.Visual.BaselineDir = "testdata/baselines"
	}
	if c.Visual.OutputDir == "" {
		c.Visual.OutputDir = "build/visual"
	}
}

func (c *AppConfig) validate() error {
	switch c.Driver {
	case DriverChromedp, DriverPlaywright:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalidConfig, c.Timeout)
	}
	if c.Visual.Threshold < 0 || c.Visual.Threshold > 1 {
		return fmt.Errorf("%w: visual threshold must be within [0, 1], got %v", ErrInvalidConfig, c.Visual.Threshold)
	}
	for i, s := range c.Snapshots {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("%w: snapshot #%d needs a name and an url", ErrInvalidConfig, i)
		}
	}
	return nil
}

// WaitTimeout is the default timeout for every blocking browser wait.
func (c *AppConfig) WaitTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ResolveURL joins a relative page url onto the base url. Absolute urls are returned as is.
func (c *AppConfig) ResolveURL(pageURL string) string {
	if parsed, err := url.Parse(pageURL); err == nil && parsed.IsAbs() {
		return pageURL
	}
	if c.BaseURL == "" {
		return pageURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(pageURL, "/")
}
