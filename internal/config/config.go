// Package config loads dig settings from dig.yaml, .env and DIG_* variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/dig/pkg/adapters/process"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultSite        = "https://dig.wiki.innovateoregon.org"
	DefaultRoot        = "Welcome Visitors"
	DefaultDataDir     = "data"
	DefaultConcurrency = 16
	DefaultAddr        = ":8080"
	DefaultConfigFile  = "dig.yaml"
)

// Publish modes.
const (
	PublishNone  = "none"
	PublishRsync = "rsync"
	PublishS3    = "s3"
)

// Config is the complete dig configuration.
type Config struct {
	Site        string   `yaml:"site" json:"site"`
	Root        string   `yaml:"root" json:"root"`
	DataDir     string   `yaml:"data_dir" json:"data_dir"`
	Concurrency int      `yaml:"concurrency" json:"concurrency"`
	Template    string   `yaml:"template" json:"template"`
	Prefixes    []string `yaml:"allowed_prefixes" json:"allowed_prefixes"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	Publish   Publish              `yaml:"publish" json:"publish"`
	Tools     []process.ToolConfig `yaml:"tools" json:"tools"`
	ToolsFile string               `yaml:"tools_file" json:"tools_file"`
	Redis     Redis                `yaml:"redis" json:"redis"`
	Server    Server               `yaml:"server" json:"server"`
}

// Publish selects where rendered images go.
// An empty Mode picks s3 when a bucket is set, rsync when a target is set,
// and none otherwise.
type Publish struct {
	Mode   string `yaml:"mode" json:"mode"`
	Target string `yaml:"target" json:"target"`
	S3     S3     `yaml:"s3" json:"s3"`
}

// S3 holds bucket settings for the s3 publish mode.
type S3 struct {
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Region    string `yaml:"region" json:"region"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
}

// Redis enables the shared build lock and report store when Addr is set.
type Redis struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Site:        DefaultSite,
		Root:        DefaultRoot,
		DataDir:     DefaultDataDir,
		Concurrency: DefaultConcurrency,
		LogLevel:    "info",
		LogFormat:   "text",
		Server:      Server{Addr: DefaultAddr},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults, then
// applies .env and DIG_* overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	case strings.ToLower(filepath.Ext(path)) == ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := LoadEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads variables from an env file without overriding ones already set.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from DIG_* and AWS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DIG_SITE", &c.Site)
	str("DIG_ROOT", &c.Root)
	str("DIG_DATA_DIR", &c.DataDir)
	str("DIG_TEMPLATE", &c.Template)
	str("DIG_LOG_LEVEL", &c.LogLevel)
	str("DIG_LOG_FORMAT", &c.LogFormat)
	str("DIG_PUBLISH_MODE", &c.Publish.Mode)
	str("DIG_PUBLISH_TARGET", &c.Publish.Target)
	str("DIG_S3_BUCKET", &c.Publish.S3.Bucket)
	str("DIG_S3_PREFIX", &c.Publish.S3.Prefix)
	str("AWS_REGION", &c.Publish.S3.Region)
	str("AWS_ENDPOINT", &c.Publish.S3.Endpoint)
	str("AWS_ACCESS_KEY", &c.Publish.S3.AccessKey)
	str("AWS_SECRET_KEY", &c.Publish.S3.SecretKey)
	str("DIG_REDIS_ADDR", &c.Redis.Addr)
	str("DIG_REDIS_PASSWORD", &c.Redis.Password)
	str("DIG_ADDR", &c.Server.Addr)

	if v, ok := lookup("DIG_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DIG_CONCURRENCY %q: %w", v, err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate rejects settings no build could run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Site == "" {
		errs = append(errs, errors.New("site is required"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	switch c.PublishMode() {
	case PublishNone:
	case PublishRsync:
		if c.Publish.Target == "" {
			errs = append(errs, errors.New("publish.target is required for rsync"))
		}
	case PublishS3:
		if c.Publish.S3.Bucket == "" {
			errs = append(errs, errors.New("publish.s3.bucket is required for s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown publish mode %q", c.Publish.Mode))
	}
	return errors.Join(errs...)
}

// PublishMode resolves the effective publish mode.
func (c *Config) PublishMode() string {
	if c.Publish.Mode != "" {
		return c.Publish.Mode
	}
	switch {
	case c.Publish.S3.Bucket != "":
		return PublishS3
	case c.Publish.Target != "":
		return PublishRsync
	default:
		return PublishNone
	}
}

// ToolRegistry merges the tools file and inline tools, inline last.
func (c *Config) ToolRegistry() (map[string]process.ToolConfig, error) {
	tools := map[string]process.ToolConfig{}
	if c.ToolsFile != "" {
		loaded, err := process.LoadTools(c.ToolsFile)
		if err != nil {
			return nil, err
		}
		tools = loaded
	}
	for _, tool := range c.Tools {
		if tool.Name != "" {
			tools[tool.Name] = tool
		}
	}
	return tools, nil
}

// TemplateText returns the diagram program from the template file, or "" for the default.
func (c *Config) TemplateText() (string, error) {
	if c.Template == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Template)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}
