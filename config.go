package fanrelay

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xraph/fanrelay/dispatch"
	"github.com/xraph/fanrelay/payload"
	"github.com/xraph/fanrelay/target"
)

// Config holds the configuration for a Relay instance and the server hosting it.
type Config struct {
	// Method is the single inbound method accepted: GET or POST.
	Method string `yaml:"method"`

	// Addr is the listen address used by the standalone server.
	Addr string `yaml:"addr"`

	// Path is the URL path the relay endpoint is mounted on.
	Path string `yaml:"path"`

	// RequestTimeout bounds every target call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes caps the inbound POST body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// TargetsEnv names the environment variable holding the target list.
	TargetsEnv string `yaml:"targets_env"`

	// SigningSecret, when set, signs every forwarded POST body.
	SigningSecret string `yaml:"signing_secret"`

	// SchemaFile, when set, points to a JSON Schema every POST body must satisfy.
	SchemaFile string `yaml:"schema_file"`

	// ShutdownTimeout is the maximum time to wait for in-flight relays on shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Redis, when URL is set, replaces the environment as the target source.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis target source.
type RedisConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Method:          http.MethodGet,
		Addr:            ":8080",
		Path:            "/",
		RequestTimeout:  dispatch.DefaultTimeout,
		MaxBodyBytes:    payload.DefaultMaxBytes,
		TargetsEnv:      target.DefaultEnvVar,
		ShutdownTimeout: 15 * time.Second,
		Redis:           RedisConfig{Key: target.DefaultRedisKey},
	}
}

// LoadConfigFile reads a YAML config file on top of DefaultConfig.
// Durations are Go duration strings ("5s") or bare milliseconds (5000).
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("fanrelay: read config file %q: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("fanrelay: parse config file %q: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	millisToDurations(doc.Content[0])
	if err := doc.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("fanrelay: parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// durationKeys are the YAML keys decoded into a time.Duration.
var durationKeys = map[string]bool{
	"request_timeout":  true,
	"shutdown_timeout": true,
}

// millisToDurations rewrites bare integers under durationKeys to millisecond
// durations, matching how FANRELAY_REQUEST_TIMEOUT is read.
func millisToDurations(n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if durationKeys[key.Value] && val.Kind == yaml.ScalarNode && val.ShortTag() == "!!int" {
			val.Value += "ms"
			val.Tag = "!!str"
			val.Style = 0
		}
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvAddr           = "FANRELAY_ADDR"
	EnvMethod         = "FANRELAY_METHOD"
	EnvRequestTimeout = "FANRELAY_REQUEST_TIMEOUT"
	EnvSigningSecret  = "FANRELAY_SIGNING_SECRET"
	EnvRedisURL       = "FANRELAY_REDIS_URL"
	EnvRedisKey       = "FANRELAY_REDIS_KEY"
)

// ApplyEnv overrides fields from environment variables resolved through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvMethod); ok && v != "" {
		c.Method = v
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if v, ok := lookup(EnvSigningSecret); ok && v != "" {
		c.SigningSecret = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Redis.URL = v
	}
	if v, ok := lookup(EnvRedisKey); ok && v != "" {
		c.Redis.Key = v
	}
	return nil
}

// parseDuration accepts Go durations ("5s") or bare milliseconds ("5000").
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// Validate normalizes the method and checks the remaining fields.
func (c *Config) Validate() error {
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method != http.MethodGet && c.Method != http.MethodPost {
		return fmt.Errorf("%w: method must be GET or POST, got %q", ErrInvalidConfig, c.Method)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: max body bytes must not be negative", ErrInvalidConfig)
	}
	if c.Path == "" || c.Path[0] != '/' {
		return fmt.Errorf("%w: path must start with '/', got %q", ErrInvalidConfig, c.Path)
	}
	return nil
}
