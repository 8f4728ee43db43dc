package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultWatchInterval = 90 * time.Second
	DefaultCooldown      = 8 * time.Hour
	DefaultHTTPPort      = 8080
	DefaultStatePath     = "destinations.json"

	DefaultTokenURL  = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"
	DefaultStatesURL = "https://opensky-network.org/api/states/all"
)

// Config is the top-level skywatch configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Watch    WatchConfig   `yaml:"watch"`
	OpenSky  OpenSkyConfig `yaml:"opensky"`
	Aircraft []Aircraft    `yaml:"aircraft"`
	Channels []Channel     `yaml:"channels"`
	Server   ServerConfig  `yaml:"server"`
	State    StateConfig   `yaml:"state"`
}

// WatchConfig controls the polling loop.
type WatchConfig struct {
	// Interval is how often live airspace state is polled.
	Interval time.Duration `yaml:"interval"`

	// Cooldown is the minimum elapsed time between two alerts for the
	// same aircraft.
	Cooldown time.Duration `yaml:"cooldown"`
}

// OpenSkyConfig holds the telemetry API endpoints and credential sources.
// Credentials are never stored in the file — the config carries the names of
// the environment variables that hold them.
type OpenSkyConfig struct {
	// TokenURL is the OAuth2 client-credentials token endpoint.
	TokenURL string `yaml:"token_url"`

	// StatesURL is the live state vectors endpoint.
	StatesURL string `yaml:"states_url"`

	// ClientIDEnv is the name of the environment variable holding the
	// API client id.
	ClientIDEnv string `yaml:"client_id_env"`

	// ClientSecretEnv is the name of the environment variable holding the
	// API client secret.
	ClientSecretEnv string `yaml:"client_secret_env"`
}

// ClientID returns the API client id resolved from the environment.
func (o OpenSkyConfig) ClientID() string {
	if o.ClientIDEnv == "" {
		return ""
	}
	return os.Getenv(o.ClientIDEnv)
}

// ClientSecret returns the API client secret resolved from the environment.
func (o OpenSkyConfig) ClientSecret() string {
	if o.ClientSecretEnv == "" {
		return ""
	}
	return os.Getenv(o.ClientSecretEnv)
}

// Aircraft is one tracked aircraft: a fixed transponder code plus the
// registration shown in alerts.
type Aircraft struct {
	// Icao24 is the 24-bit transponder address in lowercase hex.
	Icao24 string `yaml:"icao24"`

	// Registration is the display label, e.g. "N514RS".
	Registration string `yaml:"registration"`
}

// Channel defines one output channel destinations can be bound to.
type Channel struct {
	// ID is a unique, human-readable channel identifier.
	ID string `yaml:"id"`

	// Type is one of: discord | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (c Channel) URL() string {
	if c.URLEnv == "" {
		return ""
	}
	return os.Getenv(c.URLEnv)
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// HTTPPort is the port the admin API, liveness endpoint, metrics and
	// WebSocket stream listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures admin authentication for mutating API requests.
	Auth AdminAuthConfig `yaml:"auth"`
}

// AdminAuthConfig configures the admin API key check.
type AdminAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable holding the admin key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the admin key resolved from the environment.
func (a AdminAuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// StateConfig configures destination registry persistence.
type StateConfig struct {
	// Path is the filesystem path for the destination registry JSON file.
	Path string `yaml:"path"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Watch: WatchConfig{
			Interval: DefaultWatchInterval,
			Cooldown: DefaultCooldown,
		},
		OpenSky: OpenSkyConfig{
			TokenURL:  DefaultTokenURL,
			StatesURL: DefaultStatesURL,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		State: StateConfig{
			Path: DefaultStatePath,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive")
	}
	if cfg.Watch.Cooldown <= 0 {
		return fmt.Errorf("watch.cooldown must be positive")
	}
	if cfg.OpenSky.ClientIDEnv == "" || cfg.OpenSky.ClientSecretEnv == "" {
		return fmt.Errorf("opensky.client_id_env and opensky.client_secret_env are required")
	}
	if len(cfg.Aircraft) == 0 {
		return fmt.Errorf("at least one tracked aircraft is required")
	}

	seenIcao := make(map[string]bool, len(cfg.Aircraft))
	for i, a := range cfg.Aircraft {
		if !validIcao24(a.Icao24) {
			return fmt.Errorf("aircraft[%d]: icao24 must be 6 lowercase hex digits, got %q", i, a.Icao24)
		}
		if a.Registration == "" {
			return fmt.Errorf("aircraft[%d] %q: registration is required", i, a.Icao24)
		}
		if seenIcao[a.Icao24] {
			return fmt.Errorf("aircraft[%d]: duplicate icao24 %q", i, a.Icao24)
		}
		seenIcao[a.Icao24] = true
	}

	seenID := make(map[string]bool, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channels[%d]: id is required", i)
		}
		if seenID[ch.ID] {
			return fmt.Errorf("channels[%d]: duplicate id %q", i, ch.ID)
		}
		seenID[ch.ID] = true
		switch ch.Type {
		case "discord", "slack", "http":
		default:
			return fmt.Errorf("channels[%d] %q: unknown type %q", i, ch.ID, ch.Type)
		}
		if ch.URLEnv == "" {
			return fmt.Errorf("channels[%d] %q: url_env is required", i, ch.ID)
		}
	}

	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}

	return nil
}

// validIcao24 reports whether s is a 6-digit lowercase hex transponder code.
func validIcao24(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
