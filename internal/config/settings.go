package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. SHOWUP_API_URL.
const EnvPrefix = "SHOWUP"

// DefaultConfigFilename is the config file looked up in the config directory.
const DefaultConfigFilename = "config.yaml"

// Settings holds every runtime knob of the CLI.
type Settings struct {
	API      APISettings      `mapstructure:"api"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	State    StateSettings    `mapstructure:"state"`
	Wizard   WizardSettings   `mapstructure:"wizard"`
	Accounts AccountsSettings `mapstructure:"accounts"`
	Log      LogSettings      `mapstructure:"log"`
	Metrics  MetricsSettings  `mapstructure:"metrics"`
}

// APISettings locate the backend.
type APISettings struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// HTTPSettings tune the API client.
type HTTPSettings struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries int           `mapstructure:"retries" validate:"gte=0,lte=10"`
}

// StateSettings locate persisted session data (ids and cookies, never credentials).
type StateSettings struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// WizardSettings tune the onboarding wizard.
type WizardSettings struct {
	AutoAdvanceDelay time.Duration `mapstructure:"autoAdvanceDelay" validate:"gte=0"`
}

// AccountsSettings tune the account lister.
type AccountsSettings struct {
	StubDelay time.Duration `mapstructure:"stubDelay" validate:"gte=0"`
}

// LogSettings select verbosity and encoding.
type LogSettings struct {
	Level  int    `mapstructure:"level" validate:"gte=0"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// MetricsSettings control the optional metrics textfile.
type MetricsSettings struct {
	File string `mapstructure:"file"`
}

// flagKeys maps persistent flag names to settings keys.
var flagKeys = map[string]string{
	"api-url":      "api.url",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-file": "metrics.file",
	"state-dir":    "state.dir",
}

// DefaultDir returns the per-user directory for showup's config and state.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".showup"
	}
	return filepath.Join(base, "showup")
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8080")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.retries", 2)
	v.SetDefault("state.dir", DefaultDir())
	v.SetDefault("wizard.autoAdvanceDelay", 1500*time.Millisecond)
	v.SetDefault("accounts.stubDelay", time.Second)
	v.SetDefault("log.level", 0)
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.file", "")
}

// Load resolves settings from defaults, the config file, the environment and
// flags. An empty path falls back to the default config file, which may be absent.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultDir(), DefaultConfigFilename)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &s, nil
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (s *Settings) Validate() error {
	return settingsValidator.Struct(s)
}

// CookieFile is where the session cookie jar is persisted.
func (s *Settings) CookieFile() string {
	return filepath.Join(s.State.Dir, "cookies.json")
}

// SessionFile is where the user and account ids are persisted.
func (s *Settings) SessionFile() string {
	return filepath.Join(s.State.Dir, "session.yaml")
}
