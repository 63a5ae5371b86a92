// Package config loads the admin CLI configuration from ~/.admin-cli/config.yaml,
// a .env file and ADMIN_* environment variables, and saves login profiles back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mikelcalvo/admin-cli/internal/auth"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"
	DefaultBrand   = "Shop Admin"
	DefaultTimeout = 30 * time.Second
	DefaultProfile = "default"

	EnvPrefix = "ADMIN"
)

type Config struct {
	BaseURL        string              `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	AnalyticsPath  string              `yaml:"analytics_path" mapstructure:"analytics_path"`
	Timeout        time.Duration       `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	Brand          string              `yaml:"brand" mapstructure:"brand"`
	Log            LogConfig           `yaml:"log" mapstructure:"log"`
	CurrentProfile string              `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles" mapstructure:"profiles"`
	path           string
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

type Profile struct {
	Username     string `yaml:"username" mapstructure:"username"`
	AccessToken  string `yaml:"access_token" mapstructure:"access_token"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
}

func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		Brand:          DefaultBrand,
		Log:            LogConfig{Level: "info", Format: "text"},
		CurrentProfile: DefaultProfile,
		Profiles:       make(map[string]*Profile),
	}
}

// DefaultPath returns ADMIN_CONFIG if set, else ~/.admin-cli/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".admin-cli", "config.yaml"), nil
}

// Load reads cfgFile (or the default path). A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load(".env") // init env from .env (if found)

	if cfgFile == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}

	v := viper.New()
	def := Default()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("analytics_path", "")
	v.SetDefault("timeout", def.Timeout.String())
	v.SetDefault("brand", def.Brand)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("current_profile", def.CurrentProfile)

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("current_profile", EnvPrefix+"_PROFILE")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}

	cfg := def
	cfg.path = cfgFile
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		key := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("'%s' is required", key))
		case "url":
			msgs = append(msgs, fmt.Sprintf("'%s' must be a valid URL", key))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("'%s' must be greater than %s", key, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of: %s", key, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' failed on the '%s' tag", key, e.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

// Path is the file Save writes to.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0o600)
}

// SaveProfile stores a profile, makes it current and writes the file.
func (c *Config) SaveProfile(name, username, accessToken, refreshToken string) error {
	if name == "" {
		name = DefaultProfile
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}

	c.Profiles[name] = &Profile{
		Username:     username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	c.CurrentProfile = name
	return c.Save()
}

// GetProfile returns the named profile, or the current one when name is empty.
func (c *Config) GetProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}

	return profile, nil
}

func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(c.Profiles, name)

	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}

	return c.Save()
}

// Tokens returns the stored token pair of a profile; zero if it does not exist.
func (c *Config) Tokens(name string) auth.Tokens {
	p, err := c.GetProfile(name)
	if err != nil {
		return auth.Tokens{}
	}
	return auth.Tokens{Access: p.AccessToken, Refresh: p.RefreshToken}
}

// TokenStore persists refreshed tokens into the named profile.
func (c *Config) TokenStore(name string) auth.TokenStore {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		name = DefaultProfile
	}
	return &profileStore{cfg: c, name: name}
}

type profileStore struct {
	cfg  *Config
	name string
}

func (s *profileStore) SaveTokens(t auth.Tokens) error {
	p, ok := s.cfg.Profiles[s.name]
	if !ok {
		if t == (auth.Tokens{}) {
			return nil
		}
		p = &Profile{}
		if s.cfg.Profiles == nil {
			s.cfg.Profiles = make(map[string]*Profile)
		}
		s.cfg.Profiles[s.name] = p
	}
	p.AccessToken = t.Access
	p.RefreshToken = t.Refresh
	return s.cfg.Save()
}
