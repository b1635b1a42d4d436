// Package config handles the XDG configuration directory, file paths, and
// backend settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todowork"

	// SettingsFile is the backend settings filename.
	SettingsFile = "config.yaml"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"

	// DatabaseFile is the local SQLite database filename.
	DatabaseFile = "todowork.db"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"
)

// Backend names accepted in the settings file.
const (
	BackendLocal    = "local"
	BackendFirebase = "firebase"
	BackendMongo    = "mongo"
	BackendGoogle   = "google"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are read from config.yaml and the environment.
	Settings Settings
}

// Settings selects and configures the backends.
type Settings struct {
	// Accounts is the account backend: local or firebase.
	Accounts string `yaml:"accounts"`

	// Profiles is the profile backend: local or mongo.
	Profiles string `yaml:"profiles"`

	// Tasks is the task backend: local, mongo, or google.
	Tasks string `yaml:"tasks"`

	Mongo    MongoSettings    `yaml:"mongo"`
	Firebase FirebaseSettings `yaml:"firebase"`

	// SplashMin is the minimum time the startup status is shown before
	// routing. Zero routes as soon as the session check completes.
	SplashMin time.Duration `yaml:"splash_min"`
}

// MongoSettings configures the MongoDB backend.
type MongoSettings struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// FirebaseSettings configures the Firebase account backend.
type FirebaseSettings struct {
	APIKey          string `yaml:"api_key"`
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// DefaultSettings returns settings for a fully local setup.
func DefaultSettings() Settings {
	return Settings{
		Accounts: BackendLocal,
		Profiles: BackendLocal,
		Tasks:    BackendLocal,
		Mongo:    MongoSettings{Database: AppName},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todowork or $HOME/.config/todowork.
// Settings are loaded from config.yaml if present, then overridden by
// TODOWORK_* environment variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Settings: DefaultSettings()}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	cfg.Settings.applyEnv()
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadSettings() error {
	data, err := os.ReadFile(c.SettingsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}
	if err := yaml.Unmarshal(data, &c.Settings); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return nil
}

func (s *Settings) applyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&s.Accounts, "TODOWORK_ACCOUNTS")
	override(&s.Profiles, "TODOWORK_PROFILES")
	override(&s.Tasks, "TODOWORK_TASKS")
	override(&s.Mongo.URI, "TODOWORK_MONGO_URI")
	override(&s.Firebase.APIKey, "TODOWORK_FIREBASE_API_KEY")
	override(&s.Firebase.CredentialsFile, "TODOWORK_FIREBASE_CREDENTIALS")
}

// Validate checks backend names and required backend settings.
func (s Settings) Validate() error {
	switch s.Accounts {
	case BackendLocal:
	case BackendFirebase:
		if s.Firebase.APIKey == "" {
			return errors.New("firebase.api_key is required for accounts: firebase")
		}
	default:
		return fmt.Errorf("unknown accounts backend: %s", s.Accounts)
	}

	switch s.Profiles {
	case BackendLocal, BackendMongo:
	default:
		return fmt.Errorf("unknown profiles backend: %s", s.Profiles)
	}

	switch s.Tasks {
	case BackendLocal, BackendMongo, BackendGoogle:
	default:
		return fmt.Errorf("unknown tasks backend: %s", s.Tasks)
	}

	if (s.Profiles == BackendMongo || s.Tasks == BackendMongo) && s.Mongo.URI == "" {
		return errors.New("mongo.uri is required for the mongo backend")
	}
	if s.SplashMin < 0 {
		return fmt.Errorf("invalid splash_min: %s", s.SplashMin)
	}
	return nil
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// DatabasePath returns the path to the local SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token file.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the Google OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}
