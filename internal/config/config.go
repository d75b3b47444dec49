package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	API       APIConfig                 `yaml:"api,omitempty"`
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
	Auth      AuthConfig                `yaml:"auth,omitempty"`
	Logging   LoggingConfig             `yaml:"logging,omitempty"`
}

// APIConfig describes the identity API tokens are exchanged with
type APIConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	LoginPath string `yaml:"login_path,omitempty"`
	// Request timeout in seconds
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// ProviderConfig holds the OAuth client used to obtain an authorization code from a social provider in the browser
type ProviderConfig struct {
	ClientID string   `yaml:"client_id,omitempty"`
	Scopes   []string `yaml:"scopes,omitempty"`
}

// AuthConfig contains the tokens from the last successful login
type AuthConfig struct {
	Provider     string `yaml:"provider,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
	// Port of the local server that receives the provider redirect during browser login
	CallbackPort int `yaml:"callback_port,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
	Format   string `yaml:"format,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties, those determined at runtime such as the OS specific log file location
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Still start up on the defaults if they cannot be written
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// Map entries from the file replace the defaults wholesale, so restore default scopes that were left out
	applyProviderDefaults(cfg)

	applyEnvVarOverrides(cfg)

	return cfg, nil
}

func applyProviderDefaults(cfg *Config) {
	for name, def := range createBaseDefaultConfig().Providers {
		p, ok := cfg.Providers[name]
		if !ok {
			cfg.Providers[name] = def
			continue
		}
		if len(p.Scopes) == 0 {
			p.Scopes = def.Scopes
			cfg.Providers[name] = p
		}
	}
}

// LoginURL joins the API base URL and login path
func (c *Config) LoginURL() string {
	base := c.API.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	path := c.API.LoginPath
	if path == "" {
		path = "/login"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return base + path
}

// Provider returns the OAuth settings for the named provider, or an empty config if none are set
func (c *Config) Provider(name string) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}

// applyDynamicDefaults sets runtime-determined default values.  Unlike static defaults these are never written to the
// config file.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// The file holds tokens, keep it private
	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else the OS
// config location.
func getConfigPath() (string, error) {
	configPath := os.Getenv("SOCIALLOGIN_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "sociallogin", "config.yaml"), nil
}

func createBaseDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:3000",
			LoginPath:      "/login",
			TimeoutSeconds: 30,
		},
		Providers: map[string]ProviderConfig{
			"google":   {Scopes: []string{"openid", "email", "profile"}},
			"facebook": {Scopes: []string{"email", "public_profile"}},
			"github":   {Scopes: []string{"read:user", "user:email"}},
			"linkedin": {Scopes: []string{"openid", "email", "profile"}},
		},
		Auth: AuthConfig{
			CallbackPort: 19332,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// defaultLogFilePath returns the path to the log file using the expected OS locations
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "sociallogin.log")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "sociallogin", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "sociallogin", "logs")
		}
	case "darwin":
		basePath = filepath.Join(homedir, "Library", "Logs", "sociallogin")
	default:
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "sociallogin", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "sociallogin", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "sociallogin.log")
	}
	return filepath.Join(basePath, "sociallogin.log")
}
