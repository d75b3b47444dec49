package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpConfigPath := filepath.Join(t.TempDir(), "config.yaml")
	setEnv(t, "SOCIALLOGIN_CONFIG_PATH", tmpConfigPath)

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration exercises the config package against real files in a temporary directory
func TestConfigIntegration(t *testing.T) {
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "http://localhost:3000", config.API.BaseURL)
		assert.Equal(t, "/login", config.API.LoginPath)
		assert.Equal(t, 30, config.API.TimeoutSeconds)
		assert.Equal(t, 19332, config.Auth.CallbackPort)
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)
		assert.Equal(t, []string{"openid", "email", "profile"}, config.Provider("google").Scopes)

		if _, err := os.Stat(tmpConfigPath); os.IsNotExist(err) {
			t.Errorf("Config file was not created at %s", tmpConfigPath)
		}

		// Dynamic defaults must not be written to disk with the default config
		savedConfig, _ := loadFromDisk(tmpConfigPath)
		assert.Empty(t, savedConfig.Logging.FilePath)
	})

	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		customConfig := &Config{
			API: APIConfig{
				BaseURL:        "https://id.example.com",
				LoginPath:      "/api/login",
				TimeoutSeconds: 5,
			},
			Providers: map[string]ProviderConfig{
				"google": {ClientID: "google-client"},
			},
			Auth: AuthConfig{
				Provider:     "google",
				AccessToken:  "access",
				RefreshToken: "refresh",
				CallbackPort: 8123,
			},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/sociallogin.log",
				Format:   "text",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		assert.Equal(t, "https://id.example.com", loadedConfig.API.BaseURL)
		assert.Equal(t, "/api/login", loadedConfig.API.LoginPath)
		assert.Equal(t, 5, loadedConfig.API.TimeoutSeconds)
		assert.Equal(t, "google-client", loadedConfig.Provider("google").ClientID)
		// Scopes missing from the file fall back to the defaults
		assert.Equal(t, []string{"openid", "email", "profile"}, loadedConfig.Provider("google").Scopes)
		assert.NotEmpty(t, loadedConfig.Provider("github").Scopes)
		assert.Equal(t, "google", loadedConfig.Auth.Provider)
		assert.Equal(t, "access", loadedConfig.Auth.AccessToken)
		assert.Equal(t, "refresh", loadedConfig.Auth.RefreshToken)
		assert.Equal(t, 8123, loadedConfig.Auth.CallbackPort)
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/sociallogin.log", loadedConfig.Logging.FilePath)
		assert.Equal(t, "text", loadedConfig.Logging.Format)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		if err := os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Error("Expected error when loading invalid YAML, got nil")
		}
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		setEnv(t, "SOCIALLOGIN_CONFIG_API_BASE_URL", "https://env.example.com")
		setEnv(t, "SOCIALLOGIN_CONFIG_API_LOGIN_PATH", "/env/login")
		setEnv(t, "SOCIALLOGIN_CONFIG_API_TIMEOUT_SECONDS", "12")
		setEnv(t, "SOCIALLOGIN_CONFIG_AUTH_ACCESS_TOKEN", "env-access")
		setEnv(t, "SOCIALLOGIN_CONFIG_AUTH_REFRESH_TOKEN", "env-refresh")
		setEnv(t, "SOCIALLOGIN_CONFIG_AUTH_CALLBACK_PORT", "9999")
		setEnv(t, "SOCIALLOGIN_CONFIG_LOGGING_LEVEL", "warn")
		setEnv(t, "SOCIALLOGIN_CONFIG_LOGGING_FILE_PATH", "/sociallogin.log")
		setEnv(t, "SOCIALLOGIN_CONFIG_LOGGING_FORMAT", "text")
		setEnv(t, "SOCIALLOGIN_CONFIG_PROVIDERS_GITHUB_CLIENT_ID", "gh-client")

		config := loadConfig(t)

		assert.Equal(t, "https://env.example.com", config.API.BaseURL)
		assert.Equal(t, "/env/login", config.API.LoginPath)
		assert.Equal(t, 12, config.API.TimeoutSeconds)
		assert.Equal(t, "env-access", config.Auth.AccessToken)
		assert.Equal(t, "env-refresh", config.Auth.RefreshToken)
		assert.Equal(t, 9999, config.Auth.CallbackPort)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/sociallogin.log", config.Logging.FilePath)
		assert.Equal(t, "text", config.Logging.Format)
		assert.Equal(t, "gh-client", config.Provider("github").ClientID)

		// Env overrides must not be persisted to disk
		unsetEnv(t, "SOCIALLOGIN_CONFIG_LOGGING_LEVEL")
		unsetEnv(t, "SOCIALLOGIN_CONFIG_PROVIDERS_GITHUB_CLIENT_ID")

		config = loadConfig(t)

		assert.Equal(t, "info", config.Logging.Level)
		assert.Empty(t, config.Provider("github").ClientID)
	})

	t.Run("InvalidNumericOverrideIgnored", func(t *testing.T) {
		setupTestConfig(t)
		setEnv(t, "SOCIALLOGIN_CONFIG_API_TIMEOUT_SECONDS", "soon")

		config := loadConfig(t)
		assert.Equal(t, 30, config.API.TimeoutSeconds)
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)

		assert.Empty(t, config.Auth.AccessToken)

		err := UpdateConfig(func(config *Config) {
			config.Auth.Provider = "facebook"
			config.Auth.AccessToken = "stored-access"
		})
		if err != nil {
			t.Fatalf("Failed to update config: %v", err)
		}

		config = loadConfig(t)
		assert.Equal(t, "facebook", config.Auth.Provider)
		assert.Equal(t, "stored-access", config.Auth.AccessToken)
	})
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://api.example.com", "/login", "https://api.example.com/login"},
		{"https://api.example.com/", "/login", "https://api.example.com/login"},
		{"https://api.example.com//", "login", "https://api.example.com/login"},
		{"https://api.example.com/v1", "", "https://api.example.com/v1/login"},
	}
	for _, tt := range tests {
		c := &Config{API: APIConfig{BaseURL: tt.base, LoginPath: tt.path}}
		assert.Equal(t, tt.want, c.LoginURL())
	}
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Failed to set environment variable: %v", err)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Failed to unset environment variable: %v", err)
	}
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	if err := save(config, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	if err != nil {
		t.Fatalf("Loading of config failed: %v", err)
	}
	return config
}

// Removes any env vars with the SOCIALLOGIN_CONFIG prefix to keep tests isolated
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "SOCIALLOGIN_CONFIG") {
			unsetEnv(t, key)
		}
	}
}
