package config

import (
	"os"
	"strconv"
	"strings"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Documentation only.  Chooses where the config is loaded from, so it is read before loading.
		name:  "SOCIALLOGIN_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {},
	},
	{
		name:  "SOCIALLOGIN_CONFIG_API_BASE_URL",
		desc:  "Sets the base URL of the identity API.  Default: http://localhost:3000",
		apply: func(c *Config, s string) { c.API.BaseURL = s },
	},
	{
		name:  "SOCIALLOGIN_CONFIG_API_LOGIN_PATH",
		desc:  "Sets the path social login requests are posted to.  Default: /login",
		apply: func(c *Config, s string) { c.API.LoginPath = s },
	},
	{
		name: "SOCIALLOGIN_CONFIG_API_TIMEOUT_SECONDS",
		desc: "Sets the API request timeout in seconds.  Default: 30",
		apply: func(c *Config, s string) {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				c.API.TimeoutSeconds = n
			}
		},
	},
	{
		name:  "SOCIALLOGIN_CONFIG_AUTH_ACCESS_TOKEN",
		desc:  "Sets the API access token.  Default: None",
		apply: func(c *Config, s string) { c.Auth.AccessToken = s },
	},
	{
		name:  "SOCIALLOGIN_CONFIG_AUTH_REFRESH_TOKEN",
		desc:  "Sets the API refresh token.  Default: None",
		apply: func(c *Config, s string) { c.Auth.RefreshToken = s },
	},
	{
		name: "SOCIALLOGIN_CONFIG_AUTH_CALLBACK_PORT",
		desc: "Sets the local port used to receive browser login redirects.  Default: 19332",
		apply: func(c *Config, s string) {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				c.Auth.CallbackPort = n
			}
		},
	},
	{
		name:  "SOCIALLOGIN_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "SOCIALLOGIN_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
	{
		name:  "SOCIALLOGIN_CONFIG_LOGGING_FORMAT",
		desc:  "Sets the log line format.  One of: json, text.  Default: json",
		apply: func(c *Config, s string) { c.Logging.Format = s },
	},
}

// providerClientIDPrefix is followed by the upper-cased provider name, e.g. SOCIALLOGIN_CONFIG_PROVIDERS_GOOGLE_CLIENT_ID
const (
	providerClientIDPrefix = "SOCIALLOGIN_CONFIG_PROVIDERS_"
	providerClientIDSuffix = "_CLIENT_ID"
)

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			envVar.apply(c, value)
		}
	}

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(key, providerClientIDPrefix) || !strings.HasSuffix(key, providerClientIDSuffix) {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(key, providerClientIDPrefix), providerClientIDSuffix))
		if name == "" {
			continue
		}
		if c.Providers == nil {
			c.Providers = map[string]ProviderConfig{}
		}
		p := c.Providers[name]
		p.ClientID = value
		c.Providers[name] = p
	}
}
