package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
	Hint   string       `json:"hint,omitempty"`
}

// CheckAPIKeys returns the status of the external API keys. Only FRED
// needs one; prices and news are keyless.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	fred := checkKey("FRED API Key", cfg.Data.FredAPIKey, "FRED_API_KEY", EnvPrefix+"_DATA_FRED_API_KEY")
	if !fred.IsSet {
		fred.Hint = "free key at https://fred.stlouisfed.org/docs/api/api_key.html; monetary factors stay unavailable without it"
	}
	return []KeyStatus{fred}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}
	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
