package config

import "time"

type EnvVars struct {
	AppName     string        `env:"APP_NAME,default=Tally"`
	Env         string        `env:"TALLY_ENV,default=DEV"`
	BaseURL     string        `env:"TALLY_BASE_URL,default=http://localhost:8080"`
	HTTPTimeout time.Duration `env:"TALLY_HTTP_TIMEOUT,default=30s"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

// GetBaseURL returns the base URL of the Tally backend (e.g., "https://tally.example.com")
func (e EnvVars) GetBaseURL() string {
	return e.BaseURL
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.HTTPTimeout
}
