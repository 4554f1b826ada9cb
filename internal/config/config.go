package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config interface {
	EnvConfig
	SessionConfig
	RouteConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Session
	Routes
}

// New reads the configuration from the environment. Unset variables take the
// defaults declared on the struct tags; a value that does not parse is an
// error rather than a silent zero.
func New() (Config, error) {
	var c mainConfig
	if err := envdecode.StrictDecode(&c); err != nil {
		return nil, fmt.Errorf("[config New] decode environment: %w", err)
	}
	return c, nil
}
