package userapi

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the immutable runtime configuration, built once at startup and
// passed by reference into constructors. Database settings keep local-dev
// defaults; the signing secret has no safe default and must be provided.
type EnvConfig struct {
	Port string `env:"PORT" envDefault:"3000"`

	SigningKey      string        `env:"JWT_SECRET"`
	TokenExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"1h"`
	Issuer          string        `env:"JWT_ISSUER" envDefault:"go-user-api"`
	Audience        []string      `env:"JWT_AUDIENCE" envSeparator:","`

	ContextKey  string `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenLookup string `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme  string `env:"AUTH_SCHEME" envDefault:"Bearer"`

	DBHost     string `env:"DB_HOST" envDefault:"db"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASS" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"userapi"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig builds an EnvConfig from the process environment
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("JWT_SECRET must be set", errors.CategoryOperation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	return cfg, nil
}

// DBAddr returns the host:port pair for the database connector
func (c *EnvConfig) DBAddr() string {
	return fmt.Sprintf("%s:%d", c.DBHost, c.DBPort)
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() time.Duration {
	return c.TokenExpiration
}

func (c *EnvConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *EnvConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *EnvConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	return c.Audience
}
