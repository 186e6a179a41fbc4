package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/researchid/orcid-auth-demo/utils"
)

// DefaultSecretKey is the development fallback for the state-cookie signing
// key. Startup fails in production unless SECRET_KEY is set to something else.
const DefaultSecretKey = "secret-key-not-set"

// DefaultClientID is the public sandbox client used for local development.
const DefaultClientID = "APP-ZTT8BDD9D2LPQNFV"

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	ORCID         ORCIDConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// ProtectedPath is the URL prefix the protected route group is mounted
	// under. Login, callback and logout live under the same prefix.
	ProtectedPath string `validate:"required,startswith=/"`

	// SecretKey signs the OAuth state cookie. The session cookie itself
	// needs no signing: it carries an id_token that is re-validated on
	// every request.
	SecretKey string `validate:"required"`
}

// ORCIDConfig holds the ORCID authorization-server configuration
type ORCIDConfig struct {
	// Issuer is the expected `iss` claim and the base URL for OIDC
	// discovery (<issuer>/.well-known/openid-configuration).
	Issuer string `validate:"required,url"`

	// KeysURL is the JWKS endpoint. When empty it is resolved from the
	// issuer's discovery document.
	KeysURL string `validate:"omitempty,url"`

	// ClientID doubles as the expected token audience.
	ClientID     string `validate:"required"`
	ClientSecret string

	// RedirectURI is the registered OAuth callback URL.
	RedirectURI string `validate:"required,url"`
}

// CORSConfig holds cross-origin request policy
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string `validate:"required,oneof=debug info warn error"`
	LogFormat string `validate:"required,oneof=json text"`
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env if present (same convention as the original deployment)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			ProtectedPath:   getEnv("PROTECTED_PATH", "/protected"),
			SecretKey:       getEnv("SECRET_KEY", DefaultSecretKey),
		},
		ORCID: ORCIDConfig{
			Issuer:       getEnv("ORCID_ISSUER", "https://orcid.org"),
			KeysURL:      getEnv("ORCID_KEYS", "https://orcid.org/oauth/jwks"),
			ClientID:     getEnv("ORCID_CLIENT_ID", DefaultClientID),
			ClientSecret: getEnv("ORCID_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("ORCID_REDIRECT_URI", "http://127.0.0.1:8000/protected/auth"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_METHODS", []string{"GET", "HEAD"}),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}

	// Client credentials and a real secret key are required in production;
	// development runs tolerate the placeholders.
	if c.IsProduction() {
		if c.ORCID.ClientID == "" || c.ORCID.ClientID == DefaultClientID {
			return fmt.Errorf("ORCID client ID is required in production")
		}
		if c.ORCID.ClientSecret == "" {
			return fmt.Errorf("ORCID client secret is required in production")
		}
		if c.Server.SecretKey == DefaultSecretKey {
			return fmt.Errorf("SECRET_KEY must be set in production")
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable as a slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
