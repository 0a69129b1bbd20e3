// Package config provides environment-based configuration for authgate.
//
// Configuration is loaded from environment variables using Viper, with sensible
// defaults for development. All values are read once at process start and the
// resulting Config is treated as read-only afterwards; grant and hashing
// parameters in particular must remain stable for the lifetime of the stored
// credentials they produced.
//
// # Environment Variables
//
//   - DB_TYPE: Database type (sqlite, postgres, mysql). Default: sqlite
//   - DSN: Database connection string. Default: authgate.db
//   - SKIP_AUTO_MIGRATE: Skip automatic database migrations. Default: false
//   - LOG_LEVEL: Logging level (debug, info, warn, error). Default: info
//   - PORT: HTTP server port. Default: 8080
//   - SESSION_SECRET: HMAC secret for login-session tokens.
//   - SESSION_TTL: Login-session lifetime. Default: 24h
//   - PASSWORD_SALT_BYTES: Hasher salt length. Default: 32
//   - PASSWORD_ITERATIONS: PBKDF2 iteration count. Default: 100000
//   - PASSWORD_KEY_LENGTH: Derived key length. Default: 64
//   - PASSWORD_DIGEST: Derivation digest (sha1, sha256, sha512). Default: sha512
//   - PASSWORD_TTL: Password validity window. Default: 336h
//   - ACCESS_TOKEN_TTL: Access-token lifetime. Default: 1h
//   - REFRESH_TOKEN_TTL: Refresh-token lifetime. Default: 168h
//   - AUTH_CODE_TTL: Authorization-code lifetime. Default: 60s
//   - TOKEN_LENGTH: Opaque token/code string length. Default: 255
//   - SEED_DEMO: Create a demo user and client at startup. Default: false
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBType          string `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string `mapstructure:"DSN"`
	SkipAutoMigrate bool   `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	Port            int    `mapstructure:"PORT"`

	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	PasswordSaltBytes  int           `mapstructure:"PASSWORD_SALT_BYTES"`
	PasswordIterations int           `mapstructure:"PASSWORD_ITERATIONS"`
	PasswordKeyLength  int           `mapstructure:"PASSWORD_KEY_LENGTH"`
	PasswordDigest     string        `mapstructure:"PASSWORD_DIGEST"`
	PasswordTTL        time.Duration `mapstructure:"PASSWORD_TTL"`

	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	AuthCodeTTL     time.Duration `mapstructure:"AUTH_CODE_TTL"`
	TokenLength     int           `mapstructure:"TOKEN_LENGTH"`

	SeedDemo bool `mapstructure:"SEED_DEMO"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "authgate.db")
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)

	viper.SetDefault("SESSION_SECRET", "")
	viper.SetDefault("SESSION_TTL", "24h")

	viper.SetDefault("PASSWORD_SALT_BYTES", 32)
	viper.SetDefault("PASSWORD_ITERATIONS", 100000)
	viper.SetDefault("PASSWORD_KEY_LENGTH", 64)
	viper.SetDefault("PASSWORD_DIGEST", "sha512")
	viper.SetDefault("PASSWORD_TTL", "336h")

	viper.SetDefault("ACCESS_TOKEN_TTL", "1h")
	viper.SetDefault("REFRESH_TOKEN_TTL", "168h")
	viper.SetDefault("AUTH_CODE_TTL", "60s")
	viper.SetDefault("TOKEN_LENGTH", 255)

	viper.SetDefault("SEED_DEMO", false)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
