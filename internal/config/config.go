package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	SSO        SSOConfig        `mapstructure:"sso"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	TLSCert string `mapstructure:"tls_cert" envconfig:"TLS_CERT"`
	TLSKey  string `mapstructure:"tls_key" envconfig:"TLS_KEY"`
}

// TLSEnabled decides whether the session cookie may carry the Secure flag.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig selects the token-blacklist backend: an empty URL keeps the
// blacklist in process.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenExpiryHours       int    `mapstructure:"token_expiry_hours" envconfig:"TOKEN_EXPIRY_HOURS"`
	AccountLockoutAttempts int    `mapstructure:"account_lockout_attempts" envconfig:"ACCOUNT_LOCKOUT_ATTEMPTS"`
	CookieName             string `mapstructure:"cookie_name"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenExpiryHours) * time.Hour
}

type SSOConfig struct {
	Protocol string `mapstructure:"protocol"`
}

type MonitoringConfig struct {
	PrometheusAPIHost   string `mapstructure:"prometheus_api_host" envconfig:"PROMETHEUS_API_HOST"`
	AlertmanagerAPIHost string `mapstructure:"alertmanager_api_host" envconfig:"ALERTMANAGER_API_HOST"`
}

// BootstrapConfig seeds the initial administrator when the credential store
// is empty.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password" envconfig:"ADMIN_PASSWORD"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("auth.token_expiry_hours", 8)
	viper.SetDefault("auth.account_lockout_attempts", 10)
	viper.SetDefault("auth.cookie_name", "token")
	viper.SetDefault("bootstrap.admin_username", "admin")
	viper.SetDefault("monitoring.prometheus_api_host", "http://localhost:9090")
	viper.SetDefault("monitoring.alertmanager_api_host", "http://localhost:9093")
	viper.SetDefault("log.level", "info")

	viper.AutomaticEnv()
	// Deployments historically configure the lockout threshold through this
	// bare variable, keep honoring it next to the DASHBOARD_* overrides.
	_ = viper.BindEnv("auth.account_lockout_attempts", "ACCOUNT_LOCKOUT_ATTEMPTS")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("dashboard", &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return &config, nil
}
