package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "ABHILEKH"
	defaultHTTPAddress   = "0.0.0.0:8080"
	defaultLogLevel      = "info"
	defaultDriver        = DriverSQLite
	defaultDatabasePath  = "records.db"
	defaultMySQLHost     = "localhost"
	defaultMySQLPort     = 3306
	defaultMySQLUser     = "root"
	defaultMySQLDatabase = "records_db"
	defaultTokenTTL      = 60
)

// Supported storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	LogLevel       string
	DatabaseDriver string
	DatabasePath   string
	MySQLHost      string
	MySQLPort      int
	MySQLUser      string
	MySQLPassword  string
	MySQLDatabase  string
	SigningSecret  string
	TokenTTL       time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("database.driver", defaultDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("mysql.host", defaultMySQLHost)
	configViper.SetDefault("mysql.port", defaultMySQLPort)
	configViper.SetDefault("mysql.user", defaultMySQLUser)
	configViper.SetDefault("mysql.password", "")
	configViper.SetDefault("mysql.database", defaultMySQLDatabase)
	configViper.SetDefault("token.ttl_minutes", defaultTokenTTL)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		LogLevel:       configViper.GetString("log.level"),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(configViper.GetString("database.driver"))),
		DatabasePath:   configViper.GetString("database.path"),
		MySQLHost:      configViper.GetString("mysql.host"),
		MySQLPort:      configViper.GetInt("mysql.port"),
		MySQLUser:      configViper.GetString("mysql.user"),
		MySQLPassword:  configViper.GetString("mysql.password"),
		MySQLDatabase:  configViper.GetString("mysql.database"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		TokenTTL:       time.Duration(configViper.GetInt("token.ttl_minutes")) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token.ttl_minutes must be positive")
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverMySQL:
		if strings.TrimSpace(c.MySQLHost) == "" {
			return fmt.Errorf("mysql.host is required for the mysql driver")
		}
		if strings.TrimSpace(c.MySQLUser) == "" {
			return fmt.Errorf("mysql.user is required for the mysql driver")
		}
		if strings.TrimSpace(c.MySQLDatabase) == "" {
			return fmt.Errorf("mysql.database is required for the mysql driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q", DriverSQLite, DriverMySQL)
	}
	return nil
}
