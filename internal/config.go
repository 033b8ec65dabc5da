package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Store         StoreConfig         `mapstructure:"store"`
	Sheets        SheetsConfig        `mapstructure:"sheets"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

// StoreConfig selects which backend holds the ledger.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
}

const (
	StoreBackendSQL    = "sql"
	StoreBackendSheets = "sheets"
	StoreBackendMemory = "memory"
)

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
}

type LedgerConfig struct {
	LimitPolicy    string `mapstructure:"limit_policy"`
	WarningPercent int64  `mapstructure:"warning_percent"`
	Timezone       string `mapstructure:"timezone"`
}

const (
	LimitPolicyFlag  = "flag"
	LimitPolicyBlock = "block"
)

type NotificationConfig struct {
	QueueSize  int           `mapstructure:"queue_size"`
	Workers    int           `mapstructure:"workers"`
	Sink       string        `mapstructure:"sink"`
	WebhookURL string        `mapstructure:"webhook_url"`
	MaxRetries uint64        `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

const (
	NotificationSinkLog     = "log"
	NotificationSinkWebhook = "webhook"
)

type SecurityConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	GatewayKeyHash     string        `mapstructure:"gateway_key_hash"`
	WhitelistTTL       time.Duration `mapstructure:"whitelist_ttl"`
	BootstrapOwnerID   int64         `mapstructure:"bootstrap_owner_id"`
	BootstrapOwnerName string        `mapstructure:"bootstrap_owner_name"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfigFromEnv builds the config from plain environment variables for container deployments.
func LoadConfigFromEnv() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", DatabaseDriverPostgres),
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendSQL),
			Timeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
			CredentialsJSON: getEnv("GOOGLE_SHEETS_CREDENTIALS_JSON", ""),
		},
		Ledger: LedgerConfig{
			LimitPolicy:    getEnv("LIMIT_POLICY", LimitPolicyFlag),
			WarningPercent: int64(getEnvAsInt("LIMIT_WARNING_PERCENT", 80)),
			Timezone:       getEnv("LEDGER_TIMEZONE", "UTC"),
		},
		Notification: NotificationConfig{
			QueueSize:  getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:    getEnvAsInt("NOTIFY_WORKERS", 4),
			Sink:       getEnv("NOTIFY_SINK", NotificationSinkLog),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			MaxRetries: uint64(getEnvAsInt("NOTIFY_MAX_RETRIES", 3)),
			Backoff:    getEnvAsDuration("NOTIFY_BACKOFF", 500*time.Millisecond),
			Timeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		Security: SecurityConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvAsDuration("TOKEN_TTL", time.Hour),
			GatewayKeyHash:     getEnv("GATEWAY_KEY_HASH", ""),
			WhitelistTTL:       getEnvAsDuration("WHITELIST_TTL", 5*time.Minute),
			BootstrapOwnerID:   int64(getEnvAsInt("OWNER_TELEGRAM_ID", 0)),
			BootstrapOwnerName: getEnv("OWNER_NAME", "Owner"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("store config: %v", err))
	}

	if c.Store.Backend == StoreBackendSQL {
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("database config: %v", err))
		}
	}

	if c.Store.Backend == StoreBackendSheets {
		if err := c.Sheets.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("sheets config: %v", err))
		}
	}

	if err := c.Ledger.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("ledger config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case StoreBackendSQL, StoreBackendSheets, StoreBackendMemory:
		return nil
	}
	return fmt.Errorf("unsupported backend %q", c.Backend)
}

func (c *SheetsConfig) Validate() error {
	if c.SpreadsheetID == "" {
		return errors.New("spreadsheet_id is required")
	}
	if c.CredentialsFile == "" && c.CredentialsJSON == "" {
		return errors.New("credentials_file or credentials_json is required")
	}
	return nil
}

func (c *LedgerConfig) Validate() error {
	switch c.LimitPolicy {
	case LimitPolicyFlag, LimitPolicyBlock:
	default:
		return fmt.Errorf("unsupported limit_policy %q", c.LimitPolicy)
	}
	if c.WarningPercent <= 0 || c.WarningPercent > 100 {
		return errors.New("warning_percent must be within 1..100")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for limit period windows.
func (c *LedgerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *NotificationConfig) Validate() error {
	if c.QueueSize <= 0 {
		return errors.New("queue_size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	switch c.Sink {
	case NotificationSinkLog:
	case NotificationSinkWebhook:
		if _, err := url.ParseRequestURI(c.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook_url: %w", err)
		}
	default:
		return fmt.Errorf("unsupported sink %q", c.Sink)
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.GatewayKeyHash == "" {
		return errors.New("gateway_key_hash is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	return nil
}
