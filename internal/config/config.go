// Package config loads and validates the backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the TECNM_ prefix (e.g., TECNM_DATABASE_HOST
// overrides database.host in the YAML), so the same binary runs with a config.yaml
// on a developer machine and with plain environment variables in a container.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every environment variable the backend reads.
const EnvPrefix = "TECNM"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Security  SecurityConfig  `mapstructure:"security"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// AuthConfig holds authentication configuration. The signing secret itself is
// read from TECNM_JWT_SECRET by the auth package.
type AuthConfig struct {
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
	// Backend is "memory" (per-process buckets) or "redis" (shared across replicas)
	Backend string `mapstructure:"backend"`
}

// RedisConfig holds the connection used by the redis rate limiter and the
// redis stream shipper.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName string        `mapstructure:"service_name"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// AuditConfig holds configuration for the entity audit trail
type AuditConfig struct {
	// Enabled turns the interceptor on. When false, tracked repositories run without an observer.
	Enabled bool `mapstructure:"enabled"`
	// ServerName is written into json_log.metadata.server; empty means os.Hostname().
	ServerName string `mapstructure:"server_name"`
	// TypeNamespace prefixes loggable_type, e.g. "models" gives "models.Alumno".
	TypeNamespace string `mapstructure:"type_namespace"`
	// WatchVocabulary reloads Vocabulary when the config file changes.
	WatchVocabulary bool                  `mapstructure:"watch_vocabulary"`
	Vocabulary      AuditVocabularyConfig `mapstructure:"vocabulary"`
	// Shippers copies persisted records to secondary destinations.
	Shippers []AuditShipperConfig `mapstructure:"shippers"`
}

// AuditVocabularyConfig holds the field-name sets that drive classification and masking.
type AuditVocabularyConfig struct {
	Excluded         []string `mapstructure:"excluded"`
	Sensitive        []string `mapstructure:"sensitive"`
	CardFields       []string `mapstructure:"card_fields"`
	CVVFields        []string `mapstructure:"cvv_fields"`
	ForeignKeySuffix string   `mapstructure:"foreign_key_suffix"`
	MaskPlaceholder  string   `mapstructure:"mask_placeholder"`
	CVVPlaceholder   string   `mapstructure:"cvv_placeholder"`
	MaskFiller       string   `mapstructure:"mask_filler"`
	UnknownLabel     string   `mapstructure:"unknown_label"`
}

// AuditShipperConfig holds configuration for a single audit shipper
type AuditShipperConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Type is the shipper type (webhook, file, redis, archive)
	Type    string              `mapstructure:"type"`
	Webhook *AuditWebhookConfig `mapstructure:"webhook"`
	File    *AuditFileConfig    `mapstructure:"file"`
	Redis   *AuditRedisConfig   `mapstructure:"redis"`
	Archive *AuditArchiveConfig `mapstructure:"archive"`
}

// AuditWebhookConfig holds webhook shipper configuration
type AuditWebhookConfig struct {
	URL           string            `mapstructure:"url"`
	Headers       map[string]string `mapstructure:"headers"`
	TimeoutSecs   int               `mapstructure:"timeout_secs"`
	BatchSize     int               `mapstructure:"batch_size"`
	FlushInterval int               `mapstructure:"flush_interval_secs"`
}

// AuditFileConfig holds file shipper configuration
type AuditFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// AuditRedisConfig holds redis stream shipper configuration
type AuditRedisConfig struct {
	Stream string `mapstructure:"stream"`
	// MaxLen caps the stream length with approximate trimming; 0 disables trimming.
	MaxLen int64 `mapstructure:"max_len"`
}

// AuditArchiveConfig holds object-storage shipper configuration
type AuditArchiveConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// StorageConfig holds the object-storage backend used by the archive shipper
type StorageConfig struct {
	Backend string             `mapstructure:"backend"`
	Azure   AzureStorageConfig `mapstructure:"azure"`
	S3      S3StorageConfig    `mapstructure:"s3"`
	GCS     GCSStorageConfig   `mapstructure:"gcs"`
	Local   LocalStorageConfig `mapstructure:"local"`
}

// AzureStorageConfig holds Azure Blob Storage configuration
type AzureStorageConfig struct {
	AccountName   string `mapstructure:"account_name"`
	AccountKey    string `mapstructure:"account_key"`
	ContainerName string `mapstructure:"container_name"`
}

// S3StorageConfig holds S3-compatible storage configuration
type S3StorageConfig struct {
	// Endpoint is optional, for MinIO and other S3-compatible services
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`

	// AuthMethod is "default" (AWS credential chain), "static" or "assume_role".
	// Empty selects "static" when keys are present and "default" otherwise.
	AuthMethod      string `mapstructure:"auth_method"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// AssumeRole settings (auth_method "assume_role")
	RoleARN         string `mapstructure:"role_arn"`
	RoleSessionName string `mapstructure:"role_session_name"`
	ExternalID      string `mapstructure:"external_id"`
}

// GCSStorageConfig holds Google Cloud Storage configuration
type GCSStorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	// Endpoint is an optional custom endpoint (for GCS emulators)
	Endpoint string `mapstructure:"endpoint"`
}

// LocalStorageConfig holds local filesystem storage configuration
type LocalStorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// AutomaticEnv() does not see nested keys during Unmarshal, so every key that
// may come from the environment is listed here.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",

		// Auth
		"auth.jwt_expiry",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",
		"security.rate_limiting.backend",

		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.service_name",
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",

		// Audit
		"audit.enabled",
		"audit.server_name",
		"audit.type_namespace",
		"audit.watch_vocabulary",
		"audit.vocabulary.excluded",
		"audit.vocabulary.sensitive",
		"audit.vocabulary.card_fields",
		"audit.vocabulary.cvv_fields",
		"audit.vocabulary.foreign_key_suffix",
		"audit.vocabulary.mask_placeholder",
		"audit.vocabulary.cvv_placeholder",
		"audit.vocabulary.mask_filler",
		"audit.vocabulary.unknown_label",

		// Storage
		"storage.backend",
		"storage.azure.account_name",
		"storage.azure.account_key",
		"storage.azure.container_name",
		"storage.s3.endpoint",
		"storage.s3.region",
		"storage.s3.bucket",
		"storage.s3.auth_method",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"storage.s3.role_arn",
		"storage.s3.role_session_name",
		"storage.s3.external_id",
		"storage.gcs.bucket",
		"storage.gcs.credentials_file",
		"storage.gcs.credentials_json",
		"storage.gcs.endpoint",
		"storage.local.base_path",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// newViper builds a Viper instance with defaults, config file lookup and
// environment binding applied, but does not read the file yet.
func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tecnm")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}
	return v, nil
}

// decode unmarshals, expands and validates the configuration held by v.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Redis.Password = expandEnv(cfg.Redis.Password)
	cfg.Storage.Azure.AccountKey = expandEnv(cfg.Storage.Azure.AccountKey)
	cfg.Storage.S3.AccessKeyID = expandEnv(cfg.Storage.S3.AccessKeyID)
	cfg.Storage.S3.SecretAccessKey = expandEnv(cfg.Storage.S3.SecretAccessKey)
	cfg.Storage.GCS.CredentialsJSON = expandEnv(cfg.Storage.GCS.CredentialsJSON)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	return decode(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tecnm")
	v.SetDefault("database.user", "tecnm")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Auth defaults
	v.SetDefault("auth.jwt_expiry", "24h")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 60)
	v.SetDefault("security.rate_limiting.burst", 10)
	v.SetDefault("security.rate_limiting.backend", "memory")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "tecnm-backend")
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)

	// Audit defaults
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.server_name", "")
	v.SetDefault("audit.type_namespace", "models")
	v.SetDefault("audit.watch_vocabulary", false)
	v.SetDefault("audit.vocabulary.excluded", []string{"id", "created_at", "updated_at", "company_id"})
	v.SetDefault("audit.vocabulary.sensitive", []string{
		"password", "password_confirmation", "card_number", "cvv", "curp", "rfc", "nss", "token", "secret",
	})
	v.SetDefault("audit.vocabulary.card_fields", []string{"card_number"})
	v.SetDefault("audit.vocabulary.cvv_fields", []string{"cvv"})
	v.SetDefault("audit.vocabulary.foreign_key_suffix", "_id")
	v.SetDefault("audit.vocabulary.mask_placeholder", "***MASKED***")
	v.SetDefault("audit.vocabulary.cvv_placeholder", "***")
	v.SetDefault("audit.vocabulary.mask_filler", "*")
	v.SetDefault("audit.vocabulary.unknown_label", "Unknown")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.base_path", "./storage")
}

// expandEnv expands environment variables in the format ${VAR_NAME}
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLimiters := map[string]bool{"memory": true, "redis": true}
	if c.Security.RateLimiting.Enabled && !validLimiters[c.Security.RateLimiting.Backend] {
		return fmt.Errorf("invalid rate limiting backend: %s (must be memory or redis)", c.Security.RateLimiting.Backend)
	}

	if strings.TrimSpace(c.Audit.Vocabulary.ForeignKeySuffix) == "" {
		return fmt.Errorf("audit.vocabulary.foreign_key_suffix is required")
	}

	validShippers := map[string]bool{"webhook": true, "file": true, "redis": true, "archive": true}
	for i, s := range c.Audit.Shippers {
		if !s.Enabled {
			continue
		}
		if !validShippers[s.Type] {
			return fmt.Errorf("audit.shippers[%d]: unknown type %q (must be webhook, file, redis, or archive)", i, s.Type)
		}
	}

	return c.Storage.validate()
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case "azure":
		if s.Azure.AccountName == "" {
			return fmt.Errorf("storage.azure.account_name is required when using Azure backend")
		}
		if s.Azure.AccountKey == "" {
			return fmt.Errorf("storage.azure.account_key is required when using Azure backend")
		}
		if s.Azure.ContainerName == "" {
			return fmt.Errorf("storage.azure.container_name is required when using Azure backend")
		}
	case "s3":
		if s.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when using S3 backend")
		}
		if s.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when using S3 backend")
		}
	case "gcs":
		if s.GCS.Bucket == "" {
			return fmt.Errorf("storage.gcs.bucket is required when using GCS backend")
		}
	case "local":
		if s.Local.BasePath == "" {
			return fmt.Errorf("storage.local.base_path is required when using local backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be azure, s3, gcs, or local)", s.Backend)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerNameOrHost returns the configured server name, falling back to the host name.
func (a *AuditConfig) ServerNameOrHost() string {
	if a.ServerName != "" {
		return a.ServerName
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
