package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration.
type Config struct {
	Server        ServerConfig
	Security      SecurityPolicy
	Audit         AuditConfig
	AuditDatabase *DatabaseConfig // Optional Postgres audit sink. When nil, only the JSONL sink is used.
	Pipeline      PipelineConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	UploadDir       string
	SecretKey       string // Signs admin JWTs; empty disables the audit admin surface.
}

// AuditConfig holds audit trail configuration. The criticality lists map
// event names to severity tiers; events in neither list are informational.
type AuditConfig struct {
	LogDir            string
	TrailFile         string
	ActorID           string
	HighCriticality   []string
	MediumCriticality []string
}

// DatabaseConfig holds PostgreSQL configuration for the optional audit sink.
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// PipelineConfig holds configuration for the external agent pipeline.
type PipelineConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ObservabilityConfig holds logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	LogFile        string // rotating application log; empty logs to stderr only
	LogMaxSizeMB   int
	LogMaxBackups  int
	MetricsEnabled bool
}

// New loads configuration from the environment (and .env when present) and
// merges the YAML security/audit policy file referenced by SAPIENS_POLICY_FILE.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 5000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
			SecretKey:       getEnv("SECRET_KEY", ""),
		},
		Security: DefaultSecurityPolicy(),
		Audit: AuditConfig{
			LogDir:            getEnv("AUDIT_LOG_DIR", "logs"),
			TrailFile:         getEnv("AUDIT_TRAIL_FILE", "auditoria_academica.jsonl"),
			ActorID:           getEnv("AUDIT_ACTOR_ID", "sistema"),
			HighCriticality:   []string{"erro_sistema", "violacao_seguranca"},
			MediumCriticality: []string{"upload_arquivo", "inicio_analise"},
		},
		AuditDatabase: loadAuditDatabaseConfig(),
		Pipeline: PipelineConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("PIPELINE_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("PIPELINE_TIMEOUT", 10*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			LogFile:        getEnv("LOG_FILE", "logs/sapiens.log"),
			LogMaxSizeMB:   getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			LogMaxBackups:  getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if policyFile := getEnv("SAPIENS_POLICY_FILE", ""); policyFile != "" {
		if err := cfg.LoadPolicyFile(policyFile); err != nil {
			return nil, fmt.Errorf("loading policy file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Security.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max file size must be positive, got %g", c.Security.MaxFileSizeMB)
	}
	if len(c.Security.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}
	if c.Audit.LogDir == "" {
		return fmt.Errorf("audit log directory is required")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	if c.IsProduction() && c.Server.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in production")
	}
	return nil
}

// IsProduction returns true when running in a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP server listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxUploadBytes returns the request body ceiling derived from the security
// policy size limit, with headroom for the multipart envelope.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Security.MaxFileSizeMB*1024*1024) + 1<<20
}

// loadAuditDatabaseConfig reads DATABASE_URL_AUDIT. Returns nil when unset,
// which means audit events only go to the JSONL trail.
func loadAuditDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL_AUDIT", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
