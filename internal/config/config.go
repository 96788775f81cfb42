package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment. Secrets
// are never defaulted: a missing secret surfaces through Validate so request
// paths fail closed instead of attempting a half-configured operation.
type Config struct {
	Environment string

	Server       ServerConfig
	Logging      LoggingConfig
	Redis        RedisConfig
	Scylla       ScyllaConfig
	Kafka        KafkaConfig
	Mail         MailConfig
	OTP          OTPConfig
	Registration RegistrationConfig
	Payment      PaymentConfig
	Admin        AdminConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// Enabled reports whether audit publishing is configured at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type MailConfig struct {
	ResendAPIKey string
	FromName     string
	FromAddress  string
}

type OTPConfig struct {
	// Secret is mixed into the stored code hash so a leaked ledger entry
	// cannot be replayed as a code.
	Secret string
	TTL    time.Duration
}

type RegistrationConfig struct {
	SlotLimit int
}

type PaymentConfig struct {
	AmountIDR      int
	UploadDir      string
	MaxUploadBytes int64
}

type AdminConfig struct {
	SessionTTL time.Duration
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		Scylla: ScyllaConfig{
			Nodes:    splitList(getEnv("SCYLLA_NODES", "localhost:9042")),
			Keyspace: getEnv("SCYLLA_KEYSPACE", "tryout"),
			Username: os.Getenv("SCYLLA_USERNAME"),
			Password: os.Getenv("SCYLLA_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "tryout.audit"),
		},
		Mail: MailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			FromName:     getEnv("MAIL_FROM_NAME", "Tryout PTN"),
			FromAddress:  getEnv("MAIL_FROM_ADDRESS", "onboarding@resend.dev"),
		},
		OTP: OTPConfig{
			Secret: os.Getenv("OTP_SECRET"),
			TTL:    getEnvDuration("OTP_TTL", 5*time.Minute),
		},
		Registration: RegistrationConfig{
			SlotLimit: getEnvInt("REGISTRATION_SLOT_LIMIT", 1000),
		},
		Payment: PaymentConfig{
			AmountIDR:      getEnvInt("PAYMENT_AMOUNT_IDR", 10000),
			UploadDir:      getEnv("PAYMENT_UPLOAD_DIR", "./uploads/proofs"),
			MaxUploadBytes: int64(getEnvInt("PAYMENT_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		Admin: AdminConfig{
			SessionTTL: getEnvDuration("ADMIN_SESSION_TTL", 24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make request handlers operate
// without their required secrets.
func (c *Config) Validate() error {
	var missing []string
	if c.OTP.Secret == "" {
		missing = append(missing, "OTP_SECRET")
	}
	if c.Mail.ResendAPIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if len(c.Scylla.Nodes) == 0 {
		missing = append(missing, "SCYLLA_NODES")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
