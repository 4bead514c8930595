package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort               string
	RedisURL               string
	JWTSecret              string
	JWTIssuer              string
	JWTAudience            string
	JWTTTL                 time.Duration
	ReconciliationInterval time.Duration
	PublicRateLimitRPS     int
	AuthRateLimitRPS       int
	LogLevel               string
	IdempotencyTTL         time.Duration
	AuditCapacity          int
	AdminUsername          string
	AdminPassword          string
	SeedDemoData           bool
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "LEDGER_PORT")
	bindEnv(v, "redis_url", "REDIS_URL", "LEDGER_REDIS_URL")
	bindEnv(v, "jwt_secret", "JWT_SECRET", "LEDGER_JWT_SECRET")
	bindEnv(v, "jwt_issuer", "JWT_ISSUER", "LEDGER_JWT_ISSUER")
	bindEnv(v, "jwt_audience", "JWT_AUDIENCE", "LEDGER_JWT_AUDIENCE")
	bindEnv(v, "jwt_ttl", "JWT_TTL", "LEDGER_JWT_TTL")
	bindEnv(v, "reconciliation_interval", "RECONCILIATION_INTERVAL", "LEDGER_RECONCILIATION_INTERVAL")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS", "LEDGER_PUBLIC_RATE_LIMIT_RPS")
	bindEnv(v, "auth_rate_limit_rps", "AUTH_RATE_LIMIT_RPS", "LEDGER_AUTH_RATE_LIMIT_RPS")
	bindEnv(v, "log_level", "LOG_LEVEL", "LEDGER_LOG_LEVEL")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "LEDGER_IDEMPOTENCY_TTL")
	bindEnv(v, "audit_capacity", "AUDIT_CAPACITY", "LEDGER_AUDIT_CAPACITY")
	bindEnv(v, "admin_username", "ADMIN_USERNAME", "LEDGER_ADMIN_USERNAME")
	bindEnv(v, "admin_password", "ADMIN_PASSWORD", "LEDGER_ADMIN_PASSWORD")
	bindEnv(v, "seed_demo_data", "SEED_DEMO_DATA", "LEDGER_SEED_DEMO_DATA")

	v.SetDefault("port", "8080")
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "retail-ledger")
	v.SetDefault("jwt_audience", "ledger-api")
	v.SetDefault("jwt_ttl", "1h")
	v.SetDefault("reconciliation_interval", "1h")
	v.SetDefault("public_rate_limit_rps", 10)
	v.SetDefault("auth_rate_limit_rps", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("audit_capacity", 1000)
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "admin123")
	v.SetDefault("seed_demo_data", false)

	jwtTTL, err := time.ParseDuration(v.GetString("jwt_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	ttl, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	reconciliationInterval, err := time.ParseDuration(v.GetString("reconciliation_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILIATION_INTERVAL: %w", err)
	}

	cfg := &Config{
		HTTPPort:               v.GetString("port"),
		RedisURL:               strings.TrimSpace(v.GetString("redis_url")),
		JWTSecret:              v.GetString("jwt_secret"),
		JWTIssuer:              v.GetString("jwt_issuer"),
		JWTAudience:            v.GetString("jwt_audience"),
		JWTTTL:                 jwtTTL,
		ReconciliationInterval: reconciliationInterval,
		PublicRateLimitRPS:     max(v.GetInt("public_rate_limit_rps"), 1),
		AuthRateLimitRPS:       max(v.GetInt("auth_rate_limit_rps"), 1),
		LogLevel:               v.GetString("log_level"),
		IdempotencyTTL:         ttl,
		AuditCapacity:          max(v.GetInt("audit_capacity"), 1),
		AdminUsername:          v.GetString("admin_username"),
		AdminPassword:          v.GetString("admin_password"),
		SeedDemoData:           v.GetBool("seed_demo_data"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.JWTIssuer) == "" {
		return nil, fmt.Errorf("JWT_ISSUER is required")
	}
	if strings.TrimSpace(cfg.JWTAudience) == "" {
		return nil, fmt.Errorf("JWT_AUDIENCE is required")
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive")
	}
	if strings.TrimSpace(cfg.AdminUsername) == "" || strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD cannot be blank")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
