package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/config"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

type Config struct {
	ServiceID            string
	HTTPPort             int
	GRPCPort             int
	LogLevel             string
	APIKey               string
	IDStrategy           string
	SnowflakeNode        int64
	DatabaseURL          string
	DatabaseMaxConns     int32
	RedisURL             string
	KafkaBrokers         []string
	EventTopics          map[string]string
	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	IdempotencyTTL       time.Duration
	InsightsCacheTTL     time.Duration
	MaxServiceFeeRate    float64
	DefaultInvoiceStatus domain.InvoiceStatus
	LoyaltySchedule      domain.TierSchedule
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`
	Database struct {
		MaxConns int32 `yaml:"max_conns"`
	} `yaml:"database"`
	Events struct {
		Topics map[string]string `yaml:"topics"`
	} `yaml:"events"`
	Payments struct {
		MaxServiceFeeRate    float64 `yaml:"max_service_fee_rate"`
		DefaultInvoiceStatus string  `yaml:"default_invoice_status"`
	} `yaml:"payments"`
	Loyalty struct {
		Tiers []domain.LoyaltyTier `yaml:"tiers"`
	} `yaml:"loyalty"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "payments-service",
		HTTPPort:             8081,
		GRPCPort:             9081,
		LogLevel:             "info",
		DatabaseMaxConns:     10,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		IdempotencyTTL:       24 * time.Hour,
		InsightsCacheTTL:     30 * time.Second,
		MaxServiceFeeRate:    0.25,
		DefaultInvoiceStatus: domain.InvoiceStatusIssued,
		LoyaltySchedule:      domain.DefaultTierSchedule(),
	}
	var f configFile
	if _, err := config.LoadYAML(path, &f); err != nil {
		return Config{}, err
	}
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Service.LogLevel != "" {
		cfg.LogLevel = f.Service.LogLevel
	}
	if f.Database.MaxConns > 0 {
		cfg.DatabaseMaxConns = f.Database.MaxConns
	}
	cfg.EventTopics = f.Events.Topics
	if f.Payments.MaxServiceFeeRate > 0 {
		cfg.MaxServiceFeeRate = f.Payments.MaxServiceFeeRate
	}
	defaultStatus := f.Payments.DefaultInvoiceStatus
	if len(f.Loyalty.Tiers) > 0 {
		schedule, err := domain.NewTierSchedule(f.Loyalty.Tiers)
		if err != nil {
			return Config{}, fmt.Errorf("loyalty tiers: %w", err)
		}
		cfg.LoyaltySchedule = schedule
	}

	cfg.HTTPPort = config.EnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = config.EnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.LogLevel = config.EnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.APIKey = config.EnvOrDefault("SERVICE_API_KEY", "local-dev-api-key")
	cfg.IDStrategy = config.EnvOrDefault("ID_STRATEGY", "uuid")
	cfg.SnowflakeNode = int64(config.EnvInt("SNOWFLAKE_NODE", 1))
	cfg.DatabaseURL = config.EnvOrDefault("DB_URL", "")
	cfg.RedisURL = config.EnvOrDefault("REDIS_URL", "")
	cfg.KafkaBrokers = config.EnvCSV("KAFKA_BROKERS", nil)
	cfg.OutboxPollInterval = config.EnvSeconds("OUTBOX_POLL_SECONDS", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = config.EnvInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.IdempotencyTTL = time.Duration(config.EnvInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.InsightsCacheTTL = config.EnvSeconds("INSIGHTS_CACHE_SECONDS", cfg.InsightsCacheTTL)
	cfg.MaxServiceFeeRate = config.EnvFloat("MAX_SERVICE_FEE_RATE", cfg.MaxServiceFeeRate)
	defaultStatus = config.EnvOrDefault("DEFAULT_INVOICE_STATUS", defaultStatus)

	if strings.TrimSpace(defaultStatus) != "" {
		status, err := domain.ParseInvoiceStatus(defaultStatus)
		if err != nil {
			return Config{}, fmt.Errorf("default invoice status: %w", err)
		}
		cfg.DefaultInvoiceStatus = status
	}
	if cfg.MaxServiceFeeRate <= 0 || cfg.MaxServiceFeeRate > 1 {
		return Config{}, fmt.Errorf("max service fee rate must be in (0,1], got %v", cfg.MaxServiceFeeRate)
	}
	return cfg, nil
}
