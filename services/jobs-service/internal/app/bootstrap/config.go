package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/config"
)

type Config struct {
	ServiceID          string
	HTTPPort           int
	GRPCPort           int
	LogLevel           string
	APIKey             string
	ContactTokenSecret string
	ContactScope       string
	IDStrategy         string
	SnowflakeNode      int64
	DatabaseURL        string
	DatabaseMaxConns   int32
	RedisURL           string
	RedisChannelPrefix string
	KafkaBrokers       []string
	EventTopics        map[string]string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
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
	Contact struct {
		Scope string `yaml:"scope"`
	} `yaml:"contact"`
	Realtime struct {
		ChannelPrefix string `yaml:"channel_prefix"`
	} `yaml:"realtime"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "jobs-service",
		HTTPPort:           8082,
		GRPCPort:           9082,
		LogLevel:           "info",
		ContactScope:       "contact_unlock",
		DatabaseMaxConns:   10,
		RedisChannelPrefix: "jobs",
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
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
	if f.Contact.Scope != "" {
		cfg.ContactScope = f.Contact.Scope
	}
	if f.Realtime.ChannelPrefix != "" {
		cfg.RedisChannelPrefix = f.Realtime.ChannelPrefix
	}

	cfg.HTTPPort = config.EnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = config.EnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.LogLevel = config.EnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.APIKey = config.EnvOrDefault("SERVICE_API_KEY", "local-dev-api-key")
	cfg.ContactTokenSecret = config.EnvOrDefault("CONTACT_TOKEN_SECRET", cfg.APIKey)
	cfg.ContactScope = config.EnvOrDefault("CONTACT_SCOPE", cfg.ContactScope)
	cfg.IDStrategy = config.EnvOrDefault("ID_STRATEGY", "uuid")
	cfg.SnowflakeNode = int64(config.EnvInt("SNOWFLAKE_NODE", 1))
	cfg.DatabaseURL = config.EnvOrDefault("DB_URL", "")
	cfg.RedisURL = config.EnvOrDefault("REDIS_URL", "")
	cfg.RedisChannelPrefix = config.EnvOrDefault("REDIS_CHANNEL_PREFIX", cfg.RedisChannelPrefix)
	cfg.KafkaBrokers = config.EnvCSV("KAFKA_BROKERS", nil)
	cfg.OutboxPollInterval = config.EnvSeconds("OUTBOX_POLL_SECONDS", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = config.EnvInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)

	if strings.ContainsAny(cfg.ContactScope, ": ") {
		return Config{}, fmt.Errorf("contact scope %q must not contain ':' or spaces", cfg.ContactScope)
	}
	if strings.TrimSpace(cfg.ContactTokenSecret) == "" {
		return Config{}, fmt.Errorf("contact token secret must not be empty")
	}
	return cfg, nil
}
