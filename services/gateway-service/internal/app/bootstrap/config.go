package bootstrap

import (
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/config"
)

type Config struct {
	ServiceID       string
	HTTPPort        int
	GRPCPort        int
	LogLevel        string
	ClientAPIKey    string
	UpstreamAPIKey  string
	PaymentsURL     string
	JobsURL         string
	IdentityURL     string
	UpstreamTimeout time.Duration
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`
	Upstreams struct {
		Payments       string `yaml:"payments"`
		Jobs           string `yaml:"jobs"`
		Identity       string `yaml:"identity"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"upstreams"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:       "gateway-service",
		HTTPPort:        8080,
		GRPCPort:        9080,
		LogLevel:        "info",
		PaymentsURL:     "http://localhost:8081",
		JobsURL:         "http://localhost:8082",
		IdentityURL:     "http://localhost:8083",
		UpstreamTimeout: 10 * time.Second,
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
	if f.Upstreams.Payments != "" {
		cfg.PaymentsURL = f.Upstreams.Payments
	}
	if f.Upstreams.Jobs != "" {
		cfg.JobsURL = f.Upstreams.Jobs
	}
	if f.Upstreams.Identity != "" {
		cfg.IdentityURL = f.Upstreams.Identity
	}
	if f.Upstreams.TimeoutSeconds > 0 {
		cfg.UpstreamTimeout = time.Duration(f.Upstreams.TimeoutSeconds) * time.Second
	}

	cfg.HTTPPort = config.EnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = config.EnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.LogLevel = config.EnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.UpstreamAPIKey = config.EnvOrDefault("SERVICE_API_KEY", "local-dev-api-key")
	cfg.ClientAPIKey = config.EnvOrDefault("GATEWAY_API_KEY", cfg.UpstreamAPIKey)
	cfg.PaymentsURL = config.EnvOrDefault("PAYMENTS_URL", cfg.PaymentsURL)
	cfg.JobsURL = config.EnvOrDefault("JOBS_URL", cfg.JobsURL)
	cfg.IdentityURL = config.EnvOrDefault("IDENTITY_URL", cfg.IdentityURL)
	cfg.UpstreamTimeout = config.EnvSeconds("UPSTREAM_TIMEOUT_SECONDS", cfg.UpstreamTimeout)
	return cfg, nil
}
