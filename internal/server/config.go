package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MetricsAddr string
	PublicURL   string
	CORSOrigins []string
	LogLevel    slog.Level

	APIBase string
	Token   string
	Timeout time.Duration
}

// LoadConfig reads environment variables and returns a validated Config
func LoadConfig() (*Config, error) {
	// An explicitly empty MCP_METRICS_ADDR disables the metrics listener.
	metricsAddr, set := os.LookupEnv("MCP_METRICS_ADDR")
	if !set {
		metricsAddr = ":9090"
	}

	cfg := &Config{
		Host:        getEnv("MCP_HOST", "0.0.0.0"),
		MetricsAddr: metricsAddr,
		PublicURL:   getEnv("MCP_PUBLIC_URL", "http://10.10.0.3:8081"),
		APIBase:     getEnv("SENTRAIP_API_BASE", "https://api.sentraip.com/ws/v1"),
		Token:       strings.TrimSpace(os.Getenv("SENTRAIP_BEARER_TOKEN")),
	}

	port, err := strconv.Atoi(getEnv("MCP_PORT", "8081"))
	if err != nil {
		return nil, fmt.Errorf("MCP_PORT: %w", err)
	}
	cfg.Port = port

	cfg.Timeout, err = time.ParseDuration(getEnv("SENTRAIP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SENTRAIP_TIMEOUT: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("MCP_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("MCP_LOG_LEVEL: %w", err)
	}

	for _, o := range strings.Split(getEnv("MCP_CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the adapter cannot serve with.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("SENTRAIP_BEARER_TOKEN is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("MCP_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("SENTRAIP_TIMEOUT must be positive, got %s", c.Timeout)
	}
	u, err := url.Parse(c.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SENTRAIP_API_BASE is invalid: %s", c.APIBase)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("SENTRAIP_API_BASE must use http/https")
	}
	return nil
}

// HTTPAddr is the listen address for the adapter API.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogValue keeps the bearer token out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTPAddr()),
		slog.String("metrics_addr", c.MetricsAddr),
		slog.String("api_base", c.APIBase),
		slog.Duration("timeout", c.Timeout),
		slog.Bool("token_set", c.Token != ""),
	)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
