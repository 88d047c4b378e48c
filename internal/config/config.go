// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fashion_sales/internal/sales"
)

const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverMySQL  = "mysql"
)

// Config holds every runtime knob of the service.
type Config struct {
	Port            string
	StoreDriver     string
	BoltPath        string
	MySQLDSN        string
	RedisAddr       string
	ReceiptCacheTTL time.Duration
	SalesTax        sales.TaxConfig
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:        envOr(getenv, "PORT", "8081"),
		StoreDriver: envOr(getenv, "STORE_DRIVER", DriverBolt),
		BoltPath:    envOr(getenv, "BOLT_PATH", "sales.db"),
		MySQLDSN:    envOr(getenv, "MYSQL_DSN", "root:root@tcp(localhost:3306)/fashion_store?parseTime=true"),
		RedisAddr:   getenv("REDIS_ADDR"),
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverBolt, DriverMySQL:
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	ttl, err := time.ParseDuration(envOr(getenv, "RECEIPT_CACHE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("RECEIPT_CACHE_TTL: %w", err)
	}
	cfg.ReceiptCacheTTL = ttl

	cfg.SalesTax, err = ParseTaxConfig(envOr(getenv, "SALES_TAX", "city=0.2,state=0.7"))
	if err != nil {
		return nil, fmt.Errorf("SALES_TAX: %w", err)
	}
	return cfg, nil
}

// ParseTaxConfig parses "name=rate,name=rate" into a tax config.
func ParseTaxConfig(s string) (sales.TaxConfig, error) {
	taxes := sales.TaxConfig{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rate, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed entry %q", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", name, err)
		}
		taxes[strings.TrimSpace(name)] = v
	}
	return taxes, nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
