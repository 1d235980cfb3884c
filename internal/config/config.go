package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the base server configuration.
type Config struct {
	Host                    string
	Port                    string
	APIKeys                 []string
	JWTSecret               string
	JWTAccessTokenExpirySec int
	SQLiteDBPath            string
	AuditRetentionDays      int
	SonosTimeoutMs          int
	DiscoveryTimeoutMs      int
	StaticDeviceIPs         []string
	SharkUser               string
	SharkPassword           string
	SharkRegion             string
}

// fileConfig is the YAML on-disk layout.
type fileConfig struct {
	Host    string   `yaml:"host"`
	Port    string   `yaml:"port"`
	APIKeys []string `yaml:"api_keys"`
	JWT     struct {
		Secret          string `yaml:"secret"`
		AccessExpirySec int    `yaml:"access_token_expiry_sec"`
	} `yaml:"jwt"`
	Sonos struct {
		TimeoutMs          int      `yaml:"timeout_ms"`
		DiscoveryTimeoutMs int      `yaml:"discovery_timeout_ms"`
		StaticDeviceIPs    []string `yaml:"static_device_ips"`
	} `yaml:"sonos"`
	Audit struct {
		DBPath        string `yaml:"db_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"audit"`
	Shark struct {
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Region   string `yaml:"region"`
	} `yaml:"shark"`
}

// Load reads the YAML config file at path (optional, may be empty) and applies
// environment variable overrides with defaults.
func Load(path string) (Config, error) {
	var file fileConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := Config{
		Host:                    envString("HOST", fallback(file.Host, "0.0.0.0")),
		Port:                    envString("PORT", fallback(file.Port, "8080")),
		APIKeys:                 envCSVOr("API_KEYS", file.APIKeys),
		JWTSecret:               envString("JWT_SECRET", file.JWT.Secret),
		JWTAccessTokenExpirySec: envInt("JWT_ACCESS_TOKEN_EXPIRY", fallbackInt(file.JWT.AccessExpirySec, 3600)),
		SQLiteDBPath:            envString("SQLITE_DB_PATH", fallback(file.Audit.DBPath, "./data/home-hub.db")),
		AuditRetentionDays:      envInt("AUDIT_RETENTION_DAYS", fallbackInt(file.Audit.RetentionDays, 90)),
		SonosTimeoutMs:          envInt("SONOS_TIMEOUT_MS", fallbackInt(file.Sonos.TimeoutMs, 5000)),
		DiscoveryTimeoutMs:      envInt("DISCOVERY_TIMEOUT_MS", fallbackInt(file.Sonos.DiscoveryTimeoutMs, 3000)),
		StaticDeviceIPs:         envCSVOr("STATIC_DEVICE_IPS", file.Sonos.StaticDeviceIPs),
		SharkUser:               envString("SHARK_USER", file.Shark.User),
		SharkPassword:           envString("SHARK_PASSWORD", file.Shark.Password),
		SharkRegion:             envString("SHARK_REGION", fallback(file.Shark.Region, "us")),
	}

	if len(strings.TrimSpace(cfg.JWTSecret)) < 32 {
		return Config{}, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("at least one api key must be configured")
	}

	return cfg, nil
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func fallbackInt(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envCSVOr(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
