package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv            string        `mapstructure:"APP_ENV"`
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	BaseURL           string        `mapstructure:"BASE_URL"`
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	AdminAPIKey       string        `mapstructure:"ADMIN_API_KEY"`
	GeoIPDBPath       string        `mapstructure:"GEOIP_DB_PATH"`
	StatsBufferSize   int           `mapstructure:"STATS_BUFFER_SIZE"`
	RecentLimit       int           `mapstructure:"RECENT_LIMIT"`
	ReconcileInterval time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	TrustedProxies    []string      `mapstructure:"TRUSTED_PROXIES"` // comma-separated IPs/CIDRs; empty trusts none
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (config Config, err error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("unable to read .env file, %v", err)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://dynlink.db")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("BASE_URL", "")
	v.SetDefault("SESSION_SECRET", "dynlink-dev-session-secret-change-me")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("GEOIP_DB_PATH", "./geoip/GeoLite2-Country.mmdb")
	v.SetDefault("STATS_BUFFER_SIZE", 1000)
	v.SetDefault("RECENT_LIMIT", 20)
	v.SetDefault("RECONCILE_INTERVAL", "0s")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	if config.StatsBufferSize <= 0 {
		config.StatsBufferSize = 1000
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = 20
	}

	return
}
