package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	// Backend is one of "sqlite", "redis", "memory".
	Backend string
	Path    string
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL                time.Duration
	DiaryRetentionDays int
}

type SyncConfig struct {
	// Schedule is a six-field cron expression used by the sync daemon.
	Schedule string
}

type LoggingConfig struct {
	Level string
}

type DevServerConfig struct {
	Host      string
	Port      int
	JWTSecret string
	TokenTTL  time.Duration
}

type AppConfig struct {
	Environment string
	API         APIConfig
	Store       StoreConfig
	Cache       CacheConfig
	Sync        SyncConfig
	Logging     LoggingConfig
	DevServer   DevServerConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("vidyalink")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/vidyalink")

	v.SetEnvPrefix("VIDYALINK")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.baseurl", "https://vps-vert.vercel.app/api")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "vidyalink.db")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.diaryretentiondays", 15)

	v.SetDefault("sync.schedule", "0 0 */6 * * *") // every six hours

	v.SetDefault("logging.level", "")

	v.SetDefault("devserver.host", "127.0.0.1")
	v.SetDefault("devserver.port", 8560)
	v.SetDefault("devserver.jwtsecret", "dev-only-secret")
	v.SetDefault("devserver.tokenttl", "24h")
}
