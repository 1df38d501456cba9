package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled   bool
	PublicTTL time.Duration
	KeyPrefix string
}

type RetentionConfig struct {
	AnalyticsMaxAge time.Duration
	SessionSweep    string
	AnalyticsSweep  string
}

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type AppConfig struct {
	Environment string
	Mongo       MongoConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Retention   RetentionConfig
	Admin       AdminConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("INKWELL")
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

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "inkwell")
	v.SetDefault("mongo.connecttimeout", "10s")
	v.SetDefault("mongo.maxpoolsize", 50)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.publicttl", "5m")
	v.SetDefault("cache.keyprefix", "inkwell")

	v.SetDefault("retention.analyticsmaxage", "8760h") // one year
	v.SetDefault("retention.sessionsweep", "0 0 */1 * * *")
	v.SetDefault("retention.analyticssweep", "0 0 3 * * *")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@localhost")
}
