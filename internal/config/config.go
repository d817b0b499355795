package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "damage-assessment/common/config"
	"damage-assessment/internal/store"
)

// Config damage-assessment（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	// Postgres 行存储连接池
	Database commoncfg.DatabaseConfig

	Store struct {
		// ConfigSlot 配置在 KV 中的槽位名
		ConfigSlot string
		Timeout    time.Duration
		// DemoTable memory:// 演示数据使用的表名
		DemoTable string

		// 槽位为空时用于初始化的配置
		BootstrapURL    string
		BootstrapAPIKey string
		BootstrapTable  string
	}

	Events struct {
		Enabled bool
		Stream  string
	}

	MQTT struct {
		Enabled bool
		Topic   string
		commoncfg.MQTTConfig
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// Redis 不可用时回退到内存 KV
	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.DialTimeout = time.Duration(parseInt(getEnv("REDIS_DIAL_TIMEOUT_SECONDS", "3"), 3)) * time.Second

	cfg.Database.MaxConns = parseInt(getEnv("STORE_DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("STORE_DB_MAX_IDLE", "2"), 2)

	cfg.Store.ConfigSlot = getEnv("CONFIG_SLOT", store.DefaultConfigSlot)
	cfg.Store.Timeout = time.Duration(parseInt(getEnv("STORE_TIMEOUT_SECONDS", "30"), 30)) * time.Second
	cfg.Store.DemoTable = getEnv("STORE_DEMO_TABLE", "image_register_demo")
	cfg.Store.BootstrapURL = getEnv("STORE_URL", "")
	cfg.Store.BootstrapAPIKey = getEnv("STORE_API_KEY", "")
	cfg.Store.BootstrapTable = getEnv("STORE_TABLE", "")

	cfg.Events.Enabled = getEnv("EVENTS_ENABLED", "false") == "true"
	cfg.Events.Stream = getEnv("EVENTS_STREAM", "damage:events")

	// MQTT 默认禁用
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "damage-assessment/records")
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "damage-assessment"
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
