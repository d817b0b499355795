package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("CACHE_ADDR", "redis:6380")
	t.Setenv("CACHE_DB", "3")

	c := RedisConfig{Addr: "localhost:6379"}
	c.LoadFromEnv("CACHE")

	assert.Equal(t, "redis:6380", c.Addr)
	assert.Equal(t, 3, c.DB)
	assert.Empty(t, c.Password)
}

func TestMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_QOS", "1")

	c := MQTTConfig{ClientID: "damage-assessment"}
	c.LoadFromEnv("MQTT")

	assert.Equal(t, "tcp://broker:1883", c.Broker)
	assert.Equal(t, "damage-assessment", c.ClientID)
	assert.Equal(t, byte(1), c.QoS)
}

func TestMQTTConfig_InvalidQoSIgnored(t *testing.T) {
	t.Setenv("MQTT_QOS", "7")

	c := MQTTConfig{QoS: 0}
	c.LoadFromEnv("MQTT")

	assert.Equal(t, byte(0), c.QoS)
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DB_MAX_CONNS", "25")

	c := DatabaseConfig{MaxConns: 10, MaxIdle: 2}
	c.LoadFromEnv("STORE_DB")

	assert.Equal(t, 25, c.MaxConns)
	assert.Equal(t, 2, c.MaxIdle)
}
