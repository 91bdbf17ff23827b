package pubsub

import (
	"fmt"
	"time"
)

// KafkaConfig holds Kafka-specific configuration.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	GroupID    string `mapstructure:"group_id"`
	Partitions int    `mapstructure:"partitions"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BufferSize   int           `mapstructure:"buffer_size"`
}

// MemoryConfig holds in-process driver configuration.
type MemoryConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// Config holds the configuration for the pub/sub system.
type Config struct {
	Driver string       `mapstructure:"driver"` // "memory", "redis", "kafka"
	Memory MemoryConfig `mapstructure:"memory"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

const defaultBufferSize = 256

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Driver: "memory",
		Memory: MemoryConfig{BufferSize: defaultBufferSize},
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			BufferSize:   defaultBufferSize,
		},
		Kafka: KafkaConfig{
			Brokers:    "localhost:9092",
			GroupID:    "wes-io-social",
			Partitions: 4,
			BufferSize: defaultBufferSize,
		},
	}
}

// NewPubSub creates a new PubSub instance based on the configuration.
func NewPubSub(cfg Config) (PubSub, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryPubSub(cfg.Memory), nil
	case "redis":
		return NewRedisPubSub(cfg.Redis)
	case "kafka":
		return NewKafkaPubSub(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}

func bufferOrDefault(n int) int {
	if n <= 0 {
		return defaultBufferSize
	}
	return n
}
