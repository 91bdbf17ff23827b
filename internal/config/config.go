package config

import (
	"time"

	"github.com/weiawesome/wes-io-social/internal/avatar"
	"github.com/weiawesome/wes-io-social/internal/hub"
	"github.com/weiawesome/wes-io-social/internal/notification"
	pkgconfig "github.com/weiawesome/wes-io-social/pkg/config"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
	"github.com/weiawesome/wes-io-social/pkg/storage"
)

// Config is the process configuration. Bus carries activity events to the
// notification service; Delivery fans rendered notifications out to every
// hub instance.
type Config struct {
	Server       ServerConfig
	Database     database.Config
	Redis        RedisConfig
	Auth         AuthConfig
	Verification VerificationConfig
	Graph        GraphConfig
	Bus          pubsub.Config
	Delivery     pubsub.Config
	Notification notification.Config
	WebSocket    hub.Config `mapstructure:"websocket"`
	Storage      storage.Config
	Avatar       AvatarConfig
	Log          LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	Issuer       string        `mapstructure:"issuer"`
	AccessTTL    time.Duration `mapstructure:"access_ttl"`
	RefreshTTL   time.Duration `mapstructure:"refresh_ttl"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
	CookieDomain string        `mapstructure:"cookie_domain"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

type VerificationConfig struct {
	Backend      string        `mapstructure:"backend"` // "database", "redis"
	TTL          time.Duration `mapstructure:"ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

type GraphConfig struct {
	// CountsCacheTTL of zero disables the redis counts cache.
	CountsCacheTTL time.Duration `mapstructure:"counts_cache_ttl"`
}

type AvatarConfig struct {
	avatar.Config `mapstructure:",squash"`

	MaxBytes int64 `mapstructure:"max_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "social")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/social.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.issuer", "wes-io-social")
	v.SetDefault("auth.access_ttl", "720h")
	v.SetDefault("auth.refresh_ttl", "8760h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.cookie_domain", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("verification.backend", "database")
	v.SetDefault("verification.ttl", "120s")
	v.SetDefault("verification.reap_interval", "60s")
	v.SetDefault("graph.counts_cache_ttl", "0s")
	v.SetDefault("bus.driver", "memory")
	v.SetDefault("bus.memory.buffer_size", 256)
	v.SetDefault("bus.kafka.brokers", "localhost:9092")
	v.SetDefault("bus.kafka.group_id", "wes-io-social-notifications")
	v.SetDefault("bus.kafka.partitions", 4)
	v.SetDefault("bus.redis.address", "localhost:6379")
	v.SetDefault("delivery.driver", "memory")
	v.SetDefault("delivery.memory.buffer_size", 256)
	v.SetDefault("delivery.redis.address", "localhost:6379")
	v.SetDefault("delivery.redis.pool_size", 10)
	v.SetDefault("delivery.redis.read_timeout", "3s")
	v.SetDefault("delivery.redis.write_timeout", "3s")
	v.SetDefault("notification.workers", 4)
	v.SetDefault("notification.queue_size", 64)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer_size", 64)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./data/media")
	v.SetDefault("storage.local.base_url", "/media")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("avatar.size", 256)
	v.SetDefault("avatar.jpeg_quality", 85)
	v.SetDefault("avatar.output_prefix", "avatars/")
	v.SetDefault("avatar.max_bytes", 5<<20)
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.access_ttl", "JWT_ACCESS_TTL")
	v.BindEnv("auth.refresh_ttl", "JWT_REFRESH_TTL")
	v.BindEnv("auth.cookie_domain", "COOKIE_DOMAIN")
	v.BindEnv("auth.cookie_secure", "COOKIE_SECURE")
	v.BindEnv("verification.backend", "VERIFICATION_BACKEND")
	v.BindEnv("verification.ttl", "VERIFICATION_TTL")
	v.BindEnv("graph.counts_cache_ttl", "GRAPH_COUNTS_CACHE_TTL")
	v.BindEnv("bus.driver", "BUS_DRIVER")
	v.BindEnv("bus.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("bus.kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("bus.redis.address", "BUS_REDIS_ADDRESS")
	v.BindEnv("delivery.driver", "DELIVERY_DRIVER")
	v.BindEnv("delivery.redis.address", "DELIVERY_REDIS_ADDRESS")
	v.BindEnv("delivery.redis.password", "DELIVERY_REDIS_PASSWORD")
	v.BindEnv("notification.workers", "NOTIFICATION_WORKERS")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.local.base_path", "STORAGE_LOCAL_PATH")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.use_path_style", "S3_USE_PATH_STYLE")
	v.BindEnv("storage.s3.public_url", "S3_PUBLIC_URL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
