package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	Proximity ProximityConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type ProximityConfig struct {
	// DefaultRadiusMeters applies until the user picks a radius.
	DefaultRadiusMeters float64
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("PROXIMITY_HOST", "0.0.0.0")
	viper.SetDefault("PROXIMITY_PORT", "8080")
	viper.SetDefault("PROXIMITY_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("PROXIMITY_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("PROXIMITY_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("PROXIMITY_JWT_SECRET", "secret")
	viper.SetDefault("PROXIMITY_JWT_EXPIRE", "168h")
	viper.SetDefault("PROXIMITY_DEFAULT_RADIUS_METERS", 5000.0)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("MONGO_DB", "proximity")
	viper.SetDefault("MONGO_MAX_POOL_SIZE", 20)
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA_TOPIC", "friend-nearby-events")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "avatars")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_ENCODING", "json")
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("PROXIMITY_HOST"),
			Port:         viper.GetString("PROXIMITY_PORT"),
			ReadTimeout:  viper.GetDuration("PROXIMITY_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("PROXIMITY_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("PROXIMITY_IDLE_TIMEOUT"),
		},
		Mongo: MongoConfig{
			URI:         viper.GetString("MONGO_URI"),
			Database:    viper.GetString("MONGO_DB"),
			MaxPoolSize: viper.GetUint64("MONGO_MAX_POOL_SIZE"),
		},
		Redis: RedisConfig{
			Addr:         viper.GetString("REDIS_ADDR"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("PROXIMITY_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("PROXIMITY_JWT_EXPIRE"),
		},
		Proximity: ProximityConfig{
			DefaultRadiusMeters: viper.GetFloat64("PROXIMITY_DEFAULT_RADIUS_METERS"),
		},
		Logger: LoggerConfig{
			Level:    viper.GetString("LOG_LEVEL"),
			Encoding: viper.GetString("LOG_ENCODING"),
		},
	}

	return cfg, nil
}
