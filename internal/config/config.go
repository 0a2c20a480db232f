package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Transport names accepted by NOTIFY_TRANSPORT.
const (
	TransportMemory = "memory"
	TransportSQS    = "sqs"
	TransportRedis  = "redis"
	TransportDynamo = "dynamodb"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       slog.Level
	AllowedOrigins []string // CORS allowed origins
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-Ip.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	// Producer tokens for the events endpoint. Empty public key path
	// leaves the endpoint open.
	JWTPublicKeyPath  string
	JWTPrivateKeyPath string
	JWTExpiry         time.Duration

	Notify Notify

	EventsRateLimit float64
	EventsRateBurst int
}

// Notify selects and configures the notification transport. The choice is
// made once at startup.
type Notify struct {
	Transport      string
	MemoryCapacity int // 0 means unbounded

	SQSQueueURL string
	SNSTopicARN string // when set, enqueue publishes through the topic

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	DynamoTable     string
	DynamoPartition string
	DynamoRetention time.Duration // unconsumed items expire via table TTL
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:           getEnv("APP_PORT", "3000"),
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:        getEnvBool("TRUST_PROXY", false),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:    getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		Notify: Notify{
			Transport:       strings.ToLower(getEnv("NOTIFY_TRANSPORT", TransportMemory)),
			MemoryCapacity:  getEnvInt("NOTIFY_MEMORY_CAPACITY", 0),
			SQSQueueURL:     getEnv("NOTIFY_SQS_QUEUE_URL", ""),
			SNSTopicARN:     getEnv("NOTIFY_SNS_TOPIC_ARN", ""),
			RedisAddr:       getEnv("NOTIFY_REDIS_ADDR", "localhost:6379"),
			RedisPassword:   getEnv("NOTIFY_REDIS_PASSWORD", ""),
			RedisDB:         getEnvInt("NOTIFY_REDIS_DB", 0),
			RedisKey:        getEnv("NOTIFY_REDIS_KEY", "contoso:notifications"),
			DynamoTable:     getEnv("NOTIFY_DYNAMO_TABLE", "notification_queue"),
			DynamoPartition: getEnv("NOTIFY_DYNAMO_PARTITION", "notifications"),
			DynamoRetention: getEnvDuration("NOTIFY_DYNAMO_RETENTION", 24*time.Hour),
		},
		EventsRateLimit: getEnvFloat("EVENTS_RATE_LIMIT", 50),
		EventsRateBurst: getEnvInt("EVENTS_RATE_BURST", 100),
	}
}

// Watch holds settings for the notifywatch dashboard.
type Watch struct {
	APIURL       string
	PollInterval time.Duration
	LogLevel     slog.Level
}

// LoadWatch reads the dashboard configuration from environment variables.
func LoadWatch() *Watch {
	return &Watch{
		APIURL:       getEnv("NOTIFY_API_URL", "http://localhost:3000"),
		PollInterval: getEnvDuration("NOTIFY_POLL_INTERVAL", 5*time.Second),
		LogLevel:     getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}
