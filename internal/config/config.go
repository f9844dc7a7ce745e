package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	QueueURL    string // SQS queue delivering RankedMessage payloads
	WorkerCount int

	EventBucket string // S3 bucket holding batch event drops

	// Rate limiting: fixed window per rate-limit key.
	RateLimitWindow   time.Duration
	RateLimitCapacity int

	// Scoring service. Empty endpoint disables the external scorer and the
	// pipeline runs on the heuristic fallback alone.
	ScoringEndpoint  string
	ScoringAPIKey    string
	ScoringModel     string
	ScoringRetryMax  int
	ScoringRetryBase time.Duration
	ScoringRPS       float64 // outbound requests/second toward the scorer

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion   string
	SNSTopicARN string

	WebhookURL        string
	WebhookSigningKey string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	RateLimits string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			RateLimits: getEnv("DYNAMO_TABLE_RATE_LIMITS", "rate_limits"),
		},

		QueueURL:    getEnv("SQS_QUEUE_URL", ""),
		WorkerCount: getEnvInt("WORKER_COUNT", 4),

		EventBucket: getEnv("S3_EVENT_BUCKET", "notify-event-batches"),

		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitCapacity: getEnvInt("RATE_LIMIT_CAPACITY", 30),

		ScoringEndpoint:  getEnv("SCORING_ENDPOINT", ""),
		ScoringAPIKey:    getEnv("SCORING_API_KEY", ""),
		ScoringModel:     getEnv("SCORING_MODEL", "gpt-4o-mini"),
		ScoringRetryMax:  getEnvInt("SCORING_RETRY_MAX", 3),
		ScoringRetryBase: getEnvDuration("SCORING_RETRY_BASE", 2*time.Second),
		ScoringRPS:       float64(getEnvInt("SCORING_RPS", 5)),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		WebhookSigningKey: getEnv("WEBHOOK_SIGNING_KEY", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
