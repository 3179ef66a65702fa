package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds settings that are not connection strings.
type App struct {
	Port string

	MongoDB string

	GCSBucket       string
	SignedURLTTL    time.Duration
	DownloadTimeout time.Duration

	RequiredApprovals int
	AnalyticsCacheTTL time.Duration

	NotifySink    string // "redis" or "memory"
	NotifyWorkers int

	DiscordWebhookID    string
	DiscordWebhookToken string

	OTelCollectorURL string

	RateLimitPerMinute int

	OutboxInterval time.Duration
	OutboxGrace    time.Duration
}

func LoadApp() App {
	return App{
		Port:                envString("PORT", "8080"),
		MongoDB:             envString("MONGO_DB", "hireloop"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		SignedURLTTL:        envDuration("GCS_SIGNED_URL_TTL", 15*time.Minute),
		DownloadTimeout:     envDuration("FILE_DOWNLOAD_TIMEOUT", 60*time.Second),
		RequiredApprovals:   envInt("OFFER_REQUIRED_APPROVALS", 1),
		AnalyticsCacheTTL:   envDuration("ANALYTICS_CACHE_TTL", 0),
		NotifySink:          strings.ToLower(envString("NOTIFY_SINK", "redis")),
		NotifyWorkers:       envInt("NOTIFY_WORKERS", 3),
		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
		OTelCollectorURL:    os.Getenv("OTEL_COLLECTOR_URL"),
		RateLimitPerMinute:  envInt("RATE_LIMIT_PER_MINUTE", 0),
		OutboxInterval:      envDuration("OUTBOX_INTERVAL", 10*time.Second),
		OutboxGrace:         envDuration("OUTBOX_GRACE", 30*time.Second),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts Go durations ("30s") or bare seconds ("30").
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
