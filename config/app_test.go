package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MONGO_DB", "OFFER_REQUIRED_APPROVALS", "ANALYTICS_CACHE_TTL", "NOTIFY_SINK"} {
		t.Setenv(k, "")
	}
	a := LoadApp()
	assert.Equal(t, "8080", a.Port)
	assert.Equal(t, "hireloop", a.MongoDB)
	assert.Equal(t, 1, a.RequiredApprovals)
	assert.Zero(t, a.AnalyticsCacheTTL, "analytics cache is opt-in")
	assert.Equal(t, "redis", a.NotifySink)
}

func TestLoadAppOverrides(t *testing.T) {
	t.Setenv("OFFER_REQUIRED_APPROVALS", "2")
	t.Setenv("ANALYTICS_CACHE_TTL", "45s")
	t.Setenv("GCS_SIGNED_URL_TTL", "5m")
	t.Setenv("NOTIFY_SINK", "Memory")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")

	a := LoadApp()
	assert.Equal(t, 2, a.RequiredApprovals)
	assert.Equal(t, 45*time.Second, a.AnalyticsCacheTTL)
	assert.Equal(t, 5*time.Minute, a.SignedURLTTL)
	assert.Equal(t, "memory", a.NotifySink)
	assert.Equal(t, 3, a.NotifyWorkers)
}
