package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	l := build(&buf, "warn", "")
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("offer_id", "o-1").Warn("offer send failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "offer send failed", line["msg"])
	assert.Equal(t, "o-1", line["offer_id"])
}

func TestBuildText(t *testing.T) {
	var buf bytes.Buffer
	l := build(&buf, "DEBUG", "text")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
