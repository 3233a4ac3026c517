package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/logging"
)

func TestNew_JSONAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logging.New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	l.Info("dropped")
	l.WithField("curve", "EUR-OIS").Warn("kept")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "EUR-OIS", rec["curve"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	l := logging.New(config.LoggingConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestSetDefault(t *testing.T) {
	orig := logging.L()
	t.Cleanup(func() { logging.SetDefault(orig) })

	var buf bytes.Buffer
	logging.SetDefault(logging.New(config.LoggingConfig{Level: "debug"}, &buf))
	logging.Component("factory").Debug("hello")

	assert.Contains(t, buf.String(), "component=factory")
	assert.Contains(t, buf.String(), "hello")

	logging.SetDefault(nil)
	assert.NotNil(t, logging.L())
}
