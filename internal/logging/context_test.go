package logging

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"yolo-webcam-go/internal/config"
)

func TestGinContextFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	SetRequestContext(c, "req-123", time.Now())
	assert.Equal(t, "req-123", RequestID(c))

	Info(c).Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"duration":`)

	buf.Reset()
	Warn(nil).Msg("no context")
	assert.NotContains(t, buf.String(), "request_id")
	assert.Equal(t, "", RequestID(nil))
}

func TestServiceLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	logger := WithCamera(NewServiceLogger(&config.Config{WorkerID: "worker-9"}, "capture"), "webcam")
	logger.Info().Msg("started")

	out := buf.String()
	assert.Contains(t, out, `"worker_id":"worker-9"`)
	assert.Contains(t, out, `"service":"capture"`)
	assert.Contains(t, out, `"camera_id":"webcam"`)
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, ok = ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, ok = ParseLevel("")
	assert.False(t, ok)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestStartLogdyRejectsBadPort(t *testing.T) {
	_, _, err := StartLogdy(&config.Config{LogdyHost: "localhost", LogdyPort: 0})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
