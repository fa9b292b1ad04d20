package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxStartTime ctxKey = "start_time"
)

// SetRequestContext stores the request id and start time the event helpers below attach
func SetRequestContext(c *gin.Context, requestID string, start time.Time) {
	c.Set(string(ctxRequestID), requestID)
	c.Set(string(ctxStartTime), start)
}

// RequestID returns the id stored by SetRequestContext
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(string(ctxRequestID))
}

func withGinContext(c *gin.Context, e *zerolog.Event) *zerolog.Event {
	if c == nil {
		return e
	}
	if s := RequestID(c); s != "" {
		e.Str("request_id", s)
	}
	if v, ok := c.Get(string(ctxStartTime)); ok {
		if t, ok2 := v.(time.Time); ok2 {
			e.Dur("duration", time.Since(t))
		}
	}
	return e
}

func Info(c *gin.Context) *zerolog.Event  { return withGinContext(c, log.Info()) }
func Debug(c *gin.Context) *zerolog.Event { return withGinContext(c, log.Debug()) }
func Warn(c *gin.Context) *zerolog.Event  { return withGinContext(c, log.Warn()) }
func Error(c *gin.Context) *zerolog.Event { return withGinContext(c, log.Error()) }
