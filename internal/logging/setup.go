package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/config"
)

// ParseLevel maps LOG_LEVEL to a zerolog level, falling back to info
func ParseLevel(s string) (zerolog.Level, bool) {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

// Setup points the global logger at a console writer on stderr, applies the configured
// level and, when enabled, tees the raw JSON lines into the Logdy web UI.
func Setup(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(console)

	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.LogdyEnabled {
		return
	}
	tee, url, err := StartLogdy(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Logdy unavailable, logging to console only")
		return
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(console, tee))
	log.Info().Str("url", url).Msg("📜 Logdy UI available")
}
