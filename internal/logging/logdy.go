package logging

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/logdyhq/logdy-core/logdy"

	"yolo-webcam-go/internal/config"
)

// logdyWriter forwards each zerolog JSON line to the embedded Logdy UI
type logdyWriter struct {
	logger logdy.Logdy
}

func (w *logdyWriter) Write(p []byte) (n int, err error) {
	w.logger.LogString(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// StartLogdy starts the embedded Logdy web UI and returns a writer to tee logs into, plus the UI URL
func StartLogdy(cfg *config.Config) (io.Writer, string, error) {
	if cfg.LogdyPort <= 0 || cfg.LogdyPort > 65535 {
		return nil, "", fmt.Errorf("%w: LOGDY_PORT %d", config.ErrInvalid, cfg.LogdyPort)
	}
	port := strconv.Itoa(cfg.LogdyPort)
	ld := logdy.InitializeLogdy(logdy.Config{
		ServerIp:   cfg.LogdyHost,
		ServerPort: port,
	}, nil)

	url := "http://" + net.JoinHostPort(cfg.LogdyHost, port)
	return &logdyWriter{logger: ld}, url, nil
}
