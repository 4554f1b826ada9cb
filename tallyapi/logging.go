package tallyapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	yellow     = "\033[33m"
	magenta    = "\033[35m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:    green,
	http.MethodPost:   blue,
	http.MethodPut:    cyan,
	http.MethodDelete: yellow,
	http.MethodPatch:  magenta,
}

// logTransport logs every request with its status and duration
type logTransport struct {
	base  http.RoundTripper
	log   zerolog.Logger
	color bool
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	ev := t.log.Info()
	if err != nil {
		ev = t.log.Warn().Err(err)
	}
	ev = ev.Str("method", t.displayMethod(req.Method)).Str("path", req.URL.Path).Dur("took", time.Since(start))
	if resp != nil {
		ev = ev.Int("status", resp.StatusCode)
	}
	ev.Msg("Request")
	return resp, err
}

func (t *logTransport) displayMethod(method string) string {
	if !t.color {
		return method
	}
	if color, ok := methodColors[method]; ok {
		return color + fmt.Sprintf("%-7s", method) + resetColor
	}
	return method
}
