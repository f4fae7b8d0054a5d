package requestlog

import (
	"log/slog"
	"net/http"

	"github.com/getmockd/reqdiff/pkg/logging"
)

// CaptureHandler records every request passing through next into logger.
// The request body is buffered and replayed to next.
func CaptureHandler(logger Logger, next http.Handler, log *slog.Logger) http.Handler {
	log = logging.OrNop(log)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			log.Warn("failed to read request body for capture", "method", r.Method, "url", r.URL.RequestURI(), "error", err)
		}
		entry := NewEntry(r, body)
		logger.Log(entry)
		log.Debug("request captured", "id", entry.ID, "method", entry.Method, "url", entry.URL, "bodySize", entry.BodySize)
		next.ServeHTTP(w, r)
	})
}
