package httpserver

import (
	"net/http"
	"time"

	"github.com/andrebq/shop/internal/logutil"
	"github.com/rs/zerolog"
)

type (
	statusRecorder struct {
		http.ResponseWriter
		status int
		size   int
	}
)

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(buf []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(buf)
	s.size += n
	return n, err
}

// AccessLog logs one line per request and makes log available
// to handlers via logutil.GetOrDefault(r.Context())
func AccessLog(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := log.With().Str("http.method", r.Method).Str("http.path", r.URL.Path).Logger()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(logutil.WithLogger(r.Context(), reqLog)))
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		var ev *zerolog.Event
		switch {
		case rec.status >= 500:
			ev = reqLog.Error()
		case rec.status >= 400:
			ev = reqLog.Warn()
		default:
			ev = reqLog.Info()
		}
		ev.Int("http.status", rec.status).
			Int("http.size", rec.size).
			Dur("http.duration", time.Since(start)).
			Msg("Request handled")
	})
}
