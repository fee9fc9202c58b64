package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"interview-prep/internal/visitor"
)

const defaultMaxLogBytes = 4096

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	logBody      bytes.Buffer
	bytesWritten int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Write forwards everything and keeps at most maxLogBytes for the log line.
func (r *statusRecorder) Write(p []byte) (int, error) {
	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		if len(p) > room {
			r.logBody.Write(p[:room])
			r.truncated = true
		} else {
			r.logBody.Write(p)
		}
	} else if len(p) > 0 {
		r.truncated = true
	}

	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += n
	return n, err
}

// RequestLogger logs one line per request. Bodies of error responses are
// attached, capped at maxLogBytes.
func RequestLogger(logger *zap.Logger, maxLogBytes int) mux.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogBytes <= 0 {
		maxLogBytes = defaultMaxLogBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				maxLogBytes:    maxLogBytes,
			}

			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.statusCode),
				zap.Int("bytes", recorder.bytesWritten),
				zap.Duration("duration", time.Since(start)),
			}
			if visitorID := visitor.FromContext(r.Context()); visitorID != "" {
				fields = append(fields, zap.String("visitor_id", visitorID))
			}

			switch {
			case recorder.statusCode >= http.StatusInternalServerError:
				fields = append(fields, zap.String("body", recorder.logBody.String()), zap.Bool("truncated", recorder.truncated))
				logger.Error("request", fields...)
			case recorder.statusCode >= http.StatusBadRequest:
				fields = append(fields, zap.String("body", recorder.logBody.String()), zap.Bool("truncated", recorder.truncated))
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}
