package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"picfeed/pkg/logger"
)

type traceKey string

const (
	requestIdKey    traceKey = "requestId"
	RequestIdHeader          = "X-Request-Id"
)

var httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "picfeed_http_request_seconds",
	Help:    "HTTP request latency by method and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "status"})

type Logging struct {
	Logger *zap.SugaredLogger
}

func NewLoggingMiddleware(l *zap.SugaredLogger) *Logging {
	return &Logging{Logger: l}
}

// RequestId returns the id SetupTracing assigned to the request.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

// SetupTracing gives every request an id, reusing the client's one if sent.
func (lm *Logging) SetupTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, id)
		ctx := context.WithValue(r.Context(), requestIdKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetupLogging attaches a logger tagged with the request id to the context.
func (lm *Logging) SetupLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := lm.Logger.With("request_id", RequestId(r.Context()))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), l)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (lm *Logging) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		httpDuration.WithLabelValues(r.Method, http.StatusText(rec.status)).Observe(elapsed.Seconds())
		logger.Log(r.Context()).Infow("access",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote_addr", r.RemoteAddr,
			"took", elapsed,
		)
	})
}
