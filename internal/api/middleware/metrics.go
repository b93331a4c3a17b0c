// metrics.go — Prometheus метрики сервиса отчётов RMS.
// HTTP метрики: rms_http_requests_total, rms_http_request_duration_seconds.
// Бизнес-метрики (rms_reports_total, rms_photos_stored_total,
// rms_render_duration_seconds) обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rms_http_requests_total",
			Help: "Общее количество HTTP-запросов к сервису отчётов",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rms_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к сервису отчётов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// ReportsTotal — запуски конвейера по результату
	// (success, storage_failure, render_failure, cancelled, error).
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rms_reports_total",
			Help: "Общее количество запусков формирования отчёта",
		},
		[]string{"result"},
	)

	// PhotosStoredTotal — сохранённые фотографии.
	PhotosStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rms_photos_stored_total",
			Help: "Общее количество сохранённых фотографий",
		},
	)

	// RenderDuration — длительность печати документа в PDF.
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rms_render_duration_seconds",
			Help:    "Длительность печати отчёта в PDF в секундах",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newStatusWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// statusWriter — обёртка для перехвата статус-кода.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *statusWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath сводит пути с именами файлов к шаблонам маршрутов
// для предотвращения взрывного роста кардинальности метрик.
// /static/uploads/bathroom_0a1b_tap.jpg → /static/{path}
func normalizePath(path string) string {
	switch {
	case path == "/",
		path == "/generate",
		path == "/health/live",
		path == "/health/ready",
		path == "/metrics",
		path == "/api/v1/reports":
		return path
	case strings.HasPrefix(path, "/static/"):
		return "/static/{path}"
	case strings.HasPrefix(path, "/reports/"):
		return "/reports/{name}"
	}
	return "other"
}
