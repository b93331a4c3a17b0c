// health.go — обработчики health endpoints для Kubernetes (liveness/readiness).
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bigkaa/goartstore/rms-report/internal/config"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/filestore"
)

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// pingTimeout — предельное время проверки движка печати.
const pingTimeout = 5 * time.Second

// EnginePinger — проверка доступности движка печати.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// DiskUsageFunc возвращает total, used, available в байтах для пути.
type DiskUsageFunc func(path string) (total, used, available int64, err error)

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	// staticDir — корень статики (uploads/ и reports/ проверяются на запись)
	staticDir string
	engine    EnginePinger
	diskUsage DiskUsageFunc
}

// NewHealthHandler создаёт обработчик health endpoints.
// engine и diskUsage могут быть nil: соответствующая проверка пропускается.
func NewHealthHandler(staticDir string, engine EnginePinger, diskUsage DiskUsageFunc) *HealthHandler {
	return &HealthHandler{
		version:   config.Version,
		staticDir: staticDir,
		engine:    engine,
		diskUsage: diskUsage,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "rms-report",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет: запись в uploads/ и reports/, дисковое пространство,
// доступность движка печати.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	fail := func(check map[string]any) {
		if check["status"] != "ok" {
			overallStatus = statusFail
			httpStatus = http.StatusServiceUnavailable
		}
	}

	uploadsCheck := h.checkWritable(filestore.UploadsDir)
	fail(uploadsCheck)
	reportsCheck := h.checkWritable(filestore.ReportsDir)
	fail(reportsCheck)
	engineCheck := h.checkEngine(r.Context())
	fail(engineCheck)

	checks := map[string]any{
		"uploads":      uploadsCheck,
		"reports":      reportsCheck,
		"print_engine": engineCheck,
	}

	if disk := h.checkDisk(); disk != nil {
		checks["disk"] = disk
		if disk["status"] != "ok" && overallStatus != statusFail {
			overallStatus = "degraded"
		}
	}

	resp := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "rms-report",
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// checkWritable проверяет доступность поддиректории статики на запись.
func (h *HealthHandler) checkWritable(sub string) map[string]any {
	if h.staticDir == "" {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	testFile := filepath.Join(h.staticDir, sub, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Директория " + sub + " недоступна для записи: " + err.Error(),
		}
	}
	_ = os.Remove(testFile)

	return map[string]any{
		"status": "ok",
	}
}

// checkEngine проверяет, что движок печати отвечает.
func (h *HealthHandler) checkEngine(ctx context.Context) map[string]any {
	if h.engine == nil {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.engine.Ping(ctx); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Движок печати недоступен: " + err.Error(),
		}
	}
	return map[string]any{
		"status": "ok",
	}
}

// checkDisk сообщает ёмкость диска статики. Меньше 1% свободного места — degraded.
func (h *HealthHandler) checkDisk() map[string]any {
	if h.diskUsage == nil || h.staticDir == "" {
		return nil
	}

	total, used, available, err := h.diskUsage(h.staticDir)
	if err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": err.Error(),
		}
	}

	status := "ok"
	if total > 0 && available*100 < total {
		status = "low"
	}
	return map[string]any{
		"status":          status,
		"total_bytes":     total,
		"used_bytes":      used,
		"available_bytes": available,
	}
}
