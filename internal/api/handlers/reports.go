// reports.go — HTTP handlers формирования отчёта.
// Форма инспекции, HTML-поток, JSON API и переход к готовому отчёту.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/rms-report/internal/api/errors"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/service"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/filestore"
)

// multipartMemory — часть multipart-формы, удерживаемая в памяти.
// Остальное ParseMultipartForm пишет во временные файлы.
const multipartMemory = 32 << 20

// Generator — конвейер формирования отчёта.
type Generator interface {
	Run(ctx context.Context, req service.Request) (*service.Result, error)
}

// PageRenderer — шаблонизатор HTML-страниц.
type PageRenderer interface {
	Render(name string, data any) ([]byte, error)
}

// ReportLookup — метаданные готового отчёта по имени артефакта.
// Отсутствующий или незавершённый отчёт — filestore.ErrReportNotFound.
type ReportLookup interface {
	ReportMeta(name string) (*model.ReportMeta, error)
}

// ReportsHandler — обработчик endpoints формирования отчёта.
type ReportsHandler struct {
	generator     Generator
	pages         PageRenderer
	categories    []model.CategoryDefinition
	assets        *AssetResolution
	reports       ReportLookup
	maxUploadSize int64
	logger        *slog.Logger
}

// NewReportsHandler создаёт обработчик.
func NewReportsHandler(
	generator Generator,
	pages PageRenderer,
	categories []model.CategoryDefinition,
	assets *AssetResolution,
	reports ReportLookup,
	maxUploadSize int64,
	logger *slog.Logger,
) *ReportsHandler {
	return &ReportsHandler{
		generator:     generator,
		pages:         pages,
		categories:    categories,
		assets:        assets,
		reports:       reports,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "reports_handler")),
	}
}

// reportResponse — тело ответа POST /api/v1/reports.
type reportResponse struct {
	Reference         string    `json:"reference"`
	Artifact          string    `json:"artifact"`
	DownloadURL       string    `json:"download_url"`
	GeneratedAt       time.Time `json:"generated_at"`
	StandardsChecked  int       `json:"standards_checked"`
	NonCompliantCount int       `json:"non_compliant_count"`
	ActionsRequired   int       `json:"actions_required"`
	OverallStatus     string    `json:"overall_status"`
	PageCount         int       `json:"page_count"`
}

// Form обрабатывает GET /.
func (h *ReportsHandler) Form(w http.ResponseWriter, _ *http.Request) {
	page, err := h.pages.Render(report.FormTemplate, report.NewFormPage(h.categories, time.Now()))
	if err != nil {
		h.logger.Error("Ошибка рендеринга формы", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// Generate обрабатывает POST /generate (HTML-поток).
// При ошибке показывает страницу ошибки без ссылки на отчёт.
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	res, status, msg := h.run(w, r)
	if res == nil {
		h.renderError(w, status, msg)
		return
	}

	page, err := h.pages.Render(report.ResultTemplate, report.ResultPage{
		Reference:         res.Meta.Reference,
		StandardsChecked:  res.Meta.StandardsChecked,
		NonCompliantCount: res.Meta.NonCompliantCount,
		OverallLabel:      res.Aggregate.OverallStatus.Label(),
		DownloadURL:       downloadURL(res),
	})
	if err != nil {
		h.logger.Error("Ошибка рендеринга результата", slog.String("error", err.Error()))
		h.renderError(w, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// CreateReport обрабатывает POST /api/v1/reports (JSON API).
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	res, status, msg := h.run(w, r)
	if res == nil {
		writeAPIError(w, status, msg)
		return
	}

	resp := reportResponse{
		Reference:         res.Meta.Reference,
		Artifact:          res.Meta.Artifact,
		DownloadURL:       downloadURL(res),
		GeneratedAt:       res.Meta.GeneratedAt,
		StandardsChecked:  res.Meta.StandardsChecked,
		NonCompliantCount: res.Meta.NonCompliantCount,
		ActionsRequired:   res.Meta.ActionsRequired,
		OverallStatus:     res.Meta.OverallStatus,
		PageCount:         res.Meta.PageCount,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", resp.DownloadURL)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetReport обрабатывает GET /reports/{name}: перенаправляет на статический
// URL завершённого отчёта (артефакт и attr.json на месте).
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	meta, err := h.reports.ReportMeta(name)
	if errors.Is(err, filestore.ErrReportNotFound) {
		apierrors.NotFound(w, fmt.Sprintf("Отчёт %q не найден", name))
		return
	}
	if err != nil {
		h.logger.Error("Ошибка чтения метаданных отчёта",
			slog.String("artifact", name),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка")
		return
	}

	w.Header().Set("X-Report-Reference", meta.Reference)
	http.Redirect(w, r, report.StaticPrefix+filestore.ReportsDir+"/"+name, http.StatusFound)
}

// run разбирает multipart-запрос и запускает конвейер.
// При ошибке возвращает nil, HTTP статус и сообщение для пользователя.
func (h *ReportsHandler) run(w http.ResponseWriter, r *http.Request) (*service.Result, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Размер запроса превышает %d байт", h.maxUploadSize)
		}
		return nil, http.StatusBadRequest, "Ошибка разбора multipart: " + err.Error()
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("Ошибка удаления временных файлов формы", slog.String("error", err.Error()))
		}
	}()

	resolver, err := h.assets.ForRequest(r)
	if err != nil {
		h.logger.Error("Ошибка выбора стратегии ассетов", slog.String("error", err.Error()))
		return nil, http.StatusInternalServerError, "Внутренняя ошибка"
	}

	res, err := h.generator.Run(r.Context(), service.Request{
		Source:   service.NewFormSource(r.MultipartForm),
		Resolver: resolver,
	})
	if err != nil {
		status := statusForError(err)
		if status == apierrors.StatusClientClosedRequest {
			h.logger.Info("Заявка прервана клиентом", slog.String("error", err.Error()))
			return nil, status, messageForStatus(status)
		}
		h.logger.Error("Отчёт не сформирован",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		return nil, status, messageForStatus(status)
	}

	return res, http.StatusCreated, ""
}

func (h *ReportsHandler) renderError(w http.ResponseWriter, status int, msg string) {
	page, err := h.pages.Render(report.ErrorTemplate, report.ErrorPage{Message: msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	writeHTML(w, status, page)
}

func isTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes) ||
		errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large")
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrStorageFailure):
		return http.StatusInsufficientStorage
	case errors.Is(err, service.ErrRenderFailure):
		return http.StatusBadGateway
	case service.IsCancelled(err):
		return apierrors.StatusClientClosedRequest
	}
	return http.StatusInternalServerError
}

// writeAPIError пишет JSON-ошибку для статуса, возвращённого run.
func writeAPIError(w http.ResponseWriter, status int, msg string) {
	switch status {
	case http.StatusBadRequest:
		apierrors.ValidationError(w, msg)
	case http.StatusRequestEntityTooLarge:
		apierrors.PayloadTooLarge(w, msg)
	case http.StatusInsufficientStorage:
		apierrors.StorageFailure(w, msg)
	case http.StatusBadGateway:
		apierrors.RenderFailure(w, msg)
	case apierrors.StatusClientClosedRequest:
		apierrors.Cancelled(w, msg)
	default:
		apierrors.InternalError(w, msg)
	}
}

func messageForStatus(status int) string {
	switch status {
	case http.StatusInsufficientStorage:
		return "Не удалось сохранить фотографии или отчёт"
	case http.StatusBadGateway:
		return "Не удалось сформировать PDF"
	case apierrors.StatusClientClosedRequest:
		return "Запрос отменён"
	}
	return "Внутренняя ошибка"
}

func downloadURL(res *service.Result) string {
	return report.StaticPrefix + res.StoragePath
}

func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page)
}
