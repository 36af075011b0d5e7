package http

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "metabulo/internal/errors"
	"metabulo/internal/exporter"
	"metabulo/internal/middleware"
	"metabulo/internal/storage"
	api "metabulo/pkg/contracts/api/v1"
	"metabulo/pkg/contracts/domain"
)

// uploadField is the multipart form field carrying the table
const uploadField = "file"

// multipartOverhead is allowed on top of the upload limit for form framing
const multipartOverhead = 64 << 10

// CSVHandler handles upload, labelling, validation and processing requests
type CSVHandler struct {
	service      CSVServiceInterface
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	writer       *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxUpload    int64
}

// NewCSVHandler creates a new CSV handler. maxUpload bounds the size of an
// uploaded file.
func NewCSVHandler(service CSVServiceInterface, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CSVHandler {
	return &CSVHandler{
		service:      service,
		validator:    middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		writer:       exporter.NewCSVWriter(logger),
		logger:       logger.With(slog.String("component", "csv_handler")),
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
	}
}

// Routes returns the /csv routes
func (h *CSVHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.validator.ValidateRequest)

	r.Get("/", h.List)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/download", h.Download)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
			r.Put("/row/{index}", h.SetRowType)
			r.Put("/column/{index}", h.SetColumnType)
			r.Put("/normalization", h.SetNormalization)
			r.Put("/transformation", h.SetTransformation)
			r.Put("/scaling", h.SetScaling)
		})

		r.Post("/validate", h.Validate)
		r.Get("/validate", h.GetValidated)
	})

	return r
}

// Upload handles POST /csv
func (h *CSVHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUpload + multipartOverhead
	if r.ContentLength > limit {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge.WithExtension("max_bytes", h.maxUpload))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge.WithExtension("max_bytes", h.maxUpload))
		case errors.Is(err, http.ErrMissingFile):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadField, "a file is required"))
		default:
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "receiving upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	created, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(r.URL.Path, "/"), created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// List handles GET /csv
func (h *CSVHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 1000, 100)
	if !ok {
		return
	}
	offset, ok := h.query.ValidateInt(w, r, "offset", 0, math.MaxInt32, 0)
	if !ok {
		return
	}
	order, ok := h.query.ValidateEnum(w, r, "order", []string{"asc", "desc"}, "desc")
	if !ok {
		return
	}

	files, err := h.service.List(r.Context(), storage.ListOptions{
		Limit:      limit,
		Offset:     offset,
		Descending: order == "desc",
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if files == nil {
		files = []domain.CSVFileSummary{}
	}
	render.JSON(w, r, files)
}

// Get handles GET /csv/{id}
func (h *CSVHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, file)
}

// Delete handles DELETE /csv/{id}
func (h *CSVHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRowType handles PUT /csv/{id}/row/{index}
func (h *CSVHandler) SetRowType(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	var req api.RowUpdateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, err := h.service.SetRowType(r.Context(), chi.URLParam(r, "id"), index, req.RowType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, file)
}

// SetColumnType handles PUT /csv/{id}/column/{index}
func (h *CSVHandler) SetColumnType(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	var req api.ColumnUpdateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, err := h.service.SetColumnType(r.Context(), chi.URLParam(r, "id"), index, req.ColumnType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, file)
}

// Validate handles POST /csv/{id}/validate
func (h *CSVHandler) Validate(w http.ResponseWriter, r *http.Request) {
	validated, err := h.service.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, validated)
}

// GetValidated handles GET /csv/{id}/validate
func (h *CSVHandler) GetValidated(w http.ResponseWriter, r *http.Request) {
	validated, err := h.service.GetValidated(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, validated)
}

// SetNormalization handles PUT /csv/{id}/normalization
func (h *CSVHandler) SetNormalization(w http.ResponseWriter, r *http.Request) {
	var req api.NormalizationRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respondValidated(w, r)(h.service.SetNormalization(r.Context(), chi.URLParam(r, "id"), req.Method, req.Argument.Ptr()))
}

// SetTransformation handles PUT /csv/{id}/transformation
func (h *CSVHandler) SetTransformation(w http.ResponseWriter, r *http.Request) {
	var req api.TransformationRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respondValidated(w, r)(h.service.SetTransformation(r.Context(), chi.URLParam(r, "id"), req.Method, req.Argument.Ptr()))
}

// SetScaling handles PUT /csv/{id}/scaling
func (h *CSVHandler) SetScaling(w http.ResponseWriter, r *http.Request) {
	var req api.ScalingRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respondValidated(w, r)(h.service.SetScaling(r.Context(), chi.URLParam(r, "id"), req.Method, req.Argument.Ptr()))
}

// Download handles GET /csv/{id}/download
func (h *CSVHandler) Download(w http.ResponseWriter, r *http.Request) {
	processed, err := h.service.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": processed.Filename,
	}))
	w.WriteHeader(http.StatusOK)

	// Headers are sent; a write failure can only be logged
	if err := h.writer.WriteFrame(w, processed.Frame, exporter.WriteOptions{}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write download",
			slog.String("csv_id", chi.URLParam(r, "id")),
			slog.String("error", err.Error()))
	}
}

func (h *CSVHandler) respondValidated(w http.ResponseWriter, r *http.Request) func(*domain.ValidatedTable, error) {
	return func(validated *domain.ValidatedTable, err error) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		render.JSON(w, r, validated)
	}
}

// index parses the {index} path parameter
func (h *CSVHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("index", "index must be an integer"))
		return 0, false
	}
	return index, true
}

func (h *CSVHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, toAPIError(err))
}
