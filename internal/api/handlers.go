package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"support-desk/internal/common/config"
	stderrors "support-desk/internal/common/errors"
	"support-desk/internal/common/logger"
	"support-desk/internal/enrichment"
	"support-desk/internal/pipeline"
	"support-desk/internal/support"
)

const (
	maxMultipartMemory = 32 << 20 // larger uploads spill to disk
	listLimit          = 100
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	processor *pipeline.Processor
	cfg       *config.Config
	logger    logger.Logger
}

func NewHandlers(processor *pipeline.Processor, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		processor: processor,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Index is the default API response.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Status: "success", Message: "Support Desk API"})
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "ok", map[string]string{
		"name":    h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// NotFound answers every unmatched route with the error envelope.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Invalid API endpoint", nil)
}

// CreateSupport accepts the form submission, runs it through the pipeline and
// answers as soon as the record is stored. The optional upload is spooled to
// a temp file the detached forward reads later; cleanup of that file belongs
// to the pipeline once the handler returns.
func (h *Handlers) CreateSupport(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := h.parseForm(r)
	if err != nil {
		h.logger.WithError(err).Warn("unreadable form submission", nil)
		writeError(w, http.StatusBadRequest, "Unable to read form submission.", nil)
		return
	}

	reqCtx := enrichment.RequestContext{
		UserAgent: r.UserAgent(),
		ClientIP:  clientIP(r),
	}

	sub, fieldErrs, err := h.processor.Process(r.Context(), form, reqCtx, cleanup)
	if err != nil {
		h.logger.WithError(err).Error("submission processing failed", nil)
		writeError(w, http.StatusInternalServerError, "Unable to save support request.", nil)
		return
	}
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, support.HTMLMessage(fieldErrs), map[string]interface{}{
			"fields": support.Fields(fieldErrs),
		})
		return
	}

	writeSuccess(w, "New support request submitted.", sub)
}

// GetSupport returns a stored submission by id.
func (h *Handlers) GetSupport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.processor.Get(r.Context(), id)
	if err != nil {
		var stdErr *stderrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == stderrors.ErrCodeNotFound {
			writeError(w, http.StatusNotFound, "Support request not found.", nil)
			return
		}
		h.logger.WithError(err).Error("submission lookup failed", map[string]interface{}{"id": id})
		writeError(w, http.StatusInternalServerError, "Unable to load support request.", nil)
		return
	}

	writeSuccess(w, "Support request loading...", sub)
}

// ListSupport returns recent submissions. Only routed in development.
func (h *Handlers) ListSupport(w http.ResponseWriter, r *http.Request) {
	subs, err := h.processor.List(r.Context(), listLimit)
	if err != nil {
		h.logger.WithError(err).Error("submission list failed", nil)
		writeError(w, http.StatusInternalServerError, "Unable to load support requests.", nil)
		return
	}

	writeSuccess(w, "Support requests retrieved successfully", subs)
}

// parseForm reads the urlencoded or multipart body into a RawForm. The
// returned cleanup removes the spooled upload and is safe to call when no
// file was sent.
func (h *Handlers) parseForm(r *http.Request) (*support.RawForm, func(), error) {
	cleanup := func() {}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, cleanup, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, cleanup, err
		}
	}

	fields := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	form := &support.RawForm{Fields: fields}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("attachment")
		if err == nil {
			upload, remove, saveErr := h.saveUpload(file, header)
			file.Close()
			if saveErr != nil {
				return nil, cleanup, saveErr
			}
			form.Attachment = upload
			cleanup = remove
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, cleanup, err
		}
	}

	return form, cleanup, nil
}

// saveUpload spools the uploaded file to a temp path the forwarder can read
// after the response has been written.
func (h *Handlers) saveUpload(file multipart.File, header *multipart.FileHeader) (*support.Upload, func(), error) {
	tmp, err := os.CreateTemp("", "support-upload-*")
	if err != nil {
		return nil, nil, err
	}

	size, err := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, nil, err
	}

	upload := &support.Upload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     size,
		TempPath: tmp.Name(),
	}

	remove := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			h.logger.WithError(err).Warn("failed to remove temp upload", map[string]interface{}{
				"path": tmp.Name(),
			})
		}
	}

	return upload, remove, nil
}
