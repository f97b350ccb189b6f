package web

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/ops"
	"github.com/hpungsan/unitime/internal/store"
)

// maxUploadFiles bounds the number of documents in one upload.
const maxUploadFiles = 32

// Handlers contains HTTP route handlers for the API.
type Handlers struct {
	db  *sql.DB
	st  *store.Store
	cfg *config.Config
	log *zap.Logger
}

// HandleRecords handles GET /api/records, listing sessions.
func (h *Handlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := ops.List(h.st, ops.ListInput{
		Course: q.Get("course"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleWeeks handles GET /api/weeks: all week buckets, or one with ?week=N.
func (h *Handlers) HandleWeeks(w http.ResponseWriter, r *http.Request) {
	input := ops.WeeksInput{}
	if s := r.URL.Query().Get("week"); s != "" {
		week, err := strconv.Atoi(s)
		if err != nil {
			h.renderError(w, errors.NewInvalidRequest("week must be an integer"))
			return
		}
		input.Week = &week
	}

	result, err := ops.Weeks(h.st, input)
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleStats handles GET /api/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.Stats(h.st, h.cfg))
}

// HandleLegend handles GET /api/legend.
func (h *Handlers) HandleLegend(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.Legend(h.st, h.cfg))
}

// HandleHistory handles GET /api/history: recent import files.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	result, err := ops.History(r.Context(), h.db, ops.HistoryInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultHistoryLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleImport handles POST /api/import: multipart upload, field "files".
// Upload order fixes each file's source index.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.MaxDocumentBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultConfig().MaxDocumentBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes*maxUploadFiles)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.renderError(w, errors.NewDocumentTooLarge("upload", tooLarge.Limit, r.ContentLength))
			return
		}
		h.renderError(w, errors.NewInvalidRequest("expected multipart/form-data with field \"files\""))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.renderError(w, errors.NewInvalidRequest("no files uploaded"))
		return
	}
	if len(headers) > maxUploadFiles {
		h.renderError(w, errors.NewInvalidRequest(fmt.Sprintf("at most %d files per upload", maxUploadFiles)))
		return
	}

	// A file that cannot be taken is reported in its own result.
	docs := make([]ops.Document, len(headers))
	for i, fh := range headers {
		docs[i] = ops.Document{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type")}
		if fh.Size > maxBytes {
			docs[i].Err = errors.NewDocumentTooLarge(fh.Filename, maxBytes, fh.Size)
			continue
		}
		docs[i].Content, docs[i].Err = readUpload(fh)
	}

	result, err := ops.ImportDocuments(r.Context(), h.st, h.db, h.cfg, h.log, docs)
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read upload: %w", err))
	}
	return content, nil
}

// HandleRemoveCourse handles DELETE /api/courses/{name}.
func (h *Handlers) HandleRemoveCourse(w http.ResponseWriter, r *http.Request) {
	result, err := ops.RemoveCourse(r.Context(), h.st, h.log, ops.RemoveCourseInput{Name: r.PathValue("name")})
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleClear handles DELETE /api/records; it requires ?confirm=true.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		h.renderError(w, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.Clear(r.Context(), h.st, h.log)
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleReport handles GET /report: the schedule report, HTML by default.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := ops.FormatHTML
	if q.Get("format") != "" {
		format = ops.ExportFormat(q.Get("format"))
	}

	result, err := ops.Report(h.st, h.cfg, ops.ReportInput{
		Format: format,
		Title:  q.Get("title"),
		Course: q.Get("course"),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	contentType := "text/html; charset=utf-8"
	if result.Format == ops.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.Content)
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes an error as {"error": {code, message, status}}.
// Internal errors are logged and their message is not exposed.
func (h *Handlers) renderError(w http.ResponseWriter, err error) {
	uErr := errors.As(err)
	message := uErr.Message
	if uErr.Code == errors.ErrInternal {
		h.log.Error("request failed", zap.Error(err))
		message = "an internal error occurred"
	}

	errorObj := map[string]any{
		"code":    string(uErr.Code),
		"message": message,
		"status":  uErr.Status,
	}
	if uErr.Code != errors.ErrInternal && uErr.Details != nil {
		errorObj["details"] = uErr.Details
	}
	renderJSON(w, uErr.Status, map[string]any{"error": errorObj})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
