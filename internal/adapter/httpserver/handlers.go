package httpserver

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/logictrix/resume-screener/internal/config"
	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Screen     usecase.ScreenService
	Match      usecase.MatchService
	Export     usecase.ExportService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	TikaCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, screen usecase.ScreenService, match usecase.MatchService,
	export usecase.ExportService, dbCheck, redisCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Screen: screen, Match: match, Export: export,
		DBCheck: dbCheck, RedisCheck: redisCheck, TikaCheck: tikaCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// allowedExt enforces the upload allowlist: pdf, docx, txt, and scanned
// images (png/jpg) which go through OCR.
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".txt", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func allowedMIMEFor(m, filename string) bool {
	m = strings.ToLower(m)
	// Some detectors misclassify rich .txt content as text/html.
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") {
		return true
	}
	switch {
	case m == "application/pdf",
		m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		strings.HasPrefix(m, "image/png"),
		strings.HasPrefix(m, "image/jpeg"):
		return true
	}
	return false
}

type screeningRequest struct {
	Action         string `validate:"required,oneof=summarize match"`
	JobDescription string `validate:"max=8000"`
}

// ScreeningsHandler accepts a multipart batch of resumes and runs the
// summarize or match flow, returning one record per submitted document.
func (s *Server) ScreeningsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
			writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a}}})
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB}}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		req := screeningRequest{
			Action:         r.FormValue("action"),
			JobDescription: strings.TrimSpace(r.FormValue("job_description")),
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		if req.Action == "match" && req.JobDescription == "" {
			writeError(w, r, fmt.Errorf("%w: job_description required for match", domain.ErrInvalidArgument), map[string]string{"field": "job_description"})
			return
		}
		headers := r.MultipartForm.File["resumes"]
		if len(headers) == 0 {
			writeError(w, r, fmt.Errorf("%w: at least one resume file required", domain.ErrInvalidArgument), map[string]string{"field": "resumes"})
			return
		}

		files, cleanup, err := stageUploads(headers)
		if err != nil {
			writeUploadError(w, err)
			return
		}
		defer cleanup()

		session := sessionID(w, r)
		ctx := r.Context()
		switch req.Action {
		case "match":
			recs := s.Match.MatchBatch(ctx, session, req.JobDescription, files)
			out := make([]matchDTO, len(recs))
			for i, rec := range recs {
				out[i] = toMatchDTO(rec)
			}
			writeJSON(w, http.StatusOK, map[string]any{"action": "match", "records": out})
		default:
			recs := s.Screen.SummarizeBatch(ctx, session, files)
			out := make([]summaryDTO, len(recs))
			for i, rec := range recs {
				out[i] = toSummaryDTO(rec)
			}
			writeJSON(w, http.StatusOK, map[string]any{"action": "summarize", "records": out})
		}
	}
}

// uploadError carries the HTTP shape of an upload rejection.
type uploadError struct {
	status   int
	message  string
	filename string
	mime     string
}

func (e *uploadError) Error() string { return e.message }

func writeUploadError(w http.ResponseWriter, err error) {
	ue, ok := err.(*uploadError)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: apiError{Code: "INTERNAL", Message: err.Error()}})
		return
	}
	details := map[string]any{"filename": ue.filename}
	if ue.mime != "" {
		details["mime"] = ue.mime
	}
	writeJSON(w, ue.status, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: ue.message, Details: details}})
}

// stageUploads validates each uploaded file against the extension and
// content allowlists and writes it to a temp file for extraction. The
// returned cleanup removes every staged file.
func stageUploads(headers []*multipart.FileHeader) ([]usecase.File, func(), error) {
	var staged []string
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}
	files := make([]usecase.File, 0, len(headers))
	for _, h := range headers {
		if !allowedExt(h.Filename) {
			cleanup()
			return nil, nil, &uploadError{status: http.StatusUnsupportedMediaType, message: "unsupported media type (extension)", filename: h.Filename}
		}
		src, err := h.Open()
		if err != nil {
			cleanup()
			return nil, nil, &uploadError{status: http.StatusBadRequest, message: "unreadable upload", filename: h.Filename}
		}
		path, m, err := stageOne(src, h.Filename)
		_ = src.Close()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if !allowedMIMEFor(m, h.Filename) {
			_ = os.Remove(path)
			cleanup()
			return nil, nil, &uploadError{status: http.StatusUnsupportedMediaType, message: "unsupported media type (content)", filename: h.Filename, mime: m}
		}
		staged = append(staged, path)
		files = append(files, usecase.File{Name: h.Filename, Path: path})
	}
	return files, cleanup, nil
}

func stageOne(src multipart.File, filename string) (string, string, error) {
	tmp, err := os.CreateTemp("", "screening-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", "", &uploadError{status: http.StatusInternalServerError, message: "staging failed", filename: filename}
	}
	defer func() { _ = tmp.Close() }()
	if _, err := tmp.ReadFrom(src); err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", &uploadError{status: http.StatusBadRequest, message: "unreadable upload", filename: filename}
	}
	m, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", &uploadError{status: http.StatusBadRequest, message: "undetectable content type", filename: filename}
	}
	return tmp.Name(), m.String(), nil
}

// ListHandler returns the session's current records.
func (s *Server) ListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionID(w, r)
		rows, err := s.Export.List(r.Context(), session)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]rowDTO, len(rows))
		for i, row := range rows {
			out[i] = toRowDTO(row)
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": out})
	}
}

// ExportHandler streams the session's records as a CSV download.
func (s *Server) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionID(w, r)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="screenings.csv"`)
		if err := s.Export.WriteCSV(r.Context(), session, w); err != nil {
			LoggerFrom(r).Error("csv export failed", "error", err)
		}
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes DB, Redis, and Tika.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"tika", s.TikaCheck},
		}
		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				checks = append(checks, check{Name: p.name, OK: false, Details: err.Error()})
				ok = false
			} else {
				checks = append(checks, check{Name: p.name, OK: true})
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
