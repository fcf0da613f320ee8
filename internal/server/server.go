package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/hfdl/docs/swagger" // registers the OpenAPI document
	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/fetcher"
	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/mirror"
	"github.com/raysh454/hfdl/internal/script"
)

// FetchFailedMessage is the error body for listing fetches that did not succeed.
const FetchFailedMessage = "Failed to fetch the URL, pls try again later"

// Server is the HTTP + WebSocket API surface for hfdl.
type Server struct {
	cfg      Config
	service  *app.Service
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer creates a new Server and, unless one is supplied, its Service.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = cfg.AppConfig.ListenAddr
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	svc := cfg.Service
	if svc == nil {
		var err error
		svc, err = app.NewService(ctx, cfg.AppConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("creating service: %w", err)
		}
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:     cfg,
		service: svc,
		router:  r,
		logger:  logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Service returns the underlying service for advanced use (tests, etc.).
func (s *Server) Service() *app.Service {
	return s.service
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/", s.optionsHandler("GET"))
	r.Options("/links", s.optionsHandler("GET"))
	r.Options("/scripts", s.optionsHandler("GET"))
	r.Options("/scripts/{scriptID}", s.optionsHandler("GET, DELETE"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	// Scripts
	r.Get("/", s.handleDownloadScript)
	r.Get("/scripts", s.handleListScripts)
	r.Get("/scripts/{scriptID}", s.handleGetScript)
	r.Delete("/scripts/{scriptID}", s.handleDeleteScript)
	r.Get("/links", s.handleListLinks)

	// Jobs over REST
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for job progress
	r.Get("/ws/generate", s.handleGenerateWS)

	r.Get("/healthz", s.handleHealth)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the service, which deletes every generated script.
func (s *Server) Close() error {
	if s.service == nil {
		return nil
	}
	return s.service.Close()
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// targetFromQuery reads hf_path, domain and revision.
func (s *Server) targetFromQuery(r *http.Request) (mirror.Target, error) {
	q := r.URL.Query()
	if q.Get("hf_path") == "" {
		return mirror.Target{}, errMissingHFPath
	}
	return s.service.Target(q.Get("domain"), q.Get("hf_path"), q.Get("revision"))
}

var errMissingHFPath = errors.New("missing hf_path query parameter")

// statusFor maps a service error to the HTTP status and message returned to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMissingHFPath),
		errors.Is(err, mirror.ErrInvalidRepoPath),
		errors.Is(err, mirror.ErrInvalidDomain),
		errors.Is(err, mirror.ErrInvalidRevision):
		return http.StatusBadRequest, err.Error()
	case fetcher.IsNotFound(err):
		return http.StatusNotFound, "Repository not found on the mirror"
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable, "Server is shutting down"
	default:
		return http.StatusInternalServerError, FetchFailedMessage
	}
}

func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	status, msg := statusFor(err)
	s.logger.Warn(action, logging.Field{Key: "status", Value: status}, logging.Field{Key: "error", Value: err})
	writeError(w, status, msg)
}

// --- HTTP handlers ---

// handleDownloadScript generates and returns the download script.
//
// @Summary Generate a download script
// @Description Scrapes the mirror listing of hf_path and returns a bash script that downloads every file with wget.
// @Tags scripts
// @Produce application/x-sh
// @Param hf_path query string true "Repository path, e.g. openai-community/gpt2 or datasets/owner/name"
// @Param domain query string false "Mirror domain" default(hf-mirror.com)
// @Param revision query string false "Branch, tag or commit" default(main)
// @Success 200 {file} file "dl.sh"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router / [get]
func (s *Server) handleDownloadScript(w http.ResponseWriter, r *http.Request) {
	t, err := s.targetFromQuery(r)
	if err != nil {
		s.fail(w, "parsing download request", err)
		return
	}

	sc, err := s.service.Generate(r.Context(), t)
	if err != nil {
		s.fail(w, "generating script", err)
		return
	}

	s.logger.Info("generated script", logging.Field{Key: "target", Value: t.String()}, logging.Field{Key: "script_id", Value: sc.ID}, logging.Field{Key: "links", Value: len(sc.Links)})
	s.serveScript(w, r, sc.ID)
}

// handleGetScript serves a script generated earlier, e.g. by a websocket job.
//
// @Summary Download a generated script
// @Tags scripts
// @Produce application/x-sh
// @Param scriptID path string true "Script ID"
// @Success 200 {file} file "dl.sh"
// @Failure 404 {object} ErrorResponse
// @Router /scripts/{scriptID} [get]
func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	s.serveScript(w, r, chi.URLParam(r, "scriptID"))
}

// @Summary List generated scripts
// @Tags scripts
// @Produce json
// @Success 200 {object} ScriptsResponse
// @Router /scripts [get]
func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	files := s.service.Store().List()
	s.logger.Info("listed scripts", logging.Field{Key: "count", Value: len(files)})
	writeJSON(w, http.StatusOK, ScriptsResponse{Scripts: files})
}

// @Summary Delete a generated script
// @Tags scripts
// @Param scriptID path string true "Script ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /scripts/{scriptID} [delete]
func (s *Server) handleDeleteScript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scriptID")
	if err := s.service.Store().Remove(id); err != nil {
		if errors.Is(err, script.ErrNotFound) {
			writeError(w, http.StatusNotFound, "script not found")
			return
		}
		s.logger.Warn("removing script", logging.Field{Key: "script_id", Value: id}, logging.Field{Key: "error", Value: err})
		writeError(w, http.StatusInternalServerError, "could not remove script")
		return
	}
	s.logger.Info("removed script", logging.Field{Key: "script_id", Value: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveScript(w http.ResponseWriter, r *http.Request, id string) {
	f, err := s.service.Store().Open(id)
	if err != nil {
		if errors.Is(err, script.ErrNotFound) {
			writeError(w, http.StatusNotFound, "script not found")
			return
		}
		s.logger.Warn("opening script", logging.Field{Key: "script_id", Value: id}, logging.Field{Key: "error", Value: err})
		writeError(w, http.StatusInternalServerError, "could not read script")
		return
	}
	defer f.Close()

	var modTime time.Time
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", "application/x-sh")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", script.FileName))
	http.ServeContent(w, r, script.FileName, modTime, f)
}

// handleListLinks returns the extracted links without rendering a script.
//
// @Summary List download links
// @Tags scripts
// @Produce json
// @Param hf_path query string true "Repository path"
// @Param domain query string false "Mirror domain" default(hf-mirror.com)
// @Param revision query string false "Branch, tag or commit" default(main)
// @Success 200 {object} LinksResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links [get]
func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	t, err := s.targetFromQuery(r)
	if err != nil {
		s.fail(w, "parsing links request", err)
		return
	}

	links, err := s.service.Links(r.Context(), t)
	if err != nil {
		s.fail(w, "listing links", err)
		return
	}

	s.logger.Info("listed links", logging.Field{Key: "target", Value: t.String()}, logging.Field{Key: "count", Value: len(links)})
	writeJSON(w, http.StatusOK, LinksResponse{
		HFPath:   t.RepoPath,
		Domain:   t.Domain,
		Revision: t.Revision,
		Links:    links,
	})
}

// Jobs (REST)

// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.service.GetJob(jobID)
	if err != nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.logger.Info("got job", logging.Field{Key: "job_id", Value: job.ID})
	writeJSON(w, http.StatusOK, job)
}

// @Summary Cancel a job
// @Tags jobs
// @Param jobID path string true "Job ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := s.service.GetJob(jobID); err != nil {
		s.logger.Warn("canceling job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.service.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	w.WriteHeader(http.StatusNoContent)
}

// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} JobsResponse
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.service.ListJobs()
	s.logger.Info("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})
}

// @Summary Health probe
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// WebSockets

// handleGenerateWS runs a generate job and streams its events. The result
// event carries the script text and its id for /scripts/{scriptID}.
func (s *Server) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	t, err := s.targetFromQuery(r)
	if err != nil {
		s.fail(w, "parsing websocket request", err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()

	job, err := s.service.StartGenerateJob(ctx, t)
	if err != nil {
		s.logger.Warn("starting generate job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started generate job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "target", Value: t.String()})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.service.CancelJob(job.ID)
			for range job.Events {
			}
			return
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
