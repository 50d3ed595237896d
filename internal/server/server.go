// Package server exposes the floorplanning pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	GET  /version       build information
//	POST /v1/optimize   anneal a module list and return the best placement
//	POST /v1/pack       pack an explicit polish expression
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xianaiyang/vlsiFloorplan/pkg/buildinfo"
	"github.com/xianaiyang/vlsiFloorplan/pkg/config"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      *config.Config
	logger   *log.Logger
	shutdown time.Duration
}

// New creates a server. cfg supplies the request defaults and limits.
func New(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, cfg: cfg, logger: logger, shutdown: 10 * time.Second}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Post("/pack", s.handlePack)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// optimizeRequest is the body of POST /v1/optimize. Option fields left out
// of the body keep the server's configured defaults.
type optimizeRequest struct {
	Modules []module.Module `json:"modules"`
	pipeline.Options
}

// optimizeResponse is the body returned by POST /v1/optimize. Artifacts are
// base64 encoded by encoding/json.
type optimizeResponse struct {
	RunID             string            `json:"run_id"`
	Area              int64             `json:"area"`
	InitialArea       int64             `json:"initial_area"`
	Expression        string            `json:"expression"`
	InitialExpression string            `json:"initial_expression"`
	Modules           []module.Module   `json:"modules"`
	Overlap           bool              `json:"overlap"`
	Utilization       float64           `json:"utilization"`
	Stages            int               `json:"stages"`
	Trials            int               `json:"trials"`
	Accepted          int               `json:"accepted"`
	Improvements      int               `json:"improvements"`
	Cached            bool              `json:"cached"`
	DurationMS        int64             `json:"duration_ms"`
	Artifacts         map[string][]byte `json:"artifacts,omitempty"`
	InitialArtifacts  map[string][]byte `json:"initial_artifacts,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req := optimizeRequest{Options: s.cfg.Options()}
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Modules) > s.cfg.Server.MaxModules {
		writeError(w, fperrors.New(fperrors.ErrCodeInvalidInput,
			"too many modules: %d (limit %d)", len(req.Modules), s.cfg.Server.MaxModules))
		return
	}

	ctx := r.Context()
	if s.cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
	}

	req.Options.Logger = s.logger.With("request", middleware.GetReqID(r.Context()))
	result, err := s.runner.Execute(ctx, req.Modules, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	run := result.Run
	writeJSON(w, http.StatusOK, optimizeResponse{
		RunID:             result.RunID,
		Area:              run.Area,
		InitialArea:       run.InitialArea,
		Expression:        run.Expression,
		InitialExpression: run.InitialExpression,
		Modules:           run.Modules,
		Overlap:           module.CheckOverlap(run.Modules),
		Utilization:       result.Utilization(),
		Stages:            run.Stages,
		Trials:            run.Trials,
		Accepted:          run.Accepted,
		Improvements:      run.Improvements,
		Cached:            result.CacheInfo.OptimizeHit,
		DurationMS:        (result.Stats.OptimizeTime + result.Stats.RenderTime).Milliseconds(),
		Artifacts:         result.Artifacts,
		InitialArtifacts:  result.InitialArtifacts,
	})
}

// packRequest is the body of POST /v1/pack.
type packRequest struct {
	Modules    []module.Module `json:"modules"`
	Expression string          `json:"expression"`
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Modules) > s.cfg.Server.MaxModules {
		writeError(w, fperrors.New(fperrors.ErrCodeInvalidInput,
			"too many modules: %d (limit %d)", len(req.Modules), s.cfg.Server.MaxModules))
		return
	}
	p, err := pipeline.Evaluate(req.Modules, req.Expression)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a JSON body into v. On failure it writes a 400 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, fperrors.Wrap(fperrors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(fperrors.GetCode(err))
	body.Error.Message = fperrors.UserMessage(err)
	if body.Error.Code == "" {
		body.Error.Code = string(fperrors.ErrCodeInternal)
		body.Error.Message = err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		body.Error.Code = string(fperrors.ErrCodeTimeout)
	}
	writeJSON(w, StatusCode(err), body)
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded), fperrors.Is(err, fperrors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	case fperrors.IsInvalid(err):
		return http.StatusBadRequest
	case fperrors.Is(err, fperrors.ErrCodeNotFound), fperrors.Is(err, fperrors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case fperrors.Is(err, fperrors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
