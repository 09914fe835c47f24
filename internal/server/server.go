package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/whisperctl/internal/config"
	"github.com/example/whisperctl/internal/transcribe"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Transcriber runs the transcription pipeline for one audio file.
type Transcriber interface {
	Run(ctx context.Context, audioPath string) transcribe.Document
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxUploadBytes int64
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxUploadBytes: 64 << 20,
		workers:        1,
		requestTimeout: 300 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxUploadBytes sets the maximum accepted audio upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) { o.maxUploadBytes = n }
}

// WithWorkers sets the maximum number of concurrent transcription calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request transcription deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	pipeline Transcriber
	opts     options
	sem      chan struct{} // semaphore for worker pool
	log      *slog.Logger
}

// NewHandler returns an http.Handler that serves /health and POST /transcribe.
func NewHandler(pipeline Transcriber, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		pipeline: pipeline,
		opts:     opts,
		log:      opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/transcribe", h.handleTranscribe)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type transcribeRequest struct {
	Path string `json:"path"`
}

func (h *handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	audioPath, cleanup, err := h.resolveAudioPath(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Acquire a worker slot, honouring context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	doc := h.pipeline.Run(ctx, audioPath)
	durationMS := time.Since(start).Milliseconds()

	if doc.Err != "" {
		h.log.WarnContext(r.Context(), "transcription failed",
			slog.String("path", audioPath),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", doc.Err),
		)
	} else {
		h.log.InfoContext(r.Context(), "transcription complete",
			slog.String("path", audioPath),
			slog.Int64("duration_ms", durationMS),
			slog.Int("segments", len(doc.Segments)),
			slog.String("language", doc.Language),
		)
	}

	// The pipeline folds its failures into the document, mirroring the CLI
	// transcribe behavior: the HTTP status stays 200 and callers inspect the
	// payload.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc.JSON())
}

// resolveAudioPath extracts the audio source from the request: either a JSON
// body naming a local path or a multipart "file" upload spooled to a temp file.
// The body is capped at maxUploadBytes; an over-limit request surfaces as an
// *http.MaxBytesError from the parse.
func (h *handler) resolveAudioPath(w http.ResponseWriter, r *http.Request) (string, func(), error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return "", nil, fmt.Errorf("parse upload: %w", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()

		tmpDir, err := os.MkdirTemp("", "whisperctl-upload-*")
		if err != nil {
			return "", nil, fmt.Errorf("create upload dir: %w", err)
		}
		cleanup := func() { _ = os.RemoveAll(tmpDir) }

		dst := filepath.Join(tmpDir, filepath.Base(header.Filename))
		out, err := os.Create(dst)
		if err != nil {
			cleanup()
			return "", nil, fmt.Errorf("spool upload: %w", err)
		}
		if _, err := io.Copy(out, file); err != nil {
			_ = out.Close()
			cleanup()
			return "", nil, fmt.Errorf("spool upload: %w", err)
		}
		if err := out.Close(); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("spool upload: %w", err)
		}
		return dst, cleanup, nil
	}

	if r.Body == nil {
		return "", nil, errors.New("request body is required")
	}

	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if req.Path == "" {
		return "", nil, errors.New("path field is required")
	}
	return req.Path, nil, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	pipeline        Transcriber
	shutdownTimeout time.Duration
}

func New(cfg config.Config, pipeline Transcriber) *Server {
	return &Server{
		cfg:             cfg,
		pipeline:        pipeline,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	h := NewHandler(s.pipeline,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxUploadBytes(s.cfg.Server.MaxUploadBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}
