// Package httpapi exposes the journal over REST. Handlers stay thin: decode,
// call the service, encode. All authorization derives from the bearer token;
// owner scoping itself lives in the service and repository layers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeos/internal/logging"
	"lifeos/internal/server/models"
	"lifeos/internal/server/services"
)

// LogAPI is the slice of the log service the handlers need.
type LogAPI interface {
	Create(ctx context.Context, userID string, req services.CreateLogRequest) (*models.LogEntry, error)
	List(ctx context.Context, userID string, filter models.LogFilter, limit, offset int) ([]*models.LogEntry, error)
	Update(ctx context.Context, userID, id string, req services.UpdateLogRequest) (*models.LogEntry, error)
	Delete(ctx context.Context, userID, id string) (*models.LogEntry, error)
	Stats(ctx context.Context, userID string) ([]models.StatusCount, error)
	Search(ctx context.Context, userID, query string) ([]*models.LogEntry, error)
}

// ArchiveAPI hands out presigned archive URLs.
type ArchiveAPI interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
	PresignDownload(ctx context.Context, userID, key string) (string, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	logs            LogAPI
	archive         ArchiveAPI
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewServer(address string, l logging.Logger, logs LogAPI, archive ArchiveAPI, secretKey string, shutdownTimeout time.Duration) *Server {
	return &Server{
		address:         address,
		logger:          l.With("module", "http_server"),
		logs:            logs,
		archive:         archive,
		jwtSecret:       []byte(secretKey),
		shutdownTimeout: shutdownTimeout,
	}
}

// Router builds the route table. Split out of Run so tests can drive it with
// httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/logs", func(r chi.Router) {
			r.Post("/", s.handleCreateLog)
			r.Get("/", s.handleListLogs)
			r.Get("/stats", s.handleStats)
			r.Get("/search", s.handleSearch)
			r.Put("/{id}", s.handleUpdateLog)
			r.Delete("/{id}", s.handleDeleteLog)
		})

		r.Route("/archive", func(r chi.Router) {
			r.Post("/upload-url", s.handleArchiveUploadURL)
			r.Get("/download-url", s.handleArchiveDownloadURL)
		})
	})

	return r
}

// Run serves until ctx is canceled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok"})
}
