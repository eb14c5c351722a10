package record

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plainq/stamp/internal/server/config"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/timestamp"
)

// Service exposes the record storage over HTTP.
type Service struct {
	cfg     *config.Config
	logger  *slog.Logger
	router  chi.Router
	clock   timestamp.Clock
	storage storage.Storage
}

// NewService creates a new record service.
func NewService(cfg *config.Config, logger *slog.Logger, clock timestamp.Clock, storage storage.Storage) *Service {
	s := Service{
		cfg:     cfg,
		logger:  logger,
		router:  chi.NewRouter(),
		clock:   clock,
		storage: storage,
	}

	s.router.Route("/", func(r chi.Router) {
		r.Post("/", s.createRecordHandler)
		r.Get("/", s.listRecordsHandler)
		r.Get("/{id}", s.getRecordHandler)
		r.Get("/{id}/age", s.recordAgeHandler)
		r.Post("/{id}/touch", s.touchRecordHandler)
		r.Delete("/{id}", s.deleteRecordHandler)
	})

	return &s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }
