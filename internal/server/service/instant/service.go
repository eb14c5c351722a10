package instant

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plainq/stamp/internal/server/config"
	"github.com/plainq/stamp/internal/server/telemetry"
	"github.com/plainq/stamp/timestamp"
)

// Service exposes the timestamp codec and calendar arithmetic over HTTP.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	router   chi.Router
	clock    timestamp.Clock
	observer telemetry.Observer
}

// NewService creates a new instant service.
func NewService(cfg *config.Config, logger *slog.Logger, clock timestamp.Clock, observer telemetry.Observer) *Service {
	s := Service{
		cfg:      cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		clock:    clock,
		observer: observer,
	}

	s.router.Route("/", func(r chi.Router) {
		r.Get("/now", s.nowHandler)
		r.Get("/{millis}", s.millisHandler)
		r.Post("/parse", s.parseHandler)
		r.Post("/fields", s.fieldsHandler)
		r.Post("/layout", s.layoutHandler)
		r.Post("/add", s.addHandler)
	})

	return &s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }
