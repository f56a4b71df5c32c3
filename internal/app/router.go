package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/relocore/relocore/internal/charges"
	"github.com/relocore/relocore/internal/observability"
	"github.com/relocore/relocore/internal/quotations"
	"github.com/relocore/relocore/internal/rates"
	"github.com/relocore/relocore/internal/surveys"
	"github.com/relocore/relocore/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	RatesHandler      *rates.Handler
	ChargesHandler    *charges.Handler
	SurveysHandler    *surveys.Handler
	QuotationsHandler *quotations.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Relocore defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.RatesHandler != nil {
			api.Route("/rates", params.RatesHandler.MountRoutes)
		}
		if params.ChargesHandler != nil {
			api.Route("/charges", params.ChargesHandler.MountRoutes)
		}
		if params.SurveysHandler != nil {
			api.Route("/surveys", params.SurveysHandler.MountRoutes)
		}
		if params.QuotationsHandler != nil {
			api.Route("/quotations", params.QuotationsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
