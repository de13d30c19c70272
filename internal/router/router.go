package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/copilot-dashboard/internal/handlers"
	"github.com/GregMSThompson/copilot-dashboard/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	sm := middleware.NewSessionMiddleware(deps.Sessions, deps.ResponseHandler)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	dh := handlers.NewDashboardHandlers(deps)
	mh := handlers.NewMetricsHandlers(deps)
	ch := handlers.NewChatHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(sm.SessionMiddleware)
		r.Mount("/widgets", dh.WidgetRoutes())
		r.Get("/session", dh.GetSession)
	})
	r.Get("/metrics", mh.GetMetrics)
	r.Post("/chat", ch.Chat)
	return r
}
