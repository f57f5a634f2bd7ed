package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookbrain/internal/handlers"
	"bookbrain/internal/observability/metrics"
	"bookbrain/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService      service.QAService
	LibraryService service.LibraryService
	// Index and DB back the health check. Either may be nil.
	Index      handlers.CollectionChecker
	DB         handlers.Pinger
	Collection string
	// Metrics is optional. When set, requests are measured and /metrics is served.
	Metrics *metrics.Metrics
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	askHandler := handlers.NewAskHandler(deps.QAService)
	searchHandler := handlers.NewSearchHandler(deps.QAService)
	feedbackHandler := handlers.NewFeedbackHandler(deps.QAService)
	documentHandler := handlers.NewDocumentHandler(deps.LibraryService)
	documentListHandler := handlers.NewDocumentListHandler(deps.LibraryService)
	studyHandler := handlers.NewStudyHandler(deps.LibraryService)
	versionsHandler := handlers.NewVersionsHandler(deps.LibraryService)
	healthHandler := handlers.NewHealthHandler(deps.Index, deps.DB, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodGet, "/feedback", feedbackHandler)
			r.Method(http.MethodPost, "/feedback", feedbackHandler)

			r.Method(http.MethodGet, "/books", documentListHandler)
			r.Route("/books/{bookID}", func(r chi.Router) {
				r.Method(http.MethodGet, "/document", documentHandler)
				r.Method(http.MethodPut, "/document", documentHandler)
				r.Method(http.MethodPost, "/ask", askHandler)
				r.Method(http.MethodGet, "/search", searchHandler)
				r.Method(http.MethodPost, "/study/{kind}", studyHandler)
				r.Method(http.MethodGet, "/versions/{type}", versionsHandler)
			})
		})
	})

	return r
}
