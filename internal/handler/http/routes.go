package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the router of the document store API.
//
//	GET    /api/ping
//	GET    /api/version
//	GET    /metrics
//	POST   /api/auth/register
//	POST   /api/auth/login
//	GET    /api/users/{userID}/data
//	POST   /api/users/{userID}/data/batch
//	GET    /api/users/{userID}/data/{collection}
//	PUT    /api/users/{userID}/data/{collection}/{id}
//	DELETE /api/users/{userID}/data/{collection}/{id}
func (h *Handler) Init() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer, h.withTraceID, withLogging, h.withMetrics, withGZip)

	router.Get("/metrics", h.metrics.Handler().ServeHTTP)

	router.Route("/api", func(api chi.Router) {
		api.Get("/ping", h.ping)
		api.Get("/version", h.getServerVersion)

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(h.withHashCheck)
			auth.Post("/register", h.register)
			auth.Post("/login", h.login)
		})

		api.Route("/users/{userID}/data", func(data chi.Router) {
			data.Use(h.auth, h.ownerOnly)

			data.Get("/", h.pullAll)
			data.With(h.withHashCheck).Post("/batch", h.commitBatch)
			data.Get("/{collection}", h.listCollection)
			data.With(h.withHashCheck).Put("/{collection}/{id}", h.upsertRecord)
			data.Delete("/{collection}/{id}", h.deleteRecord)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
