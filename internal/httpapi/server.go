// Package httpapi exposes the registry and the Object Store over HTTP.
//
// Responses use the envelope {"result": ...}; failures use
// {"message": ...} with a status derived from the error kind.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/auth"
	"github.com/mesh-intelligence/vellum/internal/objects"
	"github.com/mesh-intelligence/vellum/internal/registry"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Config wires the server's collaborators.
type Config struct {
	Registry *registry.Registry
	Objects  *objects.Service
	Auth     *auth.Authority

	// Health reports backing store reachability; nil means always healthy.
	Health func(ctx context.Context) error

	// Metrics receives the HTTP instruments and is served on /metrics.
	// Nil means a fresh registry.
	Metrics *prometheus.Registry

	Logger *zap.Logger
}

type server struct {
	registry *registry.Registry
	objects  *objects.Service
	health   func(ctx context.Context) error
	log      *zap.Logger
	fail     func(w http.ResponseWriter, r *http.Request, err error)
}

// New returns the HTTP handler.
func New(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &server{
		registry: cfg.Registry,
		objects:  cfg.Objects,
		health:   cfg.Health,
		log:      log,
		fail:     errorWriter(log),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument(newMetrics(reg), log))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Use(cfg.Auth.Middleware(s.fail))
		api.Use(auth.RequireTier(types.TierBasic, s.fail))
		pro := auth.RequireTier(types.TierPro, s.fail)

		api.Route("/collections", func(c chi.Router) {
			c.Post("/", s.createCollection)
			c.Get("/", s.listCollections)
			c.Get("/handle/{handle}", s.getCollectionByHandle)
			c.Get("/{id}", s.getCollection)
			c.Put("/{id}", s.updateCollection)
		})
		api.Route("/schemas", func(sc chi.Router) {
			sc.Post("/", s.createSchema)
			sc.Get("/", s.listSchemas)
			sc.Get("/handle/{handle}", s.getSchemaByHandle)
			sc.Get("/{id}", s.getSchema)
			sc.Put("/{id}", s.updateSchema)
			sc.With(pro).Delete("/{id}", s.deleteSchema)
		})
		api.Route("/objects/{collection}/{schema}", func(o chi.Router) {
			o.Post("/", s.createObject)
			o.Get("/", s.listObjects)
			o.Get("/handle/{handle}", s.getObjectByHandle)
			o.Get("/{id}", s.getObject)
			o.Put("/{id}", s.updateObject)
			o.With(pro).Delete("/{id}", s.deleteObject)
		})
		api.Get("/forms/{collection}/{schema}", s.form)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, types.NotFound("route", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.log, http.StatusMethodNotAllowed, errorEnvelope{Message: "method not allowed"})
	})
	return r
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, s.log, http.StatusServiceUnavailable, errorEnvelope{Message: "unavailable"})
			return
		}
	}
	writeResult(w, s.log, http.StatusOK, "ok")
}

// tenant returns the TenantContext the auth middleware stored.
func tenant(r *http.Request) types.TenantContext {
	tc, _ := auth.FromContext(r.Context())
	return tc
}

func objectMeta(r *http.Request) types.ObjectMeta {
	return types.ObjectMeta{
		CollectionHandle: chi.URLParam(r, "collection"),
		SchemaHandle:     chi.URLParam(r, "schema"),
	}
}
