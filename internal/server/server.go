// Package server is the HTTP boundary: thin JSON handlers over the chat
// pass-through, the optimize pipeline, and the export pipeline.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/export"
	"github.com/explohq/chatprd/internal/metrics"
	"github.com/explohq/chatprd/internal/prd"
)

type Handler struct {
	chat      prd.Completer
	chatModel string
	optimizer *prd.Optimizer
	exporter  *export.Exporter
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(chat prd.Completer, chatModel string, optimizer *prd.Optimizer, exporter *export.Exporter, log zerolog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		chat:      chat,
		chatModel: chatModel,
		optimizer: optimizer,
		exporter:  exporter,
		log:       log.With().Str("component", "http").Logger(),
		metrics:   m,
	}
}

// Router assembles the chi router. metricsHandler serves the Prometheus
// registry; pass nil to skip the endpoint (tests do).
func (h *Handler) Router(metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         3600,
	}))
	r.Use(h.observe)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if metricsHandler != nil {
		r.Method("GET", "/metrics", metricsHandler)
	}

	r.Post("/chat", h.handleChat)
	r.Post("/optimize", h.handleOptimize)
	r.Post("/export", h.handleExport)

	return r
}

// observe records per-route request metrics and logs completions.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		h.metrics.RecordHTTPRequest(route, strconv.Itoa(ww.Status()), time.Since(start))
		h.log.Debug().Str("method", r.Method).Str("route", route).
			Int("status", ww.Status()).Dur("duration", time.Since(start)).Msg("request")
	})
}
