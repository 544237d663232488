// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/middleware"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a router. A nil chiMw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, logger zerolog.Logger) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		logger:        logger,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeValidation, "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.AccessLog(router.logger))
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Health is exempt from rate limiting so probes never see 429.
		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			// ========================
			// Catalog
			// ========================
			r.Route("/courses", func(r chi.Router) {
				r.Get("/", router.handler.ListCourses)
				r.Get("/similarity", router.handler.CourseSimilarity)
				r.Post("/upload", router.handler.UploadCourses)
				r.Get("/{institution}/{code}", router.handler.GetCourse)
				r.Get("/{institution}/{code}/similar", router.handler.SimilarCourses)
			})

			r.Route("/programs", func(r chi.Router) {
				r.Get("/", router.handler.ListPrograms)
				r.Post("/upload", router.handler.UploadPrograms)
			})

			// ========================
			// Schedules
			// ========================
			r.Route("/schedules", func(r chi.Router) {
				r.Post("/", router.handler.CreateSchedule)
				r.Post("/upload", router.handler.UploadSchedule)
				r.Get("/{id}", router.handler.GetSchedule)
				r.Delete("/{id}", router.handler.DeleteSchedule)
			})

			// ========================
			// Recommendations
			// ========================
			r.Route("/recommend", func(r chi.Router) {
				r.Post("/programs", router.handler.RecommendPrograms)
				r.Get("/status", router.handler.Status)
				r.Get("/config", router.handler.GetConfig)

				// Expensive operations share a stricter limit.
				r.Group(func(r chi.Router) {
					r.Use(router.chiMiddleware.RateLimitTrain())
					r.Post("/train", router.handler.TriggerTraining)
					r.Post("/embeddings/refresh", router.handler.RefreshEmbeddings)
				})
			})
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
