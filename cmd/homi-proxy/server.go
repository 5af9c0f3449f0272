package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/homi-client/pkg/client"
	"github.com/Sternrassler/homi-client/pkg/filter"
	"github.com/Sternrassler/homi-client/pkg/listing"
	"github.com/Sternrassler/homi-client/pkg/metrics"
)

// resources maps the public resource name to the upstream path.
var resources = map[string]string{
	"professionals": listing.ResourceProfessionals,
	"jobs":          listing.ResourceJobs,
}

// forwardedHeaders are copied from the upstream response.
var forwardedHeaders = []string{"Content-Type", "ETag", "Cache-Control", "X-Cache"}

type server struct {
	client   *client.Client
	redis    *redis.Client
	pageSize int
	timeout  time.Duration
	logger   zerolog.Logger
}

// routes builds the proxy router. ratePerMinute limits requests per client IP.
func (s *server) routes(ratePerMinute int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(s.redis))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(ratePerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Get("/{resource}", s.listHandler)
		r.Delete("/{resource}/cache", s.invalidateHandler)
	})
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "OK")
	}
}

// listHandler normalizes the filter query so equivalent filters share one
// upstream request and cache entry, then forwards it.
func (s *server) listHandler(w http.ResponseWriter, r *http.Request) {
	path, ok := resources[chi.URLParam(r, "resource")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}

	state, page, limit, err := filter.FromQuery(r.URL.Query(), s.pageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit = min(limit, filter.MaxLimit)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	resp, err := s.client.Get(ctx, path, state.Query(page, limit))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, client.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		s.logger.Warn().
			Err(err).
			Str("resource", path).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Upstream request failed")
		writeError(w, status, "upstream request failed")
		return
	}
	defer resp.Body.Close()

	for _, h := range forwardedHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func (s *server) invalidateHandler(w http.ResponseWriter, r *http.Request) {
	path, ok := resources[chi.URLParam(r, "resource")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	if s.client.Cache() == nil {
		writeError(w, http.StatusConflict, "cache disabled")
		return
	}

	n, err := s.client.Cache().InvalidateResource(r.Context(), path)
	if err != nil {
		s.logger.Error().Err(err).Str("resource", path).Msg("Cache invalidation failed")
		writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	s.logger.Info().Str("resource", path).Int("deleted", n).Msg("Cache invalidated")
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
