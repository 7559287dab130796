// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/saf-wrapped/internal/api"
	"github.com/codr1/saf-wrapped/internal/api/wrapped"
	"github.com/codr1/saf-wrapped/internal/config"
	"github.com/codr1/saf-wrapped/internal/ratelimit"
)

func newServer(cfg *config.Config, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	wrapped.InitHandlers(cfg.StatsOptions(), cfg.Upload.MaxBytes)
	registerRoutes(router, limiter.Middleware(cfg.RateLimit.TrustProxy))

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, limit api.Middleware) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/api/v1/wrapped", limit(http.HandlerFunc(wrapped.HandleUpload)))
}
