package server

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/audit"
	"github.com/strefethen/home-hub-go/internal/auth"
	"github.com/strefethen/home-hub-go/internal/config"
	"github.com/strefethen/home-hub-go/internal/db"
	"github.com/strefethen/home-hub-go/internal/discovery"
	"github.com/strefethen/home-hub-go/internal/events"
	"github.com/strefethen/home-hub-go/internal/shark"
	"github.com/strefethen/home-hub-go/internal/sonos"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// Options controls server wiring.
type Options struct {
	// DisableShark skips the cloud sign-in and vacuum routes (for tests).
	DisableShark bool
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config, options Options) (http.Handler, func(context.Context) error, error) {
	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes) // Handle trailing slashes like Node.js
	router.Use(requestLoggerMiddleware)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)
	router.Use(auth.Middleware(cfg))

	registerHealthRoutes(router)
	auth.RegisterRoutes(router, cfg)

	hub := events.NewHub(nil)
	events.RegisterRoutes(router, hub)

	auditService := audit.NewService(dbPair, cfg.AuditRetentionDays, nil)
	audit.RegisterRoutes(router, auditService)
	auditService.StartPruneJob()

	soapClient := soap.NewClient(time.Duration(cfg.SonosTimeoutMs) * time.Millisecond)
	directory := discovery.NewDirectory(cfg.StaticDeviceIPs, nil)
	sonosService := sonos.NewService(
		directory,
		soapClient,
		time.Duration(cfg.DiscoveryTimeoutMs)*time.Millisecond,
		sonos.WithRecorder(auditService),
		sonos.WithPublisher(hub),
	)
	sonos.RegisterRoutes(router, sonosService)

	var refresher *shark.Refresher
	if !options.DisableShark && cfg.SharkUser != "" {
		region, err := shark.ParseRegion(cfg.SharkRegion)
		if err != nil {
			return nil, nil, err
		}
		sharkClient := shark.NewClient(region, cfg.SharkUser, cfg.SharkPassword, nil)

		signInCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := sharkClient.SignIn(signInCtx); err != nil {
			// Keep serving speakers; the refresher retries the session later.
			log.Printf("ERROR: shark sign-in failed: %v", err)
		}
		cancel()

		refresher = shark.NewRefresher(sharkClient, auditService, nil)
		if err := refresher.Start(); err != nil {
			return nil, nil, err
		}
		shark.RegisterRoutes(router, sharkClient, auditService, hub)
	}

	auditService.Record(audit.WriteEventInput{
		Type:    audit.EventSystemStartup,
		Message: "home hub started",
	})

	shutdown := func(ctx context.Context) error {
		if refresher != nil {
			refresher.Stop()
		}
		auditService.StopPruneJob()
		hub.Close()
		if ctx == nil {
			ctx = context.Background()
		}
		return dbPair.Close()
	}

	return router, shutdown, nil
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "home-hub",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
