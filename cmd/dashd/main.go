package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/bt-lms/dashcore/internal/api/http"
	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/config"
	"github.com/bt-lms/dashcore/internal/db"
	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/session"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- cache DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.CacheDriver), cfg.CacheDSN)
	cancel()
	if err != nil {
		log.Fatalf("cache db open failed: %v", err)
	}
	cache := snapshot.NewSQLCache(dbh)

	// --- backend client ---
	sess := backend.NewSession()
	be := backend.NewHTTPClient(cfg.BackendBaseURL, cfg.RequestTimeout, sess)

	loader := snapshot.NewLoader(be, cache)
	if ok, err := loader.RestoreFromCache(context.Background()); err != nil {
		log.Printf("cache restore failed: %v", err)
	} else if ok {
		log.Printf("serving from cached snapshot until first live fetch")
	}

	// first live fetch in the background; the cached snapshot (if any)
	// keeps the facade responsive meanwhile
	go func() {
		if _, err := loader.Refresh(context.Background()); err != nil {
			log.Printf("initial refresh: %v", err)
		}
	}()
	if cfg.RefreshInterval > 0 {
		go func() {
			t := time.NewTicker(cfg.RefreshInterval)
			defer t.Stop()
			for range t.C {
				if _, err := loader.Refresh(context.Background()); err != nil {
					log.Printf("periodic refresh: %v", err)
				}
			}
		}()
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Loader:        loader,
		Backend:       be,
		Client:        be,
		Cache:         cache,
		Sessions:      session.NewManager(),
		Grader:        grading.NewGrader(be),
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := loader.Index(); !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (backend=%s, cache=%s)", cfg.HTTPAddr, cfg.BackendBaseURL, cfg.CacheDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
