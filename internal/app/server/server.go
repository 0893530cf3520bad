package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/assignment"
	"peerpulse/internal/domain/audit"
	"peerpulse/internal/domain/auth"
	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/interactions"
	"peerpulse/internal/domain/notifications"
	"peerpulse/internal/domain/org"
	"peerpulse/internal/domain/ranking"
	"peerpulse/internal/domain/reports"
	"peerpulse/internal/platform/config"
	"peerpulse/internal/platform/db"
	"peerpulse/internal/platform/email"
	"peerpulse/internal/platform/jobs"
	"peerpulse/internal/platform/metrics"
	"peerpulse/internal/transport/http/api"
	authhandler "peerpulse/internal/transport/http/handlers/auth"
	cycleshandler "peerpulse/internal/transport/http/handlers/cycles"
	interactionshandler "peerpulse/internal/transport/http/handlers/interactions"
	notificationshandler "peerpulse/internal/transport/http/handlers/notifications"
	orghandler "peerpulse/internal/transport/http/handlers/org"
	rankinghandler "peerpulse/internal/transport/http/handlers/ranking"
	requestshandler "peerpulse/internal/transport/http/handlers/requests"
	"peerpulse/internal/transport/http/middleware"
	"peerpulse/internal/transport/http/shared"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()

	authStore := auth.NewStore(pool)
	orgSvc := org.NewService(org.NewStore(pool))
	interactionSvc := interactions.NewService(interactions.NewStore(pool))
	rankingSvc := ranking.NewService(ranking.NewStore(pool), interactionSvc, orgSvc, collector)
	cycleSvc := cycles.NewService(cycles.NewStore(pool), collector)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notifySvc.DefaultFrom = cfg.EmailFrom
	assignSvc := assignment.NewService(assignment.NewStore(pool), rankingSvc, orgSvc, cycleSvc, notifySvc, collector)
	reportSvc := reports.NewService(pool, cycleSvc)
	auditSvc := audit.New(pool)

	background := jobs.New(pool, cfg, rankingSvc, cycleSvc, assignSvc)
	background.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)

		orghandler.NewHandler(orgSvc, authStore).RegisterRoutes(r)
		interactionshandler.NewHandler(interactionSvc, authStore).RegisterRoutes(r)
		rankinghandler.NewHandler(rankingSvc, authStore).RegisterRoutes(r)
		cycleshandler.NewHandler(cycleSvc, assignSvc, reportSvc, auditSvc, authStore).RegisterRoutes(r)
		requestshandler.NewHandler(assignSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, authStore).RegisterRoutes(r)

		r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Get("/audit", func(w http.ResponseWriter, r *http.Request) {
			page := shared.ParsePagination(r, 50, 500)
			events, err := auditSvc.List(r.Context(), r.URL.Query().Get("action"), r.URL.Query().Get("entityType"), page.Limit, page.Offset)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
				return
			}
			api.Success(w, events, middleware.GetRequestID(r.Context()))
		})

		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Get("/status", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	log.Printf("peerpulse server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
