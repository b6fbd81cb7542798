package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"okrplan/internal/domain/allocation"
	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/checkin"
	"okrplan/internal/domain/importer"
	"okrplan/internal/domain/match"
	"okrplan/internal/domain/okr"
	"okrplan/internal/domain/reports"
	"okrplan/internal/domain/task"
	"okrplan/internal/domain/team"
	"okrplan/internal/domain/timeoff"
	"okrplan/internal/domain/utilization"
	"okrplan/internal/platform/config"
	"okrplan/internal/platform/db"
	audithandler "okrplan/internal/transport/http/handlers/audit"
	authhandler "okrplan/internal/transport/http/handlers/auth"
	checkinhandler "okrplan/internal/transport/http/handlers/checkin"
	importshandler "okrplan/internal/transport/http/handlers/imports"
	okrhandler "okrplan/internal/transport/http/handlers/okr"
	reportshandler "okrplan/internal/transport/http/handlers/reports"
	taskhandler "okrplan/internal/transport/http/handlers/task"
	teamhandler "okrplan/internal/transport/http/handlers/team"
	timeoffhandler "okrplan/internal/transport/http/handlers/timeoff"
	utilizationhandler "okrplan/internal/transport/http/handlers/utilization"
	"okrplan/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Router http.Handler
}

func (a *App) Close() {
	a.Pool.Close()
}

// New wires every domain service and handler against one connection pool. It
// runs migrations and seeding per config before returning.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	nicknames, err := loadNicknames(cfg.NicknamesFile)
	if err != nil {
		pool.Close()
		return nil, err
	}

	app := &App{Config: cfg, Pool: pool}
	app.Router = buildRouter(cfg, pool, nicknames)
	return app, nil
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, nicknames map[string]string) http.Handler {
	auditSvc := audit.New(pool)
	teamSvc := team.NewService(pool)
	okrSvc := okr.NewService(okr.NewStore(pool))
	checkinSvc := checkin.NewService(pool)
	timeoffSvc := timeoff.NewService(pool)
	allocationSvc := allocation.NewService(pool)
	taskSvc := task.NewService(pool)
	utilizationSvc := utilization.NewService(pool)
	reportsSvc := reports.NewService(pool, utilizationSvc)
	importerSvc := importer.NewService(pool, match.New(nicknames), nil)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.MaxBody(cfg.MaxBodyBytes))

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
		authhandler.NewHandler(pool, cfg.JWTSecret).RegisterRoutes(r)
		teamhandler.NewHandler(teamSvc, auditSvc).RegisterRoutes(r)
		okrhandler.NewHandler(okrSvc, auditSvc).RegisterRoutes(r)
		checkinhandler.NewHandler(checkinSvc, auditSvc).RegisterRoutes(r)
		timeoffhandler.NewHandler(timeoffSvc, allocationSvc, auditSvc).RegisterRoutes(r)
		taskhandler.NewHandler(taskSvc, auditSvc).RegisterRoutes(r)
		utilizationhandler.NewHandler(utilizationSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
		importshandler.NewHandler(importerSvc, auditSvc, cfg.CalendarFeedURL).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return router
}

// loadNicknames reads the alias table from a JSON object file. No file
// configured means exact and token matching only.
func loadNicknames(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nicknames map[string]string
	if err := json.Unmarshal(data, &nicknames); err != nil {
		return nil, err
	}
	return nicknames, nil
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("okrplan server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
