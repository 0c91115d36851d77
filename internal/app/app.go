// Package app wires repositories and services from the process dependencies.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/erancho/erancho-backend/api/controllers"
	"github.com/erancho/erancho-backend/api/routes"
	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/internal/auth"
	"github.com/erancho/erancho-backend/internal/cron"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reports"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/schedule"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/pkg/auth/session"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/metrics"
	"github.com/erancho/erancho-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps holds what main() must provide. Redis and Registry are optional.
type Deps struct {
	Config   *config.Config
	DB       *db.Client
	Redis    *redis.Client
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Clock    *calendar.Clock // defaults to the configured timezone
	Now      func() time.Time
}

// Services groups the use cases the router and the cron worker need.
type Services struct {
	Audit        *audit.Service
	Auth         auth.Service
	Accounts     accounts.Service
	People       people.Service
	Sectors      sectors.Service
	Reservations reservations.Service
	Windows      *schedule.Service
	Reports      *reports.Service
}

// App is the fully wired application.
type App struct {
	Services Services
	Sessions *session.Manager // nil when Redis is not configured

	deps        Deps
	clock       calendar.Clock
	httpMetrics *metrics.HTTPMetrics
}

// New wires every repository and service.
func New(_ context.Context, deps Deps) (*App, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	var clock calendar.Clock
	if deps.Clock != nil {
		clock = *deps.Clock
	} else {
		loc, err := deps.Config.App.Location()
		if err != nil {
			return nil, err
		}
		clock = calendar.NewClock(loc, deps.Now)
	}
	cfg := deps.Config
	conn := deps.DB.DB()

	var reg prometheus.Registerer
	if deps.Registry != nil {
		reg = deps.Registry
	}
	domainMetrics := metrics.NewDomainMetrics(reg)

	// === Repositories ===
	peopleRepo := people.NewRepository(conn)
	sectorRepo := sectors.NewRepository(conn)
	reservationRepo := reservations.NewRepository(conn)
	auditSvc := audit.NewService(audit.NewRepository(conn), deps.Logger)

	policies := calendar.PoliciesFromConfig(cfg.Windows)

	// === Services ===
	peopleSvc, err := people.NewService(peopleRepo)
	if err != nil {
		return nil, err
	}
	sectorSvc, err := sectors.NewService(sectors.ServiceParams{
		Repo:  sectorRepo,
		Tx:    deps.DB,
		Audit: auditSvc,
		Members: func(tx *gorm.DB) sectors.MemberStore {
			return peopleRepo.WithTx(tx)
		},
	})
	if err != nil {
		return nil, err
	}
	accountSvc, err := accounts.NewService(accounts.ServiceParams{
		People:   peopleRepo,
		Sectors:  sectorRepo,
		Tx:       deps.DB,
		Audit:    auditSvc,
		Password: cfg.Password,
		Logger:   deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	reservationSvc, err := reservations.NewService(reservations.ServiceParams{
		Repo:               reservationRepo,
		People:             peopleRepo,
		Tx:                 deps.DB,
		Audit:              auditSvc,
		Clock:              clock,
		Policies:           policies,
		PreserveAttendance: cfg.Reservations.PreserveAttendance,
		Metrics:            domainMetrics,
		Logger:             deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	windowSvc, err := schedule.NewService(reservationRepo, clock, policies)
	if err != nil {
		return nil, err
	}
	reportSvc, err := reports.NewService(reservationRepo, peopleRepo, sectorRepo)
	if err != nil {
		return nil, err
	}

	var sessions *session.Manager
	authParams := auth.ServiceParams{
		Accounts:  accountSvc,
		People:    peopleRepo,
		JWTConfig: cfg.JWT,
		Metrics:   domainMetrics,
		Now:       deps.Now,
	}
	if deps.Redis != nil {
		sessions, err = session.NewManager(deps.Redis, cfg.JWT)
		if err != nil {
			return nil, fmt.Errorf("session manager: %w", err)
		}
		authParams.SessionManager = sessions
	}
	authSvc, err := auth.NewService(authParams)
	if err != nil {
		return nil, err
	}

	return &App{
		Services: Services{
			Audit:        auditSvc,
			Auth:         authSvc,
			Accounts:     accountSvc,
			People:       peopleSvc,
			Sectors:      sectorSvc,
			Reservations: reservationSvc,
			Windows:      windowSvc,
			Reports:      reportSvc,
		},
		Sessions:    sessions,
		deps:        deps,
		clock:       clock,
		httpMetrics: metrics.NewHTTPMetrics(reg),
	}, nil
}

// Router mounts the HTTP API. Redis-backed middleware is only wired when Redis is.
func (a *App) Router() http.Handler {
	params := routes.Params{
		Config:       a.deps.Config,
		Logger:       a.deps.Logger,
		Clock:        a.clock,
		HTTPMetrics:  a.httpMetrics,
		Ready:        map[string]controllers.Pinger{"database": a.deps.DB},
		Auth:         a.Services.Auth,
		Accounts:     a.Services.Accounts,
		People:       a.Services.People,
		Sectors:      a.Services.Sectors,
		Reservations: a.Services.Reservations,
		Windows:      a.Services.Windows,
		Reports:      a.Services.Reports,
		Audit:        a.Services.Audit,
	}
	if a.deps.Registry != nil {
		params.Gatherer = a.deps.Registry
	}
	if a.deps.Redis != nil {
		params.Ready["redis"] = a.deps.Redis
		params.RateLimiter = a.deps.Redis
		params.Idempotency = a.deps.Redis
	}
	if a.Sessions != nil {
		params.Sessions = a.Sessions
	}
	return routes.NewRouter(params)
}

// CronRegistry builds the maintenance jobs.
func (a *App) CronRegistry() (*cron.Registry, error) {
	sweep, err := cron.NewOrphanSweepJob(cron.OrphanSweepJobParams{
		Logger:  a.deps.Logger,
		Sweeper: a.Services.Reservations,
	})
	if err != nil {
		return nil, err
	}
	summary, err := cron.NewAttendanceSummaryJob(cron.AttendanceSummaryJobParams{
		Logger:  a.deps.Logger,
		Reports: a.Services.Reports,
		Clock:   a.clock,
	})
	if err != nil {
		return nil, err
	}
	registry := cron.NewRegistry()
	for _, job := range []cron.Job{sweep, summary} {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Clock returns the clock deciding "today".
func (a *App) Clock() calendar.Clock {
	return a.clock
}
