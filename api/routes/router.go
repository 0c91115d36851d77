package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erancho/erancho-backend/api/controllers"
	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/internal/auth"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reports"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/schedule"
	"github.com/erancho/erancho-backend/internal/sectors"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/auth/session"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/metrics"
	"github.com/erancho/erancho-backend/pkg/redis"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type windowService interface {
	Own(ctx context.Context, actor pkgAuth.Principal) (*schedule.OwnWindow, error)
	Policy(name string) (*schedule.WindowView, error)
}

type reportService interface {
	Daily(ctx context.Context, date calendar.Date) (*reports.DailyReport, error)
	SectorDay(ctx context.Context, actor pkgAuth.Principal, sectorID int64, date calendar.Date) (*reports.SectorDay, error)
}

type auditService interface {
	List(ctx context.Context, params audit.ListParams) (*audit.Page, error)
}

// Params carries everything the router mounts. Sessions, RateLimiter and
// Idempotency stay nil when Redis is not configured.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Clock       calendar.Clock
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Ready       map[string]controllers.Pinger

	Sessions    session.AccessSessionChecker
	RateLimiter rateLimiterStore
	Idempotency redis.IdempotencyStore

	Auth         auth.Service
	Accounts     accounts.Service
	People       people.Service
	Sectors      sectors.Service
	Reservations reservations.Service
	Windows      windowService
	Reports      reportService
	Audit        auditService
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginCPFLimit,
	)
	idempotent := middleware.Idempotency(p.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Ready, logg))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.MeGet(p.People, logg))
			r.Put("/", controllers.MeUpdate(p.Accounts, logg))
			r.Get("/window", controllers.MeWindow(p.Windows, logg))
			r.Get("/reservations", controllers.MeReservations(p.Reservations, logg))
			r.Put("/reservations", controllers.MeReplaceReservations(p.Reservations, logg))
			r.Delete("/reservations/{date}", controllers.MeCancelReservation(p.Reservations, logg))
		})

		r.Get("/sectors", controllers.SectorsList(p.Sectors, logg))

		// supervisors and admins; sector scoping happens in the services
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/windows/{policy}", controllers.WindowsGet(p.Windows, logg))
			r.Get("/people", controllers.PeopleList(p.People, logg))
			r.Put("/people/{id}/reservations", controllers.ReservationsReplace(p.Reservations, logg))
			r.Get("/reservations", controllers.ReservationsList(p.Reservations, logg))
			r.With(idempotent).Patch("/reservations/toggle", controllers.ReservationsToggle(p.Reservations, logg))
			r.Patch("/reservations/{id}", controllers.ReservationsMarkAttendance(p.Reservations, logg))
			r.Get("/reports/sector", controllers.ReportsSector(p.Reports, p.Clock, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/sectors", controllers.SectorsCreate(p.Sectors, logg))
			r.Put("/sectors/{id}", controllers.SectorsRename(p.Sectors, logg))
			r.Delete("/sectors/{id}", controllers.SectorsDelete(p.Sectors, logg))
			r.Get("/people/pending", controllers.PeoplePending(p.People, logg))
			r.With(idempotent).Post("/people/{id}/approve", controllers.PeopleApprove(p.Accounts, logg))
			r.Delete("/people/{id}", controllers.PeopleDeny(p.Accounts, logg))
			r.With(idempotent).Post("/reservations/special", controllers.ReservationsAddSpecial(p.Reservations, logg))
			r.Get("/reports/daily", controllers.ReportsDaily(p.Reports, p.Clock, logg))
			r.Get("/reports/daily/print", controllers.ReportsDailyPrint(p.Reports, p.Clock, logg))
			r.Get("/audit", controllers.AuditList(p.Audit, logg))
		})
	})

	return r
}
