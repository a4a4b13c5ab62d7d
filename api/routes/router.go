package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wekezahq/coopledger-backend/api/controllers"
	"github.com/wekezahq/coopledger-backend/api/middleware"
	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/internal/funds"
	"github.com/wekezahq/coopledger-backend/internal/ledger"
	"github.com/wekezahq/coopledger-backend/internal/members"
	"github.com/wekezahq/coopledger-backend/internal/projects"
	"github.com/wekezahq/coopledger-backend/internal/stats"
	"github.com/wekezahq/coopledger-backend/pkg/config"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	DB    controllers.Pinger
	Redis controllers.Pinger

	Ledger   ledger.Service
	Funds    funds.Service
	Members  members.Service
	Projects projects.Service
	Stats    stats.Service
	Audit    audit.Repository
	Archive  archive.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.Identity, logg))

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/deposits", controllers.LedgerDeposit(deps.Ledger, logg))
			r.Post("/deposits/{transactionId}/approve", controllers.LedgerApproveDeposit(deps.Ledger, logg))
			r.Put("/deposits/{transactionId}", controllers.LedgerEditDeposit(deps.Ledger, logg))
			r.Post("/expenses", controllers.LedgerExpense(deps.Ledger, logg))
			r.Post("/earnings", controllers.LedgerEarning(deps.Ledger, logg))
			r.Post("/transfers", controllers.LedgerTransfer(deps.Ledger, logg))
			r.Post("/dividends", controllers.LedgerDistributeDividends(deps.Ledger, logg))
			r.Post("/equity-transfers", controllers.LedgerTransferEquity(deps.Ledger, logg))
			r.Get("/transactions", controllers.LedgerListTransactions(deps.Ledger, logg))
			r.Delete("/transactions/{transactionId}", controllers.LedgerDeleteTransaction(deps.Ledger, logg))
			r.Post("/funds/{fundId}/reconcile", controllers.LedgerReconcileFund(deps.Ledger, logg))
		})

		r.Route("/funds", func(r chi.Router) {
			r.Post("/", controllers.FundCreate(deps.Funds, logg))
			r.Get("/", controllers.FundList(deps.Funds, logg))
			r.Get("/{fundId}", controllers.FundGet(deps.Funds, logg))
			r.Post("/{fundId}/archive", controllers.FundArchive(deps.Funds, logg))
			r.Delete("/{fundId}", controllers.FundDelete(deps.Funds, logg))
		})

		r.Route("/members", func(r chi.Router) {
			r.Post("/", controllers.MemberCreate(deps.Members, logg))
			r.Get("/", controllers.MemberList(deps.Members, logg))
			r.Get("/{memberId}", controllers.MemberGet(deps.Members, logg))
			r.Patch("/{memberId}", controllers.MemberUpdate(deps.Members, logg))
			r.Delete("/{memberId}", controllers.MemberDelete(deps.Members, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", controllers.ProjectCreate(deps.Projects, logg))
			r.Get("/", controllers.ProjectList(deps.Projects, logg))
			r.Get("/{projectId}", controllers.ProjectGet(deps.Projects, logg))
			r.Patch("/{projectId}", controllers.ProjectUpdate(deps.Projects, logg))
			r.Post("/{projectId}/shares", controllers.ProjectAssignShares(deps.Projects, logg))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/dashboard", controllers.StatsDashboard(deps.Stats, logg))
			r.Post("/recompute", controllers.StatsRecompute(deps.Stats, logg))
		})

		r.Get("/audit/{resourceType}/{resourceId}", controllers.AuditTrail(deps.Audit, logg))
		r.Get("/archive/{originalId}", controllers.ArchiveHistory(deps.Archive, logg))
	})

	return r
}
