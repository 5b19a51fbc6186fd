package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/platform/metrics"
)

const healthCheckTimeout = 2 * time.Second

// Pinger は依存先の疎通確認を行います。pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies は NewRouter に渡す依存の集合です。Metrics と Pinger は省略できます。
type Dependencies struct {
	Employees employee.UseCase
	Catalog   catalog.UseCase
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	Pinger    Pinger
}

// NewRouter は全エンドポイントを登録した HTTP ハンドラを返します。
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(Metrics(deps.Metrics))
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/healthz", healthHandler(deps.Pinger))

	NewEmployeeHandler(deps.Employees, deps.Metrics).Register(r)
	NewCatalogHandler(deps.Catalog).Register(r)

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
