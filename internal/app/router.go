package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/northwind-admin/northwind-admin/internal/auth"
	"github.com/northwind-admin/northwind-admin/internal/catalog/categories"
	"github.com/northwind-admin/northwind-admin/internal/catalog/products"
	"github.com/northwind-admin/northwind-admin/internal/catalog/suppliers"
	"github.com/northwind-admin/northwind-admin/internal/dashboard"
	"github.com/northwind-admin/northwind-admin/internal/observability"
	"github.com/northwind-admin/northwind-admin/internal/shared"
	"github.com/northwind-admin/northwind-admin/jobs"
	"github.com/northwind-admin/northwind-admin/report"
	"github.com/northwind-admin/northwind-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	ProductsAPI      *products.Handler
	CategoriesAPI    *categories.Handler
	SuppliersAPI     *suppliers.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
}

// NewRouter builds the console and the catalog API on one chi router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.RequestID, chimw.Logger, chimw.Recoverer)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	mwConfig := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(APIStack(mwConfig)...)
		if params.ProductsAPI != nil {
			api.Route("/products", params.ProductsAPI.MountRoutes)
		}
		if params.CategoriesAPI != nil {
			api.Route("/categories", params.CategoriesAPI.MountRoutes)
		}
		if params.SuppliersAPI != nil {
			api.Route("/suppliers", params.SuppliersAPI.MountRoutes)
		}
	})

	r.Group(func(console chi.Router) {
		console.Use(ConsoleStack(mwConfig)...)

		console.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, auth.DefaultLanding, http.StatusSeeOther)
		})
		console.Route("/auth", params.AuthHandler.MountRoutes)
		console.Route("/dashboard", func(r chi.Router) {
			r.Use(auth.RequireOperator)
			params.DashboardHandler.MountRoutes(r)
		})
		console.Route("/jobs", func(r chi.Router) {
			r.Use(auth.RequireOperator)
			params.JobHandler.MountRoutes(r)
		})
		if params.ReportHandler != nil {
			console.Route("/report", func(r chi.Router) {
				r.Use(auth.RequireOperator)
				params.ReportHandler.MountRoutes(r)
			})
		}
	})

	return r
}

// staticCacheHandler caches static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
