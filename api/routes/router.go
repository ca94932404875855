package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kabisoft/kabipos-backend/api/controllers"
	"github.com/kabisoft/kabipos-backend/api/middleware"
	"github.com/kabisoft/kabipos-backend/internal/auth"
	invoice "github.com/kabisoft/kabipos-backend/internal/invoices"
	product "github.com/kabisoft/kabipos-backend/internal/products"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
)

// Dependencies carries the collaborators the router mounts. Nil services
// answer 500 from their handlers; nil pingers are skipped by readiness.
type Dependencies struct {
	DB         controllers.Pinger
	Redis      controllers.Pinger
	RateStore  middleware.RateLimitStore
	Gate       middleware.IdentityResolver
	Auth       auth.Service
	Products   product.Service
	Invoices   invoice.Service
	Gatherer   prometheus.Gatherer
	HTTP       *metrics.HTTPMetrics
	AuthEvents *metrics.AuthMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, deps.HTTP),
		middleware.CORS(cfg.CORS),
	)
	if !cfg.App.IsProd() {
		r.Use(middleware.Diagnostics)
	}

	r.NotFound(controllers.NotFound(logg))
	r.MethodNotAllowed(controllers.MethodNotAllowed())

	limiter := middleware.NewRateLimiter(deps.RateStore, logg, deps.AuthEvents)
	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.RateLimit.APIWindow, cfg.RateLimit.APILimit, 0)
	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)

	bearer := middleware.Auth(deps.Gate, logg, deps.AuthEvents)
	apiKey := middleware.APIKeyAuth(deps.Gate, logg, deps.AuthEvents)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Limit(apiPolicy))

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.Limit(loginPolicy)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			if !cfg.App.IsProd() {
				r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
				r.Post("/reset-password", controllers.AuthResetPassword(deps.Auth, logg))
			}

			r.Group(func(r chi.Router) {
				r.Use(bearer)
				r.Get("/verify", controllers.AuthVerify(logg))
				r.Get("/api-key", controllers.AuthAPIKey(deps.Auth, logg))
				r.Post("/api-key/regenerate", controllers.AuthRegenerateAPIKey(deps.Auth, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.With(apiKey).Get("/api-key", controllers.ProductList(deps.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(bearer)
				r.Get("/", controllers.ProductList(deps.Products, logg))
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Get("/barcode/{barcode}", controllers.ProductGetByBarcode(deps.Products, logg))
				r.Get("/{id}", controllers.ProductGet(deps.Products, logg))
				r.Put("/{id}", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.Products, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(bearer)
			r.Get("/", controllers.InvoiceList(deps.Invoices, logg))
			r.Post("/", controllers.InvoiceCreate(deps.Invoices, logg))
			r.Get("/number/{invoiceNo}", controllers.InvoiceGetByNumber(deps.Invoices, logg))
			r.Get("/{id}", controllers.InvoiceGet(deps.Invoices, logg))
			r.Put("/{id}", controllers.InvoiceUpdate(deps.Invoices, logg))
			r.Delete("/{id}", controllers.InvoiceDelete(deps.Invoices, logg))
		})
	})

	return r
}
