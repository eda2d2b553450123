package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanamaru-app/hanamaru-backend/api/controllers"
	"github.com/hanamaru-app/hanamaru-backend/api/middleware"
	authsvc "github.com/hanamaru-app/hanamaru-backend/internal/auth"
	"github.com/hanamaru-app/hanamaru-backend/internal/customers"
	"github.com/hanamaru-app/hanamaru-backend/internal/products"
	"github.com/hanamaru-app/hanamaru-backend/internal/settlement"
	"github.com/hanamaru-app/hanamaru-backend/internal/stores"
	"github.com/hanamaru-app/hanamaru-backend/pkg/auth/session"
	"github.com/hanamaru-app/hanamaru-backend/pkg/config"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
	"github.com/hanamaru-app/hanamaru-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Metrics     prometheus.Gatherer
	AuthService authsvc.Service
	Stores      stores.Service
	Products    products.Service
	Customers   customers.Service
	Settlements settlement.Service
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

	// deps.Redis is a concrete pointer; assigning it to interface-typed
	// variables only when non-nil keeps the downstream nil checks honest.
	var (
		idemStore    middleware.IdempotencyStore
		limiterStore middleware.RateLimiterStore
		redisPinger  redis.Pinger
	)
	if deps.Redis != nil {
		idemStore = deps.Redis
		limiterStore = deps.Redis
		redisPinger = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/payments", func(r chi.Router) {
			r.Post("/verify", controllers.PaymentVerify(deps.Settlements, logg))
			r.Post("/redeem", controllers.PaymentRedeem(deps.Settlements, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/me", controllers.StoreProfile(deps.Stores, logg))
			r.With(middleware.RequireRole(enums.MemberRoleOwner, logg)).
				Put("/me", controllers.StoreUpdate(deps.Stores, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerRegister(deps.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(deps.Customers, logg))
			r.Get("/{customerId}/points", controllers.CustomerPointHistory(deps.Customers, logg))
			r.Get("/{customerId}/settlements", controllers.CustomerSettlements(deps.Settlements, logg))
		})
	})

	return r
}
