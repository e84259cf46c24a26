package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/stockroom-backend/api/controllers"
	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/internal/alerts"
	"github.com/angelmondragon/stockroom-backend/internal/auth"
	"github.com/angelmondragon/stockroom-backend/internal/billing"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/dashboard"
	"github.com/angelmondragon/stockroom-backend/internal/inventoryrequests"
	"github.com/angelmondragon/stockroom-backend/internal/orders"
	"github.com/angelmondragon/stockroom-backend/internal/roles"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/auth/session"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// RedisStore covers the redis operations the HTTP layer needs.
type RedisStore interface {
	controllers.Pinger
	pkgredis.IdempotencyStore
	middleware.RateLimiterStore
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.Checker
	Metrics  http.Handler
	HTTP     *metrics.HTTPMetrics

	Auth              auth.Service
	Users             users.Service
	Catalog           catalog.Service
	Orders            orders.Service
	Billing           billing.Service
	Stock             stock.Service
	Dashboard         dashboard.Service
	Alerts            alerts.Service
	InventoryRequests inventoryrequests.Service
	Roles             roles.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, deps.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.RateLimit.OTPWindow,
		cfg.RateLimit.OTPIPLimit,
		cfg.RateLimit.OTPMobileLimit,
	)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginMobileLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(otpPolicy, deps.Redis, logg)).Post("/otp", controllers.AuthRequestOTP(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, deps.Redis, logg)).Post("/resend-otp", controllers.AuthRequestOTP(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.FeatureFlags.RequireAuth {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		}
		r.Use(middleware.Idempotency(deps.Redis, cfg.Idempotency.TTL, logg))

		r.Route("/users", func(r chi.Router) {
			if cfg.FeatureFlags.RequireAuth {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			}
			r.Post("/register", controllers.UserRegister(deps.Users, logg))
			r.Get("/", controllers.UserList(deps.Users, logg))
			r.Get("/{user_id}", controllers.UserGet(deps.Users, logg))
			r.Put("/{user_id}", controllers.UserUpdate(deps.Users, logg))
			r.Delete("/{user_id}", controllers.UserDelete(deps.Users, logg))
		})

		r.Route("/roles", func(r chi.Router) {
			if cfg.FeatureFlags.RequireAuth {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			}
			r.Get("/", controllers.RoleList(deps.Roles, logg))
			r.Get("/features", controllers.FeatureList(deps.Roles, logg))
			r.Get("/privileges", controllers.PrivilegeList(deps.Roles, logg))
			r.Post("/role-feature-privilege", controllers.RolePrivilegeAssign(deps.Roles, logg))
			r.Get("/role-feature-privilege/{role_id}/{feature_id}", controllers.RolePrivilegeList(deps.Roles, logg))
			r.Delete("/role-feature-privilege/{role_id}/{feature_id}/{privilege_id}", controllers.RolePrivilegeRevoke(deps.Roles, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(deps.Catalog, logg))
			r.Get("/", controllers.ItemList(deps.Catalog, logg))
			r.Get("/{item_id}", controllers.ItemGet(deps.Catalog, logg))
			r.Put("/{item_id}", controllers.ItemUpdate(deps.Catalog, logg))
			r.Delete("/{item_id}", controllers.ItemDelete(deps.Catalog, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Post("/", controllers.VendorCreate(deps.Catalog, logg))
			r.Get("/", controllers.VendorList(deps.Catalog, logg))
			r.Get("/{vendor_id}", controllers.VendorGet(deps.Catalog, logg))
			r.Put("/{vendor_id}", controllers.VendorUpdate(deps.Catalog, logg))
			r.Delete("/{vendor_id}", controllers.VendorDelete(deps.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{order_id}", controllers.OrderGet(deps.Orders, logg))
			r.Put("/{order_id}", controllers.OrderUpdate(deps.Orders, logg))
			r.Delete("/{order_id}", controllers.OrderCancel(deps.Orders, logg))
		})

		r.Route("/billing", func(r chi.Router) {
			r.Post("/", controllers.BillingProject(deps.Billing, logg))
			r.Get("/", controllers.BillingList(deps.Billing, logg))
			r.Get("/{billing_id}", controllers.BillingGet(deps.Billing, logg))
			r.Patch("/{billing_id}/status", controllers.BillingUpdateStatus(deps.Billing, logg))
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Post("/", controllers.StockCreate(deps.Stock, logg))
			r.Get("/", controllers.StockList(deps.Stock, logg))
			r.Get("/{stock_id}", controllers.StockGet(deps.Stock, logg))
			r.Put("/{stock_id}", controllers.StockUpdate(deps.Stock, logg))
		})

		r.Get("/dashboard/counts", controllers.DashboardCounts(deps.Dashboard, logg))

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", controllers.AlertCreate(deps.Alerts, logg))
			r.Get("/", controllers.AlertList(deps.Alerts, logg))
			r.Put("/{alert_id}", controllers.AlertClose(deps.Alerts, logg))
		})

		r.Route("/inventory-requests", func(r chi.Router) {
			r.Post("/", controllers.InventoryRequestCreate(deps.InventoryRequests, logg))
			r.Get("/", controllers.InventoryRequestList(deps.InventoryRequests, logg))
			r.Get("/{request_id}", controllers.InventoryRequestGet(deps.InventoryRequests, logg))
			r.Put("/{request_id}", controllers.InventoryRequestUpdate(deps.InventoryRequests, logg))
			r.Delete("/{request_id}", controllers.InventoryRequestDelete(deps.InventoryRequests, logg))
		})
	})

	return r
}
