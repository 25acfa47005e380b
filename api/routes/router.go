package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kayalabs/studiocart-backend/api/controllers"
	"github.com/kayalabs/studiocart-backend/api/middleware"
	adminsvc "github.com/kayalabs/studiocart-backend/internal/admin"
	cartsvc "github.com/kayalabs/studiocart-backend/internal/cart"
	profilesvc "github.com/kayalabs/studiocart-backend/internal/profile"
	"github.com/kayalabs/studiocart-backend/pkg/config"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	GCSPinger   controllers.Pinger
	Registry    *prometheus.Registry

	CartService    cartsvc.Service
	ProfileService profilesvc.Service
	AdminService   adminsvc.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.DeviceID(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger, deps.GCSPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartFetch(deps.CartService, logg))
		r.Delete("/", controllers.CartClear(deps.CartService, logg))
		r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartService, logg))
		r.Post("/sketch", controllers.CartAttachSketch(deps.CartService, cfg.Upload, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/checkout", controllers.CartCheckout(deps.CartService, logg))
		})
	})

	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.ProfileDashboard(deps.ProfileService, logg))
		r.Post("/payment-method", controllers.ProfilePaymentMethod(deps.ProfileService, logg))
		r.Delete("/cart", controllers.ProfileClearCart(deps.ProfileService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Get("/sessions", controllers.AdminListSessions(deps.AdminService, logg))
		r.Get("/sessions/{userId}/design-request", controllers.AdminGetDesignRequest(deps.AdminService, logg))
		r.Patch("/sessions/{userId}", controllers.AdminUpdateStatus(deps.AdminService, logg))
		r.Post("/sessions/{userId}/end", controllers.AdminEndSession(deps.AdminService, logg))
	})

	return r
}
