package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gabrielasoto/aurelia-backend/api/controllers"
	"github.com/gabrielasoto/aurelia-backend/api/middleware"
	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/session"
	"github.com/gabrielasoto/aurelia-backend/pkg/config"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
	"github.com/gabrielasoto/aurelia-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        redis.Pinger
	Sessions     middleware.SessionRehydrator
	Auth         controllers.AuthService
	Carts        *cart.Registry
	Catalog      controllers.CatalogBrowser
	Coupons      controllers.CouponService
	Checkout     controllers.CheckoutService
	PromGatherer prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Redis))
	})

	if p.PromGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.PromGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.Auth(p.Sessions, logg)).Post("/logout", controllers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Sessions, logg))

		r.Get("/me", controllers.Me())
		r.Put("/me", controllers.UpdateMe(p.Auth, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(p.Carts, p.Coupons, logg))
			r.Delete("/", controllers.CartClear(p.Carts, p.Coupons, logg))
			r.Post("/items", controllers.CartAddItem(p.Carts, p.Catalog, p.Coupons, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateQuantity(p.Carts, p.Coupons, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(p.Carts, p.Coupons, logg))
			r.Post("/coupon", controllers.CouponApply(p.Coupons, p.Carts, logg))
			r.Delete("/coupon", controllers.CouponRemove(p.Coupons, p.Carts, logg))
		})

		r.Post("/checkout", controllers.CheckoutSubmit(p.Checkout, logg))

		r.Get("/products", controllers.ProductsList(p.Catalog, logg))
		r.Get("/products/{productId}", controllers.ProductsGet(p.Catalog, logg))

		r.Post("/customizations/quote", controllers.CustomizationQuote(logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(
			middleware.Auth(p.Sessions, logg),
			middleware.RequireRole(session.RoleAdmin, logg),
		)
		r.Get("/ping", controllers.AdminPing())
	})

	return r
}
