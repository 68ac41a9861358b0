package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiendazo/storefront-backend/api/controllers"
	"github.com/tiendazo/storefront-backend/api/middleware"
	"github.com/tiendazo/storefront-backend/internal/cart"
	checkoutsvc "github.com/tiendazo/storefront-backend/internal/checkout"
	"github.com/tiendazo/storefront-backend/internal/marketplace"
	"github.com/tiendazo/storefront-backend/internal/orders"
	"github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	checks []controllers.ReadinessCheck,
	authGateway controllers.AuthGateway,
	sessionService session.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	marketplaceService marketplace.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, checks...))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Visitor(cfg.Session, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(authGateway, sessionService, logg))
			r.Post("/logout", controllers.AuthLogout(sessionService, logg))
			r.Get("/me", controllers.AuthMe(sessionService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{productID}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))

		r.Route("/stores/{slug}", func(r chi.Router) {
			r.Get("/", controllers.StoreGet(marketplaceService, logg))
			r.Get("/products", controllers.ProductsList(marketplaceService, logg))
			r.Get("/products/{productID}", controllers.ProductGet(marketplaceService, logg))
		})

		r.Get("/orders", controllers.OrderConfirmation(ordersService, logg))
	})

	return r
}
