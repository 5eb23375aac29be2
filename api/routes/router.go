package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopfront/storefront/api/controllers"
	cartcontrollers "github.com/shopfront/storefront/api/controllers/cart"
	ordercontrollers "github.com/shopfront/storefront/api/controllers/orders"
	productcontrollers "github.com/shopfront/storefront/api/controllers/products"
	usercontrollers "github.com/shopfront/storefront/api/controllers/users"
	walletcontrollers "github.com/shopfront/storefront/api/controllers/wallet"
	"github.com/shopfront/storefront/api/middleware"
	"github.com/shopfront/storefront/internal/cart"
	"github.com/shopfront/storefront/internal/orders"
	products "github.com/shopfront/storefront/internal/products"
	"github.com/shopfront/storefront/internal/users"
	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/config"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/logger"
	"github.com/shopfront/storefront/pkg/metrics"
)

// redisStore is the subset of the Redis client the HTTP layer needs.
type redisStore interface {
	middleware.IdempotencyStore
	controllers.Pinger
	middleware.RateLimitStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	cartService cart.Service,
	ordersService orders.Service,
	walletService wallet.Service,
	usersService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	orderPolicy := middleware.NewRateLimitPolicy(
		"orders",
		cfg.RateLimit.OrderWindow,
		cfg.RateLimit.OrderIPLimit,
		cfg.RateLimit.OrderUserLimit,
	)
	orderWrites := middleware.RateLimit(orderPolicy, redisClient, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productcontrollers.List(productService, logg))
		r.Get("/{productId}", productcontrollers.Detail(productService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Get("/me", usercontrollers.Me(usersService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(cartService, logg))
			r.Delete("/", cartcontrollers.Clear(cartService, logg))
			r.Post("/items", cartcontrollers.AddItem(cartService, logg))
			r.Put("/items/{productId}", cartcontrollers.UpdateItem(cartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.RemoveItem(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.With(orderWrites).Post("/", ordercontrollers.Place(ordersService, logg))
			r.With(orderWrites).Post("/direct", ordercontrollers.PlaceDirect(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.With(orderWrites).Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersService, logg))
			r.Post("/{orderId}/pay", ordercontrollers.Pay(ordersService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletcontrollers.Balance(walletService, logg))
			r.Get("/transactions", walletcontrollers.Transactions(walletService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminList(ordersService, logg))
				r.Put("/{orderId}/approve", ordercontrollers.Approve(ordersService, logg))
				r.Put("/{orderId}/cancel", ordercontrollers.AdminCancel(ordersService, logg))
				r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(ordersService, logg))
				r.Post("/{orderId}/timeline", ordercontrollers.AddTimeline(ordersService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productcontrollers.AdminList(productService, logg))
				r.Post("/", productcontrollers.Create(productService, logg))
				r.Put("/{productId}", productcontrollers.Update(productService, logg))
				r.Delete("/{productId}", productcontrollers.Delete(productService, logg))
				r.Patch("/{productId}/stock", productcontrollers.UpdateStock(productService, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", usercontrollers.List(usersService, logg))
				r.Post("/", usercontrollers.Create(usersService, logg))
				r.Put("/{userId}/block", usercontrollers.SetActive(usersService, logg))
			})
		})
	})

	return r
}
