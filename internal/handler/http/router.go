package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/health"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

const (
	maxBodyBytes  = 1 << 20
	catalogMaxAge = time.Minute
)

// Services groups everything the API serves.
type Services struct {
	Users      *service.UserService
	Products   *service.ProductService
	Categories *service.CategoryService
	Banners    *service.BannerService
	Wishlist   *service.WishlistService
	Carts      *service.CartService
	Orders     *service.OrderService
	Analytics  *service.AnalyticsService
}

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ValidateToken  middleware.TokenValidator
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
}

// NewRouter creates a chi router with every storefront route registered.
func NewRouter(svc Services, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Tracing)
	r.Use(middleware.Session)

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	authHandler := NewAuthHandler(svc.Users, svc.Carts, logger)
	catalogHandler := NewCatalogHandler(svc.Products, svc.Categories, svc.Banners, logger)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, logger)
	cartHandler := NewCartHandler(svc.Carts, logger)
	orderHandler := NewOrderHandler(svc.Orders, logger)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, logger)

	requireUser := middleware.Auth(cfg.ValidateToken)
	requireAdmin := middleware.RequireRole(middleware.RoleAdmin)
	rateLimited := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(MaxBodySize(maxBodyBytes))
		r.Use(middleware.OptionalAuth(cfg.ValidateToken))
		r.Use(middleware.RequestLogger(logger))

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimited).Post("/register", authHandler.Register)
			r.With(rateLimited).Post("/login", authHandler.Login)
			r.With(rateLimited).Post("/refresh", authHandler.Refresh)
			r.With(requireUser).Post("/logout", authHandler.Logout)
		})
		r.With(requireUser).Get("/users/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/banners", catalogHandler.ListBanners)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser, requireAdmin)
			r.Post("/products", catalogHandler.CreateProduct)
			r.Put("/products/{id}", catalogHandler.UpdateProduct)
			r.Delete("/products/{id}", catalogHandler.DeleteProduct)
			r.Post("/categories", catalogHandler.CreateCategory)
			r.Delete("/categories/{id}", catalogHandler.DeleteCategory)
			r.Post("/banners", catalogHandler.CreateBanner)
			r.Delete("/banners/{id}", catalogHandler.DeleteBanner)
			r.Get("/analytics/top-products", analyticsHandler.TopProducts)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", wishlistHandler.List)
			r.Post("/{productId}", wishlistHandler.Add)
			r.Delete("/{productId}", wishlistHandler.Remove)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateItem)
			r.Delete("/items", cartHandler.RemoveItem)
			r.With(requireUser).Post("/merge", cartHandler.MergeCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/my", orderHandler.ListMyOrders)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Put("/{id}/user-comment", orderHandler.SetUserComment)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", orderHandler.ListOrders)
				r.Patch("/{id}/status", orderHandler.SetStatus)
				r.Post("/{id}/admin-comment", orderHandler.AddAdminComment)
				r.Post("/{id}/archive", orderHandler.Archive)
			})
		})
		r.With(requireUser).Get("/order-history/my", orderHandler.ListMyHistory)

		r.With(rateLimited).Post("/analytics/event", analyticsHandler.Track)
	})

	return r
}
