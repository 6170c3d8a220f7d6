package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bargen/bargen-backend/api/controllers"
	"github.com/bargen/bargen-backend/api/middleware"
	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/internal/cart"
	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/internal/users"
	"github.com/bargen/bargen-backend/internal/wishlist"
	"github.com/bargen/bargen-backend/pkg/auth/session"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/redis"
)

type rateCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// Deps collects everything the HTTP surface needs. Nil services answer with
// an internal error; nil stores disable the middleware that uses them.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	Sessions    session.AccessSessionChecker
	Idempotency redis.IdempotencyStore
	RateLimits  rateCounter
	Readiness   map[string]controllers.Pinger
	Metrics     http.Handler

	Shops         shops.Service
	Products      products.Service
	Cart          cart.Service
	Bargains      bargains.Service
	Messaging     messaging.Service
	Wishlist      wishlist.Service
	Users         users.Service
	Delivery      delivery.Service
	Notifications notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})

	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	var roles users.RoleResolver
	if d.Users != nil {
		roles = d.Users
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWT, d.Sessions, roles, logg))
		r.Use(middleware.WriteRateLimit(
			middleware.NewWriteRateLimitPolicy(cfg.WriteLimit.Window, cfg.WriteLimit.Limit),
			d.RateLimits,
			logg,
		))
		r.Use(middleware.Idempotency(d.Idempotency, cfg.Redis.IdempotencyTTL, logg))

		// anonymous callers allowed
		r.Get("/shops", controllers.ListShops(d.Shops, logg))
		r.Get("/shops/{shopId}", controllers.GetShop(d.Shops, logg))
		r.Get("/shops/{shopId}/products", controllers.ShopProducts(d.Products, logg))
		r.Get("/shops/{shopId}/delivery-fee", controllers.DeliveryFee(d.Delivery, logg))
		r.Get("/products", controllers.BrowseProducts(d.Products, logg))
		r.Get("/products/{productId}", controllers.GetProduct(d.Products, logg))
		r.Get("/products/{productId}/compare", controllers.CompareProduct(d.Products, logg))
		r.Get("/products/{productId}/photos/{index}", controllers.ProductPhoto(d.Products, logg))
		r.Get("/insurance/options", controllers.InsuranceOptions(d.Cart, logg))
		r.Get("/insurance/recommendation", controllers.RecommendInsurance(d.Cart, logg))
		r.Get("/users/me/role", controllers.MyRole(d.Users, logg))
		r.Get("/users/me/admin", controllers.AmIAdmin(d.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))

			r.Post("/shops", controllers.CreateShop(d.Shops, logg))
			r.Get("/shops/mine", controllers.MyShops(d.Shops, logg))
			r.Get("/shops/{shopId}/notifications", controllers.ShopNotifications(d.Notifications, logg))

			r.Post("/products", controllers.CreateProduct(d.Products, logg))
			r.Put("/products/{productId}", controllers.UpdateProduct(d.Products, logg))
			r.Delete("/products/{productId}", controllers.DeleteProduct(d.Products, logg))
			r.Get("/products/{productId}/bargains", controllers.ProductBargains(d.Bargains, logg))
			r.Get("/products/{productId}/messages", controllers.ProductMessages(d.Messaging, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Post("/items", controllers.AddToCart(d.Cart, logg))
				r.Get("/items", controllers.CartItems(d.Cart, logg))
				r.Delete("/items/{productId}", controllers.RemoveFromCart(d.Cart, logg))
				r.Get("/total", controllers.CartTotal(d.Cart, logg))
				r.Get("/insurance", controllers.SelectedInsurance(d.Cart, logg))
				r.Put("/insurance", controllers.SelectInsurance(d.Cart, logg))
			})

			r.Route("/bargains", func(r chi.Router) {
				r.Post("/", controllers.SubmitBargain(d.Bargains, logg))
				r.Get("/mine", controllers.MyBargains(d.Bargains, logg))
				r.Post("/{bargainId}/accept", controllers.AcceptBargain(d.Bargains, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", controllers.SendMessage(d.Messaging, logg))
				r.Get("/threads", controllers.MessageThreads(d.Messaging, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.Wishlist(d.Wishlist, logg))
				r.Get("/{productId}", controllers.HasLiked(d.Wishlist, logg))
				r.Put("/{productId}", controllers.LikeProduct(d.Wishlist, logg))
				r.Delete("/{productId}", controllers.UnlikeProduct(d.Wishlist, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", controllers.MyProfile(d.Users, logg))
				r.Put("/me", controllers.SaveMyProfile(d.Users, logg))
				r.Get("/{principal}", controllers.UserProfile(d.Users, logg))
			})

			r.Route("/delivery", func(r chi.Router) {
				r.Post("/partners", controllers.RegisterDeliveryPartner(d.Delivery, logg))
				r.Put("/partners/{partnerId}/availability", controllers.SetPartnerAvailability(d.Delivery, logg))
				r.Get("/orders", controllers.DeliveryOrders(d.Delivery, logg))
				r.Post("/orders", controllers.CreateDeliveryOrder(d.Delivery, logg))
				r.Post("/orders/{orderId}/status", controllers.AdvanceDeliveryOrder(d.Delivery, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/products", controllers.AdminListProducts(d.Products, logg))
				r.Put("/products/{productId}", controllers.UpdateProduct(d.Products, logg))
				r.Delete("/products/{productId}", controllers.DeleteProduct(d.Products, logg))
				r.Put("/users/{principal}/role", controllers.AssignUserRole(d.Users, logg))
			})
		})
	})

	return r
}
