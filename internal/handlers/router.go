package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chriskamgang/MyINSAM-Resto/internal/coupon"
	"github.com/chriskamgang/MyINSAM-Resto/internal/middleware"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// Services groups everything the API serves
type Services struct {
	Auth     *service.AuthService
	Menu     *service.MenuService
	Orders   *service.OrderService
	Payments *service.PaymentService
	Profile  *service.ProfileService
	Coupons  *coupon.Catalog
}

// RouterOptions tunes the router
type RouterOptions struct {
	// Sandbox mounts the manual lifecycle endpoints under /api/sandbox.
	Sandbox bool
	Timeout time.Duration
	// AuthPerMinute throttles register and login per client; zero disables it.
	AuthPerMinute int
	AuthBurst     int
}

// NewRouter builds the HTTP API
func NewRouter(svc Services, opts RouterOptions, log *slog.Logger) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	healthHandler := NewHealthHandler(svc.Coupons, log)
	authHandler := NewAuthHandler(svc.Auth, log)
	menuHandler := NewMenuHandler(svc.Menu, log)
	couponHandler := NewCouponHandler(svc.Coupons, log)
	orderHandler := NewOrderHandler(svc.Orders, log)
	paymentHandler := NewPaymentHandler(svc.Payments, log)
	profileHandler := NewProfileHandler(svc.Profile, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.Timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.AuthPerMinute > 0 {
				r.Use(middleware.NewRateLimiter(opts.AuthPerMinute, opts.AuthBurst).Handler)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.Get("/restaurants/{restaurantId}", menuHandler.GetRestaurant)
		r.Get("/restaurants/{restaurantId}/menu", menuHandler.GetMenu)
		r.Get("/coupons/stats", couponHandler.GetStats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(svc.Auth))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Post("/coupons/validate", couponHandler.ValidateCoupon)

			r.Get("/orders", orderHandler.ListOrders)
			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
			r.Get("/orders/{orderId}/track", orderHandler.TrackOrder)
			r.Post("/orders/{orderId}/cancel", orderHandler.CancelOrder)
			r.Post("/orders/{orderId}/rate", orderHandler.RateOrder)

			r.Post("/payments/initiate-mobile", paymentHandler.InitiateMobile)
			r.Get("/payments/{paymentId}/status", paymentHandler.Status)

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Get("/profile/addresses", profileHandler.ListAddresses)
			r.Post("/profile/addresses", profileHandler.CreateAddress)
			r.Put("/profile/addresses/{addressId}", profileHandler.UpdateAddress)
			r.Delete("/profile/addresses/{addressId}", profileHandler.DeleteAddress)
			r.Post("/profile/addresses/{addressId}/default", profileHandler.SetDefaultAddress)

			r.Get("/notifications", profileHandler.ListNotifications)
			r.Post("/notifications/read-all", profileHandler.MarkAllNotificationsRead)
			r.Post("/notifications/{notificationId}/read", profileHandler.MarkNotificationRead)
		})

		if opts.Sandbox {
			sandboxHandler := NewSandboxHandler(svc.Orders, svc.Payments, log)
			r.Post("/sandbox/orders/{orderId}/advance", sandboxHandler.AdvanceOrder)
			r.Post("/sandbox/payments/{paymentId}/resolve", sandboxHandler.ResolvePayment)
		}
	})

	return r
}
