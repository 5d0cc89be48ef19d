package router

import (
	"net/http"

	"github.com/rabi-77/ecommerce-sub000/internal/handler"
	"github.com/rabi-77/ecommerce-sub000/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Wallet   *handler.WalletHandler
	Admin    *handler.AdminHandler
}

// Auth holds the credentials the router checks.
type Auth struct {
	APIKey    string
	JWTSecret string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth Auth, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.UserAuth(auth.JWTSecret, logger))

			r.Post("/cart/quote", h.Checkout.Quote)
			r.Post("/checkout", h.Checkout.Checkout)

			r.Get("/orders/{id}", h.Order.GetByID)
			r.Post("/orders/{id}/cancel", h.Order.Cancel)
			r.Post("/orders/{id}/items/{itemId}/cancel", h.Order.CancelItem)
			r.Post("/orders/{id}/returns", h.Order.RequestReturn)

			r.Get("/wallet", h.Wallet.Get)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(auth.APIKey, logger))

			r.Post("/orders/{id}/payment", h.Admin.ConfirmPayment)
			r.Patch("/orders/{id}/status", h.Admin.UpdateStatus)
			r.Post("/orders/{id}/items/{itemId}/return-verification", h.Admin.VerifyReturn)
			r.Post("/wallets/{userId}/credit", h.Admin.CreditWallet)
			r.Post("/checkouts/reconcile", h.Admin.Reconcile)
		})
	})

	return r
}
