// Package httpapi is the storefront's HTTP surface: cart, checkout, catalog,
// sales history and session auth, all scoped by a session id path parameter
// the way the browser scopes its state per origin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/levelup-gamer/storefront/internal/auth"
	"github.com/levelup-gamer/storefront/internal/cart"
	"github.com/levelup-gamer/storefront/internal/catalog"
	"github.com/levelup-gamer/storefront/internal/checkout"
)

type RouterConfig struct {
	Carts          *cart.Service
	Coordinator    *checkout.Coordinator
	Catalog        *catalog.Service
	Sales          SaleLister
	Auth           Authenticator
	Keeper         *auth.Keeper
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	cartHandler := NewCartHandler(cfg.Carts)
	checkoutHandler := NewCheckoutHandler(cfg.Coordinator, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Catalog)
	salesHandler := NewSalesHandler(cfg.Sales, cfg.Keeper)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Keeper)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart/{sessionID}", func(r chi.Router) {
			// The SSE stream outlives the request timeout on purpose;
			// everything else gets the standard deadline.
			r.Get("/events", cartHandler.Events)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
				r.Get("/", cartHandler.Get)
				r.Get("/summary", cartHandler.Summary)
				r.Get("/count", cartHandler.Count)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productID}", cartHandler.UpdateQuantity)
				r.Delete("/items/{productID}", cartHandler.RemoveItem)
				r.Delete("/clear", cartHandler.Clear)
				r.Post("/checkout", checkoutHandler.Checkout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogHandler.List)
				r.Get("/category/{categoryID}", catalogHandler.ListByCategory)
			})

			r.Route("/sales/{sessionID}", func(r chi.Router) {
				r.Get("/mine", salesHandler.ListMine)
				r.Get("/", salesHandler.ListAll)
			})

			r.Route("/auth/{sessionID}", func(r chi.Router) {
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})
	})

	return r
}
