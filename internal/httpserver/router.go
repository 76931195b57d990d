package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/payment"
	customersvc "podcast-storefront/internal/service/customer"
	"podcast-storefront/internal/session"
)

type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*customersvc.Session, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, id string, in customersvc.ProfileInput) (*domain.Customer, error)
	AccessTTLSeconds() int
}

type CatalogService interface {
	List(ctx context.Context, kind string) ([]domain.CatalogItem, error)
	Candidate(ctx context.Context, kind domain.Kind, id string) (domain.Candidate, error)
	Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
}

type OrderService interface {
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetForUser(ctx context.Context, userID, id string) (*domain.Order, error)
	List(ctx context.Context, limit int) ([]domain.Order, error)
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error)
	SetShippingStatus(ctx context.Context, id string, status domain.ShippingStatus, trackingNumber *string) (*domain.Order, error)
}

// SessionResolver binds a request to its browser session.
type SessionResolver interface {
	Attach(w http.ResponseWriter, r *http.Request) (*session.Session, error)
}

// PaymentResolver delivers terminal payment outcomes to waiting checkouts.
type PaymentResolver interface {
	Resolve(orderID string, res payment.Result) error
}

// Deps groups the services the router needs.
type Deps struct {
	CustomerSvc CustomerService
	CatalogSvc  CatalogService
	OrderSvc    OrderService
	Sessions    SessionResolver
	Payments    PaymentResolver

	MidtransServerKey string
	AdminKey          string
	CORSOrigins       []string
	// PromptWait bounds how long POST /checkout waits for the hosted payment prompt.
	PromptWait time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.CustomerSvc == nil || deps.CatalogSvc == nil || deps.OrderSvc == nil || deps.Sessions == nil || deps.Payments == nil {
		return nil, errors.New("httpserver: missing dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.PromptWait <= 0 {
		deps.PromptWait = 20 * time.Second
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	// Processor callbacks: no browser session.
	router.POST("/payments/midtrans/notification", h.midtransNotification)

	admin := router.Group("/admin", adminKeyMiddleware(deps.AdminKey))
	admin.GET("/orders", h.adminListOrders)
	admin.PATCH("/orders/:id/payment-status", h.adminPaymentStatus)
	admin.PATCH("/orders/:id/shipping-status", h.adminShippingStatus)
	admin.PUT("/catalog/:kind/:id", h.adminUpsertCatalog)

	shop := router.Group("/", sessionMiddleware(deps.Sessions, logger), bearerMiddleware(deps.CustomerSvc, logger))
	shop.POST("/signup", h.signup)
	shop.POST("/login", h.login)
	shop.POST("/logout", h.logout)
	shop.GET("/catalog", h.listCatalog)

	shop.GET("/cart", h.getCart)
	shop.POST("/cart/items", h.addCartItem)
	shop.PATCH("/cart/items/:kind/:id", h.updateCartItem)
	shop.DELETE("/cart/items/:kind/:id", h.removeCartItem)
	shop.DELETE("/cart", h.clearCart)

	shop.POST("/checkout", h.startCheckout)
	shop.GET("/checkout/:orderId", h.checkoutStatus)
	shop.POST("/checkout/:orderId/close", h.closeCheckout)

	me := shop.Group("/", requireIdentity())
	me.GET("/me", h.me)
	me.PUT("/me/profile", h.updateProfile)
	me.GET("/orders", h.listOrders)
	me.GET("/orders/:id", h.getOrder)

	return router, nil
}
