package routes

import (
	"storefront-dashboard/config"
	"storefront-dashboard/controllers"
	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/metrics"
	"storefront-dashboard/middleware"
	"storefront-dashboard/services"
	"storefront-dashboard/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "storefront-dashboard"

// Deps is everything the router needs from main.
type Deps struct {
	Config    config.Config
	Dashboard *services.Dashboard
	Store     storage.Store
	Metrics   *metrics.Client
	Log       *zap.Logger
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(d.Metrics, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Origins()))
	r.Use(apperrors.ErrorMiddleware())
	r.Use(middleware.Sessions(d.Store, d.Config.SessionTTL, d.Config.Env == "production"))

	ctrl := controllers.NewDashboardController(d.Dashboard, d.Metrics)
	RegisterRoutes(r, ctrl, d.Dashboard, d.Config.LoginRatePerMinute)
	return r
}

func RegisterRoutes(r *gin.Engine, ctrl *controllers.DashboardController, dash *services.Dashboard, loginRatePerMinute int) {
	r.GET("/health", ctrl.Health)

	// Public routes - no session required
	r.GET("/login", ctrl.LoginPage)
	r.POST("/login", middleware.RateLimit(loginRatePerMinute), ctrl.Login)
	r.POST("/logout", ctrl.Logout)

	// Protected routes - session guard runs first
	protected := r.Group("/")
	protected.Use(middleware.RequireSession(dash))
	{
		protected.GET("/dashboard", ctrl.Dashboard)

		protected.GET("/products", ctrl.ListProducts)
		protected.GET("/products/:id", ctrl.GetProduct)
		protected.POST("/products", ctrl.CreateProduct)
		protected.PATCH("/products/:id", ctrl.UpdateProduct)
		protected.DELETE("/products/:id", ctrl.DeleteProduct)

		protected.GET("/cart", ctrl.GetCart)
		protected.POST("/cart/items", ctrl.AddToCart)
		protected.PATCH("/cart/items/:id", ctrl.SetQuantity)
		protected.DELETE("/cart/items/:id", ctrl.RemoveFromCart)
	}
}
