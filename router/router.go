package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/controllers"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/middlewares"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// Deps adalah semua yang dibutuhkan router; dibangun sekali di main.
type Deps struct {
	DB         *gorm.DB
	JWT        *utils.JWTManager
	Apps       *services.AppRegistry
	Parser     *services.QRParser
	Directory  *services.TableDirectory
	Sessions   *services.TableSessionManager
	Orders     *services.OrderService
	Analytics  *services.AnalyticsService
	Hub        *kds.Hub
	CORSOrigin string
	Release    bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(d.Release))
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))

	r.GET("/health", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"time": time.Now()})
	})

	userCtrl := controllers.NewUserController(d.DB, d.JWT, d.Apps)
	tableCtrl := controllers.NewTableController(d.DB, d.Directory, d.Sessions, d.Parser, d.Hub)
	customerCtrl := controllers.NewCustomerController(d.DB, d.Apps, d.Hub)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Apps, d.Hub)
	adminCtrl := controllers.NewAdminController(d.Analytics, d.Sessions, d.Hub)
	menuCtrl := controllers.NewMenuController(d.DB)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.CORSOrigin)

	authLimiter := middlewares.NewStrictRateLimiter()
	// scan QR: 1 per detik per IP dengan burst 5
	scanLimiter := middlewares.NewRateLimiter(time.Second, 5)

	// Public
	auth := r.Group("/auth")
	auth.Use(authLimiter.RateLimit())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}

	r.GET("/menu", menuCtrl.GetAllMenus)
	r.GET("/menu/categories", menuCtrl.GetCategories)
	r.GET("/products", menuCtrl.GetProducts)

	// Akun (butuh token)
	account := r.Group("/")
	account.Use(middlewares.AuthMiddleware(d.JWT))
	{
		account.POST("/auth/logout", userCtrl.Logout)
		account.GET("/profile", userCtrl.GetProfile)
	}

	// App pelanggan: state per device, login opsional
	app := r.Group("/app")
	app.Use(middlewares.DeviceMiddleware(), middlewares.OptionalAuthMiddleware(d.JWT))
	{
		app.POST("/scan", scanLimiter.RateLimit(), customerCtrl.ScanTable)
		app.POST("/session", scanLimiter.RateLimit(), customerCtrl.StartSession)
		app.GET("/session", customerCtrl.GetSession)
		app.DELETE("/session", customerCtrl.EndSession)

		app.GET("/cart", customerCtrl.GetCart)
		app.POST("/cart/items", customerCtrl.AddCartItem)
		app.PATCH("/cart/items/:item_id", customerCtrl.UpdateCartItem)
		app.DELETE("/cart/items/:item_id", customerCtrl.RemoveCartItem)
		app.DELETE("/cart", customerCtrl.ClearCart)
		app.POST("/cart/discount", customerCtrl.ToggleDiscount)

		app.POST("/market/items", customerCtrl.AddMarketItem)
		app.PATCH("/market/items/:product_id", customerCtrl.UpdateMarketItem)
		app.DELETE("/market/items/:product_id", customerCtrl.RemoveMarketItem)
		app.DELETE("/market", customerCtrl.ClearMarketCart)

		app.POST("/checkout", orderCtrl.Checkout)
		app.GET("/orders", orderCtrl.MyOrders)
		app.POST("/orders/retry", orderCtrl.RetryPending)

		app.GET("/toast", customerCtrl.GetToast)
	}

	// Back-office staff/admin
	staff := r.Group("/admin")
	staff.Use(middlewares.AuthMiddleware(d.JWT), middlewares.RoleCheck(models.RoleStaff))
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/:table_id", tableCtrl.GetTable)
		staff.GET("/tables/:table_id/qr", tableCtrl.GetTableQR)
		staff.GET("/tables/:table_id/sessions", tableCtrl.GetSessionHistory)
		staff.DELETE("/tables/:table_id/session", tableCtrl.CancelActiveSession)
		staff.GET("/sessions", adminCtrl.GetActiveSessions)

		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.GET("/orders/:order_id", orderCtrl.GetOrder)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		staff.GET("/menu", menuCtrl.GetMenuInventory)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(d.JWT), middlewares.RoleCheck(models.RoleAdmin))
	{
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.POST("/tables/:table_id/rotate-token", tableCtrl.RotateToken)

		admin.PATCH("/menu/:item_id", menuCtrl.UpdateMenuAvailability)
		admin.PATCH("/products/:product_id", menuCtrl.UpdateProduct)

		admin.GET("/dashboard", adminCtrl.GetDashboardStats)
		admin.GET("/analytics", adminCtrl.GetAnalytics)
		admin.GET("/users", userCtrl.GetAllUsers)
	}

	// KDS websocket (token lewat query)
	r.GET("/ws/kds", middlewares.WebSocketAuthMiddleware(d.JWT), kdsCtrl.KDSHandler)

	return r
}
