package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/controllers"
	"github.com/yeremiapane/cohee-app/database"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/middlewares"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv adalah satu stack lengkap di atas SQLite in-memory.
type testEnv struct {
	db        *gorm.DB
	jwt       *utils.JWTManager
	apps      *services.AppRegistry
	hub       *kds.Hub
	parser    *services.QRParser
	directory *services.TableDirectory
	sessions  *services.TableSessionManager
	orders    *services.OrderService
	payments  *services.MockPaymentGateway
	router    *gin.Engine
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	env := &testEnv{
		db:        db,
		jwt:       utils.NewJWTManager("test-secret", time.Hour),
		hub:       kds.NewHub(),
		parser:    services.NewQRParser(services.DefaultQRScheme),
		directory: services.NewTableDirectory(db, services.DirectoryOptions{}),
		sessions:  services.NewTableSessionManager(db, nil),
		orders:    services.NewOrderService(db),
		payments:  services.NewMockPaymentGateway(0),
	}
	env.apps = services.NewAppRegistry(func(n services.Notifier) *services.AppContext {
		return services.NewAppContext(services.AppContextDeps{
			Parser:    env.parser,
			Directory: env.directory,
			Sessions:  env.sessions,
			Orders:    env.orders,
			Payments:  env.payments,
			Notifier:  n,
		})
	})
	env.router = env.setupRouter()
	return env
}

func (e *testEnv) setupRouter() *gin.Engine {
	r := gin.New()

	userCtrl := controllers.NewUserController(e.db, e.jwt, e.apps)
	tableCtrl := controllers.NewTableController(e.db, e.directory, e.sessions, e.parser, e.hub)
	customerCtrl := controllers.NewCustomerController(e.db, e.apps, e.hub)
	orderCtrl := controllers.NewOrderController(e.orders, e.apps, e.hub)
	adminCtrl := controllers.NewAdminController(services.NewAnalyticsService(e.db), e.sessions, e.hub)
	menuCtrl := controllers.NewMenuController(e.db)

	r.POST("/auth/register", userCtrl.Register)
	r.POST("/auth/login", userCtrl.Login)
	r.POST("/auth/logout", middlewares.AuthMiddleware(e.jwt), userCtrl.Logout)
	r.GET("/profile", middlewares.AuthMiddleware(e.jwt), userCtrl.GetProfile)

	r.GET("/menu", menuCtrl.GetAllMenus)
	r.GET("/menu/categories", menuCtrl.GetCategories)
	r.GET("/products", menuCtrl.GetProducts)

	app := r.Group("/app", middlewares.DeviceMiddleware(), middlewares.OptionalAuthMiddleware(e.jwt))
	app.POST("/scan", customerCtrl.ScanTable)
	app.POST("/session", customerCtrl.StartSession)
	app.GET("/session", customerCtrl.GetSession)
	app.DELETE("/session", customerCtrl.EndSession)
	app.GET("/cart", customerCtrl.GetCart)
	app.POST("/cart/items", customerCtrl.AddCartItem)
	app.PATCH("/cart/items/:item_id", customerCtrl.UpdateCartItem)
	app.DELETE("/cart/items/:item_id", customerCtrl.RemoveCartItem)
	app.POST("/cart/discount", customerCtrl.ToggleDiscount)
	app.POST("/market/items", customerCtrl.AddMarketItem)
	app.GET("/toast", customerCtrl.GetToast)
	app.POST("/checkout", orderCtrl.Checkout)
	app.GET("/orders", orderCtrl.MyOrders)
	app.POST("/orders/retry", orderCtrl.RetryPending)

	admin := r.Group("/admin", middlewares.AuthMiddleware(e.jwt), middlewares.RoleCheck(models.RoleStaff))
	admin.POST("/tables", tableCtrl.CreateTable)
	admin.GET("/tables", tableCtrl.GetAllTables)
	admin.GET("/tables/:table_id", tableCtrl.GetTable)
	admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	admin.POST("/tables/:table_id/rotate-token", tableCtrl.RotateToken)
	admin.GET("/tables/:table_id/qr", tableCtrl.GetTableQR)
	admin.GET("/tables/:table_id/sessions", tableCtrl.GetSessionHistory)
	admin.DELETE("/tables/:table_id/session", tableCtrl.CancelActiveSession)
	admin.GET("/sessions", adminCtrl.GetActiveSessions)
	admin.GET("/orders", orderCtrl.GetAllOrders)
	admin.GET("/orders/:order_id", orderCtrl.GetOrder)
	admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	admin.GET("/dashboard", adminCtrl.GetDashboardStats)
	admin.GET("/analytics", adminCtrl.GetAnalytics)
	admin.GET("/menu", menuCtrl.GetMenuInventory)

	owner := r.Group("/admin", middlewares.AuthMiddleware(e.jwt), middlewares.RoleCheck(models.RoleAdmin))
	owner.PATCH("/menu/:item_id", menuCtrl.UpdateMenuAvailability)
	owner.PATCH("/products/:product_id", menuCtrl.UpdateProduct)

	return r
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call mengirim request JSON. headers berpasangan: key, value, key, value...
func (e *testEnv) call(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func device(id string) []string {
	return []string{middlewares.DeviceHeader, id}
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

func (e *testEnv) seedUser(t *testing.T, name, role, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@cohee.test",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) staffToken(t *testing.T) string {
	return e.tokenFor(t, e.seedUser(t, "Staff", models.RoleStaff, "secret123"))
}

func (e *testEnv) seedTable(t *testing.T, number string) *models.Table {
	t.Helper()
	table := &models.Table{TableNumber: number, Capacity: 4, IsActive: true}
	require.NoError(t, e.db.Create(table).Error)
	return table
}
