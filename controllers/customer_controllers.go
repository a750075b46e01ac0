package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// CustomerController melayani aplikasi pelanggan: scan meja, keranjang, diskon.
// Semua state ada di AppContext milik device (X-Device-ID).
type CustomerController struct {
	DB   *gorm.DB
	Apps *services.AppRegistry
	Hub  *kds.Hub
}

func NewCustomerController(db *gorm.DB, apps *services.AppRegistry, hub *kds.Hub) *CustomerController {
	return &CustomerController{DB: db, Apps: apps, Hub: hub}
}

type cartView struct {
	Items         []services.CartItem       `json:"items"`
	MarketItems   []services.MarketCartItem `json:"market_items"`
	Subtotal      float64                   `json:"subtotal"`
	Discount      float64                   `json:"discount"`
	Total         float64                   `json:"total"`
	MarketTotal   float64                   `json:"market_total"`
	Count         int                       `json:"count"`
	StaffDiscount bool                      `json:"staff_discount"`
	TotalLabel    string                    `json:"total_label"`
}

func newCartView(app *services.AppContext) cartView {
	prices := app.CartBreakdown()
	return cartView{
		Items:         app.Cart(),
		MarketItems:   app.MarketCart(),
		Subtotal:      prices.Subtotal,
		Discount:      prices.Discount,
		Total:         prices.Total,
		MarketTotal:   app.GetMarketCartTotal(),
		Count:         app.GetCartCount(),
		StaffDiscount: app.DiscountActive(),
		TotalLabel:    utils.FormatPriceHKD(prices.Total),
	}
}

// ScanTable -> payload QR mentah dari kamera
func (cc *CustomerController) ScanTable(c *gin.Context) {
	var req struct {
		Payload     string `json:"payload" binding:"required"`
		TotalGuests *int   `json:"total_guests" binding:"omitempty,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	session, err := app.ScanTable(c.Request.Context(), req.Payload, req.TotalGuests)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cc.Hub.BroadcastSessionStarted(*session)
	utils.RespondJSON(c, http.StatusOK, "Table session started", session)
}

// StartSession -> entri manual: token, id, atau nomor meja
func (cc *CustomerController) StartSession(c *gin.Context) {
	var req struct {
		services.TableReference
		TotalGuests *int `json:"total_guests" binding:"omitempty,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TableReference.IsEmpty() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("token, table_id or table_number is required"))
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	session, err := app.StartTableSession(c.Request.Context(), req.TableReference, req.TotalGuests)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cc.Hub.BroadcastSessionStarted(*session)
	utils.RespondJSON(c, http.StatusOK, "Table session started", session)
}

// GetSession -> sesi yang terikat ke device, disamakan dulu dengan store
func (cc *CustomerController) GetSession(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	session, _ := app.RefreshSession(c.Request.Context())
	if session == nil {
		utils.RespondJSON(c, http.StatusOK, "No active table session", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active table session", session)
}

func (cc *CustomerController) EndSession(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	closed, err := app.EndTableSession(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cc.Hub.BroadcastSessionClosed(*closed)
	utils.RespondJSON(c, http.StatusOK, "Table session ended", closed)
}

func (cc *CustomerController) GetCart(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", newCartView(app))
}

// AddCartItem -> item diambil dari katalog, bukan dari body, supaya harga tidak bisa diubah client
func (cc *CustomerController) AddCartItem(c *gin.Context) {
	var req struct {
		ItemID   string `json:"item_id" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	var item models.MenuItem
	if err := cc.DB.First(&item, "id = ? AND available = ?", req.ItemID, true).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	app.AddToCart(item, req.Quantity)
	utils.RespondJSON(c, http.StatusOK, item.Name+" added to cart", newCartView(app))
}

// UpdateCartItem -> quantity 0 menghapus line
func (cc *CustomerController) UpdateCartItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.UpdateQuantity(c.Param("item_id"), *req.Quantity)
	utils.RespondJSON(c, http.StatusOK, "Cart updated", newCartView(app))
}

func (cc *CustomerController) RemoveCartItem(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.RemoveFromCart(c.Param("item_id"))
	utils.RespondJSON(c, http.StatusOK, "Item removed from cart", newCartView(app))
}

func (cc *CustomerController) ClearCart(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.ClearCart()
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", newCartView(app))
}

func (cc *CustomerController) AddMarketItem(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	var product models.Product
	if err := cc.DB.First(&product, "id = ? AND in_stock = ?", req.ProductID, true).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	app.AddProductToCart(product, req.Quantity)
	utils.RespondJSON(c, http.StatusOK, product.Name+" added to cart", newCartView(app))
}

func (cc *CustomerController) UpdateMarketItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.UpdateProductQuantity(c.Param("product_id"), *req.Quantity)
	utils.RespondJSON(c, http.StatusOK, "Cart updated", newCartView(app))
}

func (cc *CustomerController) RemoveMarketItem(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.RemoveProductFromCart(c.Param("product_id"))
	utils.RespondJSON(c, http.StatusOK, "Product removed from cart", newCartView(app))
}

func (cc *CustomerController) ClearMarketCart(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.ClearMarketCart()
	utils.RespondJSON(c, http.StatusOK, "Market cart cleared", newCartView(app))
}

// ToggleDiscount -> diskon staf 10% untuk keranjang makanan
func (cc *CustomerController) ToggleDiscount(c *gin.Context) {
	app, _, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	app.ToggleDiscount()
	utils.RespondJSON(c, http.StatusOK, "Discount toggled", newCartView(app))
}

// GetToast -> toast terakhir device (polling dari client)
func (cc *CustomerController) GetToast(c *gin.Context) {
	_, deviceID, ok := deviceApp(c, cc.Apps)
	if !ok {
		return
	}

	toast, found := cc.Apps.Toasts(deviceID).Latest()
	if !found {
		utils.RespondJSON(c, http.StatusOK, "No toast", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Toast", toast)
}
