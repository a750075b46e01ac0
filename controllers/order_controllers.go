package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/middlewares"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Apps   *services.AppRegistry
	Hub    *kds.Hub
}

func NewOrderController(orders *services.OrderService, apps *services.AppRegistry, hub *kds.Hub) *OrderController {
	return &OrderController{Orders: orders, Apps: apps, Hub: hub}
}

// Checkout -> keranjang makanan device menjadi order. Butuh login (AppContext terikat user).
func (oc *OrderController) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !services.IsPaymentMethod(req.PaymentMethod) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unsupported payment method"))
		return
	}

	app, _, ok := deviceApp(c, oc.Apps)
	if !ok {
		return
	}
	if !requireDeviceUser(c, app) {
		return
	}

	order, err := app.Checkout(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Hub.BroadcastOrderCreated(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// requireDeviceUser: device harus terikat ke user dan request membawa token
// milik user yang sama. Header device saja tidak cukup.
func requireDeviceUser(c *gin.Context, app *services.AppContext) bool {
	bound := app.User()
	userID := c.GetString(middlewares.ContextUserID)
	if bound == nil || userID == "" {
		respondServiceError(c, services.ErrNotAuthenticated)
		return false
	}
	if bound.ID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return false
	}
	return true
}

// MyOrders -> riwayat order user. Kegagalan baca store jatuh ke daftar lokal.
func (oc *OrderController) MyOrders(c *gin.Context) {
	app, _, ok := deviceApp(c, oc.Apps)
	if !ok {
		return
	}
	if !requireDeviceUser(c, app) {
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", gin.H{
		"orders":         app.LoadOrders(c.Request.Context()),
		"pending_sync":   len(app.PendingOrders()),
		"loyalty_points": app.LoyaltyPoints(),
	})
}

// RetryPending -> kirim ulang order yang gagal disimpan (policy queue_for_retry)
func (oc *OrderController) RetryPending(c *gin.Context) {
	app, _, ok := deviceApp(c, oc.Apps)
	if !ok {
		return
	}
	if !requireDeviceUser(c, app) {
		return
	}

	saved, err := app.RetryPendingOrders(c.Request.Context())
	data := gin.H{"saved": saved, "pending": len(app.PendingOrders())}
	if err != nil {
		utils.ErrorLogger.Printf("Retry pending orders: %v", err)
		utils.RespondJSON(c, http.StatusAccepted, "Some orders are still pending", data)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending orders synced", data)
}

// GetAllOrders -> back-office, ?status=pending
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.List(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> pending→confirmed→preparing→ready→completed, atau cancelled
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), c.Param("order_id"), body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oc.Hub.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
