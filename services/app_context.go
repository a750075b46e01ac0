package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
)

// AppContextDeps adalah dependensi satu instance aplikasi.
type AppContextDeps struct {
	Parser    *QRParser
	Directory *TableDirectory
	Sessions  *TableSessionManager
	Orders    *OrderService
	Payments  PaymentGateway
	Notifier  Notifier
	Policy    PersistFailurePolicy
}

// AppContext memegang keranjang makanan, keranjang marketplace, dan sesi meja
// milik satu instance aplikasi. Semua mutasi lewat method di sini.
type AppContext struct {
	parser    *QRParser
	directory *TableDirectory
	sessions  *TableSessionManager
	orders    *OrderService
	payments  PaymentGateway
	notifier  Notifier
	policy    PersistFailurePolicy
	now       func() time.Time

	mu            sync.Mutex
	cart          *lineCart[CartItem]
	marketCart    *lineCart[MarketCartItem]
	orderList     []models.Order
	pending       []models.Order
	loyaltyPoints int
	staffDiscount bool
	user          *models.User
	session       *models.TableSession
	scanning      bool
	checkingOut   bool
}

func NewAppContext(deps AppContextDeps) *AppContext {
	if deps.Parser == nil {
		deps.Parser = NewQRParser(DefaultQRScheme)
	}
	if deps.Notifier == nil {
		deps.Notifier = NewToastBoard()
	}
	if deps.Policy == "" {
		deps.Policy = DropLocally
	}
	return &AppContext{
		parser:     deps.Parser,
		directory:  deps.Directory,
		sessions:   deps.Sessions,
		orders:     deps.Orders,
		payments:   deps.Payments,
		notifier:   deps.Notifier,
		policy:     deps.Policy,
		now:        time.Now,
		cart:       newFoodCart(),
		marketCart: newMarketCart(),
	}
}

/*
========================================
 CART
========================================
*/

// AddToCart menambah quantity (default 1) ke line yang sama, atau membuat line baru.
func (a *AppContext) AddToCart(item models.MenuItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	a.mu.Lock()
	a.cart.add(CartItem{MenuItem: item}, quantity)
	a.mu.Unlock()

	a.notifier.Notify(ToastSuccess, fmt.Sprintf("%s added to cart", item.Name))
}

func (a *AppContext) AddProductToCart(product models.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	a.mu.Lock()
	a.marketCart.add(MarketCartItem{Product: product}, quantity)
	a.mu.Unlock()

	a.notifier.Notify(ToastSuccess, fmt.Sprintf("%s added to cart", product.Name))
}

// RemoveFromCart tidak error jika item tidak ada.
func (a *AppContext) RemoveFromCart(itemID string) {
	a.mu.Lock()
	removed := a.cart.remove(itemID)
	a.mu.Unlock()

	if removed {
		a.notifier.Notify(ToastInfo, "Item removed from cart")
	}
}

func (a *AppContext) RemoveProductFromCart(productID string) {
	a.mu.Lock()
	removed := a.marketCart.remove(productID)
	a.mu.Unlock()

	if removed {
		a.notifier.Notify(ToastInfo, "Product removed from cart")
	}
}

// UpdateQuantity menimpa quantity. 0 (atau negatif) sama dengan RemoveFromCart.
func (a *AppContext) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		a.RemoveFromCart(itemID)
		return
	}
	a.mu.Lock()
	a.cart.set(itemID, quantity)
	a.mu.Unlock()
}

func (a *AppContext) UpdateProductQuantity(productID string, quantity int) {
	if quantity <= 0 {
		a.RemoveProductFromCart(productID)
		return
	}
	a.mu.Lock()
	a.marketCart.set(productID, quantity)
	a.mu.Unlock()
}

func (a *AppContext) ClearCart() {
	a.mu.Lock()
	a.cart.clear()
	a.mu.Unlock()
}

func (a *AppContext) ClearMarketCart() {
	a.mu.Lock()
	a.marketCart.clear()
	a.mu.Unlock()
}

// ToggleDiscount membalik flag diskon staf dan mengembalikan nilai barunya.
func (a *AppContext) ToggleDiscount() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.staffDiscount = !a.staffDiscount
	return a.staffDiscount
}

func (a *AppContext) DiscountActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staffDiscount
}

func (a *AppContext) Cart() []CartItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.snapshot()
}

func (a *AppContext) MarketCart() []MarketCartItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.marketCart.snapshot()
}

// CartBreakdown: diskon hanya untuk keranjang makanan.
func (a *AppContext) CartBreakdown() PriceBreakdown {
	a.mu.Lock()
	defer a.mu.Unlock()
	return breakdown(subtotalOf(a.cart.lines), a.staffDiscount)
}

func (a *AppContext) GetCartTotal() float64 {
	return a.CartBreakdown().Total
}

// GetMarketCartTotal tidak pernah didiskon.
func (a *AppContext) GetMarketCartTotal() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return breakdown(subtotalOf(a.marketCart.lines), false).Total
}

// GetCartCount menjumlahkan quantity di kedua keranjang.
func (a *AppContext) GetCartCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.count() + a.marketCart.count()
}

/*
========================================
 USER
========================================
*/

func (a *AppContext) SignIn(user *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := *user
	a.user = &u
	a.loyaltyPoints = u.LoyaltyPoints
}

func (a *AppContext) SignOut() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.orderList = nil
	a.loyaltyPoints = 0
}

func (a *AppContext) User() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *AppContext) LoyaltyPoints() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loyaltyPoints
}

/*
========================================
 TABLE SESSION
========================================
*/

// ScanTable mem-parse payload QR lalu memulai sesi. Payload tidak valid tidak menyentuh store.
func (a *AppContext) ScanTable(ctx context.Context, raw string, guestCount *int) (*models.TableSession, error) {
	ref, err := a.parser.Parse(raw)
	if err != nil {
		a.notifier.Notify(ToastError, "Invalid QR code. Please try again.")
		return nil, err
	}
	return a.StartTableSession(ctx, ref, guestCount)
}

// StartTableSession me-resolve meja (token -> id -> nomor), memulai atau bergabung
// ke sesi active, lalu mengosongkan keranjang makanan.
func (a *AppContext) StartTableSession(ctx context.Context, ref TableReference, guestCount *int) (*models.TableSession, error) {
	a.mu.Lock()
	if a.scanning {
		a.mu.Unlock()
		return nil, ErrScanInProgress
	}
	a.scanning = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.scanning = false
		a.mu.Unlock()
	}()

	table, kind, err := a.directory.Resolve(ctx, ref)
	if err == nil && !table.IsActive {
		err = ErrTableNotFound
	}
	if err != nil {
		utils.ErrorLogger.Printf("Table resolution failed: %v", err)
		if errors.Is(err, ErrTableNotFound) {
			a.notifier.Notify(ToastError, "Table not found. Please scan again.")
			return nil, err
		}
		a.notifier.Notify(ToastError, "Failed to start table session")
		return nil, fmt.Errorf("%w: %w", ErrSessionStartFailed, err)
	}
	utils.InfoLogger.Printf("Table %s resolved by %s", table.TableNumber, kind)

	session, err := a.sessions.StartSession(ctx, table.ID, guestCount)
	if err != nil {
		a.notifier.Notify(ToastError, "Failed to start table session")
		return nil, err
	}

	a.mu.Lock()
	a.cart.clear()
	s := *session
	a.session = &s
	a.mu.Unlock()

	a.notifier.Notify(ToastSuccess, fmt.Sprintf("Seated at Table %s", session.TableNumber))
	return session, nil
}

// EndTableSession menutup sesi yang terikat. Jika gagal, sesi lokal dan keranjang tidak diubah.
func (a *AppContext) EndTableSession(ctx context.Context) (*models.TableSession, error) {
	a.mu.Lock()
	bound := a.session
	a.mu.Unlock()
	if bound == nil {
		return nil, ErrNoActiveSession
	}

	closed, err := a.sessions.EndSession(ctx, bound.ID)
	if err != nil {
		a.notifier.Notify(ToastError, "Failed to end table session")
		return nil, err
	}

	a.mu.Lock()
	if a.session != nil && a.session.ID == bound.ID {
		a.session = nil
	}
	a.cart.clear()
	a.mu.Unlock()

	a.notifier.Notify(ToastInfo, fmt.Sprintf("Table %s session ended", closed.TableNumber))
	return closed, nil
}

// ActiveSession mengembalikan salinan sesi yang terikat secara lokal.
func (a *AppContext) ActiveSession() *models.TableSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// RefreshSession menyamakan sesi lokal dengan store. Jika sesi sudah ditutup di
// tempat lain, ikatan lokal dan keranjang dilepas.
func (a *AppContext) RefreshSession(ctx context.Context) (*models.TableSession, error) {
	a.mu.Lock()
	bound := a.session
	a.mu.Unlock()
	if bound == nil {
		return nil, nil
	}

	current, err := a.sessions.GetActiveSession(ctx, bound.TableID)
	if err != nil {
		// store tidak bisa dibaca: pertahankan cermin lokal
		return bound, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil || a.session.ID != bound.ID {
		return a.session, nil
	}
	if current == nil || current.ID != bound.ID {
		a.session = nil
		a.cart.clear()
		return nil, nil
	}
	return bound, nil
}

/*
========================================
 ORDERS
========================================
*/

type CheckoutRequest struct {
	PickupTime          string `json:"pickup_time"`
	SpecialInstructions string `json:"special_instructions"`
	PaymentMethod       string `json:"payment_method" binding:"required"`
}

// Checkout memotret keranjang makanan menjadi order, menagih lewat gateway,
// lalu menyimpan order. Hanya line yang dipotret yang dikeluarkan dari keranjang.
func (a *AppContext) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		a.notifier.Notify(ToastError, "Please sign in to place an order")
		return nil, ErrNotAuthenticated
	}
	if a.checkingOut {
		a.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if len(a.cart.lines) == 0 {
		a.mu.Unlock()
		return nil, ErrEmptyCart
	}
	a.checkingOut = true
	defer func() {
		a.mu.Lock()
		a.checkingOut = false
		a.mu.Unlock()
	}()

	taken := a.cart.snapshot()
	prices := breakdown(subtotalOf(taken), a.staffDiscount)
	lines := make([]models.OrderLine, 0, len(taken))
	for _, l := range taken {
		lines = append(lines, models.OrderLine{
			ItemID:   l.ID,
			Name:     l.Name,
			Category: l.Category,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}

	order := &models.Order{
		Items:               lines,
		Subtotal:            prices.Subtotal,
		Discount:            prices.Discount,
		Total:               prices.Total,
		OrderType:           models.OrderTypeTakeaway,
		PickupTime:          req.PickupTime,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       req.PaymentMethod,
	}
	if a.session != nil {
		tableID, sessionID := a.session.TableID, a.session.ID
		order.TableID = &tableID
		order.SessionID = &sessionID
		order.OrderType = models.OrderTypeDineIn
	}
	a.mu.Unlock()

	var charge *PaymentResult
	if a.payments != nil {
		result, err := a.payments.Charge(ctx, req.PaymentMethod, order.Total)
		if err != nil {
			a.notifier.Notify(ToastError, "Payment failed. Please try another method.")
			return nil, err
		}
		charge = result
	}

	return a.placeOrder(ctx, order, taken, charge)
}

// CreateOrder mensyaratkan user yang sudah login. Keranjang makanan dan flag diskon
// dikosongkan, dan order ditampilkan lokal, kecuali policy SurfaceError dan
// penyimpanan gagal.
func (a *AppContext) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return a.placeOrder(ctx, order, nil, nil)
}

// placeOrder: taken nil berarti seluruh keranjang makanan dikosongkan.
func (a *AppContext) placeOrder(ctx context.Context, order *models.Order, taken []CartItem, charge *PaymentResult) (*models.Order, error) {
	a.mu.Lock()
	user := a.user
	a.mu.Unlock()
	if user == nil {
		a.notifier.Notify(ToastError, "Please sign in to place an order")
		return nil, ErrNotAuthenticated
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CustomerID == "" {
		order.CustomerID = user.ID
	}
	if order.CustomerName == "" {
		order.CustomerName = user.Name
	}
	if order.OrderType == "" {
		order.OrderType = models.OrderTypeTakeaway
	}
	order.Status = models.OrderPending
	now := a.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := a.orders.Validate(order); err != nil {
		a.notifier.Notify(ToastError, "Order details are incomplete")
		return nil, err
	}

	persistErr := a.orders.Persist(ctx, order)
	if persistErr != nil && charge != nil {
		// pembayaran sudah tertagih; referensi dicatat untuk rekonsiliasi/refund
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id":    order.ID,
			"payment_ref": charge.ReferenceID,
			"method":      charge.Method,
			"amount":      charge.Amount,
			"policy":      a.policy,
		}).Error("Payment captured but order not saved")
	}
	if persistErr != nil && a.policy == SurfaceError {
		a.notifier.Notify(ToastError, "Could not place order. Please try again.")
		return nil, persistErr
	}

	a.mu.Lock()
	a.orderList = append([]models.Order{*order}, a.orderList...)
	a.loyaltyPoints += LoyaltyPointsPerOrder
	if a.user != nil && a.user.ID == user.ID {
		a.user.LoyaltyPoints = a.loyaltyPoints
	}
	if taken == nil {
		a.cart.clear()
	} else {
		a.cart.consume(taken)
	}
	a.staffDiscount = false
	if persistErr != nil && a.policy == QueueForRetry {
		a.pending = append(a.pending, *order)
	}
	a.mu.Unlock()

	if persistErr != nil {
		utils.ErrorLogger.Printf("Order %s kept locally only (policy=%s): %v", order.ID, a.policy, persistErr)
	}
	a.notifier.Notify(ToastSuccess, fmt.Sprintf("Order placed. Total %s", utils.FormatPriceHKD(order.Total)))
	return order, nil
}

// Orders mengembalikan daftar order lokal, terbaru dulu.
func (a *AppContext) Orders() []models.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Order, len(a.orderList))
	copy(out, a.orderList)
	return out
}

// PendingOrders adalah order yang menunggu RetryPendingOrders.
func (a *AppContext) PendingOrders() []models.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Order, len(a.pending))
	copy(out, a.pending)
	return out
}

// LoadOrders memuat riwayat order dari store. Kegagalan baca tidak dianggap fatal:
// daftar lokal yang dikembalikan.
func (a *AppContext) LoadOrders(ctx context.Context) []models.Order {
	a.mu.Lock()
	user := a.user
	a.mu.Unlock()
	if user == nil {
		return a.Orders()
	}

	remote, err := a.orders.ListForCustomer(ctx, user.ID)
	if err != nil {
		utils.ErrorLogger.Printf("Error loading orders for %s: %v", user.ID, err)
		return a.Orders()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	seen := make(map[string]bool, len(remote))
	for _, o := range remote {
		seen[o.ID] = true
	}
	merged := make([]models.Order, 0, len(remote)+len(a.orderList))
	for _, o := range a.orderList {
		if !seen[o.ID] {
			merged = append(merged, o)
		}
	}
	merged = append(merged, remote...)
	a.orderList = merged

	out := make([]models.Order, len(merged))
	copy(out, merged)
	return out
}

// RetryPendingOrders mencoba menyimpan ulang order di antrian. Mengembalikan jumlah yang berhasil.
func (a *AppContext) RetryPendingOrders(ctx context.Context) (int, error) {
	a.mu.Lock()
	queue := a.pending
	a.pending = nil
	a.mu.Unlock()

	saved := 0
	var failed []models.Order
	var lastErr error
	for i := range queue {
		order := queue[i]
		if err := a.orders.Persist(ctx, &order); err != nil {
			failed = append(failed, order)
			lastErr = err
			continue
		}
		saved++
	}

	if len(failed) > 0 {
		a.mu.Lock()
		a.pending = append(failed, a.pending...)
		a.mu.Unlock()
	}
	return saved, lastErr
}
