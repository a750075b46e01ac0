package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// PersistFailurePolicy menentukan apa yang terjadi di sisi lokal ketika order gagal disimpan.
type PersistFailurePolicy string

const (
	// DropLocally: order tetap tampil lokal dan keranjang dikosongkan; penulisan remote dibuang.
	DropLocally PersistFailurePolicy = "drop_locally"
	// QueueForRetry: seperti DropLocally tetapi order diantrikan untuk RetryPendingOrders.
	QueueForRetry PersistFailurePolicy = "queue_for_retry"
	// SurfaceError: tidak ada perubahan lokal, error dikembalikan ke pemanggil.
	SurfaceError PersistFailurePolicy = "surface_error"
)

func ParsePersistFailurePolicy(s string) (PersistFailurePolicy, error) {
	switch p := PersistFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DropLocally, QueueForRetry, SurfaceError:
		return p, nil
	case "":
		return DropLocally, nil
	default:
		return "", fmt.Errorf("unknown order persist failure policy %q", s)
	}
}

// LoyaltyPointsPerOrder: poin bertambah per order, bukan per dolar.
const LoyaltyPointsPerOrder = 1

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderReady},
	models.OrderReady:     {models.OrderCompleted},
}

// CanTransition melaporkan apakah status order boleh berpindah from -> to.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:       db,
		validate: validator.New(),
	}
}

// Validate memeriksa field order dan invarian total = subtotal - discount.
func (s *OrderService) Validate(order *models.Order) error {
	if err := s.validate.Struct(order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	if math.Abs(order.Subtotal-order.Discount-order.Total) > 0.005 {
		return fmt.Errorf("%w: total %.2f does not equal subtotal %.2f minus discount %.2f",
			ErrInvalidOrder, order.Total, order.Subtotal, order.Discount)
	}
	return nil
}

// Persist menyimpan order dan menambah poin loyalitas customer dalam satu transaksi.
func (s *OrderService) Persist(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", order.CustomerID).
			UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", LoyaltyPointsPerOrder)).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error persisting order %s: %v", order.ID, err)
		return fmt.Errorf("%w: %v", ErrOrderPersistFailed, err)
	}
	utils.InfoLogger.Printf("Order %s saved (customer=%s, total=%s)", order.ID, order.CustomerID, utils.FormatPriceHKD(order.Total))
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return &order, nil
}

// ListForCustomer mengembalikan order milik customer, terbaru dulu.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return orders, nil
}

// List untuk back-office. Status kosong = semua.
func (s *OrderService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return orders, nil
}

// UpdateStatus memajukan status order mengikuti orderTransitions.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !CanTransition(order.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, next)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s changed concurrently", ErrInvalidStatusTransition, id)
		}
		order.Status = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		utils.ErrorLogger.Printf("Error updating order %s status: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	utils.InfoLogger.Printf("Order %s status changed to %s", id, next)
	return &order, nil
}
