package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

const (
	OrderTypeTakeaway = "takeaway"
	OrderTypeDineIn   = "dine-in"
)

// OrderLine adalah snapshot item saat checkout, lepas dari data menu live.
type OrderLine struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

type Order struct {
	ID                  string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID          string      `gorm:"type:varchar(36);index" json:"customer_id" validate:"required"`
	CustomerName        string      `gorm:"type:varchar(255)" json:"customer"`
	Items               []OrderLine `gorm:"serializer:json;type:text" json:"items" validate:"required,min=1,dive"`
	Subtotal            float64     `gorm:"type:decimal(10,2);not null" json:"subtotal" validate:"gte=0"`
	Discount            float64     `gorm:"type:decimal(10,2);not null" json:"discount" validate:"gte=0"`
	Total               float64     `gorm:"type:decimal(10,2);not null" json:"total" validate:"gte=0"`
	Status              OrderStatus `gorm:"type:varchar(20);not null;index" json:"status" validate:"required"`
	OrderType           string      `gorm:"type:varchar(20);not null" json:"order_type" validate:"oneof=takeaway dine-in"`
	PickupTime          string      `gorm:"type:varchar(20)" json:"pickup_time" validate:"max=20"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions,omitempty" validate:"max=500"`
	PaymentMethod       string      `gorm:"type:varchar(30)" json:"payment_method" validate:"omitempty,max=30"`
	TableID             *string     `gorm:"type:varchar(36);index" json:"table_id,omitempty"`
	SessionID           *string     `gorm:"type:varchar(36);index" json:"session_id,omitempty"`
	CreatedAt           time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"not null" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// ItemCount menjumlahkan quantity seluruh line.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}
