package models

import "time"

type MenuItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(20)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	ChineseName string    `gorm:"type:varchar(255)" json:"chinese_name,omitempty"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string    `gorm:"type:varchar(50);not null;index" json:"category"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Available   bool      `gorm:"not null" json:"available"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

const (
	ProductBeans       = "beans"
	ProductEquipment   = "equipment"
	ProductAccessories = "accessories"
)

// Product adalah barang marketplace (biji kopi, alat, aksesoris).
type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(20)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string    `gorm:"type:varchar(20);not null" json:"category"`
	InStock     bool      `gorm:"not null" json:"in_stock"`
	Featured    bool      `gorm:"not null" json:"featured"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
