package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table adalah meja fisik. ActiveSessionID hanya petunjuk: sesi yang dirujuk
// harus tetap dicek statusnya sebelum dianggap aktif.
type Table struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TableNumber     string    `gorm:"type:varchar(50);not null;index" json:"table_number"`
	LocationID      *string   `gorm:"type:varchar(50)" json:"location_id,omitempty"`
	Capacity        int       `gorm:"not null" json:"capacity"`
	QRCodeToken     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	ActiveSessionID *string   `gorm:"type:varchar(36)" json:"active_session_id,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.QRCodeToken == "" {
		t.QRCodeToken = NewQRToken()
	}
	return nil
}

// NewQRToken menghasilkan token tanpa tanda hubung supaya aman dipakai
// di format "table-{id}-{token}".
func NewQRToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Location mengembalikan lokasi meja, "main" jika kosong.
func (t *Table) Location() string {
	if t.LocationID == nil || *t.LocationID == "" {
		return "main"
	}
	return *t.LocationID
}
