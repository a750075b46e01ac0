package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsTerminal: completed dan cancelled tidak bisa kembali ke active.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

type TableSession struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TableID     string        `gorm:"type:varchar(36);not null;index" json:"table_id"`
	TableNumber string        `gorm:"type:varchar(50)" json:"table_number"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	EndedAt     *time.Time    `json:"ended_at,omitempty"`
	Status      SessionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalGuests *int          `json:"total_guests,omitempty"`

	// ActiveTableID = TableID selama sesi active, NULL setelahnya. Unique index
	// di kolom ini menjamin satu sesi active per meja di level store.
	ActiveTableID *string `gorm:"type:varchar(36);uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (s *TableSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *TableSession) IsActive() bool {
	return s.Status == SessionActive && s.EndedAt == nil
}
