package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cohee-app/cache"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// TableSessionManager menjalankan siklus NoSession -> active -> {completed, cancelled}.
// Keputusan membuat sesi baru selalu diambil dari store, bukan dari cache atau lock lokal.
type TableSessionManager struct {
	db    *gorm.DB
	cache cache.SessionCache
	now   func() time.Time
}

func NewTableSessionManager(db *gorm.DB, sessionCache cache.SessionCache) *TableSessionManager {
	if sessionCache == nil {
		sessionCache = cache.NoopCache{}
	}
	return &TableSessionManager{
		db:    db,
		cache: sessionCache,
		now:   time.Now,
	}
}

// StartSession mengembalikan sesi active yang sudah ada, atau membuat yang baru
// sekaligus memasang pointer active_session_id di meja dalam satu transaksi.
func (m *TableSessionManager) StartSession(ctx context.Context, tableID string, guestCount *int) (*models.TableSession, error) {
	var table models.Table
	if err := m.db.WithContext(ctx).First(&table, "id = ?", tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrSessionStartFailed, ErrTableNotFound)
		}
		utils.ErrorLogger.Printf("Error loading table %s: %v", tableID, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionStartFailed, err)
	}

	existing, err := m.findActive(ctx, m.db, tableID)
	if err != nil {
		utils.ErrorLogger.Printf("Error checking active session on table %s: %v", tableID, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionStartFailed, err)
	}
	if existing != nil {
		m.repairPointer(ctx, &table, existing)
		m.cacheSet(ctx, existing)
		utils.InfoLogger.Printf("Rejoined active session %s on table %s", existing.ID, table.TableNumber)
		return existing, nil
	}

	session := &models.TableSession{
		TableID:       table.ID,
		TableNumber:   table.TableNumber,
		StartedAt:     m.now(),
		Status:        models.SessionActive,
		TotalGuests:   guestCount,
		ActiveTableID: &table.ID,
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// cek ulang di dalam transaksi
		winner, err := m.findActive(ctx, tx, table.ID)
		if err != nil {
			return err
		}
		if winner != nil {
			session = winner
			return nil
		}

		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return tx.Model(&models.Table{}).
			Where("id = ?", table.ID).
			Update("active_session_id", session.ID).Error
	})
	if err != nil {
		// Kalau kalah balapan dengan scan lain, unique index menolak insert kita;
		// sesi pemenang yang dikembalikan.
		if winner, qerr := m.findActive(ctx, m.db, table.ID); qerr == nil && winner != nil {
			utils.InfoLogger.Printf("Concurrent start on table %s resolved to session %s", table.TableNumber, winner.ID)
			m.cacheSet(ctx, winner)
			return winner, nil
		}
		utils.ErrorLogger.Printf("Error starting session on table %s: %v", table.TableNumber, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionStartFailed, err)
	}

	m.cacheSet(ctx, session)
	utils.InfoLogger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"table":      table.TableNumber,
	}).Info("Table session started")
	return session, nil
}

// EndSession menandai sesi completed dan mengosongkan pointer meja.
func (m *TableSessionManager) EndSession(ctx context.Context, sessionID string) (*models.TableSession, error) {
	return m.closeSession(ctx, sessionID, models.SessionCompleted)
}

// CancelSession sama seperti EndSession tetapi statusnya cancelled.
func (m *TableSessionManager) CancelSession(ctx context.Context, sessionID string) (*models.TableSession, error) {
	return m.closeSession(ctx, sessionID, models.SessionCancelled)
}

func (m *TableSessionManager) closeSession(ctx context.Context, sessionID string, status models.SessionStatus) (*models.TableSession, error) {
	var closed models.TableSession

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&closed, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if closed.Status != models.SessionActive {
			return ErrSessionNotActive
		}

		endedAt := m.now()
		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionActive).
			Updates(map[string]interface{}{
				"status":          status,
				"ended_at":        endedAt,
				"active_table_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionNotActive
		}

		if err := tx.Model(&models.Table{}).
			Where("id = ? AND active_session_id = ?", closed.TableID, closed.ID).
			Update("active_session_id", nil).Error; err != nil {
			return err
		}

		closed.Status = status
		closed.EndedAt = &endedAt
		closed.ActiveTableID = nil
		return nil
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error closing session %s as %s: %v", sessionID, status, err)
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionNotActive) {
			return nil, fmt.Errorf("%w: %w", ErrSessionEndFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionEndFailed, err)
	}

	if cerr := m.cache.Delete(ctx, closed.TableID); cerr != nil {
		utils.ErrorLogger.Printf("Session cache delete error: %v", cerr)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"session_id": closed.ID,
		"table":      closed.TableNumber,
		"status":     status,
	}).Info("Table session closed")
	return &closed, nil
}

// GetActiveSession memakai cache hanya sebagai petunjuk id; status selalu
// dikonfirmasi ke store lewat primary key. (nil, nil) jika meja tidak punya sesi active.
func (m *TableSessionManager) GetActiveSession(ctx context.Context, tableID string) (*models.TableSession, error) {
	cached, err := m.cache.Get(ctx, tableID)
	switch {
	case err == nil && cached.TableID == tableID:
		stored, gerr := m.GetSession(ctx, cached.ID)
		if gerr == nil && stored.IsActive() && stored.TableID == tableID {
			return stored, nil
		}
		if gerr != nil && !errors.Is(gerr, ErrSessionNotFound) {
			utils.ErrorLogger.Printf("Error confirming cached session %s: %v", cached.ID, gerr)
			return nil, gerr
		}
		// entri basi: sesi sudah ditutup tapi delete cache gagal atau kalah balapan
		if derr := m.cache.Delete(ctx, tableID); derr != nil {
			utils.ErrorLogger.Printf("Session cache delete error: %v", derr)
		}
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		utils.ErrorLogger.Printf("Session cache get error: %v", err)
	}

	session, err := m.findActive(ctx, m.db, tableID)
	if err != nil {
		utils.ErrorLogger.Printf("Error reading active session for table %s: %v", tableID, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if session != nil {
		m.cacheSet(ctx, session)
	}
	return session, nil
}

// SessionForTable mengikuti pointer active_session_id. Pointer yang merujuk sesi
// yang sudah tidak active (atau milik meja lain) dianggap tidak ada sesi.
func (m *TableSessionManager) SessionForTable(ctx context.Context, table *models.Table) (*models.TableSession, error) {
	if table.ActiveSessionID == nil || *table.ActiveSessionID == "" {
		return nil, nil
	}

	session, err := m.GetSession(ctx, *table.ActiveSessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !session.IsActive() || session.TableID != table.ID {
		return nil, nil
	}
	return session, nil
}

func (m *TableSessionManager) GetSession(ctx context.Context, sessionID string) (*models.TableSession, error) {
	var session models.TableSession
	err := m.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return &session, nil
}

// SessionHistory mengembalikan seluruh sesi sebuah meja, terbaru dulu.
func (m *TableSessionManager) SessionHistory(ctx context.Context, tableID string) ([]models.TableSession, error) {
	var sessions []models.TableSession
	if err := m.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("started_at desc").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return sessions, nil
}

// ActiveSessions mengembalikan semua sesi active, terlama dulu.
func (m *TableSessionManager) ActiveSessions(ctx context.Context) ([]models.TableSession, error) {
	var sessions []models.TableSession
	if err := m.db.WithContext(ctx).
		Where("status = ?", models.SessionActive).
		Order("started_at asc").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return sessions, nil
}

// StaleSessions: sesi active yang dimulai sebelum cutoff.
func (m *TableSessionManager) StaleSessions(ctx context.Context, cutoff time.Time) ([]models.TableSession, error) {
	var sessions []models.TableSession
	if err := m.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", models.SessionActive, cutoff).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return sessions, nil
}

func (m *TableSessionManager) findActive(ctx context.Context, db *gorm.DB, tableID string) (*models.TableSession, error) {
	var session models.TableSession
	err := db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, models.SessionActive).
		Order("started_at asc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// repairPointer memperbaiki pointer meja yang tertinggal dari penulisan sebelumnya.
func (m *TableSessionManager) repairPointer(ctx context.Context, table *models.Table, session *models.TableSession) {
	if table.ActiveSessionID != nil && *table.ActiveSessionID == session.ID {
		return
	}
	if err := m.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ?", table.ID).
		Update("active_session_id", session.ID).Error; err != nil {
		utils.ErrorLogger.Printf("Error repairing active session pointer on table %s: %v", table.TableNumber, err)
	}
}

func (m *TableSessionManager) cacheSet(ctx context.Context, session *models.TableSession) {
	if err := m.cache.Set(ctx, session); err != nil {
		utils.ErrorLogger.Printf("Session cache set error: %v", err)
	}
}
