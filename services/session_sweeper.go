package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
)

// SessionSweeper membatalkan sesi active yang ditinggal terlalu lama.
type SessionSweeper struct {
	sessions  *TableSessionManager
	maxAge    time.Duration
	scheduler gocron.Scheduler
	now       func() time.Time

	// OnCancel dipanggil untuk setiap sesi yang dibatalkan sweeper.
	OnCancel func(session *models.TableSession)

	// Devices (opsional): AppContext device yang idle lebih lama dari DeviceIdle dibuang.
	Devices    *AppRegistry
	DeviceIdle time.Duration
}

func NewSessionSweeper(sessions *TableSessionManager, maxAge time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Sweep menjalankan satu putaran dan mengembalikan jumlah sesi yang dibatalkan.
func (s *SessionSweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.maxAge)

	stale, err := s.sessions.StaleSessions(ctx, cutoff)
	if err != nil {
		utils.ErrorLogger.Printf("[CRON] Error scanning stale sessions: %v", err)
		return 0
	}

	cancelled := 0
	for _, session := range stale {
		closed, err := s.sessions.CancelSession(ctx, session.ID)
		if err != nil {
			// bisa saja sudah ditutup pelanggan di antara query dan cancel
			utils.ErrorLogger.Printf("[CRON] Error cancelling session %s: %v", session.ID, err)
			continue
		}
		cancelled++
		if s.OnCancel != nil {
			s.OnCancel(closed)
		}
	}

	if cancelled > 0 {
		utils.InfoLogger.Printf("[CRON] Cancelled %d stale table session(s) older than %s", cancelled, s.maxAge)
	}
	return cancelled
}

// SweepDevices membuang AppContext device yang sudah idle.
func (s *SessionSweeper) SweepDevices() int {
	if s.Devices == nil || s.DeviceIdle <= 0 {
		return 0
	}
	evicted := s.Devices.Evict(s.DeviceIdle)
	if evicted > 0 {
		utils.InfoLogger.Printf("[CRON] Evicted %d device context(s) idle for %s", evicted, s.DeviceIdle)
	}
	return evicted
}

// Start menjadwalkan Sweep (dan SweepDevices) setiap interval.
func (s *SessionSweeper) Start(interval time.Duration) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			s.Sweep(context.Background())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	if s.Devices != nil {
		_, err = scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				s.SweepDevices()
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	s.scheduler = scheduler
	scheduler.Start()
	utils.InfoLogger.Printf("Session sweeper started (every %s, max age %s)", interval, s.maxAge)
	return nil
}

func (s *SessionSweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}
