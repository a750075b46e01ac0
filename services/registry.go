package services

import (
	"sync"
	"time"
)

// AppRegistry memegang satu AppContext per device. Tidak ada singleton global:
// router menerima registry lewat injeksi.
type AppRegistry struct {
	mu       sync.Mutex
	contexts map[string]*AppContext
	toasts   map[string]*ToastBoard
	lastSeen map[string]time.Time
	factory  func(notifier Notifier) *AppContext
	now      func() time.Time
}

// NewAppRegistry: factory dipanggil sekali per device dengan ToastBoard miliknya.
func NewAppRegistry(factory func(notifier Notifier) *AppContext) *AppRegistry {
	return &AppRegistry{
		contexts: make(map[string]*AppContext),
		toasts:   make(map[string]*ToastBoard),
		lastSeen: make(map[string]time.Time),
		factory:  factory,
		now:      time.Now,
	}
}

// Get mengembalikan AppContext device, membuatnya bila belum ada.
func (r *AppRegistry) Get(deviceID string) *AppContext {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastSeen[deviceID] = r.now()
	if app, ok := r.contexts[deviceID]; ok {
		return app
	}
	board := NewToastBoard()
	app := r.factory(board)
	r.contexts[deviceID] = app
	r.toasts[deviceID] = board
	return app
}

// Toasts mengembalikan papan toast device (nil jika device belum pernah terlihat).
func (r *AppRegistry) Toasts(deviceID string) *ToastBoard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toasts[deviceID]
}

func (r *AppRegistry) Remove(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(deviceID)
}

func (r *AppRegistry) removeLocked(deviceID string) {
	delete(r.contexts, deviceID)
	delete(r.toasts, deviceID)
	delete(r.lastSeen, deviceID)
}

// SignOutUser melepas user dari semua device yang terikat padanya.
// Mengembalikan jumlah device yang di-sign-out.
func (r *AppRegistry) SignOutUser(userID string) int {
	if userID == "" {
		return 0
	}
	r.mu.Lock()
	apps := make([]*AppContext, 0, len(r.contexts))
	for _, app := range r.contexts {
		apps = append(apps, app)
	}
	r.mu.Unlock()

	signedOut := 0
	for _, app := range apps {
		if u := app.User(); u != nil && u.ID == userID {
			app.SignOut()
			signedOut++
		}
	}
	return signedOut
}

// Evict membuang device yang tidak terlihat selama idle. Device dengan order
// yang masih menunggu sinkronisasi tidak dibuang.
func (r *AppRegistry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	evicted := 0
	for deviceID, seen := range r.lastSeen {
		if !seen.Before(cutoff) {
			continue
		}
		if app := r.contexts[deviceID]; app != nil && len(app.PendingOrders()) > 0 {
			continue
		}
		r.removeLocked(deviceID)
		evicted++
	}
	return evicted
}

func (r *AppRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}
