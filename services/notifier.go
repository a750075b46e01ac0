package services

import (
	"sync"
	"time"

	"github.com/yeremiapane/cohee-app/utils"
)

type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

type Toast struct {
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Notifier adalah saluran samping untuk pesan ke pengguna (toast).
type Notifier interface {
	Notify(level ToastLevel, message string)
}

// ToastBoard menyimpan toast terakhir, seperti toastMessage di aplikasi mobile.
type ToastBoard struct {
	mu   sync.Mutex
	last Toast
	ttl  time.Duration
}

func NewToastBoard() *ToastBoard {
	return &ToastBoard{ttl: 3 * time.Second}
}

func (b *ToastBoard) Notify(level ToastLevel, message string) {
	b.mu.Lock()
	b.last = Toast{Level: level, Message: message, At: time.Now()}
	b.mu.Unlock()

	if level == ToastError {
		utils.ErrorLogger.Printf("toast: %s", message)
		return
	}
	utils.InfoLogger.Debugf("toast: %s", message)
}

// Latest mengembalikan toast terakhir; kosong jika sudah lewat ttl.
func (b *ToastBoard) Latest() (Toast, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last.Message == "" || time.Since(b.last.At) > b.ttl {
		return Toast{}, false
	}
	return b.last, true
}
