package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/cohee-app/utils"
)

// Metode pembayaran yang tersedia di checkout
const (
	PaymentApplePay   = "apple_pay"
	PaymentCreditCard = "credit_card"
	PaymentPayMe      = "payme"
	PaymentFPS        = "fps"
	PaymentAlipay     = "alipay"
	PaymentWeChat     = "wechat"
)

var PaymentMethods = []string{
	PaymentApplePay,
	PaymentCreditCard,
	PaymentPayMe,
	PaymentFPS,
	PaymentAlipay,
	PaymentWeChat,
}

func IsPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

type PaymentResult struct {
	ReferenceID string    `json:"reference_id"`
	Method      string    `json:"method"`
	Amount      float64   `json:"amount"`
	PaidAt      time.Time `json:"paid_at"`
}

// PaymentGateway adalah gateway eksternal; hanya sukses atau gagal.
type PaymentGateway interface {
	Charge(ctx context.Context, method string, amount float64) (*PaymentResult, error)
}

// MockPaymentGateway mensimulasikan latensi pembayaran dan bisa menolak metode tertentu.
type MockPaymentGateway struct {
	Delay       time.Duration
	DeclineList map[string]bool
}

func NewMockPaymentGateway(delay time.Duration) *MockPaymentGateway {
	return &MockPaymentGateway{
		Delay:       delay,
		DeclineList: make(map[string]bool),
	}
}

func (g *MockPaymentGateway) Charge(ctx context.Context, method string, amount float64) (*PaymentResult, error) {
	if !IsPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrPaymentDeclined, method)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentDeclined)
	}

	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if g.DeclineList[method] {
		utils.InfoLogger.Printf("Mock payment declined (method=%s, amount=%s)", method, utils.FormatPriceHKD(amount))
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, method)
	}

	return &PaymentResult{
		ReferenceID: "PAY-" + uuid.NewString()[:8],
		Method:      method,
		Amount:      amount,
		PaidAt:      time.Now(),
	}, nil
}
