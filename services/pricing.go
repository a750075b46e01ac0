package services

import (
	"github.com/shopspring/decimal"
)

// StaffDiscountPercent adalah potongan staf untuk keranjang makanan.
const StaffDiscountPercent = 10

type priced interface {
	UnitPrice() float64
	Qty() int
}

func subtotalOf[T priced](lines []T) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice()).Mul(decimal.NewFromInt(int64(l.Qty()))))
	}
	return sum
}

// PriceBreakdown dihitung dalam decimal lalu dibulatkan ke sen.
type PriceBreakdown struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

func breakdown(subtotal decimal.Decimal, discounted bool) PriceBreakdown {
	discount := decimal.Zero
	if discounted {
		discount = subtotal.Mul(decimal.NewFromInt(StaffDiscountPercent)).Div(decimal.NewFromInt(100)).Round(2)
	}
	subtotal = subtotal.Round(2)
	return PriceBreakdown{
		Subtotal: subtotal.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Total:    subtotal.Sub(discount).InexactFloat64(),
	}
}
