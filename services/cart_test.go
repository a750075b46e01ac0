package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAddCoalescesAndUpdateOverwrites(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	latte := menuItem("c6", 38)

	app.AddToCart(latte, 1)
	app.AddToCart(latte, 1)
	cart := app.Cart()
	assert.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	app.UpdateQuantity("c6", 5)
	assert.Equal(t, 5, app.Cart()[0].Quantity)

	app.UpdateQuantity("c6", 0)
	assert.Empty(t, app.Cart())
}

func TestAddDefaultsToOne(t *testing.T) {
	app := NewAppContext(AppContextDeps{})

	app.AddToCart(menuItem("c1", 28), 0)
	app.AddProductToCart(product("p1", 120), -3)

	assert.Equal(t, 1, app.Cart()[0].Quantity)
	assert.Equal(t, 1, app.MarketCart()[0].Quantity)
}

func TestRemoveIsIdempotent(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	app.AddToCart(menuItem("c1", 28), 1)

	app.RemoveFromCart("missing")
	app.RemoveProductFromCart("missing")
	assert.Len(t, app.Cart(), 1)

	app.RemoveFromCart("c1")
	app.RemoveFromCart("c1")
	assert.Empty(t, app.Cart())
}

func TestUpdateUnknownLineIsIgnored(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	app.UpdateQuantity("ghost", 3)
	app.UpdateProductQuantity("ghost", 3)

	assert.Empty(t, app.Cart())
	assert.Empty(t, app.MarketCart())
}

func TestCartOrderIsInsertionOrder(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	app.AddToCart(menuItem("b", 1), 1)
	app.AddToCart(menuItem("a", 1), 1)
	app.AddToCart(menuItem("b", 1), 1)

	cart := app.Cart()
	assert.Equal(t, "b", cart[0].ID)
	assert.Equal(t, "a", cart[1].ID)
}

func TestDiscountAppliesToFoodCartOnly(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	app.AddToCart(menuItem("f1", 40), 2)
	app.AddToCart(menuItem("f2", 20), 1)
	app.AddProductToCart(product("p1", 25), 2)

	assert.Equal(t, 100.0, app.GetCartTotal())
	assert.Equal(t, 50.0, app.GetMarketCartTotal())

	assert.True(t, app.ToggleDiscount())
	assert.Equal(t, 90.0, app.GetCartTotal())
	assert.Equal(t, 50.0, app.GetMarketCartTotal())
	assert.Equal(t, 5, app.GetCartCount())

	b := app.CartBreakdown()
	assert.Equal(t, 100.0, b.Subtotal)
	assert.Equal(t, 10.0, b.Discount)

	assert.False(t, app.ToggleDiscount())
	assert.Equal(t, 100.0, app.GetCartTotal())
}

func TestClearCarts(t *testing.T) {
	app := NewAppContext(AppContextDeps{})
	app.AddToCart(menuItem("f1", 40), 1)
	app.AddProductToCart(product("p1", 25), 1)

	app.ClearCart()
	assert.Empty(t, app.Cart())
	assert.Len(t, app.MarketCart(), 1)

	app.ClearMarketCart()
	assert.Zero(t, app.GetCartCount())
}

func TestBreakdownRoundsToCents(t *testing.T) {
	b := breakdown(decimal.RequireFromString("38.35"), true)
	assert.Equal(t, 38.35, b.Subtotal)
	assert.Equal(t, 3.84, b.Discount)
	assert.Equal(t, 34.51, b.Total)

	lines := []CartItem{
		{MenuItem: menuItem("a", 0.1), Quantity: 3},
		{MenuItem: menuItem("b", 0.2), Quantity: 1},
	}
	assert.True(t, subtotalOf(lines).Equal(decimal.RequireFromString("0.5")))
}
