package services

import "github.com/yeremiapane/cohee-app/models"

// CartItem adalah satu line keranjang makanan.
type CartItem struct {
	models.MenuItem
	Quantity int `json:"quantity"`
}

func (c CartItem) UnitPrice() float64 { return c.Price }
func (c CartItem) Qty() int           { return c.Quantity }

// MarketCartItem adalah satu line keranjang marketplace.
type MarketCartItem struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (c MarketCartItem) UnitPrice() float64 { return c.Product.Price }
func (c MarketCartItem) Qty() int           { return c.Quantity }

// lineCart menyimpan line unik per id dengan urutan sisip.
type lineCart[T any] struct {
	lines []T
	id    func(T) string
	qty   func(*T) *int
}

func (c *lineCart[T]) index(id string) int {
	for i := range c.lines {
		if c.id(c.lines[i]) == id {
			return i
		}
	}
	return -1
}

// add menggabungkan quantity jika id sudah ada.
func (c *lineCart[T]) add(line T, quantity int) {
	if i := c.index(c.id(line)); i >= 0 {
		*c.qty(&c.lines[i]) += quantity
		return
	}
	*c.qty(&line) = quantity
	c.lines = append(c.lines, line)
}

// set menimpa quantity; 0 menghapus line. Id yang tidak ada diabaikan.
func (c *lineCart[T]) set(id string, quantity int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if quantity == 0 {
		c.remove(id)
		return
	}
	*c.qty(&c.lines[i]) = quantity
}

func (c *lineCart[T]) remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// consume mengurangi quantity sesuai snapshot; line yang habis dihapus.
// Line yang ditambahkan setelah snapshot tetap ada.
func (c *lineCart[T]) consume(taken []T) {
	for i := range taken {
		id := c.id(taken[i])
		j := c.index(id)
		if j < 0 {
			continue
		}
		left := *c.qty(&c.lines[j]) - *c.qty(&taken[i])
		if left <= 0 {
			c.remove(id)
			continue
		}
		*c.qty(&c.lines[j]) = left
	}
}

func (c *lineCart[T]) clear() {
	c.lines = nil
}

func (c *lineCart[T]) snapshot() []T {
	out := make([]T, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *lineCart[T]) count() int {
	n := 0
	for i := range c.lines {
		n += *c.qty(&c.lines[i])
	}
	return n
}

func newFoodCart() *lineCart[CartItem] {
	return &lineCart[CartItem]{
		id:  func(l CartItem) string { return l.ID },
		qty: func(l *CartItem) *int { return &l.Quantity },
	}
}

func newMarketCart() *lineCart[MarketCartItem] {
	return &lineCart[MarketCartItem]{
		id:  func(l MarketCartItem) string { return l.Product.ID },
		qty: func(l *MarketCartItem) *int { return &l.Quantity },
	}
}
