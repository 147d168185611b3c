package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

type Cart struct {
	Items []CartLineItem
}

type CartLineItem struct {
	ID        ProductID       `json:"id"`
	Name      string          `json:"nome"`
	UnitPrice decimal.Decimal `json:"valor"`
	ImageURL  string          `json:"url_imagem"`
	Quantity  int             `json:"quantidade"`
}

func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Index returns the position of the line item with the given id, or -1.
func (c Cart) Index(id ProductID) int {
	return slices.IndexFunc(c.Items, func(item CartLineItem) bool {
		return item.ID == id
	})
}

// Add returns a copy of the cart with one more unit of p: an existing line
// item is incremented, otherwise a new one is appended with quantity 1.
func (c Cart) Add(p Product) Cart {
	items := slices.Clone(c.Items)

	if i := c.Index(p.ID); i >= 0 {
		items[i].Quantity++
		return Cart{Items: items}
	}

	items = append(items, CartLineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
	return Cart{Items: items}
}

func (c Cart) Remove(id ProductID) Cart {
	items := slices.DeleteFunc(slices.Clone(c.Items), func(item CartLineItem) bool {
		return item.ID == id
	})
	return Cart{Items: items}
}

// SetQuantity returns the updated cart and whether the id was found.
// A quantity <= 0 removes the line item.
func (c Cart) SetQuantity(id ProductID, quantity int) (Cart, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}

	if quantity <= 0 {
		return c.Remove(id), true
	}

	items := slices.Clone(c.Items)
	items[i].Quantity = quantity
	return Cart{Items: items}, true
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

// UnmarshalJSON reads the persisted array form. Line items with a
// non-positive quantity are dropped.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("cart: %w", err)
	}

	c.Items = slices.DeleteFunc(items, func(item CartLineItem) bool {
		return item.Quantity <= 0
	})
	return nil
}
