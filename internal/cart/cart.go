// Package cart holds the in-memory cart model. A Cart is the deserialized
// form of the persisted cookie record: an ordered list of line items, unique
// by product id, insertion order preserved on append.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/errors"
)

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

type Cart []Item

func (cr Cart) Find(productId string) (int, bool) {
	for i, item := range cr {
		if item.ID == productId {
			return i, true
		}
	}
	return -1, false
}

// Add merges into an existing line item when the product id is already
// present, otherwise appends a new line item with quantity 1. All four
// product details are required.
func (cr *Cart) Add(productId, name string, price decimal.Decimal, image string) error {
	if productId == "" || name == "" || image == "" || price.IsNegative() {
		return errors.ErrMissingProductDetail
	}
	if i, ok := cr.Find(productId); ok {
		(*cr)[i].Quantity += 1
		return nil
	}
	*cr = append(*cr, Item{
		ID:       productId,
		Name:     name,
		Price:    price,
		Image:    image,
		Quantity: 1,
	})
	return nil
}

// SetQuantity rewrites one line item's quantity. A quantity below 1 violates
// the line-item invariant and is rejected. An absent product id is a no-op.
func (cr *Cart) SetQuantity(productId string, quantity int) error {
	if quantity < 1 {
		return errors.ErrInvalidQuantity
	}
	i, ok := cr.Find(productId)
	if !ok {
		return nil
	}
	(*cr)[i].Quantity = quantity
	return nil
}

// Remove filters the line item out. Removing an absent id leaves the cart
// unchanged.
func (cr *Cart) Remove(productId string) {
	filtered := make(Cart, 0, len(*cr))
	for _, item := range *cr {
		if item.ID == productId {
			continue
		}
		filtered = append(filtered, item)
	}
	*cr = filtered
}

func (cr Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range cr {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (cr Cart) IsEmpty() bool {
	return len(cr) == 0
}
