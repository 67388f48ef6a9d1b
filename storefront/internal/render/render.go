// Package render projects a cart into the view shown to the user. Building
// the view model is a pure function of the cart so it stays testable without
// a template engine or a browser; the HTML adapter lives in template.go.
package render

import "github.com/Alturino/storefront/internal/cart"

type CartRow struct {
	ID       string
	Name     string
	Image    string
	Price    string
	Quantity int
}

type CartView struct {
	Rows         []CartRow
	Total        string
	Empty        bool
	ShowCheckout bool
}

// BuildCartView rebuilds the whole view from scratch on every call; rendering
// twice with no intervening mutation yields an identical result.
func BuildCartView(items cart.Cart) CartView {
	if items.IsEmpty() {
		return CartView{Rows: []CartRow{}, Total: "0.00", Empty: true, ShowCheckout: false}
	}

	rows := make([]CartRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, CartRow{
			ID:       item.ID,
			Name:     item.Name,
			Image:    item.Image,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
		})
	}
	return CartView{
		Rows:         rows,
		Total:        items.Total().StringFixed(2),
		Empty:        false,
		ShowCheckout: true,
	}
}
