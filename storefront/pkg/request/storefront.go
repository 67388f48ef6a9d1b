package request

import "github.com/shopspring/decimal"

// AddCartItem carries the four product details captured from the product
// markup (data-id, data-name, data-price, data-image). All four are required;
// a request missing any of them is rejected before the cart is touched.
type AddCartItem struct {
	ID    string `validate:"required" json:"id"`
	Name  string `validate:"required" json:"name"`
	Price string `validate:"required" json:"price"`
	Image string `validate:"required" json:"image"`
}

type UpdateQuantity struct {
	Quantity int `validate:"required,gte=1" json:"quantity"`
}

type InsertProduct struct {
	Name  string          `validate:"required" json:"name"`
	Price decimal.Decimal `validate:"required" json:"price"`
	Image string          `validate:"required" json:"image"`
}
