// Package provider speaks the payment provider's order protocol. The Provider
// interface is the seam the checkout service is tested against; PayPalClient
// is the real implementation.
package provider

import "context"

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Breakdown struct {
	ItemTotal Money `json:"item_total"`
}

type Amount struct {
	CurrencyCode string     `json:"currency_code"`
	Value        string     `json:"value"`
	Breakdown    *Breakdown `json:"breakdown,omitempty"`
}

type Item struct {
	Name       string `json:"name"`
	UnitAmount Money  `json:"unit_amount"`
	Quantity   string `json:"quantity"`
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Amount      Amount `json:"amount"`
	Items       []Item `json:"items"`
}

type OrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type PayerName struct {
	GivenName string `json:"given_name"`
}

type Payer struct {
	Name PayerName `json:"name"`
}

type CaptureResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  Payer  `json:"payer"`
}

type Provider interface {
	CreateOrder(c context.Context, req OrderRequest) (Order, error)
	CaptureOrder(c context.Context, orderId string) (CaptureResult, error)
}
