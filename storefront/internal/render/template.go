package render

import (
	"html/template"
	"io"
)

type ProductCard struct {
	ID    string
	Name  string
	Price string
	Image string
}

type CartPage struct {
	View  CartView
	Flash string
}

type CatalogPage struct {
	Products []ProductCard
	Flash    string
}

const cartPageHtml = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Your Cart</title>
</head>
<body>
{{- if .Flash}}
<div class="alert" role="alert">{{.Flash}}</div>
{{- end}}
<table class="table">
  <thead>
    <tr><th></th><th>Name</th><th>Price</th><th>Quantity</th><th></th></tr>
  </thead>
  <tbody id="cartItemsBody">
  {{- if .View.Empty}}
    <tr><td colspan="5" class="text-center">Your cart is empty</td></tr>
  {{- else}}
    {{- range .View.Rows}}
    <tr>
      <td><img src="{{.Image}}" alt="{{.Name}}" width="220" height="100"></td>
      <td>{{.Name}}</td>
      <td>${{.Price}}</td>
      <td>
        <form method="post" action="/cart/items/{{.ID}}">
          <input class="form-control" type="number" name="quantity" value="{{.Quantity}}" min="1">
          <button type="submit">Update</button>
        </form>
      </td>
      <td>
        <form method="post" action="/cart/items/{{.ID}}/delete">
          <button class="btn btn-danger" type="submit">Delete</button>
        </form>
      </td>
    </tr>
    {{- end}}
  {{- end}}
  </tbody>
</table>
<p>Total: $<span id="totalAmount">{{.View.Total}}</span></p>
<div id="paypal-button-container" {{if not .View.ShowCheckout}}style="display: none"{{end}}>
  <form method="post" action="/checkout/orders">
    <button type="submit">Checkout</button>
  </form>
</div>
</body>
</html>
`

const catalogPageHtml = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Products</title>
</head>
<body>
{{- if .Flash}}
<div class="alert" role="alert">{{.Flash}}</div>
{{- end}}
<div class="products">
{{- range .Products}}
  <div class="product-image" data-image="{{.Image}}">
    <img src="{{.Image}}" alt="{{.Name}}">
  </div>
  <div class="product" data-id="{{.ID}}" data-name="{{.Name}}" data-price="{{.Price}}">
    <h2>{{.Name}}</h2>
    <p>${{.Price}}</p>
    <form method="post" action="/cart/items">
      <input type="hidden" name="id" value="{{.ID}}">
      <input type="hidden" name="name" value="{{.Name}}">
      <input type="hidden" name="price" value="{{.Price}}">
      <input type="hidden" name="image" value="{{.Image}}">
      <button type="submit">Add to Cart</button>
    </form>
  </div>
{{- end}}
</div>
</body>
</html>
`

type Renderer struct {
	cartPage    *template.Template
	catalogPage *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		cartPage:    template.Must(template.New("cart").Parse(cartPageHtml)),
		catalogPage: template.Must(template.New("catalog").Parse(catalogPageHtml)),
	}
}

func (r *Renderer) RenderCart(w io.Writer, page CartPage) error {
	return r.cartPage.Execute(w, page)
}

func (r *Renderer) RenderCatalog(w io.Writer, page CatalogPage) error {
	return r.catalogPage.Execute(w, page)
}
