package controller_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/store"
	"github.com/Alturino/storefront/storefront/internal/controller"
	"github.com/Alturino/storefront/storefront/internal/render"
	"github.com/Alturino/storefront/storefront/internal/service"
)

func newRouter() *mux.Router {
	router := mux.NewRouter()
	svc := service.StorefrontService{}
	controller.AttachStorefrontController(router, &svc, store.NewCookieStore(), render.NewRenderer())
	return router
}

func formRequest(t *testing.T, target string, form url.Values, items cart.Cart) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if items != nil {
		recorder := httptest.NewRecorder()
		cookieStore := store.NewCookieStore()
		require.NoError(t, cookieStore.Save(context.Background(), recorder, items, store.TtlDays))
		for _, cookie := range recorder.Result().Cookies() {
			r.AddCookie(cookie)
		}
	}
	return r
}

func savedCart(t *testing.T, w *httptest.ResponseRecorder) cart.Cart {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != store.CookieName {
			continue
		}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookie)
		return store.NewCookieStore().Load(context.Background(), r)
	}
	return nil
}

func flashMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != "flash" {
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
		require.NoError(t, err)
		return string(decoded)
	}
	return ""
}

func TestAddCartItem(t *testing.T) {
	router := newRouter()

	form := url.Values{
		"id":    {"p1"},
		"name":  {"Widget"},
		"price": {"9.99"},
		"image": {"a.png"},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest(t, "/cart/items", form, nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/cart", w.Header().Get("Location"))
	assert.Equal(t, "Widget is added to the cart!", flashMessage(t, w))

	items := savedCart(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddCartItemMergesExisting(t *testing.T) {
	router := newRouter()

	existing := cart.Cart{}
	require.NoError(t, existing.Add("p1", "Widget", decimal.RequireFromString("9.99"), "a.png"))

	form := url.Values{
		"id":    {"p1"},
		"name":  {"Widget"},
		"price": {"9.99"},
		"image": {"a.png"},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest(t, "/cart/items", form, existing))

	items := savedCart(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddCartItemMissingDetails(t *testing.T) {
	router := newRouter()

	form := url.Values{
		"id":   {"p1"},
		"name": {"Widget"},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest(t, "/cart/items", form, nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "Failed to add to cart: Missing product details.", flashMessage(t, w))
	assert.Nil(t, savedCart(t, w), "an invalid add must not persist a cart")
}

func TestUpdateQuantity(t *testing.T) {
	router := newRouter()

	existing := cart.Cart{}
	require.NoError(t, existing.Add("p1", "Widget", decimal.RequireFromString("9.99"), "a.png"))

	w := httptest.NewRecorder()
	router.ServeHTTP(
		w,
		formRequest(t, "/cart/items/p1", url.Values{"quantity": {"5"}}, existing),
	)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	items := savedCart(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpdateQuantityBelowOne(t *testing.T) {
	router := newRouter()

	existing := cart.Cart{}
	require.NoError(t, existing.Add("p1", "Widget", decimal.RequireFromString("9.99"), "a.png"))

	w := httptest.NewRecorder()
	router.ServeHTTP(
		w,
		formRequest(t, "/cart/items/p1", url.Values{"quantity": {"0"}}, existing),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, savedCart(t, w), "a rejected quantity must not persist a cart")
}

func TestRemoveCartItem(t *testing.T) {
	router := newRouter()

	existing := cart.Cart{}
	require.NoError(t, existing.Add("p1", "Widget", decimal.RequireFromString("9.99"), "a.png"))
	require.NoError(t, existing.Add("p2", "Gadget", decimal.RequireFromString("19.50"), "b.png"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest(t, "/cart/items/p1/delete", url.Values{}, existing))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	items := savedCart(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)
}
