package controller_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/checkout/controller"
	"github.com/Alturino/storefront/internal/checkout/provider"
	"github.com/Alturino/storefront/internal/checkout/repository"
	"github.com/Alturino/storefront/internal/checkout/service"
	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/store"
)

type stubProvider struct {
	createOrder  func(c context.Context, req provider.OrderRequest) (provider.Order, error)
	captureOrder func(c context.Context, orderId string) (provider.CaptureResult, error)
}

func (s stubProvider) CreateOrder(
	c context.Context,
	req provider.OrderRequest,
) (provider.Order, error) {
	return s.createOrder(c, req)
}

func (s stubProvider) CaptureOrder(
	c context.Context,
	orderId string,
) (provider.CaptureResult, error) {
	return s.captureOrder(c, orderId)
}

func setup(t *testing.T, p provider.Provider) (pgxmock.PgxPoolIface, *mux.Router) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	svc := service.NewCheckoutService(p, repository.NewOrderRepository(mock), "USD")
	router := mux.NewRouter()
	controller.AttachCheckoutController(router, svc, store.NewCookieStore())
	return mock, router
}

func cartRequest(t *testing.T, method string, target string, items cart.Cart) *http.Request {
	t.Helper()
	recorder := httptest.NewRecorder()
	cookieStore := store.NewCookieStore()
	require.NoError(t, cookieStore.Save(context.Background(), recorder, items, store.TtlDays))

	r := httptest.NewRequest(method, target, nil)
	for _, cookie := range recorder.Result().Cookies() {
		r.AddCookie(cookie)
	}
	return r
}

func TestCreateOrderEmptyCartRejected(t *testing.T) {
	called := false
	_, router := setup(t, stubProvider{
		createOrder: func(_ context.Context, _ provider.OrderRequest) (provider.Order, error) {
			called = true
			return provider.Order{}, nil
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout/orders", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Your cart is empty. Please add items before checking out.")
	assert.False(t, called, "provider must not be contacted for an empty cart")
}

func TestCreateOrderResponds(t *testing.T) {
	_, router := setup(t, stubProvider{
		createOrder: func(_ context.Context, _ provider.OrderRequest) (provider.Order, error) {
			return provider.Order{ID: "ORDER-1", Status: "CREATED"}, nil
		},
	})

	items := cart.Cart{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("9.99"), Image: "a.png", Quantity: 2},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, cartRequest(t, http.MethodPost, "/checkout/orders", items))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER-1")
}

func TestCaptureOrderClearsCart(t *testing.T) {
	mock, router := setup(t, stubProvider{
		captureOrder: func(_ context.Context, orderId string) (provider.CaptureResult, error) {
			return provider.CaptureResult{
				ID:     orderId,
				Status: "COMPLETED",
				Payer:  provider.Payer{Name: provider.PayerName{GivenName: "Ann"}},
			}, nil
		},
	})

	mock.ExpectBegin()
	mock.ExpectExec(`insert into orders`).
		WithArgs(pgxmock.AnyArg(), "ORDER-1", "Ann", "USD", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`insert into order_items`).
		WithArgs(
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			"p1",
			"Widget",
			pgxmock.AnyArg(),
			"a.png",
			2,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	items := cart.Cart{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("9.99"), Image: "a.png", Quantity: 2},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, cartRequest(t, http.MethodPost, "/checkout/orders/ORDER-1/capture", items))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction completed by Ann!")

	emptyValue := base64.RawURLEncoding.EncodeToString([]byte("[]"))
	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == store.CookieName {
			cleared = cookie.Value == emptyValue
		}
	}
	assert.True(t, cleared, "cart cookie must be reset to an empty list")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptureOrderFailureKeepsCart(t *testing.T) {
	_, router := setup(t, stubProvider{
		captureOrder: func(_ context.Context, orderId string) (provider.CaptureResult, error) {
			return provider.CaptureResult{ID: orderId, Status: "DECLINED"}, nil
		},
	})

	items := cart.Cart{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("9.99"), Image: "a.png", Quantity: 2},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, cartRequest(t, http.MethodPost, "/checkout/orders/ORDER-1/capture", items))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	for _, cookie := range w.Result().Cookies() {
		assert.NotEqual(t, store.CookieName, cookie.Name, "a failed capture must not touch the cart")
	}
}

func TestCancelOrder(t *testing.T) {
	_, router := setup(t, stubProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout/orders/ORDER-1/cancel", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment was canceled.")
}
