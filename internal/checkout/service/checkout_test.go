package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/checkout/provider"
	"github.com/Alturino/storefront/internal/checkout/repository"
	"github.com/Alturino/storefront/internal/checkout/service"
	"github.com/Alturino/storefront/internal/cart"
	inErrors "github.com/Alturino/storefront/internal/errors"
)

type fakeProvider struct {
	createOrder  func(c context.Context, req provider.OrderRequest) (provider.Order, error)
	captureOrder func(c context.Context, orderId string) (provider.CaptureResult, error)
	createCalls  int
	captureCalls int
}

func (f *fakeProvider) CreateOrder(
	c context.Context,
	req provider.OrderRequest,
) (provider.Order, error) {
	f.createCalls++
	return f.createOrder(c, req)
}

func (f *fakeProvider) CaptureOrder(
	c context.Context,
	orderId string,
) (provider.CaptureResult, error) {
	f.captureCalls++
	return f.captureOrder(c, orderId)
}

func setup(t *testing.T, p provider.Provider) (pgxmock.PgxPoolIface, *service.CheckoutService) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return mock, service.NewCheckoutService(p, repository.NewOrderRepository(mock), "USD")
}

func twoWidgets() cart.Cart {
	return cart.Cart{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("9.999"), Image: "a.png", Quantity: 2},
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	fake := &fakeProvider{}
	mock, svc := setup(t, fake)

	_, err := svc.CreateOrder(context.Background(), cart.Cart{})
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Equal(t, 0, fake.createCalls, "provider must not be contacted for an empty cart")
	assert.Equal(t, service.StateIdle, svc.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder(t *testing.T) {
	var got provider.OrderRequest
	fake := &fakeProvider{
		createOrder: func(_ context.Context, req provider.OrderRequest) (provider.Order, error) {
			got = req
			return provider.Order{ID: "ORDER-1", Status: "CREATED"}, nil
		},
	}
	_, svc := setup(t, fake)

	order, err := svc.CreateOrder(context.Background(), twoWidgets())
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.ID)
	assert.Equal(t, service.StateOrderCreationRequested, svc.State())

	assert.Equal(t, "CAPTURE", got.Intent)
	require.Len(t, got.PurchaseUnits, 1)
	unit := got.PurchaseUnits[0]
	assert.NotEmpty(t, unit.ReferenceID)
	assert.Equal(t, "20.00", unit.Amount.Value)
	require.NotNil(t, unit.Amount.Breakdown)
	assert.Equal(t, unit.Amount.Value, unit.Amount.Breakdown.ItemTotal.Value)
	require.Len(t, unit.Items, 1)
	assert.Equal(t, "10.00", unit.Items[0].UnitAmount.Value)
	assert.Equal(t, "2", unit.Items[0].Quantity)
}

func TestCreateOrderProviderFailure(t *testing.T) {
	fake := &fakeProvider{
		createOrder: func(_ context.Context, _ provider.OrderRequest) (provider.Order, error) {
			return provider.Order{}, errors.New("gateway timeout")
		},
	}
	_, svc := setup(t, fake)

	_, err := svc.CreateOrder(context.Background(), twoWidgets())
	require.Error(t, err)
	assert.Equal(t, service.StateIdle, svc.State())
}

func TestBuildOrderRequestTruncatesName(t *testing.T) {
	items := cart.Cart{{
		ID:       "p1",
		Name:     strings.Repeat("x", 200),
		Price:    decimal.RequireFromString("1.00"),
		Image:    "a.png",
		Quantity: 1,
	}}

	req, err := service.BuildOrderRequest(items, "USD", "ref-1")
	require.NoError(t, err)
	assert.Len(t, req.PurchaseUnits[0].Items[0].Name, 127)
}

func TestBuildOrderRequestBreakdownMatchesAmount(t *testing.T) {
	items := cart.Cart{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("9.994"), Image: "a.png", Quantity: 3},
		{ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("19.50"), Image: "b.png", Quantity: 1},
	}

	req, err := service.BuildOrderRequest(items, "USD", "ref-1")
	require.NoError(t, err)
	unit := req.PurchaseUnits[0]
	assert.Equal(t, "49.47", unit.Amount.Value)
	assert.Equal(t, unit.Amount.Value, unit.Amount.Breakdown.ItemTotal.Value)
}

func TestCaptureOrderArchivesAndApproves(t *testing.T) {
	fake := &fakeProvider{
		captureOrder: func(_ context.Context, orderId string) (provider.CaptureResult, error) {
			return provider.CaptureResult{
				ID:     orderId,
				Status: "COMPLETED",
				Payer:  provider.Payer{Name: provider.PayerName{GivenName: "Ann"}},
			}, nil
		},
	}
	mock, svc := setup(t, fake)

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

	capture, err := svc.CaptureOrder(context.Background(), "ORDER-1", twoWidgets())
	require.NoError(t, err)
	assert.Equal(t, "Ann", capture.Payer.Name.GivenName)
	assert.Equal(t, service.StateIdle, svc.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptureOrderProviderFailure(t *testing.T) {
	fake := &fakeProvider{
		captureOrder: func(_ context.Context, _ string) (provider.CaptureResult, error) {
			return provider.CaptureResult{}, errors.New("instrument declined")
		},
	}
	mock, svc := setup(t, fake)

	_, err := svc.CaptureOrder(context.Background(), "ORDER-1", twoWidgets())
	require.Error(t, err)
	assert.Equal(t, service.StateIdle, svc.State())
	assert.NoError(t, mock.ExpectationsWereMet(), "a failed capture must not be archived")
}

func TestCaptureOrderIncompleteStatus(t *testing.T) {
	fake := &fakeProvider{
		captureOrder: func(_ context.Context, orderId string) (provider.CaptureResult, error) {
			return provider.CaptureResult{ID: orderId, Status: "PENDING"}, nil
		},
	}
	mock, svc := setup(t, fake)

	_, err := svc.CaptureOrder(context.Background(), "ORDER-1", twoWidgets())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderReturnsToIdle(t *testing.T) {
	fake := &fakeProvider{
		createOrder: func(_ context.Context, _ provider.OrderRequest) (provider.Order, error) {
			return provider.Order{ID: "ORDER-1", Status: "CREATED"}, nil
		},
	}
	_, svc := setup(t, fake)

	_, err := svc.CreateOrder(context.Background(), twoWidgets())
	require.NoError(t, err)
	require.Equal(t, service.StateOrderCreationRequested, svc.State())

	svc.CancelOrder(context.Background(), "ORDER-1")
	assert.Equal(t, service.StateIdle, svc.State())
}
