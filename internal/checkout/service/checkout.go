package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/checkout/common/otel"
	"github.com/Alturino/storefront/internal/checkout/provider"
	"github.com/Alturino/storefront/internal/checkout/repository"
	"github.com/Alturino/storefront/internal/cart"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

// State tracks where the current checkout attempt is. A terminal outcome
// (approved, cancelled, errored) immediately resets to idle so the next
// attempt starts clean.
type State int

const (
	StateIdle State = iota
	StateOrderCreationRequested
	StateApproved
	StateCancelled
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOrderCreationRequested:
		return "order_creation_requested"
	case StateApproved:
		return "approved"
	case StateCancelled:
		return "cancelled"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// The provider caps item names at 127 characters.
const maxItemNameLength = 127

type CheckoutService struct {
	provider provider.Provider
	orders   *repository.OrderRepository
	currency string

	mu    sync.Mutex
	state State
}

func NewCheckoutService(
	p provider.Provider,
	orders *repository.OrderRepository,
	currency string,
) *CheckoutService {
	return &CheckoutService{provider: p, orders: orders, currency: currency, state: StateIdle}
}

func (svc *CheckoutService) State() State {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state
}

func (svc *CheckoutService) transition(c context.Context, to State) {
	svc.mu.Lock()
	from := svc.state
	svc.state = to
	svc.mu.Unlock()

	zerolog.Ctx(c).
		Info().
		Str(log.KeyCheckoutState, to.String()).
		Msgf("checkout state changed from %s to %s", from, to)
}

// BuildOrderRequest maps the cart to the provider's order schema. Unit
// amounts are the line prices rounded to two decimals and the purchase-unit
// amount is the sum of those rounded amounts, so the item-level breakdown
// always equals the amount the provider validates it against.
func BuildOrderRequest(
	items cart.Cart,
	currency string,
	referenceId string,
) (provider.OrderRequest, error) {
	if items.IsEmpty() {
		return provider.OrderRequest{}, inErrors.ErrEmptyCart
	}

	providerItems := make([]provider.Item, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		name := item.Name
		if len(name) > maxItemNameLength {
			name = name[:maxItemNameLength]
		}
		unit := item.Price.Round(2)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		providerItems = append(providerItems, provider.Item{
			Name: name,
			UnitAmount: provider.Money{
				CurrencyCode: currency,
				Value:        unit.StringFixed(2),
			},
			Quantity: strconv.Itoa(item.Quantity),
		})
	}

	amount := total.StringFixed(2)
	return provider.OrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []provider.PurchaseUnit{{
			ReferenceID: referenceId,
			Amount: provider.Amount{
				CurrencyCode: currency,
				Value:        amount,
				Breakdown: &provider.Breakdown{
					ItemTotal: provider.Money{CurrencyCode: currency, Value: amount},
				},
			},
			Items: providerItems,
		}},
	}, nil
}

// CreateOrder starts a checkout attempt for the cart. An empty cart is
// rejected before the provider is contacted and leaves the state idle.
func (svc *CheckoutService) CreateOrder(
	c context.Context,
	items cart.Cart,
) (provider.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CreateOrder").
		Int(log.KeyCartItems, len(items)).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "building order request").Logger()
	logger.Info().Msg("building order request")
	orderReq, err := BuildOrderRequest(items, svc.currency, uuid.NewString())
	if err != nil {
		err = fmt.Errorf("failed building order request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return provider.Order{}, err
	}
	logger.Info().Msg("built order request")

	svc.transition(c, StateOrderCreationRequested)

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := svc.provider.CreateOrder(c, orderReq)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		svc.transition(c, StateErrored)
		svc.transition(c, StateIdle)
		return provider.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("created order")

	return order, nil
}

// CaptureOrder finishes the checkout attempt. On a completed capture the
// order is archived and the approved payer is returned; on failure the
// caller's cart is left untouched.
func (svc *CheckoutService) CaptureOrder(
	c context.Context,
	orderId string,
	items cart.Cart,
) (provider.CaptureResult, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CaptureOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CaptureOrder").
		Str(log.KeyOrderID, orderId).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "capturing order").Logger()
	logger.Info().Msg("capturing order")
	capture, err := svc.provider.CaptureOrder(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed capturing orderId=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		svc.transition(c, StateErrored)
		svc.transition(c, StateIdle)
		return provider.CaptureResult{}, err
	}
	if capture.Status != "COMPLETED" {
		err = fmt.Errorf("failed capturing orderId=%s with status=%s", orderId, capture.Status)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		svc.transition(c, StateErrored)
		svc.transition(c, StateIdle)
		return provider.CaptureResult{}, err
	}
	logger.Info().Msg("captured order")

	logger = logger.With().Str(log.KeyProcess, "archiving order").Logger()
	logger.Info().Msg("archiving order")
	_, err = svc.orders.InsertOrder(c, orderId, capture.Payer.Name.GivenName, svc.currency, items)
	if err != nil {
		// The payment is already captured at this point, so a failed
		// archive must not fail the checkout.
		err = fmt.Errorf("failed archiving orderId=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("archived order")
	}

	svc.transition(c, StateApproved)
	svc.transition(c, StateIdle)

	return capture, nil
}

// CancelOrder records that the payer abandoned the checkout attempt.
func (svc *CheckoutService) CancelOrder(c context.Context, orderId string) {
	c, span := otel.Tracer.Start(c, "CheckoutService CancelOrder")
	defer span.End()

	zerolog.Ctx(c).
		Info().
		Str(log.KeyTag, "CheckoutService CancelOrder").
		Str(log.KeyOrderID, orderId).
		Msg("checkout cancelled by payer")

	svc.transition(c, StateCancelled)
	svc.transition(c, StateIdle)
}
