package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/checkout/common/otel"
	"github.com/Alturino/storefront/internal/checkout/service"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/store"
)

var (
	checkoutCaptures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_captures_total",
		Help: "Checkout orders captured successfully.",
	})
	checkoutCancellations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_cancellations_total",
		Help: "Checkout attempts cancelled by the payer.",
	})
)

type CheckoutController struct {
	service *service.CheckoutService
	store   store.CookieStore
}

func AttachCheckoutController(
	router *mux.Router,
	service *service.CheckoutService,
	cookieStore store.CookieStore,
) {
	controller := CheckoutController{service: service, store: cookieStore}

	router.HandleFunc("/checkout/orders", controller.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/checkout/orders/{orderId}/capture", controller.CaptureOrder).
		Methods(http.MethodPost)
	router.HandleFunc("/checkout/orders/{orderId}/cancel", controller.CancelOrder).
		Methods(http.MethodPost)
}

func (t CheckoutController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController CreateOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	logger = logger.With().Int(log.KeyCartItems, len(items)).Logger()
	logger.Info().Msg("loaded cart")

	if items.IsEmpty() {
		err := inErrors.ErrEmptyCart
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "Your cart is empty. Please add items before checking out.",
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	c = logger.WithContext(c)
	order, err := t.service.CreateOrder(c, items)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("created order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully created order",
		"data": map[string]interface{}{
			"order": order,
		},
	})
}

func (t CheckoutController) CaptureOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController CaptureOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController CaptureOrder").
		Logger()

	orderId := mux.Vars(r)["orderId"]
	logger = logger.With().Str(log.KeyOrderID, orderId).Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	logger = logger.With().Int(log.KeyCartItems, len(items)).Logger()
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "capturing order").Logger()
	logger.Info().Msg("capturing order")
	c = logger.WithContext(c)
	capture, err := t.service.CaptureOrder(c, orderId, items)
	if err != nil {
		// The cart cookie is left untouched so the payer can retry.
		err = fmt.Errorf("failed capturing orderId=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("captured order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := t.store.Clear(c, w); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	checkoutCaptures.Inc()
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("Transaction completed by %s!", capture.Payer.Name.GivenName),
		"data": map[string]interface{}{
			"capture": capture,
		},
	})
}

func (t CheckoutController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController CancelOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController CancelOrder").
		Logger()

	orderId := mux.Vars(r)["orderId"]
	logger = logger.With().Str(log.KeyOrderID, orderId).Logger()

	logger = logger.With().Str(log.KeyProcess, "cancelling order").Logger()
	logger.Info().Msg("cancelling order")
	c = logger.WithContext(c)
	t.service.CancelOrder(c, orderId)
	checkoutCancellations.Inc()
	logger.Info().Msg("cancelled order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "Payment was canceled.",
	})
}
