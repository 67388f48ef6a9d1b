package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/store"
	"github.com/Alturino/storefront/storefront/internal/common/otel"
	"github.com/Alturino/storefront/storefront/internal/render"
	"github.com/Alturino/storefront/storefront/internal/service"
	"github.com/Alturino/storefront/storefront/pkg/request"
)

var (
	cartAdditions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_additions_total",
		Help: "Line items added to carts.",
	})
	cartRemovals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_removals_total",
		Help: "Line items removed from carts.",
	})
)

type StorefrontController struct {
	service  *service.StorefrontService
	store    store.CookieStore
	renderer *render.Renderer
}

func AttachStorefrontController(
	router *mux.Router,
	service *service.StorefrontService,
	cookieStore store.CookieStore,
	renderer *render.Renderer,
) {
	controller := StorefrontController{
		service:  service,
		store:    cookieStore,
		renderer: renderer,
	}

	router.HandleFunc("/", controller.CatalogPage).Methods(http.MethodGet)
	router.HandleFunc("/cart", controller.CartPage).Methods(http.MethodGet)
	router.HandleFunc("/cart/items", controller.AddCartItem).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{productId}", controller.UpdateQuantity).
		Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{productId}/delete", controller.RemoveCartItem).
		Methods(http.MethodPost)
	router.HandleFunc("/products", controller.InsertProduct).Methods(http.MethodPost)
}

func (t StorefrontController) CatalogPage(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController CatalogPage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController CatalogPage").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	c = logger.WithContext(c)
	products, err := t.service.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	cards := make([]render.ProductCard, 0, len(products))
	for _, product := range products {
		cards = append(cards, render.ProductCard{
			ID:    product.ID.String(),
			Name:  product.Name,
			Price: product.Price.StringFixed(2),
			Image: product.Image,
		})
	}

	logger = logger.With().Str(log.KeyProcess, "rendering catalog page").Logger()
	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderTextHtml)
	err = t.renderer.RenderCatalog(w, render.CatalogPage{
		Products: cards,
		Flash:    popFlash(w, r),
	})
	if err != nil {
		err = fmt.Errorf("failed rendering catalog page with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("rendered catalog page")
}

func (t StorefrontController) CartPage(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController CartPage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController CartPage").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	logger = logger.With().Int(log.KeyCartItems, len(items)).Logger()
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "rendering cart page").Logger()
	view := render.BuildCartView(items)
	logger = logger.With().Str(log.KeyCartTotal, view.Total).Logger()
	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderTextHtml)
	err := t.renderer.RenderCart(w, render.CartPage{View: view, Flash: popFlash(w, r)})
	if err != nil {
		err = fmt.Errorf("failed rendering cart page with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("rendered cart page")
}

func (t StorefrontController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController AddCartItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController AddCartItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding form").Logger()
	logger.Info().Msg("decoding form")
	if err := r.ParseForm(); err != nil {
		err = fmt.Errorf("failed parsing form with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	reqBody := request.AddCartItem{
		ID:    r.PostFormValue("id"),
		Name:  r.PostFormValue("name"),
		Price: r.PostFormValue("price"),
		Image: r.PostFormValue("image"),
	}
	logger.Info().Msg("decoded form")

	logger = logger.With().Str(log.KeyProcess, "validating product details").Logger()
	logger.Info().Msg("validating product details")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("%w with error=%s", inErrors.ErrMissingProductDetail, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		setFlash(w, "Failed to add to cart: Missing product details.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	price, err := decimal.NewFromString(reqBody.Price)
	if err != nil {
		err = fmt.Errorf("%w with error=%s", inErrors.ErrMissingProductDetail, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		setFlash(w, "Failed to add to cart: Missing product details.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	logger = logger.With().
		Str(log.KeyProductID, reqBody.ID).
		Str(log.KeyProductName, reqBody.Name).
		Logger()
	logger.Info().Msg("validated product details")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	if err := items.Add(reqBody.ID, reqBody.Name, price, reqBody.Image); err != nil {
		err = fmt.Errorf("failed adding item to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		setFlash(w, "Failed to add to cart: Missing product details.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := t.store.Save(c, w, items, store.TtlDays); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	cartAdditions.Inc()
	logger.Info().Msg("added item to cart")

	setFlash(w, fmt.Sprintf("%s is added to the cart!", reqBody.Name))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (t StorefrontController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController UpdateQuantity").
		Logger()

	productId := mux.Vars(r)["productId"]
	logger = logger.With().Str(log.KeyProductID, productId).Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing quantity").Logger()
	logger.Info().Msg("parsing quantity")
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		err = fmt.Errorf("failed parsing quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int(log.KeyQuantity, quantity).Logger()
	logger.Info().Msg("parsed quantity")

	logger = logger.With().Str(log.KeyProcess, "validating quantity").Logger()
	logger.Info().Msg("validating quantity")
	reqBody := request.UpdateQuantity{Quantity: quantity}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("%w with error=%s", inErrors.ErrInvalidQuantity, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated quantity")

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	logger.Info().Msg("updating quantity")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	if err := items.SetQuantity(productId, quantity); err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	if err := t.store.Save(c, w, items, store.TtlDays); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated quantity")

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (t StorefrontController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController RemoveCartItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController RemoveCartItem").
		Logger()

	productId := mux.Vars(r)["productId"]
	logger = logger.With().Str(log.KeyProductID, productId).Logger()

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	c = logger.WithContext(c)
	items := t.store.Load(c, r)
	items.Remove(productId)
	if err := t.store.Save(c, w, items, store.TtlDays); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	cartRemovals.Inc()
	logger.Info().Msg("removed item from cart")

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (t StorefrontController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StorefrontController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontController InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.InsertProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	c = logger.WithContext(c)
	product, err := t.service.InsertProduct(c, reqBody.Name, reqBody.Price, reqBody.Image)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully inserted product",
		"data": map[string]interface{}{
			"product": product,
		},
	})
}
