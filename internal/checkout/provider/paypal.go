package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/storefront/internal/checkout/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

type PayPalClient struct {
	baseUrl      string
	clientId     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewPayPalClient(cfg config.Checkout) *PayPalClient {
	return &PayPalClient{
		baseUrl:      strings.TrimSuffix(cfg.BaseUrl, "/"),
		clientId:     cfg.ClientId,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *PayPalClient) token(c context.Context) (string, error) {
	c, span := otel.Tracer.Start(c, "PayPalClient token")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PayPalClient token").
		Logger()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken != "" && time.Now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	logger = logger.With().Str(log.KeyProcess, "requesting access token").Logger()
	logger.Info().Msg("requesting access token")
	form := url.Values{"grant_type": []string{"client_credentials"}}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		p.baseUrl+"/v1/oauth2/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		err = fmt.Errorf("failed creating token request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	req.SetBasicAuth(p.clientId, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting access token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed requesting access token with statusCode=%d", res.StatusCode)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	token := tokenResponse{}
	err = json.NewDecoder(res.Body).Decode(&token)
	if err != nil {
		err = fmt.Errorf("failed decoding access token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("requested access token")

	p.accessToken = token.AccessToken
	// Refresh a minute before the provider expires the token.
	p.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	return p.accessToken, nil
}

func (p *PayPalClient) CreateOrder(c context.Context, orderReq OrderRequest) (Order, error) {
	c, span := otel.Tracer.Start(c, "PayPalClient CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PayPalClient CreateOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order := Order{}
	err := p.post(c, "/v2/checkout/orders", orderReq, &order)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("created order")

	return order, nil
}

func (p *PayPalClient) CaptureOrder(c context.Context, orderId string) (CaptureResult, error) {
	c, span := otel.Tracer.Start(c, "PayPalClient CaptureOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PayPalClient CaptureOrder").
		Str(log.KeyOrderID, orderId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "capturing order").Logger()
	logger.Info().Msg("capturing order")
	capture := CaptureResult{}
	err := p.post(c, "/v2/checkout/orders/"+orderId+"/capture", nil, &capture)
	if err != nil {
		err = fmt.Errorf("failed capturing orderId=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CaptureResult{}, err
	}
	logger.Info().Msg("captured order")

	return capture, nil
}

func (p *PayPalClient) post(c context.Context, path string, body any, out any) error {
	token, err := p.token(c)
	if err != nil {
		return err
	}

	var payload *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed marshaling request body with error=%w", err)
		}
		payload = strings.NewReader(string(raw))
	} else {
		payload = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(c, http.MethodPost, p.baseUrl+path, payload)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed sending request with error=%w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed with statusCode=%d", res.StatusCode)
	}

	err = json.NewDecoder(res.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed decoding response body with error=%w", err)
	}

	return nil
}
