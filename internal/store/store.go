// Package store owns the persisted cart record: a single cookie whose value
// is the JSON array of line items, refreshed with a 7-day expiration on every
// write. Loading fails open: an absent or unparseable record yields an empty
// cart.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

const (
	CookieName = "cart"
	TtlDays    = 7
)

type CookieStore struct {
	name string
}

func NewCookieStore() CookieStore {
	return CookieStore{name: CookieName}
}

// Load deserializes the persisted record from the incoming request. The
// cookie value is base64url(JSON); a bare JSON value written by an older
// client is accepted too. Anything else decodes to an empty cart.
func (s CookieStore) Load(c context.Context, r *http.Request) cart.Cart {
	c, span := inOtel.Tracer.Start(c, "CookieStore Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CookieStore Load").
		Logger()

	cookie, err := r.Cookie(s.name)
	if err != nil {
		logger.Debug().Msg("cart cookie is absent, starting with empty cart")
		return cart.Cart{}
	}

	raw := []byte(cookie.Value)
	if decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value); err == nil {
		raw = decoded
	}

	items := cart.Cart{}
	if err := json.Unmarshal(raw, &items); err != nil {
		err = fmt.Errorf("failed unmarshaling cart cookie with error=%w", err)
		logger.Info().Err(err).Msg("cart cookie is unparseable, starting with empty cart")
		return cart.Cart{}
	}
	logger.Debug().Int(log.KeyCartItems, len(items)).Msg("loaded cart from cookie")
	return items
}

// Save serializes and persists the full list with an absolute expiration of
// now + ttlDays. Every mutation path re-persists the whole record.
func (s CookieStore) Save(
	c context.Context,
	w http.ResponseWriter,
	items cart.Cart,
	ttlDays int,
) error {
	c, span := inOtel.Tracer.Start(c, "CookieStore Save")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CookieStore Save").
		Int(log.KeyCartItems, len(items)).
		Logger()

	if items == nil {
		items = cart.Cart{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart cookie with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:    s.name,
		Value:   base64.RawURLEncoding.EncodeToString(raw),
		Path:    "/",
		Expires: time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour),
	})
	logger.Debug().Msg("saved cart to cookie")
	return nil
}

// Clear persists an empty record, keeping the usual expiration horizon.
func (s CookieStore) Clear(c context.Context, w http.ResponseWriter) error {
	return s.Save(c, w, cart.Cart{}, TtlDays)
}
