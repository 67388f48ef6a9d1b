package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/storefront/internal/repository"
)

func setup(t *testing.T) (pgxmock.PgxPoolIface, *miniredis.Miniredis, StorefrontService) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	svc := NewStorefrontService(repository.NewProductRepository(mock), cache)
	return mock, mr, svc
}

func TestFindProductsFillsCache(t *testing.T) {
	mock, mr, svc := setup(t)

	price := decimal.RequireFromString("9.99")
	mock.ExpectQuery(`select id, name, price, image, created_at, updated_at`).
		WillReturnRows(productRows("Widget", price, "a.png"))

	products, err := svc.FindProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.True(t, mr.Exists("storefront:products"), "catalog should be cached after a miss")

	// second read must come from the cache: no further db expectation is set
	cached, err := svc.FindProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Widget", cached[0].Name)
	assert.True(t, price.Equal(cached[0].Price))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertProductInvalidatesCache(t *testing.T) {
	mock, mr, svc := setup(t)
	require.NoError(t, mr.Set("storefront:products", `[]`))

	price := decimal.RequireFromString("19.50")
	mock.ExpectQuery(`insert into products`).
		WithArgs(pgxmock.AnyArg(), "Gadget", pgxmock.AnyArg(), "b.png").
		WillReturnRows(productRows("Gadget", price, "b.png"))

	_, err := svc.InsertProduct(context.Background(), "Gadget", price, "b.png")
	require.NoError(t, err)
	assert.False(t, mr.Exists("storefront:products"), "stale catalog cache should be dropped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func productRows(name string, price decimal.Decimal, image string) *pgxmock.Rows {
	now := time.Now()
	numeric := pgtype.Numeric{
		Exp:              price.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              price.Coefficient(),
		Valid:            true,
	}
	return pgxmock.NewRows([]string{"id", "name", "price", "image", "created_at", "updated_at"}).
		AddRow(uuid.New(), name, numeric, image, now, now)
}
