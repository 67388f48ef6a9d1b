package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/storefront/internal/common/otel"
	"github.com/Alturino/storefront/storefront/internal/repository"
)

const (
	keyProducts      = "storefront:products"
	productsCacheTtl = time.Hour
)

type StorefrontService struct {
	products *repository.ProductRepository
	cache    *redis.Client
}

func NewStorefrontService(
	products *repository.ProductRepository,
	cache *redis.Client,
) StorefrontService {
	return StorefrontService{products: products, cache: cache}
}

func (svc StorefrontService) InsertProduct(
	c context.Context,
	name string,
	price decimal.Decimal,
	image string,
) (repository.Product, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontService InsertProduct").
		Str(log.KeyProductName, name).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Info().Msg("inserting product to database")
	product, err := svc.products.InsertProduct(c, name, price, image)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.Product{}, err
	}
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Info().Msg("inserted product to database")

	logger = logger.With().Str(log.KeyProcess, "invalidating products cache").Logger()
	logger.Info().Msg("invalidating products cache")
	err = svc.cache.Del(c, keyProducts).Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating products cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.Product{}, err
	}
	logger.Info().Msg("invalidated products cache")

	return product, nil
}

func (svc StorefrontService) FindProducts(c context.Context) ([]repository.Product, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontService FindProducts").
		Str(log.KeyCacheKey, keyProducts).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Info().Msg("finding products in cache")
	jsonCache, err := svc.cache.Get(c, keyProducts).Result()
	if err != nil {
		err = fmt.Errorf("failed finding products in cache with error=%w", err)
		logger.Info().Err(err).Msg(err.Error())

		logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
		logger.Info().Msg("finding products in database")
		products, err := svc.products.FindProducts(c)
		if err != nil {
			err = fmt.Errorf("failed finding products in database with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("found products in database")

		logger = logger.With().Str(log.KeyProcess, "inserting products to cache").Logger()
		logger.Info().Msg("inserting products to cache")
		raw, err := json.Marshal(products)
		if err != nil {
			err = fmt.Errorf("failed marshaling products with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		err = svc.cache.Set(c, keyProducts, raw, productsCacheTtl).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting products to cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("inserted products to cache")
		return products, nil
	}
	logger.Info().Msg("found products in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	logger.Info().Msg("unmarshaling cache")
	products := []repository.Product{}
	err = json.Unmarshal([]byte(jsonCache), &products)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled cache")

	return products, nil
}

func (svc StorefrontService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (repository.Product, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontService FindProductById").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Info().Msg("finding product in database")
	product, err := svc.products.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.Product{}, err
	}
	logger.Info().Msg("found product in database")

	return product, nil
}
