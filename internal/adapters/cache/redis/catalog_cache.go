package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

const keyPrefix = "hr-records:catalog:"

// Store は CatalogCache が利用する Redis コマンドです。*redis.Client が満たします。
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CatalogCache は参照データ取得を Redis でキャッシュする catalog.Repository のデコレーターです。
// 参照データは不変のため、キャッシュの読み書きに失敗した場合はログを残して下位のリポジトリに委譲します。
type CatalogCache struct {
	next   catalog.Repository
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCatalogCache は CatalogCache を生成します。
func NewCatalogCache(next catalog.Repository, store Store, ttl time.Duration, logger zerolog.Logger) *CatalogCache {
	return &CatalogCache{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis.CatalogCache").Logger(),
	}
}

func (c *CatalogCache) FindCountryByID(ctx context.Context, id int64) (*catalog.Country, error) {
	return readThrough(ctx, c, itemKey(catalog.KindCountry, id), func(ctx context.Context) (*catalog.Country, error) {
		return c.next.FindCountryByID(ctx, id)
	})
}

func (c *CatalogCache) FindAreaByID(ctx context.Context, id int64) (*catalog.Area, error) {
	return readThrough(ctx, c, itemKey(catalog.KindArea, id), func(ctx context.Context) (*catalog.Area, error) {
		return c.next.FindAreaByID(ctx, id)
	})
}

func (c *CatalogCache) FindIdentificationTypeByID(ctx context.Context, id int64) (*catalog.IdentificationType, error) {
	return readThrough(ctx, c, itemKey(catalog.KindIdentificationType, id), func(ctx context.Context) (*catalog.IdentificationType, error) {
		return c.next.FindIdentificationTypeByID(ctx, id)
	})
}

func (c *CatalogCache) ListCountries(ctx context.Context) ([]catalog.Country, error) {
	return readThrough(ctx, c, listKey(catalog.KindCountry), c.next.ListCountries)
}

func (c *CatalogCache) ListAreas(ctx context.Context) ([]catalog.Area, error) {
	return readThrough(ctx, c, listKey(catalog.KindArea), c.next.ListAreas)
}

func (c *CatalogCache) ListIdentificationTypes(ctx context.Context) ([]catalog.IdentificationType, error) {
	return readThrough(ctx, c, listKey(catalog.KindIdentificationType), c.next.ListIdentificationTypes)
}

func readThrough[T any](ctx context.Context, c *CatalogCache, key string, load func(context.Context) (T, error)) (T, error) {
	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.store.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return value, nil
}

func itemKey(kind catalog.Kind, id int64) string {
	return keyPrefix + string(kind) + ":" + strconv.FormatInt(id, 10)
}

func listKey(kind catalog.Kind) string {
	return keyPrefix + string(kind) + ":all"
}
