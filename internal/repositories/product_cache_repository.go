package repositories

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"vendorapi/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedProductRepository is a read-through Redis cache in front of another
// ProductRepository. Redis failures fall back to the wrapped repository.
type CachedProductRepository struct {
	next   ProductRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedProductRepository wraps next with a Redis cache.
func NewCachedProductRepository(next ProductRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "product_cache").Logger(),
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}

func vendorProductsCacheKey(vendorID string) string {
	return "vendor:" + vendorID + ":products"
}

// Cached values live under "<base>:<generation>". Writes bump "<base>:gen", so a
// read that raced a write stores under a generation nobody reads again. The
// counters carry no TTL.
func generationKey(base string) string {
	return base + ":gen"
}

func generationDataKey(base string, gen int64) string {
	return base + ":" + strconv.FormatInt(gen, 10)
}

// GetAllByVendor serves the vendor's product list from cache when present.
func (r *CachedProductRepository) GetAllByVendor(ctx context.Context, vendorID string) ([]models.Product, error) {
	key, ok := r.currentKey(ctx, vendorProductsCacheKey(vendorID))
	if ok {
		var cached []models.Product
		if r.load(ctx, key, &cached) {
			if cached == nil {
				cached = []models.Product{}
			}
			return cached, nil
		}
	}

	products, err := r.next.GetAllByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if ok {
		r.store(ctx, key, products)
	}
	return products, nil
}

// GetByID serves a single product from cache when present. Misses are not cached.
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key, ok := r.currentKey(ctx, productCacheKey(id))
	if ok {
		var cached models.Product
		if r.load(ctx, key, &cached) {
			return &cached, nil
		}
	}

	product, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		r.store(ctx, key, product)
	}
	return product, nil
}

// Save writes through and retires the vendor's cached list.
func (r *CachedProductRepository) Save(ctx context.Context, product *models.Product) error {
	if err := r.next.Save(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, vendorProductsCacheKey(product.VendorID))
	return nil
}

// Update writes through and retires both the product and the vendor list.
func (r *CachedProductRepository) Update(ctx context.Context, patch models.ProductPatch) (*models.Product, error) {
	product, err := r.next.Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, productCacheKey(patch.ID), vendorProductsCacheKey(patch.VendorID))
	return product, nil
}

// currentKey resolves base to the data key of its current generation. ok is
// false when Redis cannot be read, in which case the cache is bypassed.
func (r *CachedProductRepository) currentKey(ctx context.Context, base string) (string, bool) {
	gen, err := r.client.Get(ctx, generationKey(base)).Int64()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", base).Msg("cache generation read failed")
			return "", false
		}
		gen = 0
	}
	return generationDataKey(base, gen), true
}

func (r *CachedProductRepository) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (r *CachedProductRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (r *CachedProductRepository) invalidate(ctx context.Context, bases ...string) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, base := range bases {
			pipe.Incr(ctx, generationKey(base))
		}
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Strs("keys", bases).Msg("cache invalidation failed")
	}
}
