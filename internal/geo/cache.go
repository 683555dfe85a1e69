package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ridereminder/internal/models"
)

// Source resolves an address to a location.
type Source interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

// CachedGeocoder caches geocoding results in Redis. Cache failures degrade to
// a plain lookup, never to an error.
type CachedGeocoder struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
}

// NewCachedGeocoder wraps source with a Redis cache. A zero ttl keeps entries
// for 24 hours.
func NewCachedGeocoder(source Source, rdb *redis.Client, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedGeocoder{source: source, rdb: rdb, ttl: ttl}
}

func cacheKey(address string) string {
	// нормализуем адрес, чтобы везде один формат
	return fmt.Sprintf("geocode:%s", strings.ToLower(strings.TrimSpace(address)))
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	key := cacheKey(address)

	if g.rdb != nil {
		val, err := g.rdb.Get(ctx, key).Result()
		if err == nil {
			var loc models.Location
			if err := json.Unmarshal([]byte(val), &loc); err == nil {
				return loc, nil
			}
			log.Printf("geocode cache: bad entry for %s, refetching", key)
		} else if err != redis.Nil {
			log.Printf("geocode cache: get %s: %v", key, err)
		}
	}

	loc, err := g.source.Geocode(ctx, address)
	if err != nil {
		return models.Location{}, err
	}

	if g.rdb != nil {
		data, err := json.Marshal(loc)
		if err == nil {
			if err := g.rdb.Set(ctx, key, data, g.ttl).Err(); err != nil {
				log.Printf("geocode cache: set %s: %v", key, err)
			}
		}
	}
	return loc, nil
}
