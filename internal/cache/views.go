package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DerivedViewTTL is how long cached read-side projections (friends list,
// search results) stay fresh. Derived views are recomputed from the edge
// store on expiry; there is no write-path invalidation.
const DerivedViewTTL = 10 * time.Minute

// FriendsKey builds the cache key for a user's friends-list page.
func FriendsKey(userID uint, limit, offset int) string {
	return fmt.Sprintf("views:friends:%d:%d:%d", userID, limit, offset)
}

// SearchKey builds the cache key for a user-search page.
func SearchKey(query string, limit, offset int) string {
	return fmt.Sprintf("views:search:%s:%d:%d", query, limit, offset)
}

// GetJSON loads the value at key into dest. Returns false on miss or when
// the cache is unavailable.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest interface{}) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// SetJSON stores value at key with the derived-view TTL. Errors are
// swallowed: caching is best-effort and never fails a read path.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value interface{}) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, DerivedViewTTL).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
}
