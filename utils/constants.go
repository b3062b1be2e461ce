// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis auth-token cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for verified-token cache entries.
const AuthCacheTTL = 10 * time.Minute

// SlotsCachePrefix is the prefix used for Redis slot-availability cache keys.
const SlotsCachePrefix = "slots:"

// SlotsCacheTTL keeps availability reads cheap without hiding bookings for long.
const SlotsCacheTTL = 30 * time.Second
