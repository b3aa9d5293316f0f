package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	"github.com/snapvault/gallery-server-go/internal/config"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

const joinLimitKeyPrefix = "joinlimit:"

var joinLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local remaining = limit - count - 1
local resetAt = now + window

return {1, remaining, resetAt}
`)

// JoinRateLimiter throttles guest join and PIN attempts per client IP with a
// redis sliding window, so a wrong-PIN loop cannot brute-force an event.
type JoinRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewJoinRateLimiter(client *redis.Client) *JoinRateLimiter {
	return &JoinRateLimiter{
		client: client,
		limit:  config.JoinRateLimitPerWindow,
		window: config.JoinRateLimitWindow,
	}
}

// Check is fail-open: when redis is unreachable, guests can still join.
func (rl *JoinRateLimiter) Check(ctx context.Context, ip string) (allowed bool, remaining int, resetAt int64) {
	now := time.Now().Unix()
	key := joinLimitKeyPrefix + ip

	result, err := joinLimitScript.Run(ctx, rl.client, []string{key}, now, int64(rl.window.Seconds()), rl.limit).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("redis join rate limit check failed, allowing request")
		return true, rl.limit - 1, now + int64(rl.window.Seconds())
	}

	if len(result) != 3 {
		log.Warn().Str("ip", ip).Msg("unexpected redis join rate limit result")
		return true, rl.limit - 1, now + int64(rl.window.Seconds())
	}

	return result[0] == 1, int(result[1]), result[2]
}

type JoinRateLimitMiddleware struct {
	limiter *JoinRateLimiter
}

func NewJoinRateLimitMiddleware(redisClient *redis.Client) *JoinRateLimitMiddleware {
	return &JoinRateLimitMiddleware{limiter: NewJoinRateLimiter(redisClient)}
}

func (m *JoinRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		allowed, remaining, resetAt := m.limiter.Check(r.Context(), ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			log.Warn().Str("ip", ip).Msg("join rate limit exceeded")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventRateLimitExceed})
			w.Header().Set("Retry-After", strconv.Itoa(int(m.limiter.window.Seconds())))
			writeError(w, r, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware already folded X-Forwarded-For into RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
