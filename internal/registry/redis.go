package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimTTL bounds how long a claim survives a crashed worker.
// It must exceed one resolution plus one fetch.
const DefaultClaimTTL = time.Minute

// claimScript refuses visited URLs and otherwise takes the claim key with
// SET NX, so the membership test and the reservation happen atomically.
var claimScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
  return 0
end
if redis.call('SET', KEYS[2], '1', 'NX', 'PX', ARGV[2]) then
  return 1
end
return 0
`)

// Redis is a Registry shared by every process pointed at the same server
// and key prefix.
type Redis struct {
	client   *redis.Client
	prefix   string
	claimTTL time.Duration
}

var _ Registry = (*Redis)(nil)

// RedisOption configures a Redis registry.
type RedisOption func(*Redis)

// WithClaimTTL overrides DefaultClaimTTL.
func WithClaimTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.claimTTL = ttl
	}
}

// NewRedis connects to the Redis server at addr. Keys are namespaced with prefix.
func NewRedis(addr, prefix string, opts ...RedisOption) *Redis {
	r := &Redis{
		client:   redis.NewClient(&redis.Options{Addr: addr}),
		prefix:   prefix,
		claimTTL: DefaultClaimTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) visitedKey() string {
	return r.prefix + "visited"
}

func (r *Redis) claimKey(url string) string {
	return r.prefix + "claim:" + url
}

// Reset pings the server, then empties the visited set and drops the claims
// left behind by a previous run that did not shut down cleanly.
// It is called once at process start; the set never shrinks during a run.
func (r *Redis) Reset(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	keys := []string{r.visitedKey()}
	iter := r.client.Scan(ctx, 0, escapeGlob(r.prefix)+"claim:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan claims: %w", err)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset registry: %w", err)
	}
	return nil
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Claim implements Registry.
func (r *Redis) Claim(ctx context.Context, url string) (bool, error) {
	n, err := claimScript.Run(ctx, r.client,
		[]string{r.visitedKey(), r.claimKey(url)},
		url, r.claimTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", url, err)
	}
	return n == 1, nil
}

// Commit implements Registry.
func (r *Redis) Commit(ctx context.Context, url string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.visitedKey(), url)
		pipe.Del(ctx, r.claimKey(url))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit %s: %w", url, err)
	}
	return nil
}

// Release implements Registry.
func (r *Redis) Release(ctx context.Context, url string) error {
	if err := r.client.Del(ctx, r.claimKey(url)).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", url, err)
	}
	return nil
}

// Visited implements Registry.
func (r *Redis) Visited(ctx context.Context, url string) (bool, error) {
	return r.client.SIsMember(ctx, r.visitedKey(), url).Result()
}

// Len implements Registry.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.visitedKey()).Result()
	return int(n), err
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
