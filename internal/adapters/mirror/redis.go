package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workdesk/workdesk-go/internal/ports"
)

// redisOpTimeout bounds each mirror round-trip so a slow Redis can never
// stall the session store; mirror operations are best-effort.
const redisOpTimeout = 2 * time.Second

// Redis is a MirrorStore whose durable scope is shared via Redis, for
// deployments where several client processes (kiosk shells, test runners)
// should observe the same remember-me hints. The session scope stays local.
type Redis struct {
	mu      sync.Mutex
	session map[string]string

	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed mirror with the given key prefix
// (e.g. "mirror:alice:").
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		session: make(map[string]string),
		client:  client,
		prefix:  prefix,
	}
}

func (r *Redis) Get(key string) (string, bool) {
	r.mu.Lock()
	if v, ok := r.session[key]; ok {
		r.mu.Unlock()
		return v, true
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *Redis) GetDurable(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *Redis) Set(scope ports.MirrorScope, key, value string) error {
	if scope == ports.ScopeSession {
		r.mu.Lock()
		r.session[key] = value
		r.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Redis) Delete(key string) error {
	r.mu.Lock()
	delete(r.session, key)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	err := r.client.Del(ctx, r.prefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
