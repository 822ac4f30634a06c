package libs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

const lockPollInterval = 50 * time.Millisecond

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker serializes work per key. It uses Redis SET NX when a client is
// available and falls back to in-process mutexes otherwise.
type Locker struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, local: make(map[string]*localLock)}
}

// Lock blocks until the key is acquired or ctx is done. The returned func
// releases it. A Redis lock is renewed every ttl/3 until released, so work
// that outlives ttl keeps the key.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	if l.client == nil {
		return l.lockLocal(ctx, key)
	}

	token := uuid.NewString()
	keys := []string{"lock:" + key}
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, keys[0], token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				renew(stop, l.ttl/3, func() (bool, error) {
					n, err := extendScript.Run(context.Background(), l.client, keys, token, l.ttl.Milliseconds()).Int()
					return n == 1, err
				})
			}()

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-done
					releaseScript.Run(context.Background(), l.client, keys, token)
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *Locker) lockLocal(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.local[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.local[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lk, false)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, lk, true) })
	}, nil
}

func (l *Locker) release(key string, lk *localLock, held bool) {
	if held {
		<-lk.ch
	}
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.local, key)
	}
	l.mu.Unlock()
}

// renew calls extend every interval until stop is closed or extend reports
// the lock is no longer ours. Errors are retried on the next tick.
func renew(stop <-chan struct{}, interval time.Duration, extend func() (bool, error)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			held, err := extend()
			if err == nil && !held {
				return
			}
		}
	}
}
