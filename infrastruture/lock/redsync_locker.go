// Package lock provides distributed locks on redis.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyFmt = "%s:lock:%s"
)

var _ i.Locker = &RedsyncLocker{}

// RedsyncLocker hands out redsync mutexes.
type RedsyncLocker struct {
	locker *redsync.Redsync
	prefix string
	expiry time.Duration
}

// NewRedsyncLocker creates a locker whose locks expire after expiry if never released.
func NewRedsyncLocker(client *redis.Client, prefix string, expiry time.Duration) *RedsyncLocker {
	pool := goredis.NewPool(client)
	return &RedsyncLocker{
		locker: redsync.New(pool),
		prefix: prefix,
		expiry: expiry,
	}
}

// Lock acquires the named lock.
func (l *RedsyncLocker) Lock(ctx context.Context, name string) (func(), error) {
	mutex := l.locker.NewMutex(fmt.Sprintf(lockKeyFmt, l.prefix, name), redsync.WithExpiry(l.expiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquiring %s: %w", name, err)
	}
	return func() {
		_, _ = mutex.Unlock()
	}, nil
}
