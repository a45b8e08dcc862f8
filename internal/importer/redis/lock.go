package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getImportLockDuration returns the domain lock TTL from environment variables or the default value
func (r *Redis) getImportLockDuration() time.Duration {
	// Default lock TTL is 60 seconds, enough for one row's full sequence
	defaultDuration := 60 * time.Second

	lockTTLStr := os.Getenv("IMPORT_LOCK_TTL_SECONDS")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLSec, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid IMPORT_LOCK_TTL_SECONDS value '" + lockTTLStr + "', using default 60 seconds")
		return defaultDuration
	}

	return time.Duration(lockTTLSec) * time.Second
}

// LockDomain claims a domain for one import run. Returns false when another
// run holds the lock.
func (r *Redis) LockDomain(domain, runID string) (bool, error) {
	key := "import_lock:" + domain
	ok, err := r.Client.SetNX(context.Background(), key, runID, r.getImportLockDuration()).Result()
	return ok, err
}

// UnlockDomain releases a domain lock, but only if this run owns it.
func (r *Redis) UnlockDomain(domain, runID string) error {
	ctx := context.Background()
	key := fmt.Sprintf("import_lock:%s", domain)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == runID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
