package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) LockKey(name string) string { return "sr:lock:" + name }

func TestRedisLockExclusive(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{data: map[string]string{}}
	first, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, store.data, "sr:lock:cron")

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.data, "sr:lock:cron", "non-owner must not release")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseAfterTakeover(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{data: map[string]string{}}
	lock, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx)
	require.NoError(t, err)
	store.data["sr:lock:cron"] = "someone-else"

	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.data["sr:lock:cron"])
}
