package redisqueue

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/contoso-notify/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "test:notifications"

func newQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewQueue(rdb, key), mr
}

func TestQueue_RoundTripFIFO(t *testing.T) {
	q, _ := newQueue(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(ctx, &domain.Notification{
			ID: int64(i), EntityType: "Instructor", EntityID: strconv.Itoa(i), Operation: domain.OperationUpdate,
		}))
	}
	l, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), l)

	for i := 1; i <= 3; i++ {
		n, err := q.TryDequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, int64(i), n.ID)
		assert.Equal(t, domain.OperationUpdate, n.Operation)
	}
}

func TestQueue_EmptyTimesOutAsEmpty(t *testing.T) {
	q, _ := newQueue(t)
	n, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestQueue_MalformedPayload(t *testing.T) {
	q, mr := newQueue(t)
	_, err := mr.Lpush(key, "not-json")
	require.NoError(t, err)

	n, err := q.TryDequeue(context.Background())
	assert.Nil(t, n)
	assert.Error(t, err)
}

func TestQueue_ServerDownIsTransportError(t *testing.T) {
	q, mr := newQueue(t)
	mr.Close()

	err := q.Enqueue(context.Background(), &domain.Notification{ID: 1})
	assert.True(t, errors.Is(err, domain.ErrTransport))
}
