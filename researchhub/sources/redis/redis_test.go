package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"researchhub/researchhub/utils/ids"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrWithExpire(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	defer r.Close()

	key := "test:" + ids.New()
	defer r.Delete(ctx, key)

	for want := int64(1); want <= 3; want++ {
		got, err := r.IncrWithExpire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	ttl, err := r.TTL(ctx, key)
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %v", ttl)
}
