package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	Client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = Client.Close()
		Client = nil
	})
	return mr
}

func TestVoteCacheApplyAndRead(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	r := NewVoteCacheRepository()

	// 分数缓存不存在时 ApplyVote 只写票值 hash，不凭空造计数
	require.NoError(t, r.ApplyVote(ctx, 1, 10, 1, 1))
	_, hit, err := r.GetScoreCached(ctx, 10)
	require.NoError(t, err)
	assert.False(t, hit)

	v, hit, err := r.VoteOfCached(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, int8(1), v)

	// 回填分数后，增量直接作用在缓存上
	require.NoError(t, r.SetScore(ctx, 10, 5))
	require.NoError(t, r.ApplyVote(ctx, 2, 10, -1, -1))
	score, hit, err := r.GetScoreCached(ctx, 10)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, int64(4), score)

	// 撤票：hash 里删掉用户，delta 反向
	require.NoError(t, r.ApplyVote(ctx, 1, 10, 0, -1))
	v, hit, err = r.VoteOfCached(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, int8(0), v)
	score, _, _ = r.GetScoreCached(ctx, 10)
	assert.Equal(t, int64(3), score)
}

func TestVoteCacheMissOnColdHash(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	r := NewVoteCacheRepository()

	// hash 不存在时返回 miss 而不是"未投票"
	_, hit, err := r.VoteOfCached(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, hit)

	// 惰性回填只在 hash 已存在时写
	r.WarmVote(ctx, 1, 99, 1)
	_, hit, _ = r.VoteOfCached(ctx, 1, 99)
	assert.False(t, hit)
}

func TestDeleteScore(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	r := NewVoteCacheRepository()

	require.NoError(t, r.SetScore(ctx, 10, 5))
	require.NoError(t, r.DeleteScore(ctx, 10))
	_, hit, err := r.GetScoreCached(ctx, 10)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDistLock(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	l := &DistLock{RDB: Client}

	got, err := l.Acquire(ctx, 10, "token-a")
	require.NoError(t, err)
	assert.True(t, got)

	// 锁被占用时拿不到
	got, err = l.Acquire(ctx, 10, "token-b")
	require.NoError(t, err)
	assert.False(t, got)

	// 别人的 token 释放不掉
	require.NoError(t, l.Release(ctx, 10, "token-b"))
	got, _ = l.Acquire(ctx, 10, "token-c")
	assert.False(t, got)

	// 自己的 token 可以释放
	require.NoError(t, l.Release(ctx, 10, "token-a"))
	got, err = l.Acquire(ctx, 10, "token-d")
	require.NoError(t, err)
	assert.True(t, got)
}
