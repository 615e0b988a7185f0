package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	VoteHashTTL       = 24 * time.Hour
	ScoreTTL          = 24 * time.Hour
	LockTTL           = 300 * time.Millisecond
	VoteHashKeyPrefix = "vote:who:post"  // 帖子下 userID -> 票值 的 hash
	ScoreKeyPrefix    = "vote:score:post" // 帖子分数缓存
	LockKeyPrefix     = "lock:vote:post" // 分布式锁
)

type VoteCacheRepository struct {
	voteHashTTL time.Duration
	scoreTTL    time.Duration
}

type DistLock struct {
	RDB *redis.Client
}

func NewVoteCacheRepository() *VoteCacheRepository {
	return &VoteCacheRepository{
		voteHashTTL: VoteHashTTL,
		scoreTTL:    ScoreTTL,
	}
}

func (r *VoteCacheRepository) voteHashKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", VoteHashKeyPrefix, postID)
}
func (r *VoteCacheRepository) scoreKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", ScoreKeyPrefix, postID)
}

// ApplyVote 写路径：MySQL 提交成功后调用。票值 hash 直接更新（不强制），
// 分数按 delta 自增；任一步失败由调用方删 Key 降级，读侧回源重建。
func (r *VoteCacheRepository) ApplyVote(ctx context.Context, userID, postID uint64, value int8, delta int64) error {
	k := r.voteHashKey(postID)
	if value == 0 {
		if err := Client.HDel(ctx, k, strconv.FormatUint(userID, 10)).Err(); err != nil {
			return err
		}
	} else {
		if err := Client.HSet(ctx, k, strconv.FormatUint(userID, 10), int64(value)).Err(); err != nil {
			return err
		}
	}
	_ = Client.Expire(ctx, k, r.voteHashTTL).Err()

	ck := r.scoreKey(postID)
	// 只在分数缓存已存在时自增，miss 交给读侧加锁重建
	exists, err := Client.Exists(ctx, ck).Result()
	if err != nil {
		return err
	}
	if exists > 0 {
		if err := Client.IncrBy(ctx, ck, delta).Err(); err != nil {
			return err
		}
		_ = Client.Expire(ctx, ck, r.scoreTTL).Err()
	}
	return nil
}

// VoteOfCached 查缓存里用户对帖子的票值；第二个返回值表示缓存是否命中
func (r *VoteCacheRepository) VoteOfCached(ctx context.Context, userID, postID uint64) (int8, bool, error) {
	k := r.voteHashKey(postID)
	exists, err := Client.Exists(ctx, k).Result()
	if err != nil {
		return 0, false, err
	}
	if exists == 0 {
		return 0, false, nil
	}
	val, err := Client.HGet(ctx, k, strconv.FormatUint(userID, 10)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int8(val), true, nil
}

// GetScoreCached 读帖子分数缓存
func (r *VoteCacheRepository) GetScoreCached(ctx context.Context, postID uint64) (int64, bool, error) {
	val, err := Client.Get(ctx, r.scoreKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

// SetScore 回填帖子分数
func (r *VoteCacheRepository) SetScore(ctx context.Context, postID uint64, score int64) error {
	return Client.Set(ctx, r.scoreKey(postID), score, r.scoreTTL).Err()
}

// WarmVote 惰性回填：只在 hash 已存在时写，避免无界扩张
func (r *VoteCacheRepository) WarmVote(ctx context.Context, userID, postID uint64, value int8) {
	k := r.voteHashKey(postID)
	if ok, _ := Client.Exists(ctx, k).Result(); ok > 0 {
		field := strconv.FormatUint(userID, 10)
		if value == 0 {
			_ = Client.HDel(ctx, k, field).Err()
		} else {
			_ = Client.HSet(ctx, k, field, int64(value)).Err()
		}
		_ = Client.Expire(ctx, k, r.voteHashTTL).Err()
	}
}

// DeleteScore 删分数缓存，支持可选延迟二删，抵消并发回填窗口的脏数据
func (r *VoteCacheRepository) DeleteScore(ctx context.Context, postID uint64, delay ...time.Duration) error {
	key := r.scoreKey(postID)
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = Client.Del(context.Background(), key).Err()
		}()
	}
	return nil
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
	return l.RDB.SetNX(ctx, key, token, LockTTL).Result()
}

// Release 用 lua 保证只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, postID uint64, token string) error {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}
