package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/repository/mysql"
	"Reddit_Lite/internal/repository/redis"

	"gorm.io/gorm"
)

// VoteStore 投票账本的存储端：一次 Apply 是一个原子多键写
type VoteStore interface {
	FindVote(ctx context.Context, userID, postID uint64) (*model.PostVote, error)
	Apply(ctx context.Context, v *model.PostVote, ch model.VoteChange) (int64, error)
	ListByCommunity(ctx context.Context, userID uint64, communityName string) ([]model.PostVote, error)
}

type PostFinder interface {
	FindByID(ctx context.Context, id uint64) (*model.Post, error)
}

type VoteService struct {
	Store   VoteStore
	Posts   PostFinder
	Mirrors *mirror.Registry
	Cache   *redis.VoteCacheRepository
	Lock    *redis.DistLock
}

func NewVoteService(mirrors *mirror.Registry) *VoteService {
	return &VoteService{
		Store:   &mysql.VoteRepository{DB: mysql.DB},
		Posts:   &mysql.PostRepository{DB: mysql.DB},
		Mirrors: mirrors,
		Cache:   redis.NewVoteCacheRepository(),
		Lock:    &redis.DistLock{RDB: redis.Client},
	}
}

// CastResult 本次投票后的新状态
type CastResult struct {
	Score int64 `json:"score"`
	Value int8  `json:"value"` // 0 表示当前无票（撤票后）
}

// Cast 投票/翻转/撤票三合一：
// 镜像优先查现有记录（冷镜像回源），纯函数推导出记录操作与分数增量，
// 一次原子写落库，确认成功后才把同一增量应用到镜像。
// 失败时镜像保持原样，不需要回滚。
func (s *VoteService) Cast(ctx context.Context, userID, postID uint64, value int8) (*CastResult, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if value != model.Upvote && value != model.Downvote {
		return nil, errors.New("vote value must be +1 or -1")
	}

	m := s.Mirrors.ForUser(userID)

	// 现有投票：镜像 -> 存储
	var existing *model.PostVote
	if v, ok := m.VoteOf(postID); ok {
		existing = &v
	} else {
		v, err := s.Store.FindVote(ctx, userID, postID)
		if err != nil {
			// 前置读失败不算写失败，没有任何写发生
			return nil, fmt.Errorf("find vote: %w", err)
		}
		existing = v
	}

	ch := model.ResolveVote(existing, value)

	vote := model.PostVote{UserID: userID, PostID: postID}
	if existing != nil {
		vote = *existing
	} else {
		// 新票需要社区名，帖子副本也走镜像优先；缺社区名的副本按未命中处理
		p, ok := m.PostOf(postID)
		if !ok || p.CommunityName == "" {
			fp, err := s.Posts.FindByID(ctx, postID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrNotFound
				}
				return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
			}
			p = *fp
			m.PrimePost(p)
		}
		vote.CommunityName = p.CommunityName
	}
	vote.Value = value

	newScore, err := s.Store.Apply(ctx, &vote, ch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	// 提交确认后才动镜像
	m.SetScore(postID, newScore)
	switch ch.Op {
	case model.VoteRetract:
		m.RemoveVote(postID)
	default:
		vote.Value = ch.Value
		m.SetVote(vote)
	}

	s.refreshCache(ctx, userID, postID, ch)

	return &CastResult{Score: newScore, Value: ch.Value}, nil
}

// 缓存尽力而为：拿锁则按 delta 强更新，拿不到锁删分数 Key 交给读侧重建
func (s *VoteService) refreshCache(ctx context.Context, userID, postID uint64, ch model.VoteChange) {
	if s.Cache == nil {
		return
	}
	token := fmt.Sprintf("%d-%d-%d", userID, postID, time.Now().UnixNano())
	got := false
	if s.Lock != nil {
		got, _ = s.Lock.Acquire(ctx, postID, token)
	}
	if got {
		defer s.Lock.Release(ctx, postID, token)
		if err := s.Cache.ApplyVote(ctx, userID, postID, ch.Value, ch.Delta); err != nil {
			_ = s.Cache.DeleteScore(ctx, postID)
		}
	} else {
		_ = s.Cache.DeleteScore(ctx, postID)
	}
}

// ScoreOf 读帖子分数：镜像 -> 缓存 -> 加锁回源
func (s *VoteService) ScoreOf(ctx context.Context, userID, postID uint64) (int64, error) {
	if userID != 0 {
		if score, ok := s.Mirrors.ForUser(userID).ScoreOf(postID); ok {
			return score, nil
		}
	}
	if s.Cache != nil {
		if v, ok, err := s.Cache.GetScoreCached(ctx, postID); err == nil && ok {
			return v, nil
		}
	}
	p, err := s.Posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if s.Cache != nil && s.Lock != nil {
		token := fmt.Sprintf("%d-%d-%d", userID, postID, time.Now().UnixNano())
		if got, _ := s.Lock.Acquire(ctx, postID, token); got {
			defer s.Lock.Release(ctx, postID, token)
			_ = s.Cache.SetScore(ctx, postID, p.Score)
		}
	}
	if userID != 0 {
		s.Mirrors.ForUser(userID).PrimePost(*p)
	}
	return p.Score, nil
}

// VoteOf 当前用户对帖子的票值，0 表示未投
func (s *VoteService) VoteOf(ctx context.Context, userID, postID uint64) (int8, error) {
	if userID == 0 {
		return 0, ErrUnauthenticated
	}
	m := s.Mirrors.ForUser(userID)
	if v, ok := m.VoteOf(postID); ok {
		return v.Value, nil
	}
	if s.Cache != nil {
		if val, hit, err := s.Cache.VoteOfCached(ctx, userID, postID); err == nil && hit {
			return val, nil
		}
	}
	v, err := s.Store.FindVote(ctx, userID, postID)
	if err != nil {
		return 0, err
	}
	if v == nil {
		if s.Cache != nil {
			s.Cache.WarmVote(ctx, userID, postID, 0)
		}
		return 0, nil
	}
	m.SetVote(*v)
	if s.Cache != nil {
		s.Cache.WarmVote(ctx, userID, postID, v.Value)
	}
	return v.Value, nil
}

// PrimeCommunityVotes 浏览社区时把该用户在社区下的投票整体回填进镜像
func (s *VoteService) PrimeCommunityVotes(ctx context.Context, userID uint64, communityName string) error {
	if userID == 0 {
		return nil
	}
	m := s.Mirrors.ForUser(userID)
	if m.VotesPrimed(communityName) {
		return nil
	}
	votes, err := s.Store.ListByCommunity(ctx, userID, communityName)
	if err != nil {
		return err
	}
	m.PrimeVotes(communityName, votes)
	return nil
}
