package mysql

import (
	"context"
	"errors"

	"Reddit_Lite/internal/model"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

// FindVote 查询用户对帖子的投票记录，不存在时返回 (nil, nil)
func (r *VoteRepository) FindVote(ctx context.Context, userID, postID uint64) (*model.PostVote, error) {
	var v model.PostVote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Apply 把一次投票变更落库：投票记录的增/改/删 + 帖子分数按 delta 原子自增，
// 同一事务内完成，要么全部生效要么全部不生效。
// 分数用 UpdateColumn 表达式自增，不做读改写，并发投同一帖不会丢更新。
func (r *VoteRepository) Apply(ctx context.Context, v *model.PostVote, ch model.VoteChange) (int64, error) {
	var newScore int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch ch.Op {
		case model.VoteCreate:
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		case model.VoteFlip:
			res := tx.Model(&model.PostVote{}).
				Where("user_id = ? AND post_id = ?", v.UserID, v.PostID).
				UpdateColumn("value", ch.Value)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		case model.VoteRetract:
			res := tx.Where("user_id = ? AND post_id = ?", v.UserID, v.PostID).
				Delete(&model.PostVote{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = 0", v.PostID).
			UpdateColumn("score", gorm.Expr("score + ?", ch.Delta))
		if res.Error != nil {
			return res.Error
		}
		// 帖子已被删除/封禁，整个事务回滚
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var p model.Post
		if err := tx.Select("id", "score").First(&p, v.PostID).Error; err != nil {
			return err
		}
		newScore = p.Score
		return nil
	})
	return newScore, err
}

// ListByCommunity 某用户在某社区下的全部投票，用于镜像回填
func (r *VoteRepository) ListByCommunity(ctx context.Context, userID uint64, communityName string) ([]model.PostVote, error) {
	var list []model.PostVote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND community_name = ?", userID, communityName).
		Find(&list).Error
	return list, err
}
