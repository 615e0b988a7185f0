package mysql

import (
	"context"

	"Reddit_Lite/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, "id = ? AND status = 0", id).Error
	return &post, err
}

// ListByCommunity 基础分页
func (r *PostRepository) ListByCommunity(ctx context.Context, communityName string, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("community_name = ? AND status = 0", communityName).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

// ListByCommunityCursor 时间游标分页：索引 (community_name, created_at DESC, id DESC)
// lastCreatedAt 为零值表示第一页；否则 (created_at, id) 作为严格游标
func (r *PostRepository) ListByCommunityCursor(ctx context.Context, communityName string, lastID uint64, lastCreatedAt int64, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.WithContext(ctx).Where("community_name = ? AND status = 0", communityName)
	if lastCreatedAt > 0 {
		// 先比时间，同一时间点再用 id 打破并列
		q = q.Where("(created_at < FROM_UNIXTIME(?) OR (created_at = FROM_UNIXTIME(?) AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// DeleteWithPermission 一步带权限的软删除：作者或该社区版主可删；幂等，已删不报错
func (r *PostRepository) DeleteWithPermission(ctx context.Context, postID, operatorID uint64) (affected int64, err error) {
	tx := r.DB.WithContext(ctx).Exec(`
		UPDATE posts p
		JOIN (SELECT id, community_name, creator_id, status FROM posts WHERE id = ?) x ON x.id = p.id
		SET p.status = 1
		WHERE p.id = ? AND p.status = 0
		  AND (x.creator_id = ? OR EXISTS (
		       SELECT 1 FROM community_memberships m
		       WHERE m.community_name = x.community_name AND m.user_id = ? AND m.is_moderator = true
		  ))`,
		postID, postID, operatorID, operatorID,
	)
	return tx.RowsAffected, tx.Error
}
