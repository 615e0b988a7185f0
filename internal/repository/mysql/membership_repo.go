package mysql

import (
	"context"
	"encoding/json"

	"Reddit_Lite/internal/model"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	DB *gorm.DB
}

// Join 一次无前置读的原子批写：插入成员记录 + member_count 自增 + 外发事件。
// 不查重，幂等性由调用方持有的镜像状态把关（加入/退出意图必须经镜像串行化）。
func (r *MembershipRepository) Join(ctx context.Context, m *model.CommunityMembership) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Community{}).
			Where("name = ?", m.CommunityName).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).
			Error; err != nil {
			return err
		}
		return r.insertOutbox(tx, "join", m.UserID, m.CommunityName)
	})
}

// Leave 删除成员记录 + member_count 自减，同样单事务无前置读
func (r *MembershipRepository) Leave(ctx context.Context, userID uint64, communityName string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND community_name = ?", userID, communityName).
			Delete(&model.CommunityMembership{}).Error; err != nil {
			return err
		}
		// 计数钳在 0，不会减成负数
		if err := tx.Model(&model.Community{}).
			Where("name = ?", communityName).
			UpdateColumn("member_count", gorm.Expr("CASE WHEN member_count > 0 THEN member_count - 1 ELSE 0 END")).
			Error; err != nil {
			return err
		}
		return r.insertOutbox(tx, "leave", userID, communityName)
	})
}

// ListByUser 用户的全部成员记录，用于镜像回填
func (r *MembershipRepository) ListByUser(ctx context.Context, userID uint64) ([]model.CommunityMembership, error) {
	var list []model.CommunityMembership
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *MembershipRepository) IsModerator(ctx context.Context, userID uint64, communityName string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMembership{}).
		Where("user_id = ? AND community_name = ? AND is_moderator = true", userID, communityName).
		Count(&count).Error
	return count > 0, err
}

// 外发事件与主事务同提交，投递由 relayer 异步完成
func (r *MembershipRepository) insertOutbox(tx *gorm.DB, event string, userID uint64, communityName string) error {
	payload, err := json.Marshal(map[string]any{
		"event":     event,
		"user_id":   userID,
		"community": communityName,
	})
	if err != nil {
		return err
	}
	return tx.Create(&model.MembershipOutbox{
		EventType:     event,
		UserID:        userID,
		CommunityName: communityName,
		Payload:       string(payload),
	}).Error
}
