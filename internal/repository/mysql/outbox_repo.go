package mysql

import (
	"context"

	"Reddit_Lite/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// ListPending 取一批待投递事件
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]model.MembershipOutbox, error) {
	var rows []model.MembershipOutbox
	err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MembershipOutbox{}).
		Where("id = ?", id).
		Update("status", 1).Error
}

// MarkRetry 投递失败，重试计数 +1；超过上限由人工处理
func (r *OutboxRepository) MarkRetry(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MembershipOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"retry":  gorm.Expr("retry + 1"),
			"status": gorm.Expr("CASE WHEN retry >= 5 THEN 2 ELSE status END"),
		}).Error
}
