package mysql

import (
	"context"
	"errors"

	"Reddit_Lite/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNameExists 社区名已被占用（事务内读到已有文档，或提交时撞唯一键）
var ErrNameExists = errors.New("community name exists")

type CommunityRepository struct {
	DB *gorm.DB
}

// CreateWithFounder 抢占社区名 + 写入创建者的首条成员记录，单事务完成。
// 先加锁读候选名，已存在则整体中止，不留任何半成品；
// name 是主键，即使两个事务同时通过了读检查，后提交的也会撞唯一键，先写者胜。
func (r *CommunityRepository) CreateWithFounder(ctx context.Context, c *model.Community, founder *model.CommunityMembership) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Community
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", c.Name).
			First(&existing).Error
		if err == nil {
			return ErrNameExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNameExists
			}
			return err
		}
		return tx.Create(founder).Error
	})
}

func (r *CommunityRepository) FindByName(ctx context.Context, name string) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&c).Error
	return &c, err
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).
		Order("member_count DESC, name ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
