package model

import "time"

type User struct {
	ID          uint64 `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName string `gorm:"size:32;not null"` // 默认取邮箱 @ 前缀
	Password    string `gorm:"size:255;not null"`
	Role        int    `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
