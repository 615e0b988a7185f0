package model

import "time"

type Post struct {
	ID            uint64    `gorm:"primaryKey;index:idx_comm_time_id,priority:3,sort:desc" json:"id"`
	CommunityName string    `gorm:"size:21;not null;index:idx_comm_time_id,priority:1" json:"community_name"`
	CreatorID     uint64    `gorm:"not null;index:idx_creator_time" json:"creator_id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Body          string    `gorm:"type:text" json:"body"`
	Status        int       `gorm:"not null;default:0" json:"-"` // 0=normal 1=deleted 2=banned
	Score         int64     `gorm:"not null;default:0" json:"score"`
	CommentCount  int64     `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt     time.Time `gorm:"index:idx_comm_time_id,priority:2,sort:desc" json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}
