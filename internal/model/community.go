package model

import "time"

// 社区隐私模式
const (
	PrivacyPublic     = "public"
	PrivacyRestricted = "restricted"
	PrivacyPrivate    = "private"
)

// Community 社区名即主键：全局唯一、大小写保留、创建后不可改名
type Community struct {
	Name        string `gorm:"primaryKey;size:21" json:"name"`
	CreatorID   uint64 `gorm:"not null;index" json:"creator_id"`
	MemberCount int64  `gorm:"not null;default:0" json:"member_count"`
	PrivacyType string `gorm:"size:16;not null;default:'public'" json:"privacy_type"`
	ImageURL    string `gorm:"size:255" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// CommunityMembership 用户侧的加入记录，(user_id, community_name) 唯一
// image_url 冗余自社区，方便侧边栏直接渲染
type CommunityMembership struct {
	ID            uint64    `gorm:"primaryKey" json:"-"`
	UserID        uint64    `gorm:"not null;index;uniqueIndex:uk_user_community" json:"user_id"`
	CommunityName string    `gorm:"size:21;not null;index;uniqueIndex:uk_user_community" json:"community_name"`
	ImageURL      string    `gorm:"size:255" json:"image_url"`
	IsModerator   bool      `gorm:"not null;default:false" json:"is_moderator"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (CommunityMembership) TableName() string {
	return "community_memberships"
}

// MembershipOutbox 加入/退出事件外发表，与主事务同库同提交
type MembershipOutbox struct {
	ID            uint64 `gorm:"primaryKey"`
	EventType     string `gorm:"size:16;not null"` // join / leave
	UserID        uint64 `gorm:"not null"`
	CommunityName string `gorm:"size:21;not null"`
	Payload       string `gorm:"type:json;not null"`
	Status        int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry         int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MembershipOutbox) TableName() string { return "membership_outbox" }
