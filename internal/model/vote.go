package model

import "time"

// 投票取值，只有 ±1
const (
	Upvote   int8 = 1
	Downvote int8 = -1
)

// PostVote 一个用户对一个帖子至多一条记录
// 帖子的 score 恒等于其所有 vote 记录 value 之和，由账本写路径保证，从不靠扫表重算
type PostVote struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        uint64    `gorm:"not null;index;uniqueIndex:uk_user_post" json:"user_id"`
	PostID        uint64    `gorm:"not null;index;uniqueIndex:uk_user_post" json:"post_id"`
	CommunityName string    `gorm:"size:21;not null;index" json:"community_name"`
	Value         int8      `gorm:"not null" json:"value"` // +1 / -1
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (PostVote) TableName() string {
	return "post_votes"
}

type VoteOp int

const (
	VoteCreate VoteOp = iota
	VoteFlip
	VoteRetract
)

// VoteChange 一次投票动作需要落库的变更：记录操作 + 分数增量
type VoteChange struct {
	Op    VoteOp
	Value int8  // 撤票后为 0
	Delta int64 // 帖子 score 的增量
}

// ResolveVote 由当前记录和请求值推导变更，纯函数：
// 无记录 -> 新建，delta = v
// 同值   -> 撤票，delta = -v
// 异值   -> 翻转，delta = 2v（一步抵掉旧票再加上新票）
func ResolveVote(existing *PostVote, requested int8) VoteChange {
	if existing == nil {
		return VoteChange{Op: VoteCreate, Value: requested, Delta: int64(requested)}
	}
	if existing.Value == requested {
		return VoteChange{Op: VoteRetract, Value: 0, Delta: -int64(requested)}
	}
	return VoteChange{Op: VoteFlip, Value: requested, Delta: 2 * int64(requested)}
}
