// Package mirror 持有每个会话对账本结果的本地副本：
// 帖子分数、当前用户的投票、当前用户的社区成员记录。
// 副本只在存储确认提交之后更新，失败时保持原样，因此不需要回滚逻辑。
package mirror

import (
	"sync"

	"Reddit_Lite/internal/model"
)

// Mirror 单个用户会话的本地镜像，非权威，可随时整体丢弃重建
type Mirror struct {
	mu          sync.RWMutex
	posts       map[uint64]model.Post
	votes       map[uint64]model.PostVote
	memberships map[string]model.CommunityMembership

	votesPrimed       map[string]bool // 按社区记录投票是否已从存储回填过
	membershipsPrimed bool
}

func New() *Mirror {
	return &Mirror{
		posts:       make(map[uint64]model.Post),
		votes:       make(map[uint64]model.PostVote),
		memberships: make(map[string]model.CommunityMembership),
		votesPrimed: make(map[string]bool),
	}
}

// PrimePost 记录帖子的最新已知副本（列表/详情读取后调用）
func (m *Mirror) PrimePost(p model.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
}

// PostOf 返回帖子的最新已知副本
func (m *Mirror) PostOf(postID uint64) (model.Post, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[postID]
	return p, ok
}

// ScoreOf 帖子分数的最新已知值
func (m *Mirror) ScoreOf(postID uint64) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[postID]
	return p.Score, ok
}

// VoteOf 当前用户对帖子的投票记录
func (m *Mirror) VoteOf(postID uint64) (model.PostVote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.votes[postID]
	return v, ok
}

// SetScore 用存储返回的权威值覆盖分数。
// 只更新已回填过的帖子副本，未回填的帖子不会凭分数造出缺社区名的残缺副本
func (m *Mirror) SetScore(postID uint64, score int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return
	}
	p.Score = score
	m.posts[postID] = p
}

// SetVote 写入/覆盖投票副本
func (m *Mirror) SetVote(v model.PostVote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votes[v.PostID] = v
}

// RemoveVote 撤票后删除副本
func (m *Mirror) RemoveVote(postID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.votes, postID)
}

// PrimeVotes 用存储查询结果回填某个社区下的投票副本
func (m *Mirror) PrimeVotes(communityName string, votes []model.PostVote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range votes {
		m.votes[v.PostID] = v
	}
	m.votesPrimed[communityName] = true
}

// VotesPrimed 该社区的投票是否已回填
func (m *Mirror) VotesPrimed(communityName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.votesPrimed[communityName]
}

// MembershipOf 当前用户在某社区的成员记录
func (m *Mirror) MembershipOf(communityName string) (model.CommunityMembership, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.memberships[communityName]
	return r, ok
}

// Memberships 当前用户全部成员记录的副本
func (m *Mirror) Memberships() []model.CommunityMembership {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.CommunityMembership, 0, len(m.memberships))
	for _, r := range m.memberships {
		out = append(out, r)
	}
	return out
}

// AddMembership 加入成功后追加副本
func (m *Mirror) AddMembership(r model.CommunityMembership) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships[r.CommunityName] = r
}

// RemoveMembership 退出成功后删除副本
func (m *Mirror) RemoveMembership(communityName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.memberships, communityName)
}

// PrimeMemberships 用存储查询结果整体回填成员记录
func (m *Mirror) PrimeMemberships(list []model.CommunityMembership) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships = make(map[string]model.CommunityMembership, len(list))
	for _, r := range list {
		m.memberships[r.CommunityName] = r
	}
	m.membershipsPrimed = true
}

// MembershipsPrimed 成员记录是否已从存储回填过
func (m *Mirror) MembershipsPrimed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.membershipsPrimed
}

// Registry 按用户维护镜像；登录态变化时 Drop 整个镜像即可
type Registry struct {
	mu     sync.Mutex
	byUser map[uint64]*Mirror
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[uint64]*Mirror)}
}

// ForUser 取出（或新建）该用户的镜像
func (r *Registry) ForUser(userID uint64) *Mirror {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byUser[userID]
	if !ok {
		m = New()
		r.byUser[userID] = m
	}
	return m
}

// Drop 丢弃该用户的镜像（登出/身份切换时调用）
func (r *Registry) Drop(userID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
}
