package mirror

import (
	"testing"

	"Reddit_Lite/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorVotes(t *testing.T) {
	m := New()

	_, ok := m.VoteOf(1)
	assert.False(t, ok)

	m.SetVote(model.PostVote{UserID: 7, PostID: 1, Value: model.Upvote})
	v, ok := m.VoteOf(1)
	require.True(t, ok)
	assert.Equal(t, model.Upvote, v.Value)

	m.RemoveVote(1)
	_, ok = m.VoteOf(1)
	assert.False(t, ok)
}

func TestMirrorScore(t *testing.T) {
	m := New()

	_, ok := m.ScoreOf(3)
	assert.False(t, ok)

	m.PrimePost(model.Post{ID: 3, Score: 5})
	score, ok := m.ScoreOf(3)
	require.True(t, ok)
	assert.Equal(t, int64(5), score)

	m.SetScore(3, 6)
	score, _ = m.ScoreOf(3)
	assert.Equal(t, int64(6), score)

	// 未回填过的帖子不会被 SetScore 造出残缺副本
	m.SetScore(9, -2)
	_, ok = m.ScoreOf(9)
	assert.False(t, ok)
	_, ok = m.PostOf(9)
	assert.False(t, ok)
}

func TestMirrorMemberships(t *testing.T) {
	m := New()
	assert.False(t, m.MembershipsPrimed())

	m.PrimeMemberships([]model.CommunityMembership{
		{UserID: 1, CommunityName: "golang"},
		{UserID: 1, CommunityName: "rust", IsModerator: true},
	})
	assert.True(t, m.MembershipsPrimed())
	assert.Len(t, m.Memberships(), 2)

	r, ok := m.MembershipOf("rust")
	require.True(t, ok)
	assert.True(t, r.IsModerator)

	m.RemoveMembership("rust")
	_, ok = m.MembershipOf("rust")
	assert.False(t, ok)

	m.AddMembership(model.CommunityMembership{UserID: 1, CommunityName: "zig"})
	_, ok = m.MembershipOf("zig")
	assert.True(t, ok)
}

func TestMirrorVotesPrimedPerCommunity(t *testing.T) {
	m := New()
	assert.False(t, m.VotesPrimed("golang"))

	m.PrimeVotes("golang", []model.PostVote{
		{UserID: 1, PostID: 10, Value: model.Upvote, CommunityName: "golang"},
	})
	assert.True(t, m.VotesPrimed("golang"))
	assert.False(t, m.VotesPrimed("rust"))

	v, ok := m.VoteOf(10)
	require.True(t, ok)
	assert.Equal(t, model.Upvote, v.Value)
}

func TestRegistryDrop(t *testing.T) {
	reg := NewRegistry()

	m := reg.ForUser(1)
	m.SetVote(model.PostVote{UserID: 1, PostID: 1, Value: model.Upvote})

	// 同一用户拿到同一个镜像
	_, ok := reg.ForUser(1).VoteOf(1)
	assert.True(t, ok)

	// Drop 之后重建，身份切换不带旧状态
	reg.Drop(1)
	_, ok = reg.ForUser(1).VoteOf(1)
	assert.False(t, ok)
}
