package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/repository/mysql"
	"Reddit_Lite/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeCommunityStore 同时扮演社区存储和成员账本存储，共享同一份状态，
// 和真实存储一样：Join/Leave 不查重，CreateWithFounder 先读后写且先写者胜
type fakeCommunityStore struct {
	mu          sync.Mutex
	communities map[string]model.Community
	memberships map[string]model.CommunityMembership // "uid/name"
	calls       int
	failJoin    bool
	failLeave   bool
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		communities: make(map[string]model.Community),
		memberships: make(map[string]model.CommunityMembership),
	}
}

func memberKey(userID uint64, name string) string {
	return fmt.Sprintf("%d/%s", userID, name)
}

func (f *fakeCommunityStore) CreateWithFounder(_ context.Context, c *model.Community, founder *model.CommunityMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.communities[c.Name]; ok {
		return mysql.ErrNameExists
	}
	f.communities[c.Name] = *c
	f.memberships[memberKey(founder.UserID, c.Name)] = *founder
	return nil
}

func (f *fakeCommunityStore) FindByName(_ context.Context, name string) (*model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if c, ok := f.communities[name]; ok {
		cp := c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommunityStore) List(_ context.Context, offset, limit int) ([]model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []model.Community
	for _, c := range f.communities {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCommunityStore) Join(_ context.Context, m *model.CommunityMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failJoin {
		return errors.New("store down")
	}
	f.memberships[memberKey(m.UserID, m.CommunityName)] = *m
	c := f.communities[m.CommunityName]
	c.MemberCount++
	f.communities[m.CommunityName] = c
	return nil
}

func (f *fakeCommunityStore) Leave(_ context.Context, userID uint64, communityName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failLeave {
		return errors.New("store down")
	}
	delete(f.memberships, memberKey(userID, communityName))
	c := f.communities[communityName]
	if c.MemberCount > 0 {
		c.MemberCount--
	}
	f.communities[communityName] = c
	return nil
}

func (f *fakeCommunityStore) ListByUser(_ context.Context, userID uint64) ([]model.CommunityMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []model.CommunityMembership
	for k, m := range f.memberships {
		if strings.HasPrefix(k, fmt.Sprintf("%d/", userID)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func newCommunityService(store *fakeCommunityStore) *service.CommunityService {
	return &service.CommunityService{
		Repo:    store,
		Members: store,
		Mirrors: mirror.NewRegistry(),
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, service.ValidateName("golang"))
	assert.NoError(t, service.ValidateName("abc"))
	assert.NoError(t, service.ValidateName("a_b_1"))
	assert.NoError(t, service.ValidateName(strings.Repeat("a", 21)))

	assert.ErrorIs(t, service.ValidateName("ab"), service.ErrInvalidName)
	assert.ErrorIs(t, service.ValidateName(strings.Repeat("a", 22)), service.ErrInvalidName)
	// 纯符号拒绝，下划线也算符号
	assert.ErrorIs(t, service.ValidateName("!!!"), service.ErrInvalidName)
	assert.ErrorIs(t, service.ValidateName("___"), service.ErrInvalidName)
	assert.ErrorIs(t, service.ValidateName(`[]{}<>`), service.ErrInvalidName)
}

func TestCreateInvalidNameNoStoreAccess(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)

	_, err := svc.Create(context.Background(), 1, "!!", model.PrivacyPublic)
	assert.ErrorIs(t, err, service.ErrInvalidName)
	// 本地校验失败不允许碰存储
	assert.Equal(t, 0, store.calls)
}

func TestCreateSuccess(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)

	c, err := svc.Create(context.Background(), 7, "golang", "")
	require.NoError(t, err)
	assert.Equal(t, "golang", c.Name)
	assert.Equal(t, model.PrivacyPublic, c.PrivacyType)
	assert.Equal(t, int64(1), c.MemberCount)
	assert.Equal(t, uint64(7), c.CreatorID)

	// 创建者的首条成员记录带版主标记
	m, ok := store.memberships[memberKey(7, "golang")]
	require.True(t, ok)
	assert.True(t, m.IsModerator)

	// 镜像同步拿到成员记录
	mm, ok := svc.Mirrors.ForUser(7).MembershipOf("golang")
	require.True(t, ok)
	assert.True(t, mm.IsModerator)
}

func TestCreateNameTaken(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "golang", model.PrivacyPublic)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2, "golang", model.PrivacyPublic)
	assert.ErrorIs(t, err, service.ErrNameTaken)
	// 输家不留任何痕迹
	_, ok := store.memberships[memberKey(2, "golang")]
	assert.False(t, ok)
	assert.Equal(t, uint64(1), store.communities["golang"].CreatorID)
}

func TestCreateRaceExactlyOneWinner(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, uint64(i+1), "contested", model.PrivacyPublic)
		}(i)
	}
	wg.Wait()

	var wins, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrNameTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, taken)

	// 社区只有一个，成员记录只属于赢家
	assert.Len(t, store.communities, 1)
	winner := store.communities["contested"].CreatorID
	_, ok := store.memberships[memberKey(winner, "contested")]
	assert.True(t, ok)
	assert.Len(t, store.memberships, 1)
}

func TestToggleUnauthenticated(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)

	_, err := svc.ToggleMembership(context.Background(), 0, "golang")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	// 匿名身份下零次存储操作，不产生孤儿写
	assert.Equal(t, 0, store.calls)
}

func TestJoinThenLeaveRestoresCount(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "golang", model.PrivacyPublic)
	require.NoError(t, err)
	base := store.communities["golang"].MemberCount

	c, err := svc.GetByName(ctx, "golang")
	require.NoError(t, err)

	_, err = svc.Join(ctx, 2, c)
	require.NoError(t, err)
	assert.Equal(t, base+1, store.communities["golang"].MemberCount)

	require.NoError(t, svc.Leave(ctx, 2, "golang"))
	assert.Equal(t, base, store.communities["golang"].MemberCount)
	_, ok := store.memberships[memberKey(2, "golang")]
	assert.False(t, ok)
	_, ok = svc.Mirrors.ForUser(2).MembershipOf("golang")
	assert.False(t, ok)
}

func TestToggleRoutesOnMirrorState(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "golang", model.PrivacyPublic)
	require.NoError(t, err)

	// 第一次 toggle 加入
	joined, err := svc.ToggleMembership(ctx, 2, "golang")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, int64(2), store.communities["golang"].MemberCount)

	// 第二次 toggle 退出，意图由镜像状态区分
	joined, err = svc.ToggleMembership(ctx, 2, "golang")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Equal(t, int64(1), store.communities["golang"].MemberCount)
	_, ok := store.memberships[memberKey(2, "golang")]
	assert.False(t, ok)
}

func TestJoinDenormalizesModeratorFlag(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "golang", model.PrivacyPublic)
	require.NoError(t, err)
	c, err := svc.GetByName(ctx, "golang")
	require.NoError(t, err)

	m, err := svc.Join(ctx, 2, c)
	require.NoError(t, err)
	assert.False(t, m.IsModerator)

	// 创建者重新加入时依然是版主
	require.NoError(t, svc.Leave(ctx, 1, "golang"))
	m, err = svc.Join(ctx, 1, c)
	require.NoError(t, err)
	assert.True(t, m.IsModerator)
}

func TestLeaveWriteFailedKeepsMirror(t *testing.T) {
	store := newFakeCommunityStore()
	svc := newCommunityService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "golang", model.PrivacyPublic)
	require.NoError(t, err)

	store.failLeave = true
	err = svc.Leave(ctx, 1, "golang")
	assert.ErrorIs(t, err, service.ErrWriteFailed)
	// 失败时镜像不动，界面不会闪到错误状态
	_, ok := svc.Mirrors.ForUser(1).MembershipOf("golang")
	assert.True(t, ok)
}
