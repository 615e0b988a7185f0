package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommunityStore interface {
	CreateWithFounder(ctx context.Context, c *model.Community, founder *model.CommunityMembership) error
	FindByName(ctx context.Context, name string) (*model.Community, error)
	List(ctx context.Context, offset, limit int) ([]model.Community, error)
}

// MembershipStore 成员账本的存储端：Join/Leave 都是无前置读的原子批写
type MembershipStore interface {
	Join(ctx context.Context, m *model.CommunityMembership) error
	Leave(ctx context.Context, userID uint64, communityName string) error
	ListByUser(ctx context.Context, userID uint64) ([]model.CommunityMembership, error)
}

type CommunityService struct {
	Repo    CommunityStore
	Members MembershipStore
	Mirrors *mirror.Registry
}

func NewCommunityService(mirrors *mirror.Registry) *CommunityService {
	return &CommunityService{
		Repo:    &mysql.CommunityRepository{DB: mysql.DB},
		Members: &mysql.MembershipRepository{DB: mysql.DB},
		Mirrors: mirrors,
	}
}

// 社区名里允许的"纯符号"集合，全由这些字符组成的名字拒绝（下划线也在内）
const namePunct = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ValidateName 长度 3~21，且不能全是符号；不访问存储
func ValidateName(name string) error {
	if len(name) < 3 || len(name) > 21 {
		return fmt.Errorf("%w: name must be between 3-21 characters", ErrInvalidName)
	}
	for _, r := range name {
		if !strings.ContainsRune(namePunct, r) {
			return nil
		}
	}
	return fmt.Errorf("%w: name cannot consist only of symbols", ErrInvalidName)
}

// Create 社区创建协议：本地校验 -> 读写事务抢名 + 创建者首条成员记录。
// 事务中止时不留任何文档，换个名字即可安全重试。
// 社区名即 ID：全局唯一、保留大小写、创建后不可变。
func (s *CommunityService) Create(ctx context.Context, userID uint64, name, privacyType string) (*model.Community, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	switch privacyType {
	case model.PrivacyPublic, model.PrivacyRestricted, model.PrivacyPrivate:
	case "":
		privacyType = model.PrivacyPublic
	default:
		return nil, fmt.Errorf("%w: unknown privacy type %q", ErrInvalidName, privacyType)
	}

	c := &model.Community{
		Name:        name,
		CreatorID:   userID,
		MemberCount: 1,
		PrivacyType: privacyType,
	}
	founder := &model.CommunityMembership{
		UserID:        userID,
		CommunityName: name,
		IsModerator:   true,
	}

	if err := s.Repo.CreateWithFounder(ctx, c, founder); err != nil {
		if errors.Is(err, mysql.ErrNameExists) {
			return nil, fmt.Errorf("%w: r/%s is taken, try another", ErrNameTaken, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.Mirrors.ForUser(userID).AddMembership(*founder)
	return c, nil
}

// Join 成员账本：写成员记录 + member_count+1，一次原子批写；成功后追加镜像
func (s *CommunityService) Join(ctx context.Context, userID uint64, community *model.Community) (*model.CommunityMembership, error) {
	m := &model.CommunityMembership{
		UserID:        userID,
		CommunityName: community.Name,
		ImageURL:      community.ImageURL,
		IsModerator:   userID == community.CreatorID,
	}
	if err := s.Members.Join(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.Mirrors.ForUser(userID).AddMembership(*m)
	return m, nil
}

// Leave 删除成员记录 + member_count-1；成功后移除镜像副本
func (s *CommunityService) Leave(ctx context.Context, userID uint64, communityName string) error {
	if err := s.Members.Leave(ctx, userID, communityName); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.Mirrors.ForUser(userID).RemoveMembership(communityName)
	return nil
}

// ToggleMembership 加入/退出分发：未登录在任何写之前失败；
// 走不走 Leave 由镜像的最近已知状态决定（冷镜像先回源），
// 账本本身不查重，连点的串行化责任在这里而不在账本里。
func (s *CommunityService) ToggleMembership(ctx context.Context, userID uint64, communityName string) (joined bool, err error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}

	m := s.Mirrors.ForUser(userID)
	if !m.MembershipsPrimed() {
		list, err := s.Members.ListByUser(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		m.PrimeMemberships(list)
	}

	if _, ok := m.MembershipOf(communityName); ok {
		return false, s.Leave(ctx, userID, communityName)
	}

	community, err := s.Repo.FindByName(ctx, communityName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if _, err := s.Join(ctx, userID, community); err != nil {
		return false, err
	}
	return true, nil
}

// MembershipOf 镜像读访问器
func (s *CommunityService) MembershipOf(userID uint64, communityName string) (model.CommunityMembership, bool) {
	return s.Mirrors.ForUser(userID).MembershipOf(communityName)
}

// MyMemberships 当前用户的成员记录（镜像优先，冷镜像回源整体回填）
func (s *CommunityService) MyMemberships(ctx context.Context, userID uint64) ([]model.CommunityMembership, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	m := s.Mirrors.ForUser(userID)
	if m.MembershipsPrimed() {
		return m.Memberships(), nil
	}
	list, err := s.Members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.PrimeMemberships(list)
	return list, nil
}

func (s *CommunityService) GetByName(ctx context.Context, name string) (*model.Community, error) {
	c, err := s.Repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CommunityService) List(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.Repo.List(ctx, (page-1)*size, size)
}
