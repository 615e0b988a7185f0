package service

import (
	"context"
	"errors"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/repository/mysql"

	"gorm.io/gorm"
)

type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint64) (*model.Post, error)
	ListByCommunity(ctx context.Context, communityName string, offset, limit int) ([]model.Post, error)
	ListByCommunityCursor(ctx context.Context, communityName string, lastID uint64, lastCreatedAt int64, limit int) ([]model.Post, error)
	DeleteWithPermission(ctx context.Context, postID, operatorID uint64) (int64, error)
}

type PostService struct {
	Repo    PostStore
	Members MembershipStore
	Mirrors *mirror.Registry
}

func NewPostService(mirrors *mirror.Registry) *PostService {
	return &PostService{
		Repo:    &mysql.PostRepository{DB: mysql.DB},
		Members: &mysql.MembershipRepository{DB: mysql.DB},
		Mirrors: mirrors,
	}
}

// Create 仅社区成员可发帖，成员判断走镜像
func (s *PostService) Create(ctx context.Context, userID uint64, communityName, title, body string) (*model.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if title == "" {
		return nil, errors.New("title required")
	}

	m := s.Mirrors.ForUser(userID)
	if !m.MembershipsPrimed() {
		list, err := s.Members.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		m.PrimeMemberships(list)
	}
	if _, ok := m.MembershipOf(communityName); !ok {
		return nil, errors.New("not a member")
	}

	post := &model.Post{
		CommunityName: communityName,
		CreatorID:     userID,
		Title:         title,
		Body:          body,
	}
	if err := s.Repo.Create(ctx, post); err != nil {
		return nil, err
	}
	m.PrimePost(*post)
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByCommunity 基础分页；结果顺手灌进镜像，后续投票能直接拿到帖子副本
func (s *PostService) ListByCommunity(ctx context.Context, userID uint64, communityName string, page, size int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.Repo.ListByCommunity(ctx, communityName, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		m := s.Mirrors.ForUser(userID)
		for i := range list {
			m.PrimePost(list[i])
		}
	}
	return list, nil
}

// ListByCommunityCursor 游标分页：首页不传游标（或传 0）
func (s *PostService) ListByCommunityCursor(ctx context.Context, communityName string, lastID uint64, lastCreatedAt int64, size int) ([]model.Post, uint64, int64, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.Repo.ListByCommunityCursor(ctx, communityName, lastID, lastCreatedAt, size)
	if err != nil {
		return nil, 0, 0, err
	}
	var nextID uint64
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}

// Delete 作者或版主删除，幂等
func (s *PostService) Delete(ctx context.Context, userID, postID uint64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	affected, err := s.Repo.DeleteWithPermission(ctx, postID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("no permission or post already deleted")
	}
	return nil
}
