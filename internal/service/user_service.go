package service

import (
	"errors"
	"strings"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/pkg"
	"Reddit_Lite/internal/repository/mysql"
	"Reddit_Lite/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	Repo    *mysql.UserRepository
	RUser   *redis.UserRepository
	REmail  *redis.EmailRepository
	Mirrors *mirror.Registry
}

func NewUserService(mirrors *mirror.Registry) *UserService {
	return &UserService{
		Repo:    &mysql.UserRepository{DB: mysql.DB},
		RUser:   &redis.UserRepository{},
		REmail:  &redis.EmailRepository{},
		Mirrors: mirrors,
	}
}

// displayNameFromEmail 默认展示名取邮箱 @ 前缀
func displayNameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func (s *UserService) Register(email, password, code string) error {
	if err := s.REmail.VerifyCode("register", email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Email:       email,
		DisplayName: displayNameFromEmail(email),
		Password:    string(hash),
	}
	return s.Repo.Create(user)
}

func (s *UserService) Login(email, password string) (*pkg.Pair, error) {
	user, err := s.Repo.FindByEmail(email)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}

	pair, err := pkg.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	// token 写入 redis，单点登录
	if err := s.RUser.AddUserToken(user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	// 身份切换，旧镜像作废
	s.Mirrors.Drop(user.ID)
	return pair, nil
}

func (s *UserService) Logout(userID uint64) error {
	s.Mirrors.Drop(userID)
	return s.RUser.DeleteUserToken(userID)
}

func (s *UserService) ResetPassword(email, newPassword, code string) error {
	if err := s.REmail.VerifyCode("reset", email, code); err != nil {
		return err
	}
	user, err := s.Repo.FindByEmail(email)
	if err != nil {
		return errors.New("user not found")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	// 改密后踢掉现有会话
	_ = s.RUser.DeleteUserToken(user.ID)
	s.Mirrors.Drop(user.ID)
	return nil
}

func (s *UserService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		return errors.New("user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return errors.New("invalid password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(user, string(hash))
}
