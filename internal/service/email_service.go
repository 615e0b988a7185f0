package service

import (
	"errors"

	"Reddit_Lite/internal/pkg"
	"Reddit_Lite/internal/repository/redis"
)

type EmailService struct {
	Cfg    pkg.SMTPConfig
	REmail *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{
		Cfg:    cfg,
		REmail: &redis.EmailRepository{},
	}
}

// SendCode 生成 6 位验证码，入 redis 后发信
func (s *EmailService) SendCode(scope, email string) error {
	if scope != "register" && scope != "reset" {
		return errors.New("unknown scope")
	}
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.REmail.SaveCode(scope, email, code); err != nil {
		return err
	}
	subject := map[string]string{"register": "注册", "reset": "重置密码"}[scope]
	body := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	return pkg.SendEmail(s.Cfg, email, subject, body)
}
