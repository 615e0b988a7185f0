package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"
)

var (
	ErrCodeSaveFailed = errors.New("email code save failed")
	ErrCodeNotFound   = errors.New("email code not found")
	ErrCodeMismatch   = errors.New("email code mismatch")
)

// EmailRepository 验证码按 scope（register / reset）隔离存放
type EmailRepository struct{}

func codeKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", EmailCodePrefix, scope, email)
}

func (e *EmailRepository) SaveCode(scope, email, code string) error {
	if err := Client.Set(context.Background(), codeKey(scope, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodeSaveFailed
	}
	return nil
}

// VerifyCode 校验通过即删除，验证码一次性使用
func (e *EmailRepository) VerifyCode(scope, email, code string) error {
	key := codeKey(scope, email)
	val, err := Client.Get(context.Background(), key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeNotFound
	}
	if err != nil {
		return ErrRedisUnavailable
	}
	if val != code {
		return ErrCodeMismatch
	}
	_ = Client.Del(context.Background(), key).Err()
	return nil
}
