package main

import (
	"context"
	"log"
	"os"
	"strings"

	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/pkg"
	"Reddit_Lite/internal/repository/mysql"
	"Reddit_Lite/internal/repository/redis"
	"Reddit_Lite/internal/router"
	"Reddit_Lite/internal/service"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	dsn := env("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/reddit_lite?charset=utf8mb4&parseTime=True")
	if err := mysql.InitDB(dsn); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(env("REDIS_ADDR", "127.0.0.1:6379"), env("REDIS_PASSWORD", ""), 0); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMembership{},
		&model.MembershipOutbox{},
		&model.Post{},
		&model.PostVote{},
	); err != nil {
		panic(err)
	}

	// 每个用户会话一份本地镜像
	mirrors := mirror.NewRegistry()

	// 成员事件外发 -> kafka
	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
		Brokers: strings.Split(env("KAFKA_BROKERS", "127.0.0.1:9092"), ","),
		Topic:   env("KAFKA_TOPIC", "membership-events"),
	})
	if err != nil {
		panic(err)
	}
	defer producer.Close()

	relayer := service.NewOutboxRelayer(func(ctx context.Context, ob *model.MembershipOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.UserID), []byte(ob.Payload))
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayer.Run(ctx)

	emailCfg := pkg.SMTPConfig{
		Host:     env("SMTP_HOST", "smtp.example.com"),
		Port:     587,
		Username: env("SMTP_USERNAME", "no-reply@example.com"),
		Password: env("SMTP_PASSWORD", ""),
		From:     env("SMTP_FROM", "NoReply <no-reply@example.com>"),
	}

	r := router.InitRouter(mirrors, emailCfg)
	if err := r.Run(env("LISTEN_ADDR", ":8080")); err != nil {
		log.Fatal(err)
	}
}
