package service

import (
	"context"
	"log"
	"time"

	"Reddit_Lite/internal/model"
	"Reddit_Lite/internal/repository/mysql"
)

type Sender func(ctx context.Context, ob *model.MembershipOutbox) error

// OutboxRelayer 周期性把成员事件从外发表搬到 kafka
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: mysql.DB},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// 读一批待投递事件，逐条发送；失败记重试，成功标记已发
func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.MarkRetry(ctx, ob.ID)
			continue
		}
		if err = r.repo.MarkSent(ctx, ob.ID); err != nil {
			log.Printf("outbox mark sent err: %v", err)
		}
	}
}
