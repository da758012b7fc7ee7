package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-wms/internal/wms/ledger"
)

// Publisher 事务提交后的事件广播出口。发布失败只记日志，不影响已提交的业务结果。
type Publisher interface {
	Publish(event ledger.Event)
}

// Nop 丢弃所有事件，测试用
type Nop struct{}

func (Nop) Publish(ledger.Event) {}

// Multi 依次发布到多个出口
type Multi []Publisher

func (m Multi) Publish(event ledger.Event) {
	for _, p := range m {
		p.Publish(event)
	}
}

// RedisChannel 库存事件的Redis发布频道
const RedisChannel = "wms:events"

// RedisPublisher 将事件发布到Redis频道，供其他服务订阅
type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) Publish(event ledger.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event failed", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, RedisChannel, payload).Err(); err != nil {
		p.logger.Warn("publish event to redis failed",
			zap.String("type", string(event.Type)), zap.Error(err))
	}
}
