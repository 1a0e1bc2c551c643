package publisher

import (
	"context"
	"fmt"

	"caresense-playback/internal/config"
	"caresense-playback/internal/models"
	"caresense-playback/internal/playback"
	"caresense-playback/internal/redisbus"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPublisher 把回放状态推到 Redis Streams（展示层从这里消费）
// 核心只发布，展示层不会反向修改核心状态
type RedisPublisher struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewRedisPublisher 创建 Redis 发布器
func NewRedisPublisher(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishLogLine 发布一条实时日志行
func (p *RedisPublisher) PublishLogLine(ctx context.Context, line string, stage models.Stage) error {
	_, err := redisbus.PublishToStream(ctx, p.redisClient, p.config.Sinks.LiveStream, map[string]interface{}{
		"line":  line,
		"stage": string(stage),
	})
	if err != nil {
		return fmt.Errorf("failed to publish log line: %w", err)
	}
	return nil
}

// PublishResult 发布一条分类结果
func (p *RedisPublisher) PublishResult(ctx context.Context, result *models.ClassificationResult) error {
	_, err := redisbus.PublishJSONToStream(ctx, p.redisClient, p.config.Sinks.ResultStream, result)
	if err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// Listener 返回挂接到回放引擎的事件回调
// 发布失败只记录日志，绝不中断回放周期
func (p *RedisPublisher) Listener(ctx context.Context) playback.Listener {
	return func(ev playback.Event) {
		switch ev.Type {
		case playback.EventLogLine:
			if err := p.PublishLogLine(ctx, ev.Line, ev.Snapshot.Stage); err != nil {
				p.logger.Warn("Failed to publish log line to Redis", zap.Error(err))
			}
		case playback.EventResultAdded:
			if err := p.PublishResult(ctx, ev.Result); err != nil {
				p.logger.Warn("Failed to publish result to Redis", zap.Error(err))
			}
		}
	}
}
