package service

import (
	"context"
	"database/sql"
	"fmt"

	"caresense-playback/internal/classifier"
	"caresense-playback/internal/config"
	"caresense-playback/internal/database"
	"caresense-playback/internal/fixture"
	"caresense-playback/internal/location"
	"caresense-playback/internal/mqttclient"
	"caresense-playback/internal/playback"
	"caresense-playback/internal/publisher"
	"caresense-playback/internal/redisbus"
	"caresense-playback/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PlaybackService 回放服务（整合各层）
// 加载 fixture、构建回放引擎，并按配置挂接输出端：
// Redis Streams（展示层）、MQTT（通知通道）、Postgres（历史持久化）
type PlaybackService struct {
	config *config.Config
	logger *zap.Logger

	engine      *playback.Engine
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttclient.Client
	resultsRepo *repository.ResultsRepository

	unsubscribes []func()
}

// NewPlaybackService 创建回放服务
func NewPlaybackService(cfg *config.Config, logger *zap.Logger) (*PlaybackService, error) {
	// 1. 加载 fixture（传感器日志 + 位置映射）
	records, err := fixture.LoadSensorLog(cfg.Playback.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sensor log: %w", err)
	}

	locations, err := fixture.LoadLocationMap(cfg.Playback.LocationMapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load location map: %w", err)
	}
	resolver := location.NewResolver(locations)

	logger.Info("Fixtures loaded",
		zap.Int("records", len(records)),
		zap.Int("rooms", len(locations)),
	)

	// 2. 选择分类器实现
	var cls classifier.Classifier
	switch cfg.Classifier.Mode {
	case "remote":
		cls = classifier.NewRemoteClassifier(cfg.Classifier.BaseURL, logger)
	default:
		cls = classifier.NewStubClassifier(cfg.Classifier.Latency, logger)
	}

	// 3. 创建回放引擎
	engine := playback.NewEngine(
		records,
		resolver,
		cls,
		cfg.Playback.BatchSize,
		playback.Timing{
			Gaps: playback.GapBounds{
				Min:     cfg.Playback.MinEventGap,
				Max:     cfg.Playback.MaxEventGap,
				Default: cfg.Playback.DefaultEventGap,
			},
			BatchObservePause:  cfg.Playback.BatchObservePause,
			ResultDisplayPause: cfg.Playback.ResultDisplayPause,
		},
		logger,
	)

	s := &PlaybackService{
		config: cfg,
		logger: logger,
		engine: engine,
	}

	// 4. 按配置连接输出端
	if cfg.Sinks.RedisEnabled {
		s.redisClient = redisbus.NewRedisClient(&cfg.Redis)
		if err := redisbus.Ping(context.Background(), s.redisClient); err != nil {
			s.Stop()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	if cfg.Sinks.MQTTEnabled {
		mqttClient, err := mqttclient.NewClient(&cfg.MQTT)
		if err != nil {
			s.Stop()
			return nil, fmt.Errorf("failed to connect mqtt: %w", err)
		}
		s.mqttClient = mqttClient
	}

	if cfg.Sinks.PostgresEnabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			s.Stop()
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		s.db = db
		s.resultsRepo = repository.NewResultsRepository(db, logger)
	}

	return s, nil
}

// Engine 返回回放引擎（导航类外部动作从这里只读消费最近结果）
func (s *PlaybackService) Engine() *playback.Engine {
	return s.engine
}

// ResultsRepo 返回结果历史仓库（Postgres 未启用时为 nil）
func (s *PlaybackService) ResultsRepo() *repository.ResultsRepository {
	return s.resultsRepo
}

// Start 挂接输出端并驱动回放直到日志耗尽或上下文取消
func (s *PlaybackService) Start(ctx context.Context) error {
	s.logger.Info("Starting playback service",
		zap.String("classifier_mode", s.config.Classifier.Mode),
		zap.Bool("redis_sink", s.config.Sinks.RedisEnabled),
		zap.Bool("mqtt_sink", s.config.Sinks.MQTTEnabled),
		zap.Bool("postgres_sink", s.config.Sinks.PostgresEnabled),
	)

	if s.redisClient != nil {
		redisPub := publisher.NewRedisPublisher(s.config, s.redisClient, s.logger)
		s.unsubscribes = append(s.unsubscribes, s.engine.Subscribe(redisPub.Listener(ctx)))
	}

	if s.mqttClient != nil {
		mqttPub := publisher.NewMQTTPublisher(s.config, s.mqttClient, s.logger)
		s.unsubscribes = append(s.unsubscribes, s.engine.Subscribe(mqttPub.Listener()))
	}

	if s.resultsRepo != nil {
		s.unsubscribes = append(s.unsubscribes, s.engine.Subscribe(s.persistListener(ctx)))
	}

	return s.engine.Run(ctx)
}

// persistListener 把新结果写入历史仓库
// 持久化失败只记录日志，绝不中断回放周期
func (s *PlaybackService) persistListener(ctx context.Context) playback.Listener {
	return func(ev playback.Event) {
		if ev.Type != playback.EventResultAdded {
			return
		}
		if err := s.resultsRepo.InsertResult(ctx, ev.Result); err != nil {
			s.logger.Warn("Failed to persist result",
				zap.String("result_id", ev.Result.ResultID),
				zap.Error(err),
			)
		}
	}
}

// Stop 释放订阅和连接
func (s *PlaybackService) Stop() {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
	s.unsubscribes = nil

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.redisClient != nil {
		if err := redisbus.Close(s.redisClient); err != nil {
			s.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
