package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"caresense-playback/internal/config"
	"caresense-playback/internal/logger"
	"caresense-playback/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "caresense-playback")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 创建服务
	playbackService, err := service.NewPlaybackService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create playback service",
			zap.Error(err),
		)
	}
	defer playbackService.Stop()

	// 4. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. 启动服务（在 goroutine 中）
	serviceErrChan := make(chan error, 1)
	serviceDoneChan := make(chan struct{}, 1)
	go func() {
		if err := playbackService.Start(ctx); err != nil && ctx.Err() == nil {
			serviceErrChan <- err
			return
		}
		serviceDoneChan <- struct{}{}
	}()

	// 6. 等待信号（优雅关闭）或回放自然结束
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel() // 取消上下文，终止所有等待中的停顿
	case err := <-serviceErrChan:
		log.Fatal("Service error",
			zap.Error(err),
		)
	case <-serviceDoneChan:
		log.Info("Playback completed")
	}

	log.Info("Playback service stopped")
}
