package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"caresense-playback/internal/config"
	"caresense-playback/internal/database"
	"caresense-playback/internal/export"
	"caresense-playback/internal/logger"
	"caresense-playback/internal/repository"

	"go.uber.org/zap"
)

// export-history 把 Postgres 中的分类历史导出为 Excel 工作簿
func main() {
	outPath := flag.String("out", "activity_history.xlsx", "output .xlsx path")
	prediction := flag.String("prediction", "", "filter: prediction substring")
	since := flag.String("since", "", "filter: start time (RFC3339)")
	limit := flag.Int("limit", 0, "max rows (0 = all)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, "console", "export-history")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect database", zap.Error(err))
	}
	defer database.Close(db)

	// 4. 查询历史
	filters := repository.ResultFilters{Limit: *limit}
	if *prediction != "" {
		filters.Prediction = prediction
	}
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			log.Fatal("Invalid -since value", zap.Error(err))
		}
		filters.StartTime = &t
	}

	repo := repository.NewResultsRepository(db, log)
	results, err := repo.ListResults(context.Background(), filters)
	if err != nil {
		log.Fatal("Failed to list results", zap.Error(err))
	}

	// 5. 生成并写出工作簿
	data, err := export.GenerateHistoryExport(results)
	if err != nil {
		log.Fatal("Failed to generate export", zap.Error(err))
	}

	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatal("Failed to write export file", zap.Error(err))
	}

	log.Info("History exported",
		zap.String("path", *outPath),
		zap.Int("rows", len(results)),
	)
}
