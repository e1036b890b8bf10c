package main

import (
	"context"
	"time"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/server"
	"feed_recommender/internal/session"
	"feed_recommender/internal/store"
	"feed_recommender/pkg/gorse"
)

func main() {
	cfg := InitServerConfig()
	logger.SetDebug(cfg.Server.Debug)

	// 1. 文档库是硬依赖，连不上直接退出
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DB)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect document store: %v", err)
	}
	logger.Info("MongoDB connected: %s", cfg.Mongo.URI)

	// 2. 会话缓存是软依赖，连接失败进入降级模式继续跑
	cache := session.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// 3. 外部推荐服务客户端，单次请求带超时
	gc := gorse.NewHTTPClient(cfg.Gorse.URL, time.Duration(cfg.Gorse.TimeoutSeconds)*time.Second)

	// 4. 组装生成管道和会话管理器
	engine := BuildPipeline(st, gc, cfg)
	manager := session.NewManager(cache, engine,
		time.Duration(cfg.Pipeline.CacheTTLSeconds)*time.Second,
		cfg.Pipeline.PreloadBuffer)

	// 5. 启动 HTTP Server
	srv := server.NewServer(manager, st, cache, gc, cfg.Gorse.URL)
	logger.Info("Starting feed recommender on port %s...", cfg.Server.Port)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Server failed: %v", err)
	}
}
