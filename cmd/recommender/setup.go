package main

import (
	"math/rand"
	"time"

	"feed_recommender/internal/nodes"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
	"feed_recommender/pkg/gorse"
)

// BuildPipeline 按固定顺序组装生成管道
// 排除集必须最先执行；各召回阶段之间顺序不敏感，但 feed_data 的
// 最后写入覆盖语义依赖这里的排列，调整顺序前先确认合并契约
func BuildPipeline(st store.Store, gc gorse.Client, cfg *ServerConfig) *pipeline.Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return pipeline.NewEngine(
		nodes.NewExclusionStage(st),
		nodes.NewFollowedRecallStage(st, int64(cfg.Pipeline.FollowedLimit)),
		nodes.NewInterestRecallStage(st, int64(cfg.Pipeline.InterestLimit)),
		nodes.NewGorseRecallStage(gc, st, cfg.Pipeline.PreloadBuffer),
		nodes.NewTrendingRecallStage(st, int64(cfg.Pipeline.TrendingLimit)),
		nodes.NewRelatedRecallStage(st, int64(cfg.Pipeline.RelatedLimit)),
		nodes.NewSocialRecallStage(st),
		nodes.NewMergeStage(),
		nodes.NewHybridRankStage(st),
		nodes.NewMixStage(st, rng, cfg.Pipeline.PreloadBuffer),
	)
}
