package pipeline

import (
	"context"
	"fmt"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/model"
)

// Engine 按固定顺序执行各阶段，产出一份完整的推荐列表
// 一次 Generate 就是一次同步的全量生成：排除集 -> 多路召回 -> 合并 -> 打分 -> 混排
type Engine struct {
	stages []Stage
}

// NewEngine 创建引擎，stages 的顺序即执行顺序
func NewEngine(stages ...Stage) *Engine {
	return &Engine{stages: stages}
}

// Generate 为用户生成完整的推荐列表
// 文档库的错误会向上传播；外部推荐服务和缓存的降级由各阶段自行处理
func (e *Engine) Generate(ctx context.Context, userID string, ratio float64) ([]model.Recommendation, model.Stats, error) {
	pctx := NewContext(ctx, userID, ratio)
	pctx.AddLog(fmt.Sprintf("Starting generation for user %s", shortID(userID)))

	for _, stage := range e.stages {
		pctx.AddLog(fmt.Sprintf("Executing stage: %s", stage.Name()))
		if err := stage.Execute(pctx); err != nil {
			pctx.AddLog(fmt.Sprintf("Stage %s failed: %v", stage.Name(), err))
			return nil, model.Stats{}, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	pctx.AddLog(fmt.Sprintf("Generation completed: %d recommendations", len(pctx.Final)))
	for _, line := range pctx.TraceLog {
		logger.Debug("%s", line)
	}
	return pctx.Final, pctx.Stats, nil
}

// shortID 日志里只打印 id 前缀
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
