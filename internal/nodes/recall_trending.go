package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// TrendingRecallStage 从预计算的发现页热门池召回，内容分固定 0.5
// 热门池是全局的，和用户身份无关
type TrendingRecallStage struct {
	store store.Store
	limit int64
}

func NewTrendingRecallStage(s store.Store, limit int64) *TrendingRecallStage {
	return &TrendingRecallStage{store: s, limit: limit}
}

func (n *TrendingRecallStage) Name() string { return "recall_trending" }

func (n *TrendingRecallStage) Execute(ctx *pipeline.Context) error {
	docs, err := n.store.TrendingExplore(ctx.Ctx, n.limit)
	if err != nil {
		return err
	}

	items := make([]*model.CandidateRecord, 0, len(docs))
	for _, d := range docs {
		if d.FeedID.IsZero() {
			continue
		}
		items = append(items, &model.CandidateRecord{
			ItemID:       d.FeedID.Hex(),
			ContentScore: model.Float(0.5),
			Category:     "post",
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Trending recall returned %d items", len(items)))
	return nil
}
