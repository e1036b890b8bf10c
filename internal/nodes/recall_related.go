package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// RelatedRecallStage 召回按用户预计算的相关内容，cf 分取表里存的分数
// 相关表用字符串 user_id 作键，身份不合法的用户自然查不到记录
type RelatedRecallStage struct {
	store store.Store
	limit int64
}

func NewRelatedRecallStage(s store.Store, limit int64) *RelatedRecallStage {
	return &RelatedRecallStage{store: s, limit: limit}
}

func (n *RelatedRecallStage) Name() string { return "recall_related" }

func (n *RelatedRecallStage) Execute(ctx *pipeline.Context) error {
	docs, err := n.store.RelatedItems(ctx.Ctx, ctx.UserID, n.limit)
	if err != nil {
		return err
	}

	var items []*model.CandidateRecord
	for _, d := range docs {
		if d.RelatedItemID == "" || ctx.IsExcluded(d.RelatedItemID) {
			continue
		}
		items = append(items, &model.CandidateRecord{
			ItemID:  d.RelatedItemID,
			CfScore: model.Float(d.Score),
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Related recall returned %d items", len(items)))
	return nil
}
