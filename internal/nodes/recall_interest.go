package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// InterestRecallStage 按用户兴趣标签召回内容，内容分固定 0.7
type InterestRecallStage struct {
	store store.Store
	limit int64
}

func NewInterestRecallStage(s store.Store, limit int64) *InterestRecallStage {
	return &InterestRecallStage{store: s, limit: limit}
}

func (n *InterestRecallStage) Name() string { return "recall_interest" }

func (n *InterestRecallStage) Execute(ctx *pipeline.Context) error {
	if !ctx.ValidID {
		return nil
	}

	tags, err := n.store.UserInterests(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		ctx.AddLog("User has no interest tags, skipping interest recall")
		return nil
	}

	feeds, err := n.store.FeedsByHashtags(ctx.Ctx, tags, n.limit)
	if err != nil {
		return err
	}

	items := make([]*model.CandidateRecord, 0, len(feeds))
	for i := range feeds {
		feed := &feeds[i]
		items = append(items, &model.CandidateRecord{
			ItemID:       feed.ID.Hex(),
			ContentScore: model.Float(0.7),
			Category:     "post",
			FeedData:     feed,
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Interest recall returned %d items", len(items)))
	return nil
}
