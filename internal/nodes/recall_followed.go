package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// FollowedRecallStage 召回关注用户的最新内容，内容分固定 0.9
type FollowedRecallStage struct {
	store store.Store
	limit int64
}

func NewFollowedRecallStage(s store.Store, limit int64) *FollowedRecallStage {
	return &FollowedRecallStage{store: s, limit: limit}
}

func (n *FollowedRecallStage) Name() string { return "recall_followed" }

func (n *FollowedRecallStage) Execute(ctx *pipeline.Context) error {
	if !ctx.ValidID {
		return nil
	}

	following, err := n.store.ActiveFollowing(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	if len(following) == 0 {
		return nil
	}

	feeds, err := n.store.FeedsByAuthors(ctx.Ctx, following, n.limit)
	if err != nil {
		return err
	}

	items := make([]*model.CandidateRecord, 0, len(feeds))
	for i := range feeds {
		feed := &feeds[i]
		items = append(items, &model.CandidateRecord{
			ItemID:       feed.ID.Hex(),
			ContentScore: model.Float(0.9),
			Category:     "post",
			FeedData:     feed,
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Followed recall returned %d items", len(items)))
	return nil
}
