package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// 好友互动的累积权重
const (
	friendLikeBoost    = 0.5
	friendCommentBoost = 0.3
)

// SocialRecallStage 扫描关注用户的点赞和评论，累积出每条内容的社交分
// 结果一方面写入 Context 的 SocialBoost 供打分阶段查表，
// 一方面作为一路普通召回参与合并（只带 social_score 的候选）
type SocialRecallStage struct {
	store store.Store
}

func NewSocialRecallStage(s store.Store) *SocialRecallStage {
	return &SocialRecallStage{store: s}
}

func (n *SocialRecallStage) Name() string { return "recall_social" }

func (n *SocialRecallStage) Execute(ctx *pipeline.Context) error {
	if !ctx.ValidID {
		return nil
	}

	friends, err := n.store.ActiveFollowing(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	if len(friends) == 0 {
		return nil
	}

	boost := make(map[string]float64)

	likes, err := n.store.LikesByUsers(ctx.Ctx, friends)
	if err != nil {
		return err
	}
	for _, l := range likes {
		if !l.FeedID.IsZero() {
			boost[l.FeedID.Hex()] += friendLikeBoost
		}
	}

	comments, err := n.store.CommentsByUsers(ctx.Ctx, friends)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if !c.FeedID.IsZero() {
			boost[c.FeedID.Hex()] += friendCommentBoost
		}
	}

	ctx.SocialBoost = boost

	// 累积分为 0 的条目不存在于 map 中，这里自然不会产出零分候选
	var items []*model.CandidateRecord
	for id, score := range boost {
		if ctx.IsExcluded(id) {
			continue
		}
		items = append(items, &model.CandidateRecord{
			ItemID:      id,
			SocialScore: model.Float(score),
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Social recall boosted %d items", len(boost)))
	return nil
}
