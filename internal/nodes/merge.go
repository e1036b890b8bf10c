package nodes

import (
	"fmt"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
)

// MergeStage 按 item_id 去重合并多路召回的候选
// cf/content/social 三个分数字段各自取所有来源中的最大值（"每个维度取已知最好的信号"），
// 没给某字段的来源不影响该字段；feed_data 则是后合并的来源覆盖先合并的
type MergeStage struct{}

func NewMergeStage() *MergeStage { return &MergeStage{} }

func (n *MergeStage) Name() string { return "merge" }

func (n *MergeStage) Execute(ctx *pipeline.Context) error {
	ctx.Candidates = MergeCandidates(ctx.Candidates)
	ctx.AddLog(fmt.Sprintf("Merged into %d unique candidates", len(ctx.Candidates)))
	return nil
}

// MergeCandidates 合并候选列表，输出顺序为 item_id 首次出现的顺序
func MergeCandidates(candidates []*model.CandidateRecord) []*model.CandidateRecord {
	merged := make(map[string]*model.CandidateRecord, len(candidates))
	var order []string

	for _, c := range candidates {
		existing, ok := merged[c.ItemID]
		if !ok {
			cp := *c
			merged[c.ItemID] = &cp
			order = append(order, c.ItemID)
			continue
		}
		existing.CfScore = maxScore(existing.CfScore, c.CfScore)
		existing.ContentScore = maxScore(existing.ContentScore, c.ContentScore)
		existing.SocialScore = maxScore(existing.SocialScore, c.SocialScore)
		// 快照按最后写入为准
		if c.FeedData != nil {
			existing.FeedData = c.FeedData
		}
	}

	out := make([]*model.CandidateRecord, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}

// maxScore 取两个可选分数的较大者，只在新来源给了该字段时才比较
func maxScore(existing, incoming *float64) *float64 {
	if incoming == nil {
		return existing
	}
	if existing == nil || *incoming > *existing {
		return incoming
	}
	return existing
}
