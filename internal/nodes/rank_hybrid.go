package nodes

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// 混合打分公式的权重
const (
	weightCf         = 0.35
	weightContent    = 0.30
	weightRecency    = 0.15
	weightPopularity = 0.10
	weightFriend     = 0.10

	watchBoostThreshold = 5.0 // 累计观看时长达到该值触发加成
	watchBoostFactor    = 1.2
)

// HybridRankStage 对合并后的候选计算确定性的综合分并降序排序
// 并列分保持合并阶段产出的相对顺序
type HybridRankStage struct {
	store store.Store
}

func NewHybridRankStage(s store.Store) *HybridRankStage {
	return &HybridRankStage{store: s}
}

func (n *HybridRankStage) Name() string { return "rank_hybrid" }

func (n *HybridRankStage) Execute(ctx *pipeline.Context) error {
	scored := make([]*model.Scored, 0, len(ctx.Candidates))

	for _, c := range ctx.Candidates {
		feed := c.FeedData
		if feed == nil {
			// 候选没带快照时按 id 直查一次；查不到或 id 非法就按空快照打分
			if oid, err := primitive.ObjectIDFromHex(c.ItemID); err == nil {
				if f, err := n.store.FeedByID(ctx.Ctx, oid); err == nil {
					feed = f
				}
			}
		}

		// 解析不到快照的条目按空快照打分：热度记 0，不使用召回源携带的旧值
		popularity := 0.0
		if feed != nil {
			popularity = feed.Popularity
		}

		watchTime, err := n.store.WatchTime(ctx.Ctx, ctx.UserID, c.ItemID)
		if err != nil {
			return err
		}
		watchBoost := 1.0
		if watchTime >= watchBoostThreshold {
			watchBoost = watchBoostFactor
		}

		final := weightCf*model.Deref(c.CfScore) +
			weightContent*model.Deref(c.ContentScore) +
			weightRecency*RecencyScore(feed) +
			weightPopularity*popularity +
			weightFriend*ctx.SocialBoost[c.ItemID]
		final *= watchBoost

		category := c.Category
		if category == "" {
			category = "post"
		}

		scored = append(scored, &model.Scored{
			ItemID:     c.ItemID,
			Score:      Round6(final),
			Category:   category,
			Popularity: popularity,
			FeedData:   feed,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	ctx.Scored = scored
	ctx.AddLog(fmt.Sprintf("Scored %d candidates", len(scored)))
	return nil
}

// RecencyScore 按内容年龄返回阶梯式的新鲜度分
// 无快照或时间缺失按最旧一档处理
func RecencyScore(feed *model.FeedDoc) float64 {
	if feed == nil || feed.CreatedAt.IsZero() {
		return 0.2
	}
	age := time.Since(feed.CreatedAt).Hours()
	switch {
	case age < 1:
		return 1.0
	case age < 24:
		return 0.8
	case age < 72:
		return 0.5
	default:
		return 0.2
	}
}

// Round6 四舍五入到 6 位小数，保证分数可比较可复现
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
