package nodes

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

const popularThreshold = 0.5 // popularity 高于该值的条目归入热门桶

// MixStage 按个性化占比把打分结果重新混合，并补全展示字段
// 流程：分桶 -> 按比例取数 -> 整体打乱 -> 不足时按原序回填 -> 终审去掉已点赞 -> 标注元数据
// 随机源由外部注入，测试里用固定种子就能复现打乱结果
type MixStage struct {
	store  store.Store
	buffer int

	mu  sync.Mutex // rand.Rand 不是并发安全的
	rng *rand.Rand
}

func NewMixStage(s store.Store, rng *rand.Rand, buffer int) *MixStage {
	return &MixStage{store: s, rng: rng, buffer: buffer}
}

func (n *MixStage) Name() string { return "rank_mix" }

func (n *MixStage) Execute(ctx *pipeline.Context) error {
	scored := ctx.Scored

	// 1. 分类
	var popular, personalized []*model.Scored
	for _, s := range scored {
		s.IsPopular = s.Popularity > popularThreshold
		if s.IsPopular {
			popular = append(popular, s)
		} else {
			personalized = append(personalized, s)
		}
	}

	// 2. 按占比计算两桶的目标条数
	totalNeeded := len(scored)
	if totalNeeded > n.buffer {
		totalNeeded = n.buffer
	}
	numPersonalized := int(float64(totalNeeded) * ctx.Ratio)
	numPopular := totalNeeded - numPersonalized

	// 3. 各桶按现有分数顺序取头部后拼接
	mixed := make([]*model.Scored, 0, totalNeeded)
	mixed = append(mixed, headOf(personalized, numPersonalized)...)
	mixed = append(mixed, headOf(popular, numPopular)...)

	// 4. 整体打乱一次，避免先拼接的桶总是排在前面
	n.mu.Lock()
	n.rng.Shuffle(len(mixed), func(i, j int) {
		mixed[i], mixed[j] = mixed[j], mixed[i]
	})
	n.mu.Unlock()

	// 5. 某个桶被取空时，从剩余条目按原有相对顺序回填
	if len(mixed) < totalNeeded {
		included := make(map[string]struct{}, len(mixed))
		for _, s := range mixed {
			included[s.ItemID] = struct{}{}
		}
		for _, s := range scored {
			if len(mixed) >= totalNeeded {
				break
			}
			if _, ok := included[s.ItemID]; ok {
				continue
			}
			mixed = append(mixed, s)
			included[s.ItemID] = struct{}{}
		}
	}

	// 6. 终审：直接对照点赞表再过滤一遍已点赞的内容
	// 这层比排除集窄，是有意保留的最后一道去重
	liked := map[string]struct{}{}
	if ctx.ValidID {
		set, err := n.store.LikedItemSet(ctx.Ctx, ctx.UserOID)
		if err != nil {
			logger.Warn("Could not fetch user likes: %v", err)
		} else {
			liked = set
		}
	}

	friendMap, err := n.friendLikeMap(ctx)
	if err != nil {
		return err
	}

	// 7. 标注展示元数据
	final := make([]model.Recommendation, 0, len(mixed))
	for _, s := range mixed {
		if _, ok := liked[s.ItemID]; ok {
			continue
		}

		recType := "personalized"
		if s.IsPopular {
			recType = "popular"
		}
		likedBy := friendMap[s.ItemID]
		if likedBy == nil {
			likedBy = []string{}
		}

		rec := model.Recommendation{
			ItemID:             s.ItemID,
			Score:              s.Score,
			Category:           s.Category,
			FriendLikedBy:      likedBy,
			Popularity:         s.Popularity,
			RecommendationType: recType,
		}
		if s.FeedData != nil {
			rec.Metadata = buildMetadata(s.FeedData)
		}
		final = append(final, rec)
	}

	ctx.Final = final
	ctx.Stats = buildStats(scored, final, liked, ctx.Ratio)
	ctx.AddLog(fmt.Sprintf("Mixed %d recommendations (ratio %.2f)", len(final), ctx.Ratio))
	return nil
}

// friendLikeMap 返回 item id -> 点赞过它的关注用户 id 列表
func (n *MixStage) friendLikeMap(ctx *pipeline.Context) (map[string][]string, error) {
	if !ctx.ValidID {
		return nil, nil
	}
	friends, err := n.store.ActiveFollowing(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return nil, nil
	}
	likes, err := n.store.LikesByUsers(ctx.Ctx, friends)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, l := range likes {
		if hex := l.TargetHex(); hex != "" {
			out[hex] = append(out[hex], l.UserID.Hex())
		}
	}
	return out, nil
}

func buildMetadata(feed *model.FeedDoc) *model.Metadata {
	md := &model.Metadata{
		Text:     truncateRunes(feed.Text, 200),
		Title:    feed.Title,
		Likes:    feed.LikeCount,
		Comments: feed.CommentCount,
	}
	if !feed.CreatedAt.IsZero() {
		md.CreatedAt = feed.CreatedAt.UTC().Format(time.RFC3339)
	}
	return md
}

// buildStats 统计口径：分类计数按最终列表，已点赞过滤数按打分全量和点赞集的交集
func buildStats(scored []*model.Scored, final []model.Recommendation, liked map[string]struct{}, ratio float64) model.Stats {
	stats := model.Stats{PersonalizationRatio: ratio}
	for _, r := range final {
		if r.RecommendationType == "popular" {
			stats.TotalPopular++
		} else {
			stats.TotalPersonalized++
		}
	}
	for _, s := range scored {
		if _, ok := liked[s.ItemID]; ok {
			stats.FilteredAlreadyLiked++
		}
	}
	return stats
}

func headOf(items []*model.Scored, n int) []*model.Scored {
	if n > len(items) {
		n = len(items)
	}
	if n < 0 {
		n = 0
	}
	return items[:n]
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
