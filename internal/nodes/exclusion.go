package nodes

import (
	"fmt"

	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
)

// ExclusionStage 构建排除集：用户交互过的和自己发布的内容都不再展示
// 每次请求现算，不落盘
type ExclusionStage struct {
	store store.Store
}

func NewExclusionStage(s store.Store) *ExclusionStage {
	return &ExclusionStage{store: s}
}

func (n *ExclusionStage) Name() string { return "exclusion" }

func (n *ExclusionStage) Execute(ctx *pipeline.Context) error {
	// 身份不合法时按空集放行，宁可多推也不报错
	if !ctx.ValidID {
		ctx.AddLog("Invalid user id, proceeding with empty exclusion set")
		return nil
	}

	seen := make(map[string]struct{})
	add := func(ids []string) {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	liked, err := n.store.LikedTargets(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	add(liked)

	commented, err := n.store.CommentedTargets(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	add(commented)

	saved, err := n.store.SavedTargets(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	add(saved)

	reposted, err := n.store.RepostedOriginals(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	add(reposted)

	// 观看历史库用字符串 user_id 作键
	watched, err := n.store.WatchedItemIDs(ctx.Ctx, ctx.UserID)
	if err != nil {
		return err
	}
	add(watched)

	authored, err := n.store.AuthoredFeedIDs(ctx.Ctx, ctx.UserOID)
	if err != nil {
		return err
	}
	add(authored)

	ctx.Excluded = seen
	ctx.AddLog(fmt.Sprintf("Excluding %d seen/authored items", len(seen)))
	return nil
}
