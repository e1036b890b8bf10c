package nodes

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"feed_recommender/internal/model"
	"feed_recommender/internal/pipeline"
	"feed_recommender/internal/store"
	"feed_recommender/pkg/gorse"
)

// GorseRecallStage 调用外部推荐服务并归一化结果
// 外部服务是尽力而为的信号源：超时或出错时记日志、按空结果继续，绝不让请求失败
type GorseRecallStage struct {
	client gorse.Client
	store  store.Store
	buffer int // 预载缓冲区大小，也是请求外部服务的目标条数
}

func NewGorseRecallStage(client gorse.Client, s store.Store, buffer int) *GorseRecallStage {
	return &GorseRecallStage{client: client, store: s, buffer: buffer}
}

func (n *GorseRecallStage) Name() string { return "recall_gorse" }

func (n *GorseRecallStage) Execute(ctx *pipeline.Context) error {
	recs, err := n.client.Recommend(ctx.Ctx, ctx.UserID, n.buffer)
	if err != nil {
		ctx.AddLog(fmt.Sprintf("Gorse recall degraded: %v", err))
		return nil
	}

	// 只保留当前 active 的内容，排除集在库端和内存各过一遍
	var ids []primitive.ObjectID
	for _, r := range recs {
		if oid, err := primitive.ObjectIDFromHex(r.ItemID); err == nil {
			ids = append(ids, oid)
		}
	}
	var excluded []primitive.ObjectID
	for id := range ctx.Excluded {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			excluded = append(excluded, oid)
		}
	}

	feeds, err := n.store.ActiveFeedsByIDs(ctx.Ctx, ids, excluded)
	if err != nil {
		return err
	}

	var items []*model.CandidateRecord
	for _, r := range recs {
		if ctx.IsExcluded(r.ItemID) {
			continue
		}
		feed, ok := feeds[r.ItemID]
		if !ok {
			continue
		}
		f := feed
		items = append(items, &model.CandidateRecord{
			ItemID:   r.ItemID,
			CfScore:  model.Float(r.CfScore),
			Category: "post",
			FeedData: &f,
		})
	}

	ctx.AddRecall(items)
	ctx.AddLog(fmt.Sprintf("Gorse recall returned %d items (%d raw)", len(items), len(recs)))
	return nil
}
