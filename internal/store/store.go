package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"feed_recommender/internal/model"
)

// Store 定义管道对文档库的全部读写操作
// 所有读接口都是外部系统拥有的 schema，这里只做一次性的解码
type Store interface {
	// 排除集相关：用户交互过的目标 id
	LikedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	CommentedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	SavedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	RepostedOriginals(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	// 观看历史库用普通字符串 user_id 作键，和主库的 ObjectID 不是同一套编码
	WatchedItemIDs(ctx context.Context, userID string) ([]string, error)
	AuthoredFeedIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error)

	// 召回相关
	UserInterests(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	ActiveFollowing(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	FeedsByHashtags(ctx context.Context, tags []string, limit int64) ([]model.FeedDoc, error)
	FeedsByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int64) ([]model.FeedDoc, error)
	TrendingExplore(ctx context.Context, limit int64) ([]model.ExploreDoc, error)
	RelatedItems(ctx context.Context, userID string, limit int64) ([]model.RelatedDoc, error)
	ActiveFeedsByIDs(ctx context.Context, ids, excluded []primitive.ObjectID) (map[string]model.FeedDoc, error)
	LikesByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.LikeDoc, error)
	CommentsByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.CommentDoc, error)

	// 打分相关
	FeedByID(ctx context.Context, id primitive.ObjectID) (*model.FeedDoc, error)
	WatchTime(ctx context.Context, userID, itemID string) (float64, error)

	// 混排末段的去重：用户直接点赞过的目标集合
	LikedItemSet(ctx context.Context, userID primitive.ObjectID) (map[string]struct{}, error)

	// 反馈接口
	InsertInteraction(ctx context.Context, doc model.InteractionDoc) error
	SetPopularity(ctx context.Context, itemID string, score float64) error

	// 诊断接口
	CollectionCounts(ctx context.Context) (map[string]int64, error)
}
