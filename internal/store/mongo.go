package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feed_recommender/internal/model"
)

// 文档库集合名，schema 由外部系统负责
const (
	colUsers        = "users"
	colFeeds        = "feeds"
	colLikes        = "likes"
	colComments     = "comments"
	colReposts      = "reposts"
	colFollows      = "follows"
	colSavedFeeds   = "saved_feeds"
	colWatch        = "users_daily_activity"
	colInterests    = "userinterests"
	colInteractions = "feedback"
	colExplore      = "explore_feeds"
	colItems        = "items"
	colRelated      = "related_items"
)

// Mongo 是 Store 的 MongoDB 实现
type Mongo struct {
	db *mongo.Database
}

// Connect 建立 MongoDB 连接并做一次连通性检查
// 文档库是硬依赖，调用方在失败时应当直接退出
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Mongo{db: client.Database(dbName)}, nil
}

// targetHexList 查询 col 中 filter 命中的文档，取出 field 字段的 ObjectID 并转为字符串
func (m *Mongo) targetHexList(ctx context.Context, col string, filter bson.M, field string) ([]string, error) {
	cur, err := m.db.Collection(col).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col, err)
	}
	var out []string
	for _, d := range docs {
		switch v := d[field].(type) {
		case primitive.ObjectID:
			if !v.IsZero() {
				out = append(out, v.Hex())
			}
		case string:
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (m *Mongo) LikedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return m.targetHexList(ctx, colLikes, bson.M{"userId": userID}, "feedId")
}

func (m *Mongo) CommentedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return m.targetHexList(ctx, colComments, bson.M{"userId": userID}, "feedId")
}

func (m *Mongo) SavedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return m.targetHexList(ctx, colSavedFeeds, bson.M{"userId": userID}, "feedId")
}

func (m *Mongo) RepostedOriginals(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return m.targetHexList(ctx, colReposts, bson.M{"userId": userID}, "originalFeedId")
}

// WatchedItemIDs 读观看历史库。这张表用字符串 user_id 作键，不做额外归一化
func (m *Mongo) WatchedItemIDs(ctx context.Context, userID string) ([]string, error) {
	return m.targetHexList(ctx, colWatch, bson.M{"user_id": userID}, "item_id")
}

func (m *Mongo) AuthoredFeedIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return m.targetHexList(ctx, colFeeds, bson.M{"userId": userID}, "_id")
}

func (m *Mongo) UserInterests(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	var doc struct {
		Interests []string `bson:"interests"`
	}
	err := m.db.Collection(colInterests).FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", colInterests, err)
	}
	return doc.Interests, nil
}

func (m *Mongo) ActiveFollowing(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := m.db.Collection(colFollows).Find(ctx, bson.M{"followerId": userID, "status": "active"})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", colFollows, err)
	}
	var docs []struct {
		FollowingID primitive.ObjectID `bson:"followingId"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colFollows, err)
	}
	var out []primitive.ObjectID
	for _, d := range docs {
		if !d.FollowingID.IsZero() {
			out = append(out, d.FollowingID)
		}
	}
	return out, nil
}

func (m *Mongo) FeedsByHashtags(ctx context.Context, tags []string, limit int64) ([]model.FeedDoc, error) {
	filter := bson.M{"hashtags": bson.M{"$in": tags}, "status": "active"}
	cur, err := m.db.Collection(colFeeds).Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find %s by hashtags: %w", colFeeds, err)
	}
	var feeds []model.FeedDoc
	if err := cur.All(ctx, &feeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colFeeds, err)
	}
	return feeds, nil
}

func (m *Mongo) FeedsByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int64) ([]model.FeedDoc, error) {
	filter := bson.M{"userId": bson.M{"$in": authors}, "status": "active"}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cur, err := m.db.Collection(colFeeds).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s by authors: %w", colFeeds, err)
	}
	var feeds []model.FeedDoc
	if err := cur.All(ctx, &feeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colFeeds, err)
	}
	return feeds, nil
}

func (m *Mongo) TrendingExplore(ctx context.Context, limit int64) ([]model.ExploreDoc, error) {
	opts := options.Find().SetSort(bson.D{{Key: "popularityScore", Value: -1}}).SetLimit(limit)
	cur, err := m.db.Collection(colExplore).Find(ctx, bson.M{"status": "active"}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", colExplore, err)
	}
	var docs []model.ExploreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colExplore, err)
	}
	return docs, nil
}

func (m *Mongo) RelatedItems(ctx context.Context, userID string, limit int64) ([]model.RelatedDoc, error) {
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}}).SetLimit(limit)
	cur, err := m.db.Collection(colRelated).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", colRelated, err)
	}
	var docs []model.RelatedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colRelated, err)
	}
	return docs, nil
}

func (m *Mongo) ActiveFeedsByIDs(ctx context.Context, ids, excluded []primitive.ObjectID) (map[string]model.FeedDoc, error) {
	if len(ids) == 0 {
		return map[string]model.FeedDoc{}, nil
	}
	filter := bson.M{
		"_id":    bson.M{"$in": ids, "$nin": excluded},
		"status": "active",
	}
	cur, err := m.db.Collection(colFeeds).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s by ids: %w", colFeeds, err)
	}
	var feeds []model.FeedDoc
	if err := cur.All(ctx, &feeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colFeeds, err)
	}
	out := make(map[string]model.FeedDoc, len(feeds))
	for _, f := range feeds {
		out[f.ID.Hex()] = f
	}
	return out, nil
}

func (m *Mongo) LikesByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.LikeDoc, error) {
	cur, err := m.db.Collection(colLikes).Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("find %s by users: %w", colLikes, err)
	}
	var likes []model.LikeDoc
	if err := cur.All(ctx, &likes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colLikes, err)
	}
	return likes, nil
}

func (m *Mongo) CommentsByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.CommentDoc, error) {
	cur, err := m.db.Collection(colComments).Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("find %s by users: %w", colComments, err)
	}
	var comments []model.CommentDoc
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colComments, err)
	}
	return comments, nil
}

// FeedByID 按 id 查内容快照，不存在时返回 (nil, nil)
func (m *Mongo) FeedByID(ctx context.Context, id primitive.ObjectID) (*model.FeedDoc, error) {
	var feed model.FeedDoc
	err := m.db.Collection(colFeeds).FindOne(ctx, bson.M{"_id": id}).Decode(&feed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feed %s: %w", id.Hex(), err)
	}
	return &feed, nil
}

// WatchTime 返回用户在某条内容上的累计观看时长，没有记录时返回 0
func (m *Mongo) WatchTime(ctx context.Context, userID, itemID string) (float64, error) {
	var doc struct {
		WatchTime float64 `bson:"watch_time"`
	}
	err := m.db.Collection(colWatch).FindOne(ctx, bson.M{"user_id": userID, "item_id": itemID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find watch time: %w", err)
	}
	return doc.WatchTime, nil
}

// LikedItemSet 返回用户直接点赞过的目标集合，兼容 targetId/feedId 两种写法
func (m *Mongo) LikedItemSet(ctx context.Context, userID primitive.ObjectID) (map[string]struct{}, error) {
	cur, err := m.db.Collection(colLikes).Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", colLikes, err)
	}
	var likes []model.LikeDoc
	if err := cur.All(ctx, &likes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", colLikes, err)
	}
	out := make(map[string]struct{}, len(likes))
	for _, l := range likes {
		if hex := l.TargetHex(); hex != "" {
			out[hex] = struct{}{}
		}
	}
	return out, nil
}

func (m *Mongo) InsertInteraction(ctx context.Context, doc model.InteractionDoc) error {
	if doc.Extra == nil {
		doc.Extra = map[string]interface{}{}
	}
	if _, err := m.db.Collection(colInteractions).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// SetPopularity 把上游算好的热度分回写到 items 表
func (m *Mongo) SetPopularity(ctx context.Context, itemID string, score float64) error {
	_, err := m.db.Collection(colItems).UpdateOne(ctx,
		bson.M{"item_id": itemID},
		bson.M{"$set": bson.M{"popularity_score": score}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set popularity: %w", err)
	}
	return nil
}

func (m *Mongo) CollectionCounts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, col := range []string{colUsers, colFeeds, colLikes, colComments, colFollows, colInteractions} {
		n, err := m.db.Collection(col).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", col, err)
		}
		out[col] = n
	}
	return out, nil
}
