package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedDoc 是文档库里一条内容的只读快照
// 字段结构由外部系统负责，这里只声明管道用到的部分
type FeedDoc struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"user_id"`
	Text         string             `bson:"text" json:"text"`
	Title        string             `bson:"title" json:"title"`
	Hashtags     []string           `bson:"hashtags" json:"hashtags"`
	Status       string             `bson:"status" json:"status"`
	LikeCount    int                `bson:"likeCount" json:"like_count"`
	CommentCount int                `bson:"commentCount" json:"comment_count"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	Popularity   float64            `bson:"decayedPopularityScore" json:"popularity"`
}

// ExploreDoc 是预计算的 "发现页" 热门池的一条记录
type ExploreDoc struct {
	FeedID     primitive.ObjectID `bson:"feedId"`
	Status     string             `bson:"status"`
	Popularity float64            `bson:"popularityScore"`
}

// RelatedDoc 是按用户预计算的相关内容记录
// 注意 user_id 在这张表里是普通字符串，不保证和主库的 ObjectID 编码一致
type RelatedDoc struct {
	UserID        string  `bson:"user_id"`
	RelatedItemID string  `bson:"related_item_id"`
	Score         float64 `bson:"score"`
}

// LikeDoc 点赞记录。历史数据里目标字段有 feedId 和 targetId 两种写法
type LikeDoc struct {
	UserID   primitive.ObjectID `bson:"userId"`
	FeedID   primitive.ObjectID `bson:"feedId"`
	TargetID primitive.ObjectID `bson:"targetId"`
}

// TargetHex 返回点赞目标的字符串 id，优先 targetId
func (l LikeDoc) TargetHex() string {
	if !l.TargetID.IsZero() {
		return l.TargetID.Hex()
	}
	if !l.FeedID.IsZero() {
		return l.FeedID.Hex()
	}
	return ""
}

// CommentDoc 评论记录
type CommentDoc struct {
	UserID primitive.ObjectID `bson:"userId"`
	FeedID primitive.ObjectID `bson:"feedId"`
}

// InteractionDoc 写入本地 feedback 表的一条交互
type InteractionDoc struct {
	UserID    string                 `bson:"user_id"`
	ItemID    string                 `bson:"item_id"`
	Type      string                 `bson:"type"`
	Extra     map[string]interface{} `bson:"extra"`
	Timestamp time.Time              `bson:"timestamp"`
}
