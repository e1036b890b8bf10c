package pipeline

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"feed_recommender/internal/model"
)

// Context 承载一次推荐生成的全部状态
// 每个请求独占一个 Context，各阶段按顺序读写，不跨请求共享
type Context struct {
	Ctx    context.Context
	UserID string
	// UserOID 是解析后的主库身份。解析失败时 ValidID 为 false，
	// 依赖主库身份的阶段按"无匹配"处理而不是报错
	UserOID primitive.ObjectID
	ValidID bool
	Ratio   float64 // 个性化占比，调用方已钳到 [0,1]

	Excluded    map[string]struct{}      // 排除集，用户不应再看到的 item id
	SocialBoost map[string]float64       // item id -> 好友互动累积分
	Candidates  []*model.CandidateRecord // 当前主候选集
	Scored      []*model.Scored          // 打分排序后的列表
	Final       []model.Recommendation   // 混排标注后的最终列表
	Stats       model.Stats

	TraceLog []string // 执行日志，便于排查
}

// NewContext 创建工作流上下文并解析用户身份
func NewContext(ctx context.Context, userID string, ratio float64) *Context {
	c := &Context{
		Ctx:      ctx,
		UserID:   userID,
		Ratio:    ratio,
		Excluded: make(map[string]struct{}),
	}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		c.UserOID = oid
		c.ValidID = true
	}
	return c
}

// AddRecall 把一路召回的结果合并进主候选集，各源的条数由 TraceLog 记录
func (c *Context) AddRecall(items []*model.CandidateRecord) {
	c.Candidates = append(c.Candidates, items...)
}

// IsExcluded 判断 item 是否在排除集中
func (c *Context) IsExcluded(itemID string) bool {
	_, ok := c.Excluded[itemID]
	return ok
}

// AddLog 添加追踪日志
func (c *Context) AddLog(msg string) {
	c.TraceLog = append(c.TraceLog, msg)
}

// Stage 定义管道中的执行阶段
type Stage interface {
	Name() string
	Execute(ctx *Context) error
}
