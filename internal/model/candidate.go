package model

// CandidateRecord 代表一条待排序的候选记录
// ItemID 是合并阶段的唯一键；各分数字段相互独立，nil 表示该来源没有给出信号
type CandidateRecord struct {
	ItemID       string   `json:"item_id"`
	CfScore      *float64 `json:"cf_score,omitempty"`      // 外部推荐服务 (协同过滤) 分数
	ContentScore *float64 `json:"content_score,omitempty"` // 召回源固定的内容相关性分数
	SocialScore  *float64 `json:"social_score,omitempty"`  // 好友点赞/评论累积分数
	Category     string   `json:"category,omitempty"`      // 为空时按 "post" 处理
	FeedData     *FeedDoc `json:"feed_data,omitempty"` // 冗余的内容快照，可能缺失
}

// Float 返回指向 v 的指针，用于填充可选分数字段
func Float(v float64) *float64 {
	return &v
}

// Deref 解引用可选分数，nil 按 0 处理
func Deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Scored 是打分阶段的输出，Score 是唯一的排序键
type Scored struct {
	ItemID     string
	Score      float64 // 四舍五入到 6 位小数
	Category   string
	Popularity float64
	FeedData   *FeedDoc // 打分时解析出的快照，可能为 nil
	IsPopular  bool     // Popularity > 0.5，由混排阶段标记
}
