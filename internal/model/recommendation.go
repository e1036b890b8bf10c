package model

// Recommendation 是最终写入会话缓存、返回给调用方的一条推荐
type Recommendation struct {
	ItemID             string    `json:"item_id"`
	Score              float64   `json:"score"`
	Category           string    `json:"category"`
	FriendLikedBy      []string  `json:"friend_liked_by"`
	Popularity         float64   `json:"popularity"`
	RecommendationType string    `json:"recommendation_type"` // "popular" | "personalized"
	Metadata           *Metadata `json:"metadata,omitempty"`
}

// Metadata 展示用的内容摘要，只有拿到内容快照时才会附带
type Metadata struct {
	Text      string `json:"text"`
	Title     string `json:"title"`
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Stats 是一次完整生成的统计信息，只在 cache miss 时返回
type Stats struct {
	TotalPopular         int     `json:"total_popular"`
	TotalPersonalized    int     `json:"total_personalized"`
	FilteredAlreadyLiked int     `json:"filtered_already_liked"`
	PersonalizationRatio float64 `json:"personalization_ratio"`
}
