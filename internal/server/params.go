package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"feed_recommender/internal/session"
)

// 分页参数的取值范围
const (
	defaultPageSize = 10
	minPageSize     = 5
	maxPageSize     = 20

	defaultRatio = 0.7
)

// parseRecommendParams 解析并钳制分页请求参数
// 非法输入一律回退到默认值或边界值，不报错
func parseRecommendParams(c *gin.Context, fixedRatio float64) session.Request {
	page := atoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	limit := atoiDefault(c.Query("limit"), defaultPageSize)
	if limit < minPageSize {
		limit = minPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	ratio := fixedRatio
	if ratio < 0 {
		ratio = clampRatio(c.Query("personalized_ratio"))
	}

	return session.Request{
		UserID:    c.Param("user_id"),
		Page:      page,
		Limit:     limit,
		SessionID: c.Query("session_id"),
		Refresh:   strings.EqualFold(c.Query("refresh"), "true"),
		Ratio:     ratio,
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// clampRatio 解析个性化占比并钳到 [0,1]
func clampRatio(s string) float64 {
	if s == "" {
		return defaultRatio
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultRatio
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
