package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/model"
	"feed_recommender/internal/session"
	"feed_recommender/internal/store"
	"feed_recommender/pkg/gorse"
)

// Server 代表 HTTP API 服务器
type Server struct {
	router   *gin.Engine
	manager  *session.Manager
	store    store.Store
	cache    session.Cache
	gorse    gorse.Client
	gorseURL string
}

// NewServer 创建新的 HTTP 服务器
func NewServer(manager *session.Manager, st store.Store, cache session.Cache, gc gorse.Client, gorseURL string) *Server {
	s := &Server{
		router:   gin.Default(),
		manager:  manager,
		store:    st,
		cache:    cache,
		gorse:    gc,
		gorseURL: gorseURL,
	}
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)

	s.router.GET("/recommend/:user_id", s.handleRecommend(-1))
	// 固定占比的派生路由，契约和主路由一致
	s.router.GET("/recommend/:user_id/personalized", s.handleRecommend(0.8))
	s.router.GET("/recommend/:user_id/popular", s.handleRecommend(0.2))
	s.router.GET("/recommend/:user_id/balanced", s.handleRecommend(0.5))

	s.router.POST("/feedback", s.handleFeedback)

	s.router.GET("/debug/stats", s.handleDebugStats)
	s.router.DELETE("/debug/cache/:user_id", s.handleInvalidateCache)
}

func (s *Server) handleHome(c *gin.Context) {
	redisStatus := "disconnected"
	if s.cache.Available() {
		redisStatus = "connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"service": "Feed Recommendation Engine",
		"version": "2.0",
		"redis":   redisStatus,
		"mongodb": "connected",
		"endpoints": gin.H{
			"recommend": "/recommend/:user_id?page=1&limit=10",
			"feedback":  "/feedback (POST)",
			"stats":     "/debug/stats",
		},
	})
}

// handleRecommend 处理分页推荐请求
// fixedRatio >= 0 时覆盖调用方传入的 personalized_ratio
func (s *Server) handleRecommend(fixedRatio float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := parseRecommendParams(c, fixedRatio)

		page, err := s.manager.Serve(c.Request.Context(), req)
		if err != nil {
			logger.Error("recommend error for user %s: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation failed"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// FeedbackRequest 是交互上报的请求体
type FeedbackRequest struct {
	UserID string `json:"user_id" binding:"required"`
	ItemID string `json:"item_id" binding:"required"`
	Type   string `json:"type"`
}

// handleFeedback 记录一次用户交互
// 本地落一条 feedback 文档、转发给外部推荐服务、并用 trending 集合里的
// 最新分数刷新该内容的热度。外部依赖的失败只记日志，不阻断响应
func (s *Server) handleFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = "like"
	}

	ctx := c.Request.Context()

	if err := s.store.InsertInteraction(ctx, model.InteractionDoc{
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Type:      req.Type,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		logger.Error("store interaction failed: %v", err)
	}

	if err := s.gorse.SendFeedback(ctx, []gorse.Feedback{{
		FeedbackType: req.Type,
		UserID:       req.UserID,
		ItemID:       req.ItemID,
		Timestamp:    time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}}); err != nil {
		logger.Warn("gorse feedback failed: %v", err)
	}

	if score, err := s.cache.TrendingScore(ctx, req.ItemID); err != nil {
		logger.Warn("trending score lookup failed: %v", err)
	} else if err := s.store.SetPopularity(ctx, req.ItemID, score); err != nil {
		logger.Warn("update popularity failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDebugStats 只读的诊断接口，不影响管道状态
func (s *Server) handleDebugStats(c *gin.Context) {
	counts, err := s.store.CollectionCounts(c.Request.Context())
	if err != nil {
		logger.Error("debug stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	stats := gin.H{
		"system": gin.H{
			"redis_available":   s.cache.Available(),
			"mongodb_connected": true,
			"gorse_url":         s.gorseURL,
		},
		"collections": counts,
	}

	if s.cache.Available() {
		if trending, err := s.cache.TrendingTop(c.Request.Context(), 10); err == nil {
			stats["trending"] = trending
		}
	}

	c.JSON(http.StatusOK, stats)
}

// handleInvalidateCache 清空一个用户的全部会话缓存（独立的运维入口）
func (s *Server) handleInvalidateCache(c *gin.Context) {
	userID := c.Param("user_id")
	deleted, err := s.cache.InvalidateUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("invalidate cache error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalidate failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userID, "deleted": deleted})
}
