package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/model"
)

// Generator 是完整生成管道的入口，由 pipeline.Engine 实现
type Generator interface {
	Generate(ctx context.Context, userID string, ratio float64) ([]model.Recommendation, model.Stats, error)
}

// Request 是一次分页请求，参数已由 HTTP 层钳好范围
type Request struct {
	UserID    string
	Page      int
	Limit     int
	SessionID string
	Refresh   bool
	Ratio     float64
}

// Page 是一页结果，字段结构即对外响应
type Page struct {
	User            string                 `json:"user"`
	Page            int                    `json:"page"`
	Limit           int                    `json:"limit"`
	SessionID       string                 `json:"session_id"`
	Total           int                    `json:"total"`
	HasMore         bool                   `json:"has_more"`
	ResultsCount    int                    `json:"results_count"`
	Recommendations []model.Recommendation `json:"recommendations"`
	Cache           string                 `json:"cache"` // "hit" | "miss"
	Stats           *model.Stats           `json:"stats,omitempty"`
}

// Manager 负责缓存键推导、命中/穿透决策和分页切片
type Manager struct {
	cache  Cache
	gen    Generator
	ttl    time.Duration
	buffer int // 预载缓冲区，判断缓存批次是否"完整"的基准
}

func NewManager(cache Cache, gen Generator, ttl time.Duration, buffer int) *Manager {
	return &Manager{cache: cache, gen: gen, ttl: ttl, buffer: buffer}
}

// Serve 处理一次分页请求
// 带 session 且未要求刷新时先查缓存；缓存被翻到尾部且批次没填满缓冲区时
// 视为已耗尽，强制重新生成而不是把残页返回给调用方
func (m *Manager) Serve(ctx context.Context, req Request) (*Page, error) {
	start := (req.Page - 1) * req.Limit
	end := start + req.Limit

	if req.SessionID != "" && !req.Refresh {
		cached, ok, err := m.cache.Get(ctx, CacheKey(req.UserID, req.SessionID))
		if err != nil {
			// 缓存故障按 miss 处理，不影响请求
			logger.Warn("Cache get failed, treating as miss: %v", err)
			ok = false
		}
		if ok {
			total := len(cached)
			if end >= total && total < m.buffer {
				logger.Info("Cache exhausted for user %s (total %d < buffer %d), regenerating",
					shortID(req.UserID), total, m.buffer)
			} else {
				logger.Info("Cache HIT for user %s (session %s)", shortID(req.UserID), shortID(req.SessionID))
				return m.page(req, req.SessionID, cached, "hit", nil), nil
			}
		} else {
			logger.Info("Cache MISS for user %s (session %s)", shortID(req.UserID), shortID(req.SessionID))
		}
	}

	recs, stats, err := m.gen.Generate(ctx, req.UserID, req.Ratio)
	if err != nil {
		return nil, err
	}

	// 写回用解析前的键：没带 session 的请求落到用户的 latest 键
	if err := m.cache.Set(ctx, CacheKey(req.UserID, req.SessionID), recs, m.ttl); err != nil {
		logger.Warn("Cache set failed: %v", err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}
	logger.Info("Cached %d recommendations for user %s (session %s)",
		len(recs), shortID(req.UserID), shortID(sessionID))

	return m.page(req, sessionID, recs, "miss", &stats), nil
}

// page 计算请求页的切片并组装响应
func (m *Manager) page(req Request, sessionID string, recs []model.Recommendation, cache string, stats *model.Stats) *Page {
	start := (req.Page - 1) * req.Limit
	end := start + req.Limit
	total := len(recs)

	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	slice := recs[start:end]
	if slice == nil {
		slice = []model.Recommendation{}
	}

	return &Page{
		User:            req.UserID,
		Page:            req.Page,
		Limit:           req.Limit,
		SessionID:       sessionID,
		Total:           total,
		HasMore:         (req.Page-1)*req.Limit+req.Limit < total,
		ResultsCount:    len(slice),
		Recommendations: slice,
		Cache:           cache,
		Stats:           stats,
	}
}

// newSessionID 生成一个本地会话令牌，只要求足够唯一，不要求可复现
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
