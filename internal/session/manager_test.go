package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"feed_recommender/internal/model"
)

// fakeCache 内存缓存，记录写入的键方便断言
type fakeCache struct {
	data    map[string][]model.Recommendation
	getErr  error
	lastSet string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]model.Recommendation{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]model.Recommendation, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	recs, ok := f.data[key]
	return recs, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, recs []model.Recommendation, ttl time.Duration) error {
	f.data[key] = recs
	f.lastSet = key
	return nil
}

func (f *fakeCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (f *fakeCache) TrendingScore(ctx context.Context, itemID string) (float64, error) {
	return 0, nil
}

func (f *fakeCache) TrendingTop(ctx context.Context, n int64) ([]TrendingEntry, error) {
	return nil, nil
}

func (f *fakeCache) Available() bool { return true }

// fakeGenerator 每次返回固定条数并记录调用次数
type fakeGenerator struct {
	count int
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, userID string, ratio float64) ([]model.Recommendation, model.Stats, error) {
	f.calls++
	recs := make([]model.Recommendation, f.count)
	for i := range recs {
		recs[i] = model.Recommendation{ItemID: fmt.Sprintf("item-%d", i), Score: 1 - float64(i)*0.01}
	}
	return recs, model.Stats{PersonalizationRatio: ratio}, nil
}

func makeRecs(n int) []model.Recommendation {
	recs := make([]model.Recommendation, n)
	for i := range recs {
		recs[i] = model.Recommendation{ItemID: fmt.Sprintf("cached-%d", i)}
	}
	return recs
}

func TestServeCacheHitPagination(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(100)
	gen := &fakeGenerator{count: 100}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 2, Limit: 10, SessionID: "sess1", Ratio: 0.7,
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	if page.Cache != "hit" {
		t.Errorf("expected cache hit, got %s", page.Cache)
	}
	if gen.calls != 0 {
		t.Errorf("generator should not run on hit, ran %d times", gen.calls)
	}
	if page.Total != 100 || page.ResultsCount != 10 {
		t.Errorf("unexpected page shape: total=%d count=%d", page.Total, page.ResultsCount)
	}
	if page.Recommendations[0].ItemID != "cached-10" {
		t.Errorf("expected page 2 to start at cached-10, got %s", page.Recommendations[0].ItemID)
	}
	if !page.HasMore {
		t.Error("expected has_more true on page 2 of 100")
	}
	if page.Stats != nil {
		t.Error("hit responses should not carry stats")
	}
}

// 25 条缓存翻到第三页：最后一页 5 条，has_more 为假
func TestServePartialLastPage(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(25)
	m := NewManager(cache, &fakeGenerator{}, time.Minute, 20)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 3, Limit: 10, SessionID: "sess1",
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if page.ResultsCount != 5 {
		t.Errorf("expected 5 items on last page, got %d", page.ResultsCount)
	}
	if page.HasMore {
		t.Error("expected has_more false on last page")
	}
	if page.Recommendations[0].ItemID != "cached-20" {
		t.Errorf("expected page 3 to start at cached-20, got %s", page.Recommendations[0].ItemID)
	}
}

func TestServePageBeyondEnd(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(100)
	m := NewManager(cache, &fakeGenerator{}, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 50, Limit: 10, SessionID: "sess1",
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if page.ResultsCount != 0 {
		t.Errorf("expected empty page beyond end, got %d items", page.ResultsCount)
	}
	if page.Recommendations == nil {
		t.Error("recommendations must be an empty list, not null")
	}
	if page.HasMore {
		t.Error("expected has_more false beyond end")
	}
}

// 批次没填满缓冲区又被翻到尾部时视为耗尽，必须重新生成
func TestServeExhaustedBatchRegenerates(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(8)
	gen := &fakeGenerator{count: 50}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 1, Limit: 10, SessionID: "sess1", Ratio: 0.5,
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected regeneration, generator ran %d times", gen.calls)
	}
	if page.Cache != "miss" {
		t.Errorf("expected cache miss after exhaustion, got %s", page.Cache)
	}
	if page.Total != 50 {
		t.Errorf("expected regenerated total 50, got %d", page.Total)
	}
	if page.Stats == nil {
		t.Error("miss responses should carry stats")
	}
}

// 满缓冲区的批次翻到尾部不算耗尽，残页照常返回
func TestServeFullBatchTailIsHit(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(100)
	gen := &fakeGenerator{count: 100}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 10, Limit: 10, SessionID: "sess1",
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if page.Cache != "hit" || gen.calls != 0 {
		t.Errorf("expected hit without regeneration, got cache=%s calls=%d", page.Cache, gen.calls)
	}
}

func TestServeRefreshBypassesCache(t *testing.T) {
	cache := newFakeCache()
	cache.data[CacheKey("u1", "sess1")] = makeRecs(100)
	gen := &fakeGenerator{count: 30}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 1, Limit: 10, SessionID: "sess1", Refresh: true,
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if gen.calls != 1 || page.Cache != "miss" {
		t.Errorf("refresh must regenerate: calls=%d cache=%s", gen.calls, page.Cache)
	}
}

// 没带 session 的请求：写入 latest 键，响应里发新令牌
func TestServeNoSessionIssuesToken(t *testing.T) {
	cache := newFakeCache()
	gen := &fakeGenerator{count: 30}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if page.SessionID == "" {
		t.Error("expected a freshly issued session token")
	}
	if len(page.SessionID) != 16 {
		t.Errorf("expected 16-char token, got %q", page.SessionID)
	}
	if cache.lastSet != CacheKey("u1", "") {
		t.Errorf("expected write under latest key, got %s", cache.lastSet)
	}
}

// 缓存读故障按 miss 处理，请求不失败
func TestServeCacheErrorFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = fmt.Errorf("connection refused")
	gen := &fakeGenerator{count: 20}
	m := NewManager(cache, gen, time.Minute, 100)

	page, err := m.Serve(context.Background(), Request{
		UserID: "u1", Page: 1, Limit: 10, SessionID: "sess1",
	})
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if page.Cache != "miss" || gen.calls != 1 {
		t.Errorf("expected fallthrough to generation: cache=%s calls=%d", page.Cache, gen.calls)
	}
}

func TestCacheKeyDerivation(t *testing.T) {
	if got := CacheKey("u1", "abc"); got != "rec_session:u1:abc" {
		t.Errorf("unexpected session key: %s", got)
	}
	if got := CacheKey("u1", ""); got != "rec_latest:u1" {
		t.Errorf("unexpected latest key: %s", got)
	}
}
