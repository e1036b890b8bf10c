package gorse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client 定义外部推荐服务的客户端接口
type Client interface {
	// Recommend 拉取一批排好序的推荐，返回归一化后的 (item_id, cf_score) 列表
	Recommend(ctx context.Context, userID string, n int) ([]Item, error)
	// SendFeedback 上报用户交互
	SendFeedback(ctx context.Context, feedback []Feedback) error
}

// Item 是归一化后的一条外部推荐结果
type Item struct {
	ItemID  string  `json:"item_id"`
	CfScore float64 `json:"cf_score"`
}

// Feedback 是上报给外部服务的一条交互，字段名由对方的 API 约定
type Feedback struct {
	FeedbackType string `json:"FeedbackType"`
	UserID       string `json:"UserId"`
	ItemID       string `json:"ItemId"`
	Timestamp    string `json:"Timestamp"`
}

// HTTPClient 是基于 HTTP 的默认实现
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient 创建客户端，timeout 约束单次请求的整体耗时
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) Recommend(ctx context.Context, userID string, n int) ([]Item, error) {
	u := fmt.Sprintf("%s/recommend/%s?n=%d", c.baseURL, url.PathEscape(userID), n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommend api error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return normalizeItems(body), nil
}

func (c *HTTPClient) SendFeedback(ctx context.Context, feedback []Feedback) error {
	jsonBody, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/feedback", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feedback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("feedback api error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	return nil
}

// normalizeItems 把不同版本的响应结构归一化为 (item_id, cf_score)
// 历史上 id 字段出现过 Id/ItemId/item_id/id 四种写法，分数出现过 Score/score 两种
// 解析不出 id 的条目直接丢弃，分数缺失按 0 处理
func normalizeItems(body []byte) []Item {
	var raw []interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	var out []Item
	for _, entry := range raw {
		switch v := entry.(type) {
		case map[string]interface{}:
			id := firstString(v, "Id", "ItemId", "item_id", "id")
			if id == "" {
				continue
			}
			out = append(out, Item{ItemID: id, CfScore: firstFloat(v, "Score", "score")})
		case string:
			// 老版本直接返回 id 列表
			if v != "" {
				out = append(out, Item{ItemID: v})
			}
		}
	}
	return out
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
