package gorse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeItemsFieldVariants(t *testing.T) {
	body := []byte(`[
		{"Id": "a", "Score": 0.9},
		{"ItemId": "b", "score": 0.8},
		{"item_id": "c"},
		{"id": "d", "Score": "0.5"},
		"e",
		{"Score": 0.7},
		42
	]`)

	items := normalizeItems(body)
	want := []Item{
		{ItemID: "a", CfScore: 0.9},
		{ItemID: "b", CfScore: 0.8},
		{ItemID: "c"},
		{ItemID: "d", CfScore: 0.5},
		{ItemID: "e"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("item %d: expected %+v, got %+v", i, w, items[i])
		}
	}
}

func TestNormalizeItemsBadPayload(t *testing.T) {
	if got := normalizeItems([]byte(`{"not": "a list"}`)); got != nil {
		t.Errorf("expected nil for non-list payload, got %v", got)
	}
	if got := normalizeItems([]byte(`not json`)); got != nil {
		t.Errorf("expected nil for invalid json, got %v", got)
	}
}

func TestRecommendRequestShape(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"Id": "x", "Score": 0.4},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", 2*time.Second)
	items, err := c.Recommend(context.Background(), "user1", 100)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if gotPath != "/recommend/user1" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotQuery != "n=100" {
		t.Errorf("unexpected query: %s", gotQuery)
	}
	if len(items) != 1 || items[0].ItemID != "x" || items[0].CfScore != 0.4 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestRecommendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 2*time.Second)
	if _, err := c.Recommend(context.Background(), "user1", 10); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestSendFeedback(t *testing.T) {
	var received []Feedback
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feedback" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 2*time.Second)
	err := c.SendFeedback(context.Background(), []Feedback{
		{FeedbackType: "like", UserID: "u1", ItemID: "i1", Timestamp: "2025-06-01T00:00:00Z"},
	})
	if err != nil {
		t.Fatalf("SendFeedback failed: %v", err)
	}
	if len(received) != 1 || received[0].ItemID != "i1" {
		t.Errorf("unexpected payload on server side: %+v", received)
	}
}
