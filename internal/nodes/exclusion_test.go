package nodes

import (
	"context"
	"testing"

	"feed_recommender/internal/pipeline"
)

func TestExclusionUnionOfSources(t *testing.T) {
	st := &fakeStore{
		liked:     []string{"a", "b"},
		commented: []string{"b", "c"},
		saved:     []string{"d"},
		reposted:  []string{"e"},
		watched:   []string{"f", "a"},
		authored:  []string{"g"},
	}
	pctx := pipeline.NewContext(context.Background(), testUserHex, 0.7)

	stage := NewExclusionStage(st)
	if err := stage.Execute(pctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	if len(pctx.Excluded) != len(want) {
		t.Fatalf("expected %d excluded items, got %d", len(want), len(pctx.Excluded))
	}
	for _, id := range want {
		if !pctx.IsExcluded(id) {
			t.Errorf("expected %s in exclusion set", id)
		}
	}
}

// 非法 user_id 不报错，按空排除集继续
func TestExclusionInvalidUserID(t *testing.T) {
	st := &fakeStore{liked: []string{"a"}}
	pctx := pipeline.NewContext(context.Background(), "not-a-hex-id", 0.7)

	stage := NewExclusionStage(st)
	if err := stage.Execute(pctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(pctx.Excluded) != 0 {
		t.Errorf("expected empty exclusion set, got %d items", len(pctx.Excluded))
	}
}
