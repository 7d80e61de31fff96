package council

import (
	"reflect"
	"testing"
)

func testDrafts(ids ...string) []DraftArtifact {
	drafts := make([]DraftArtifact, 0, len(ids))
	for _, id := range ids {
		drafts = append(drafts, DraftArtifact{
			BlockID:   id,
			BlockName: "name-" + id,
			Model:     "model/" + id,
			Content:   "content from " + id,
		})
	}
	return drafts
}

func TestNewLabelMap(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus", "gpt", "gemini"))

	wantLabels := []string{"Draft A", "Draft B", "Draft C"}
	if !reflect.DeepEqual(lm.Labels(), wantLabels) {
		t.Fatalf("Labels() = %v, want %v", lm.Labels(), wantLabels)
	}
	if lm.Len() != 3 {
		t.Errorf("Len() = %d, want 3", lm.Len())
	}

	for i, id := range []string{"opus", "gpt", "gemini"} {
		label := wantLabels[i]
		if got, ok := lm.BlockFor(label); !ok || got != id {
			t.Errorf("BlockFor(%q) = %q, %v, want %q", label, got, ok, id)
		}
		if got, ok := lm.LabelFor(id); !ok || got != label {
			t.Errorf("LabelFor(%q) = %q, %v, want %q", id, got, ok, label)
		}
	}

	if _, ok := lm.BlockFor("Draft D"); ok {
		t.Error("BlockFor of unassigned label should not resolve")
	}
}

func TestLabelMapCoversOnlyGivenDrafts(t *testing.T) {
	// 标签只对成功的草稿分配：失败的写作者在构造前就被剔除
	lm := NewLabelMap(testDrafts("opus", "gemini"))

	if lm.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", lm.Len())
	}
	if _, ok := lm.BlockFor("Draft C"); ok {
		t.Error("two drafts must not produce a third label")
	}
	if got, _ := lm.BlockFor("Draft B"); got != "gemini" {
		t.Errorf("Draft B = %q, want gemini", got)
	}
}

func TestLabelMapToMapIsACopy(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus"))

	m := lm.ToMap()
	m["Draft A"] = "tampered"

	if got, _ := lm.BlockFor("Draft A"); got != "opus" {
		t.Errorf("mutating ToMap() result leaked into the map: %q", got)
	}
}
