package council

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func unit(blockID, personaID string, ranking ...string) EvaluationUnit {
	return EvaluationUnit{
		BlockID:       blockID,
		BlockName:     "name-" + blockID,
		Model:         "model/" + blockID,
		PersonaID:     personaID,
		PersonaName:   "persona-" + personaID,
		Evaluation:    "full text",
		ParsedRanking: ranking,
	}
}

func TestAggregateRankings(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus", "gpt", "gemini"))

	t.Run("two identical rankings", func(t *testing.T) {
		units := []EvaluationUnit{
			unit("gemini", "business", "Draft B", "Draft A", "Draft C"),
			unit("gpt", "tv", "Draft B", "Draft A", "Draft C"),
		}
		got := AggregateRankings(units, lm)
		want := []AggregateEntry{
			{Label: "Draft B", BlockID: "gpt", AvgRank: 1, RankingsCount: 2},
			{Label: "Draft A", BlockID: "opus", AvgRank: 2, RankingsCount: 2},
			{Label: "Draft C", BlockID: "gemini", AvgRank: 3, RankingsCount: 2},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AggregateRankings() = %+v, want %+v", got, want)
		}
	})

	t.Run("absence is not a penalty", func(t *testing.T) {
		units := []EvaluationUnit{
			unit("gemini", "business", "Draft A", "Draft B"),
			unit("gpt", "tv", "Draft A"),
		}
		got := AggregateRankings(units, lm)
		want := []AggregateEntry{
			{Label: "Draft A", BlockID: "opus", AvgRank: 1, RankingsCount: 2},
			{Label: "Draft B", BlockID: "gpt", AvgRank: 2, RankingsCount: 1},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AggregateRankings() = %+v, want %+v", got, want)
		}
	})

	t.Run("unknown labels are ignored and take no rank", func(t *testing.T) {
		units := []EvaluationUnit{
			unit("gemini", "business", "Draft A", "Draft Z", "Draft B"),
		}
		got := AggregateRankings(units, lm)
		want := []AggregateEntry{
			{Label: "Draft A", BlockID: "opus", AvgRank: 1, RankingsCount: 1},
			{Label: "Draft B", BlockID: "gpt", AvgRank: 2, RankingsCount: 1},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AggregateRankings() = %+v, want %+v", got, want)
		}
	})

	t.Run("ties keep label assignment order", func(t *testing.T) {
		units := []EvaluationUnit{
			unit("gemini", "business", "Draft A", "Draft B"),
			unit("gpt", "tv", "Draft B", "Draft A"),
		}
		got := AggregateRankings(units, lm)
		if len(got) != 2 {
			t.Fatalf("got %d entries, want 2", len(got))
		}
		if got[0].Label != "Draft A" || got[1].Label != "Draft B" {
			t.Errorf("tied entries out of assignment order: %+v", got)
		}
	})

	t.Run("average is rounded to two decimals", func(t *testing.T) {
		units := []EvaluationUnit{
			unit("gemini", "business", "Draft A"),
			unit("gpt", "tv", "Draft B", "Draft A"),
			unit("opus", "web", "Draft B", "Draft A"),
		}
		got := AggregateRankings(units, lm)
		if got[1].Label != "Draft A" || got[1].AvgRank != 1.67 {
			t.Errorf("Draft A avg = %+v, want 1.67", got[1])
		}
	})

	t.Run("no evaluations yields no entries", func(t *testing.T) {
		got := AggregateRankings(nil, lm)
		if len(got) != 0 {
			t.Errorf("AggregateRankings(nil) = %+v, want empty", got)
		}
	})
}

func TestAggregateRankingsIsDeterministic(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus", "gpt", "gemini"))
	units := []EvaluationUnit{
		unit("gemini", "business", "Draft B", "Draft A"),
		unit("gpt", "tv", "Draft A", "Draft C", "Draft B"),
		unit("opus", "trade", "Draft C"),
	}

	first, err := json.Marshal(AggregateRankings(units, lm))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(AggregateRankings(units, lm))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different output:\n%s\nvs\n%s", i, first, again)
		}
	}
}

func TestPersonaBreakdown(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus", "gpt"))
	units := []EvaluationUnit{
		unit("gemini", "business", "Draft A", "Draft B"),
		unit("gpt", "business", "Draft A", "Draft B"),
		unit("gemini", "tv", "Draft B", "Draft A"),
	}

	got := PersonaBreakdown(units, lm)
	if len(got) != 2 {
		t.Fatalf("got %d personas, want 2", len(got))
	}
	if got["business"][0].Label != "Draft A" {
		t.Errorf("business top = %+v, want Draft A", got["business"][0])
	}
	if got["tv"][0].Label != "Draft B" {
		t.Errorf("tv top = %+v, want Draft B", got["tv"][0])
	}
	if got["business"][0].RankingsCount != 2 {
		t.Errorf("business Draft A count = %d, want 2", got["business"][0].RankingsCount)
	}
}

func TestBuildCrossTable(t *testing.T) {
	lm := NewLabelMap(testDrafts("opus", "gpt"))
	units := []EvaluationUnit{
		unit("gemini", "business", "Draft B", "Draft A"),
		unit("gemini", "tv", "Draft A"),
		unit("opus", "business", "Draft A", "Draft Z"),
	}

	got := BuildCrossTable(units, lm)

	wantHeaders := CrossTableHeaders{
		LLMs:     []string{"gemini", "opus"},
		Personas: []string{"business", "tv"},
		Drafts:   []string{"Draft A", "Draft B"},
	}
	if !reflect.DeepEqual(got.Headers, wantHeaders) {
		t.Errorf("Headers = %+v, want %+v", got.Headers, wantHeaders)
	}

	if got.Data["gemini"]["business"]["Draft B"] != 1 || got.Data["gemini"]["business"]["Draft A"] != 2 {
		t.Errorf("gemini/business cell = %+v", got.Data["gemini"]["business"])
	}
	if len(got.Data["gemini"]["tv"]) != 1 || got.Data["gemini"]["tv"]["Draft A"] != 1 {
		t.Errorf("gemini/tv cell = %+v", got.Data["gemini"]["tv"])
	}
	if _, ok := got.Data["opus"]["business"]["Draft Z"]; ok {
		t.Error("unknown label leaked into cross table")
	}
}
