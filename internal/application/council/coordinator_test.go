package council

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"press-council-api/internal/config"
	"press-council-api/internal/domain/entity"
	"press-council-api/internal/workflow/prompt"
	apperrors "press-council-api/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			UnitTimeout:      5 * time.Second,
			SynthesisTimeout: 5 * time.Second,
			TitleTimeout:     time.Second,
			TitleModel:       "google/gemini-3-pro-preview",
		},
		Council: config.CouncilConfig{
			DefaultMode:           "standard",
			DefaultCriticismLevel: 3,
		},
	}
}

// fakeInvoker 按提示词内容识别阶段并回放脚本化响应
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []string
	respond func(stage, modelID string, msgs []*schema.Message) (string, error)
}

func (f *fakeInvoker) Invoke(ctx context.Context, modelID string, msgs []*schema.Message, _ time.Duration) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, modelID)
	f.mu.Unlock()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return f.respond(stageOf(msgs), modelID, msgs)
}

func stageOf(msgs []*schema.Message) string {
	sys := msgs[0].Content
	switch {
	case strings.Contains(sys, "communications writer"):
		return "draft"
	// 编辑提示词里也提到 journalists，必须先判编辑
	case strings.Contains(sys, "editor-in-chief"):
		return "edit"
	case strings.Contains(sys, "journalist"):
		return "review"
	default:
		return "title"
	}
}

func (f *fakeInvoker) callCount(modelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == modelID {
			n++
		}
	}
	return n
}

func newTestCoordinator(respond func(stage, modelID string, msgs []*schema.Message) (string, error)) (*Coordinator, *fakeInvoker) {
	inv := &fakeInvoker{respond: respond}
	return NewCoordinator(inv, prompt.NewRegistry(), testConfig()), inv
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestCoordinatorRunHappyPath(t *testing.T) {
	coord, _ := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			return "Solid work overall.\n\nFINAL RANKING:\n1. Draft B\n2. Draft A\n3. Draft C\n", nil
		case "edit":
			return "the final press release", nil
		}
		return "", errors.New("unexpected stage " + stage)
	})

	var events []Event
	result, err := coord.Run(context.Background(), Request{
		Content: "Launch of product X",
		Writers: []string{"opus", "gpt", "gemini"},
		Matrix: []config.MatrixCell{
			{BlockID: "gemini", PersonaID: "business"},
			{BlockID: "gpt", PersonaID: "tv"},
		},
		Editor:         "opus",
		CriticismLevel: 4,
	}, func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage1) != 3 {
		t.Fatalf("got %d drafts, want 3", len(result.Stage1))
	}
	for i, wantID := range []string{"opus", "gpt", "gemini"} {
		if result.Stage1[i].BlockID != wantID {
			t.Errorf("draft %d block = %q, want %q", i, result.Stage1[i].BlockID, wantID)
		}
	}

	wantMapping := map[string]string{"Draft A": "opus", "Draft B": "gpt", "Draft C": "gemini"}
	for label, id := range wantMapping {
		if result.Metadata.LabelToModel[label] != id {
			t.Errorf("label %q maps to %q, want %q", label, result.Metadata.LabelToModel[label], id)
		}
	}

	agg := result.Metadata.AggregateRankings
	if len(agg) != 3 || agg[0].Label != "Draft B" || agg[0].AvgRank != 1 || agg[0].RankingsCount != 2 {
		t.Errorf("aggregate rankings = %+v", agg)
	}

	if result.Stage3.BlockID != "opus" || result.Stage3.Content != "the final press release" {
		t.Errorf("stage3 = %+v", result.Stage3)
	}
	if result.Metadata.CriticismLevel != 4 {
		t.Errorf("criticism level = %d, want 4", result.Metadata.CriticismLevel)
	}

	wantOrder := []EventType{
		EventConfig,
		EventStage1Start, EventStage1Complete,
		EventStage2Start, EventStage2Complete,
		EventStage3Start, EventStage3Complete,
		EventComplete,
	}
	got := eventTypes(events)
	if len(got) != len(wantOrder) {
		t.Fatalf("event sequence = %v, want %v", got, wantOrder)
	}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("event %d = %s, want %s (full: %v)", i, got[i], wantOrder[i], got)
		}
	}

	if d := events[1].Data.(map[string]any); d["writer_count"] != 3 {
		t.Errorf("stage1_start writer_count = %v, want 3", d["writer_count"])
	}
	if d := events[3].Data.(map[string]any); d["evaluation_count"] != 2 {
		t.Errorf("stage2_start evaluation_count = %v, want 2", d["evaluation_count"])
	}
}

func TestCoordinatorWriterFailureIsIsolated(t *testing.T) {
	coord, _ := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			if strings.Contains(modelID, "gpt") {
				return "", apperrors.New(apperrors.CodeLLMTimeout, "model call timed out")
			}
			return "draft by " + modelID, nil
		case "review":
			// 评审引用了不存在的 Draft C，汇总时应被忽略
			return "FINAL RANKING:\n1. Draft A\n2. Draft C\n3. Draft B\n", nil
		case "edit":
			return "final", nil
		}
		return "", errors.New("unexpected stage")
	})

	result, err := coord.Run(context.Background(), Request{
		Content: "announce the merger",
		Writers: []string{"opus", "gpt", "gemini"},
		Matrix:  []config.MatrixCell{{BlockID: "gemini", PersonaID: "business"}},
		Editor:  "opus",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage1) != 2 {
		t.Fatalf("got %d drafts, want 2", len(result.Stage1))
	}
	if len(result.Metadata.LabelToModel) != 2 {
		t.Errorf("label map = %v, want 2 entries", result.Metadata.LabelToModel)
	}
	if result.Metadata.LabelToModel["Draft B"] != "gemini" {
		t.Errorf("Draft B = %q, want gemini", result.Metadata.LabelToModel["Draft B"])
	}

	for _, e := range result.Metadata.AggregateRankings {
		if e.Label == "Draft C" {
			t.Error("phantom Draft C made it into aggregate rankings")
		}
	}
	// 幻影 Draft C 不占名次，Draft B 顺位补到第 2
	for _, e := range result.Metadata.AggregateRankings {
		if e.Label == "Draft B" && e.AvgRank != 2 {
			t.Errorf("Draft B avg = %v, want 2", e.AvgRank)
		}
	}

	var found bool
	for _, f := range result.Metadata.Failures {
		if f.BlockID == "gpt" && f.Category == FailureTransient {
			found = true
		}
	}
	if !found {
		t.Errorf("failures = %+v, want gpt/transient_error", result.Metadata.Failures)
	}
}

func TestCoordinatorEvaluationWithoutRankingStillSucceeds(t *testing.T) {
	coord, _ := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			return "Interesting release, but I will not order them.", nil
		case "edit":
			return "final", nil
		}
		return "", errors.New("unexpected stage")
	})

	result, err := coord.Run(context.Background(), Request{
		Content: "new office opening",
		Writers: []string{"opus", "gemini"},
		Matrix:  []config.MatrixCell{{BlockID: "gpt", PersonaID: "web"}},
		Editor:  "gemini",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage2) != 1 {
		t.Fatalf("got %d evaluations, want 1", len(result.Stage2))
	}
	if len(result.Stage2[0].ParsedRanking) != 0 {
		t.Errorf("parsed ranking = %v, want empty", result.Stage2[0].ParsedRanking)
	}
	if len(result.Metadata.AggregateRankings) != 0 {
		t.Errorf("aggregate rankings = %+v, want empty", result.Metadata.AggregateRankings)
	}
	if result.Stage3.Content != "final" {
		t.Errorf("stage3 did not run: %+v", result.Stage3)
	}
}

func TestCoordinatorAllWritersFailCompletesEmpty(t *testing.T) {
	var reviewCalls int
	coord, _ := newTestCoordinator(func(stage, _ string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "", apperrors.New(apperrors.CodeLLMProviderError, "gateway down")
		case "review":
			reviewCalls++
			return "should never be asked", nil
		case "edit":
			return "editor wrote it alone", nil
		}
		return "", errors.New("unexpected stage")
	})

	var events []Event
	result, err := coord.Run(context.Background(), Request{
		Content: "anything",
		Writers: []string{"opus", "gpt"},
		Matrix:  []config.MatrixCell{{BlockID: "gemini", PersonaID: "web"}},
		Editor:  "opus",
	}, func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage1) != 0 {
		t.Errorf("got %d drafts, want 0", len(result.Stage1))
	}
	if reviewCalls != 0 {
		t.Errorf("got %d review calls with zero drafts, want 0", reviewCalls)
	}
	if len(result.Stage2) != 0 {
		t.Errorf("got %d evaluations, want 0", len(result.Stage2))
	}
	if len(result.Metadata.AggregateRankings) != 0 || len(result.Metadata.CrossTable.Data) != 0 {
		t.Error("aggregates must be empty with zero drafts")
	}
	if len(result.Metadata.Failures) != 2 {
		t.Errorf("got %d failures, want 2", len(result.Metadata.Failures))
	}
	if result.Stage3.Content != "editor wrote it alone" {
		t.Errorf("stage3 content = %q", result.Stage3.Content)
	}

	if !hasEvent(events, EventStage1Complete) || !hasEvent(events, EventStage2Complete) {
		t.Error("both stage completion events must still be emitted")
	}
	if events[len(events)-1].Type != EventComplete {
		t.Errorf("last event = %s, want complete", events[len(events)-1].Type)
	}
}

func TestCoordinatorSynthesisFailureIsFatal(t *testing.T) {
	coord, _ := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			return "FINAL RANKING:\n1. Draft A\n2. Draft B\n", nil
		case "edit":
			return "", apperrors.New(apperrors.CodeLLMCreditExhausted, "provider credits exhausted")
		}
		return "", errors.New("unexpected stage")
	})

	var events []Event
	_, err := coord.Run(context.Background(), Request{
		Content: "quarterly results",
		Writers: []string{"opus", "gemini"},
		Matrix:  []config.MatrixCell{{BlockID: "gpt", PersonaID: "business"}},
		Editor:  "opus",
	}, func(e Event) { events = append(events, e) })
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if apperrors.CodeOf(err) != apperrors.CodeLLMCreditExhausted {
		t.Errorf("error code = %v, want credit exhausted", apperrors.CodeOf(err))
	}

	if hasEvent(events, EventStage3Complete) || hasEvent(events, EventComplete) {
		t.Error("synthesis failure must not produce completion events")
	}
	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("last event = %s, want error", last.Type)
	}
	data := last.Data.(map[string]any)
	if data["is_credit_error"] != true {
		t.Errorf("error event data = %v, want is_credit_error=true", data)
	}
	if data["category"] != string(FailureResourceExhausted) {
		t.Errorf("error category = %v, want resource_exhausted", data["category"])
	}
}

func TestCoordinatorCancellationMidEvaluation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// gpt 单元先评完，gemini 单元等它返回后再触发取消：
	// 已完成的评审必须随局部结果交还，而不是被丢弃
	firstDone := make(chan struct{})
	coord, _ := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			if strings.Contains(modelID, "gemini") {
				<-firstDone
				cancel()
				return "", context.Canceled
			}
			defer close(firstDone)
			return "FINAL RANKING:\n1. Draft A\n2. Draft B\n", nil
		}
		return "", errors.New("stage 3 must not run after cancellation")
	})

	var events []Event
	result, err := coord.Run(ctx, Request{
		Content: "recall notice",
		Writers: []string{"opus", "gemini"},
		Matrix: []config.MatrixCell{
			{BlockID: "gpt", PersonaID: "business"},
			{BlockID: "gemini", PersonaID: "tv"},
		},
		Editor: "opus",
	}, func(e Event) { events = append(events, e) })

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil result, completed work must survive cancellation")
	}

	if len(result.Stage1) != 2 {
		t.Errorf("got %d drafts, want 2", len(result.Stage1))
	}
	if len(result.Stage2) != 1 {
		t.Fatalf("got %d evaluations, want exactly the completed one", len(result.Stage2))
	}
	if result.Stage2[0].BlockID != "gpt" || len(result.Stage2[0].ParsedRanking) != 2 {
		t.Errorf("surviving evaluation = %+v", result.Stage2[0])
	}
	agg := result.Metadata.AggregateRankings
	if len(agg) != 2 || agg[0].Label != "Draft A" || agg[0].AvgRank != 1 {
		t.Errorf("aggregate rankings over completed units = %+v", agg)
	}
	if result.Stage3.Content != "" {
		t.Errorf("stage 3 ran after cancellation: %+v", result.Stage3)
	}

	var cancelled bool
	for _, f := range result.Metadata.Failures {
		if f.BlockID == "gemini" && f.PersonaID == "tv" && f.Category == FailureCancelled {
			cancelled = true
		}
	}
	if !cancelled {
		t.Errorf("failures = %+v, want gemini/tv marked cancelled", result.Metadata.Failures)
	}

	if hasEvent(events, EventStage2Complete) || hasEvent(events, EventStage3Start) {
		t.Error("cancellation mid evaluation must stop before stage 2 completion")
	}
	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("last event = %s, want error", last.Type)
	}
	if data := last.Data.(map[string]any); data["category"] != string(FailureCancelled) {
		t.Errorf("error category = %v, want cancelled", data["category"])
	}
}

func TestCoordinatorDuplicateWritersDeduped(t *testing.T) {
	coord, inv := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			return "FINAL RANKING:\n1. Draft B\n2. Draft A\n", nil
		case "edit":
			return "final", nil
		}
		return "", errors.New("unexpected stage")
	})

	result, err := coord.Run(context.Background(), Request{
		Content: "press kit refresh",
		Writers: []string{"opus", "opus", "gemini", "opus"},
		Matrix:  []config.MatrixCell{{BlockID: "gpt", PersonaID: "web"}},
		Editor:  "opus",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage1) != 2 {
		t.Fatalf("got %d drafts, want duplicates collapsed to 2", len(result.Stage1))
	}
	// opus 只起草一次，编辑阶段再调一次
	if n := inv.callCount("anthropic/claude-opus-4.5"); n != 2 {
		t.Errorf("opus called %d times, want 2", n)
	}

	wantWriters := []string{"opus", "gemini"}
	if len(result.Metadata.Writers) != len(wantWriters) {
		t.Fatalf("writers = %v, want %v", result.Metadata.Writers, wantWriters)
	}
	for i, id := range wantWriters {
		if result.Metadata.Writers[i] != id {
			t.Errorf("writer %d = %q, want %q", i, result.Metadata.Writers[i], id)
		}
	}

	// 标签映射保持双射：一个标签恰好对应一个模型块
	wantMapping := map[string]string{"Draft A": "opus", "Draft B": "gemini"}
	if len(result.Metadata.LabelToModel) != len(wantMapping) {
		t.Fatalf("label map = %v, want %v", result.Metadata.LabelToModel, wantMapping)
	}
	for label, id := range wantMapping {
		if result.Metadata.LabelToModel[label] != id {
			t.Errorf("label %q maps to %q, want %q", label, result.Metadata.LabelToModel[label], id)
		}
	}
}

func TestCoordinatorUnknownModeAndEditor(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "unknown mode",
			req:      Request{Content: "x", Mode: "turbo"},
			wantCode: apperrors.CodeModeNotFound,
		},
		{
			name:     "unknown editor",
			req:      Request{Content: "x", Mode: "simple", Editor: "nonexistent"},
			wantCode: apperrors.CodeModelBlockNotFound,
		},
		{
			name:     "all writers unknown",
			req:      Request{Content: "x", Mode: "simple", Writers: []string{"nope", "nada"}},
			wantCode: apperrors.CodeEmptyWriterSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, inv := newTestCoordinator(func(stage, _ string, _ []*schema.Message) (string, error) {
				return "", errors.New("no model call expected")
			})

			var events []Event
			_, err := coord.Run(context.Background(), tt.req, func(e Event) { events = append(events, e) })
			if apperrors.CodeOf(err) != tt.wantCode {
				t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), tt.wantCode)
			}
			if len(inv.calls) != 0 {
				t.Errorf("made %d model calls before failing validation", len(inv.calls))
			}
			if len(events) != 1 || events[0].Type != EventError {
				t.Errorf("events = %v, want single error event", eventTypes(events))
			}
		})
	}
}

func TestCoordinatorModeDefaults(t *testing.T) {
	coord, inv := newTestCoordinator(func(stage, modelID string, _ []*schema.Message) (string, error) {
		switch stage {
		case "draft":
			return "draft by " + modelID, nil
		case "review":
			return "FINAL RANKING:\n1. Draft A\n2. Draft B\n3. Draft C\n", nil
		case "edit":
			return "final", nil
		}
		return "", errors.New("unexpected stage")
	})

	result, err := coord.Run(context.Background(), Request{
		Content: "product launch",
		Mode:    "simple",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Stage1) != 3 {
		t.Errorf("got %d drafts, want 3 simple-mode writers", len(result.Stage1))
	}
	if len(result.Stage2) != 5 {
		t.Errorf("got %d evaluations, want 5 simple-mode cells", len(result.Stage2))
	}
	if result.Metadata.Editor != "gemini" {
		t.Errorf("editor = %q, want simple-mode default gemini", result.Metadata.Editor)
	}
	if result.Metadata.CriticismLevel != 3 {
		t.Errorf("criticism level = %d, want config default 3", result.Metadata.CriticismLevel)
	}
	// 3 次起草 + 5 次评审 + 1 次合成
	if len(inv.calls) != 9 {
		t.Errorf("made %d model calls, want 9", len(inv.calls))
	}
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		name    string
		respond func(stage, modelID string, msgs []*schema.Message) (string, error)
		want    string
	}{
		{
			name: "plain title",
			respond: func(_, _ string, _ []*schema.Message) (string, error) {
				return "Product X Launch", nil
			},
			want: "Product X Launch",
		},
		{
			name: "quotes stripped",
			respond: func(_, _ string, _ []*schema.Message) (string, error) {
				return `"Quarterly Results Announcement"`, nil
			},
			want: "Quarterly Results Announcement",
		},
		{
			name: "long title truncated",
			respond: func(_, _ string, _ []*schema.Message) (string, error) {
				return strings.Repeat("a", 60), nil
			},
			want: strings.Repeat("a", 47) + "...",
		},
		{
			name: "error falls back to default",
			respond: func(_, _ string, _ []*schema.Message) (string, error) {
				return "", apperrors.New(apperrors.CodeLLMTimeout, "timed out")
			},
			want: entity.DefaultConversationTitle,
		},
		{
			name: "empty response falls back to default",
			respond: func(_, _ string, _ []*schema.Message) (string, error) {
				return "  ", nil
			},
			want: entity.DefaultConversationTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, _ := newTestCoordinator(tt.respond)
			if got := coord.GenerateTitle(context.Background(), "launch announcement"); got != tt.want {
				t.Errorf("GenerateTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
