// Package council 实现三阶段新闻稿评议流程：
// 多模型独立起草 -> 匿名化多画像评审 -> 编辑合成终稿。
package council

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/schema"

	"press-council-api/internal/config"
	apperrors "press-council-api/pkg/errors"
)

// Invoker 单次模型调用的抽象，由 infrastructure/llm 提供实现
type Invoker interface {
	Invoke(ctx context.Context, modelID string, msgs []*schema.Message, timeout time.Duration) (string, error)
}

// Request 一次评议会运行的输入
//
// Writers / Matrix / Editor / CriticismLevel 为空时回退到模式默认值。
type Request struct {
	Content        string
	Mode           string
	Writers        []string
	Matrix         []config.MatrixCell
	Editor         string
	CriticismLevel int
}

// DraftArtifact 阶段一成功产出的一份草稿
type DraftArtifact struct {
	BlockID   string `json:"llm_id"`
	BlockName string `json:"llm_name"`
	Model     string `json:"model"`
	Content   string `json:"content"`
}

// EvaluationUnit 阶段二中一个（模型 × 画像）单元的成功产出
type EvaluationUnit struct {
	BlockID       string   `json:"llm_id"`
	BlockName     string   `json:"llm_name"`
	Model         string   `json:"model"`
	PersonaID     string   `json:"persona_id"`
	PersonaName   string   `json:"persona_name"`
	Evaluation    string   `json:"evaluation"`
	ParsedRanking []string `json:"parsed_ranking"`
}

// UnitFailure 阶段二失败单元的归类记录
type UnitFailure struct {
	BlockID   string          `json:"llm_id"`
	PersonaID string          `json:"persona_id,omitempty"`
	Category  FailureCategory `json:"category"`
	Message   string          `json:"message"`
}

// AggregateEntry 单份草稿的汇总排名
type AggregateEntry struct {
	Label         string  `json:"label"`
	BlockID       string  `json:"llm_id"`
	AvgRank       float64 `json:"avg_rank"`
	RankingsCount int     `json:"rankings_count"`
}

// CrossTableHeaders 交叉表的维度表头（各自升序）
type CrossTableHeaders struct {
	LLMs     []string `json:"llms"`
	Personas []string `json:"personas"`
	Drafts   []string `json:"drafts"`
}

// CrossTable 评审模型 × 画像 × 草稿的名次交叉表
// Data[blockID][personaID][label] = 名次（1 起）；未排到的格子缺省。
type CrossTable struct {
	Headers CrossTableHeaders                    `json:"headers"`
	Data    map[string]map[string]map[string]int `json:"data"`
}

// SynthesisResult 阶段三编辑合成的终稿
type SynthesisResult struct {
	BlockID   string `json:"llm_id"`
	BlockName string `json:"llm_name"`
	Model     string `json:"model"`
	Content   string `json:"content"`
}

// Metadata 一次运行的派生分析数据；仅随结果返回，从不落库
type Metadata struct {
	Mode              string                      `json:"mode"`
	CriticismLevel    int                         `json:"criticism_level"`
	Writers           []string                    `json:"writers"`
	Matrix            []config.MatrixCell         `json:"matrix"`
	Editor            string                      `json:"editor"`
	LabelToModel      map[string]string           `json:"label_to_model"`
	AggregateRankings []AggregateEntry            `json:"aggregate_rankings"`
	PersonaBreakdown  map[string][]AggregateEntry `json:"persona_breakdown"`
	CrossTable        CrossTable                  `json:"cross_table"`
	Failures          []UnitFailure               `json:"failures,omitempty"`
}

// Result 完整运行结果
type Result struct {
	Stage1   []DraftArtifact  `json:"stage1"`
	Stage2   []EvaluationUnit `json:"stage2"`
	Stage3   SynthesisResult  `json:"stage3"`
	Metadata Metadata         `json:"metadata"`
}

// FailureCategory 单元失败的归类，用于进度事件与统计
type FailureCategory string

const (
	FailureTransient         FailureCategory = "transient_error"
	FailureResourceExhausted FailureCategory = "resource_exhausted"
	FailureInvalidModel      FailureCategory = "invalid_model"
	FailureCancelled         FailureCategory = "cancelled"
	FailureUnknown           FailureCategory = "unknown"
)

// categorize 将归一化错误码折叠为失败类别；取消单列
func categorize(err error) FailureCategory {
	if errors.Is(err, context.Canceled) {
		return FailureCancelled
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeLLMTimeout, apperrors.CodeLLMRateLimited, apperrors.CodeLLMProviderError, apperrors.CodeLLMEmptyResponse:
		return FailureTransient
	case apperrors.CodeLLMCreditExhausted:
		return FailureResourceExhausted
	case apperrors.CodeLLMInvalidModel:
		return FailureInvalidModel
	default:
		return FailureUnknown
	}
}

// EventType 进度事件类型
type EventType string

const (
	EventConfig         EventType = "config"
	EventStage1Start    EventType = "stage1_start"
	EventStage1Complete EventType = "stage1_complete"
	EventStage2Start    EventType = "stage2_start"
	EventStage2Complete EventType = "stage2_complete"
	EventStage3Start    EventType = "stage3_start"
	EventStage3Complete EventType = "stage3_complete"
	EventTitleComplete  EventType = "title_complete"
	EventComplete       EventType = "complete"
	EventError          EventType = "error"
)

// Event 进度事件；Data 为事件相关负载
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// EventSink 进度事件回调；由协调器按阶段顺序同步调用
type EventSink func(Event)

// discardEvents 空回调，供不关心进度的调用方使用
func discardEvents(Event) {}
