package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"press-council-api/internal/config"
	apperrors "press-council-api/pkg/errors"
	"press-council-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// Invoker 封装单次模型调用：超时控制、指标与错误归一化。
// 每次调用只尝试一次，失败的恢复策略由上层按失败类别决定。
type Invoker struct {
	factory *EinoFactory
	config  *config.LLMConfig
}

// NewInvoker 创建模型调用器
func NewInvoker(factory *EinoFactory, cfg *config.Config) *Invoker {
	return &Invoker{
		factory: factory,
		config:  &cfg.LLM,
	}
}

// Invoke 调用指定网关模型并返回文本内容
//
// timeout 为本次调用上限，由调用的阶段决定。
// 返回的错误为带错误码的 AppError，上下文取消除外。
func (i *Invoker) Invoke(ctx context.Context, modelID string, msgs []*schema.Message, timeout time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Invoke",
		trace.WithAttributes(
			attribute.String("llm.model", modelID),
			attribute.Int64("llm.timeout_ms", timeout.Milliseconds()),
		))
	defer span.End()

	chatModel, err := i.factory.Get(ctx, modelID)
	if err != nil {
		span.RecordError(err)
		return "", apperrors.Wrap(err, apperrors.CodeLLMInvalidModel, "failed to build chat model").
			WithDetail(modelID)
	}

	if timeout <= 0 {
		timeout = i.config.UnitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	out, genErr := chatModel.Generate(ctx, msgs)
	if genErr != nil {
		callErr := classifyWithContext(ctx, genErr, modelID)
		metrics.LLMCallDuration.WithLabelValues(modelID).Observe(time.Since(start).Seconds())
		metrics.LLMCallsTotal.WithLabelValues(modelID, "error").Inc()
		span.RecordError(callErr)
		return "", callErr
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		emptyErr := apperrors.New(apperrors.CodeLLMEmptyResponse, "model returned empty content").
			WithDetail(modelID)
		metrics.LLMCallDuration.WithLabelValues(modelID).Observe(time.Since(start).Seconds())
		metrics.LLMCallsTotal.WithLabelValues(modelID, "error").Inc()
		span.RecordError(emptyErr)
		return "", emptyErr
	}

	metrics.LLMCallDuration.WithLabelValues(modelID).Observe(time.Since(start).Seconds())
	metrics.LLMCallsTotal.WithLabelValues(modelID, "success").Inc()
	span.SetAttributes(attribute.Int("llm.content_length", len(content)))
	return content, nil
}

// classifyWithContext 在归一化前优先识别调用方的取消与超时
func classifyWithContext(ctx context.Context, err error, modelID string) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "model call timed out").
			WithDetail(modelID)
	}
	return ClassifyError(err, modelID)
}
