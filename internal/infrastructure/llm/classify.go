package llm

import (
	"context"
	"errors"
	"strings"

	apperrors "press-council-api/pkg/errors"
)

// ClassifyError 将网关错误归一化为带错误码的 AppError
//
// OpenRouter 经由 OpenAI 兼容层返回的错误只能按状态码与消息文本识别：
//   - 402 / insufficient credits -> 额度耗尽
//   - 408 / timeout              -> 超时
//   - 429 / rate limit           -> 限流
//   - 400/404 + model            -> 模型无效
//
// 上下文取消原样透传，由调用方决定语义。
func ClassifyError(err error, modelID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if apperrors.IsAppError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "model call timed out").
			WithDetail(modelID)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "402") || strings.Contains(msg, "insufficient credits") || strings.Contains(msg, "payment required"):
		return apperrors.Wrap(err, apperrors.CodeLLMCreditExhausted, "provider credits exhausted").
			WithDetail(modelID)
	case strings.Contains(msg, "408") || strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline exceeded"):
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "model call timed out").
			WithDetail(modelID)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return apperrors.Wrap(err, apperrors.CodeLLMRateLimited, "provider rate limited").
			WithDetail(modelID)
	case strings.Contains(msg, "model_not_found") || (strings.Contains(msg, "404") && strings.Contains(msg, "model")):
		return apperrors.Wrap(err, apperrors.CodeLLMInvalidModel, "model not available").
			WithDetail(modelID)
	case strings.Contains(msg, "400") && strings.Contains(msg, "model"):
		return apperrors.Wrap(err, apperrors.CodeLLMInvalidModel, "invalid model request").
			WithDetail(modelID)
	default:
		return apperrors.Wrap(err, apperrors.CodeLLMProviderError, "model call failed").
			WithDetail(modelID)
	}
}
