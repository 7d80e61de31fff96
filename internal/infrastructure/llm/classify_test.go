package llm

import (
	"context"
	"errors"
	"testing"

	apperrors "press-council-api/pkg/errors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{
			name: "credit exhaustion by status code",
			err:  errors.New("request failed: status 402 Payment Required"),
			want: apperrors.CodeLLMCreditExhausted,
		},
		{
			name: "credit exhaustion by wording",
			err:  errors.New("Insufficient credits to complete request"),
			want: apperrors.CodeLLMCreditExhausted,
		},
		{
			name: "rate limited",
			err:  errors.New("429 Too Many Requests"),
			want: apperrors.CodeLLMRateLimited,
		},
		{
			name: "provider timeout wording",
			err:  errors.New("upstream request timed out"),
			want: apperrors.CodeLLMTimeout,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: apperrors.CodeLLMTimeout,
		},
		{
			name: "unknown model",
			err:  errors.New("404: model_not_found"),
			want: apperrors.CodeLLMInvalidModel,
		},
		{
			name: "bad model request",
			err:  errors.New("400 Bad Request: model is not a valid model ID"),
			want: apperrors.CodeLLMInvalidModel,
		},
		{
			name: "anything else is a provider error",
			err:  errors.New("connection reset by peer"),
			want: apperrors.CodeLLMProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, "some/model")
			if apperrors.CodeOf(got) != tt.want {
				t.Errorf("ClassifyError(%q) code = %v, want %v", tt.err, apperrors.CodeOf(got), tt.want)
			}
		})
	}
}

func TestClassifyErrorPassthrough(t *testing.T) {
	if got := ClassifyError(context.Canceled, "m"); !errors.Is(got, context.Canceled) {
		t.Errorf("cancellation must pass through, got %v", got)
	}

	appErr := apperrors.New(apperrors.CodeLLMRateLimited, "already classified")
	if got := ClassifyError(appErr, "m"); got != appErr {
		t.Errorf("classified errors must pass through, got %v", got)
	}
}
