package council

import (
	"context"
	"strings"

	"press-council-api/internal/domain/entity"
	"press-council-api/internal/workflow/prompt"
	"press-council-api/pkg/logger"
)

const maxTitleRunes = 50

// GenerateTitle 用快速模型为会话生成短标题
//
// 标题是锦上添花：任何失败都回退到默认标题，从不向上报错。
func (c *Coordinator) GenerateTitle(ctx context.Context, content string) string {
	tpl, err := c.prompts.ChatTemplate(prompt.PromptTitleV1)
	if err != nil {
		return entity.DefaultConversationTitle
	}
	msgs, err := tpl.Format(ctx, map[string]any{"content": content})
	if err != nil {
		return entity.DefaultConversationTitle
	}

	out, err := c.invoker.Invoke(ctx, c.cfg.LLM.TitleModel, msgs, c.cfg.LLM.TitleTimeout)
	if err != nil {
		logger.Warn(ctx, "title generation failed, using default",
			"model", c.cfg.LLM.TitleModel,
			"error", err.Error(),
		)
		return entity.DefaultConversationTitle
	}

	title := strings.Trim(strings.TrimSpace(out), `"'`)
	if title == "" {
		return entity.DefaultConversationTitle
	}
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}
