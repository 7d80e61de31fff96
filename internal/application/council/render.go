package council

import (
	"fmt"
	"strings"
)

// renderAnonymizedDrafts 按标签顺序拼接草稿，供评审与编辑提示词使用。
// 输出只含标签，不含模型信息。
func renderAnonymizedDrafts(lm *LabelMap, drafts []DraftArtifact) string {
	if len(drafts) == 0 {
		return "(no drafts available)"
	}
	var b strings.Builder
	for i, d := range drafts {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", lm.labels[i], d.Content)
	}
	return strings.TrimSpace(b.String())
}

// renderEvaluations 拼接全部评审全文，按画像与评审模型署名
func renderEvaluations(units []EvaluationUnit) string {
	if len(units) == 0 {
		return "(no evaluations available)"
	}
	var b strings.Builder
	for _, u := range units {
		fmt.Fprintf(&b, "--- Review by %s (%s) ---\n%s\n\n", u.PersonaName, u.BlockName, u.Evaluation)
	}
	return strings.TrimSpace(b.String())
}

// renderRankings 拼接汇总排名；只暴露标签，保持匿名一致性
func renderRankings(entries []AggregateEntry) string {
	if len(entries) == 0 {
		return "(no rankings available)"
	}
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (average rank %.2f across %d rankings)\n", i+1, e.Label, e.AvgRank, e.RankingsCount)
	}
	return strings.TrimSpace(b.String())
}
