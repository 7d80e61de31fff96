package council

import (
	"regexp"
)

// rankingSectionRe 匹配 "FINAL RANKING:" 标记后的段落，直到空行或文本结尾。
// 标记大小写不敏感，兼容全角冒号。
var rankingSectionRe = regexp.MustCompile(`(?is)FINAL RANKING[：:]?[ \t]*\n(.*?)(?:\n\n|\z)`)

// draftLabelRe 草稿标签，大小写敏感
var draftLabelRe = regexp.MustCompile(`Draft ([A-Z])`)

// ParseRanking 从评审文本中提取有序的草稿标签
//
// 两级解析：优先取 FINAL RANKING 段落；标记缺失或段落内无标签时
// 退化为全文扫描。标签按首次出现顺序去重；不在已知集合内的标签
// 直接忽略，不占名次。解析不出任何标签返回空切片，不是错误。
func ParseRanking(text string, known []string) []string {
	knownSet := make(map[string]bool, len(known))
	for _, label := range known {
		knownSet[label] = true
	}

	if m := rankingSectionRe.FindStringSubmatch(text); m != nil {
		if labels := scanLabels(m[1], knownSet); len(labels) > 0 {
			return labels
		}
	}
	return scanLabels(text, knownSet)
}

// scanLabels 按首次出现顺序提取已知标签
func scanLabels(section string, known map[string]bool) []string {
	matches := draftLabelRe.FindAllStringSubmatch(section, -1)

	seen := make(map[string]bool, len(matches))
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		label := "Draft " + m[1]
		if !known[label] || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
