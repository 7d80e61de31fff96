package council

// labelAlphabet 草稿标签的字母序列；草稿数受目录规模约束，远小于 26
const labelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LabelMap 匿名标签与模型块的双射，按草稿顺序分配
//
// 只对阶段一成功的草稿分配标签；映射仅在内存中存活，
// 评审提示词里只出现标签，模型块的揭示发生在汇总阶段。
type LabelMap struct {
	labels  []string
	toBlock map[string]string
	toLabel map[string]string
}

// NewLabelMap 按草稿顺序分配 "Draft A"、"Draft B"…
func NewLabelMap(drafts []DraftArtifact) *LabelMap {
	m := &LabelMap{
		labels:  make([]string, 0, len(drafts)),
		toBlock: make(map[string]string, len(drafts)),
		toLabel: make(map[string]string, len(drafts)),
	}
	for i, d := range drafts {
		label := "Draft " + string(labelAlphabet[i])
		m.labels = append(m.labels, label)
		m.toBlock[label] = d.BlockID
		m.toLabel[d.BlockID] = label
	}
	return m
}

// Labels 返回分配顺序下的全部标签
func (m *LabelMap) Labels() []string {
	return m.labels
}

// BlockFor 按标签查模型块 ID
func (m *LabelMap) BlockFor(label string) (string, bool) {
	id, ok := m.toBlock[label]
	return id, ok
}

// LabelFor 按模型块 ID 查标签
func (m *LabelMap) LabelFor(blockID string) (string, bool) {
	label, ok := m.toLabel[blockID]
	return label, ok
}

// Len 标签数量
func (m *LabelMap) Len() int {
	return len(m.labels)
}

// ToMap 导出标签到模型块的映射副本
func (m *LabelMap) ToMap() map[string]string {
	out := make(map[string]string, len(m.toBlock))
	for label, id := range m.toBlock {
		out[label] = id
	}
	return out
}
