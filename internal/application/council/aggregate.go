package council

import (
	"math"
	"sort"
)

// AggregateRankings 汇总全部评审的平均名次
//
// 只统计标签映射内的标签，名次按已知标签在排名中的相对位置计；
// 某评审未排到某草稿时不计入该草稿的样本，缺席不等于差评。
// 无任何样本的草稿不出现在结果里。
// 平均名次升序排序；并列时按标签分配顺序保持稳定。
func AggregateRankings(units []EvaluationUnit, lm *LabelMap) []AggregateEntry {
	rankings := make(map[string][]int, lm.Len())
	for _, label := range lm.Labels() {
		rankings[label] = nil
	}

	for _, unit := range units {
		rank := 0
		for _, label := range unit.ParsedRanking {
			if _, known := rankings[label]; known {
				rank++
				rankings[label] = append(rankings[label], rank)
			}
		}
	}

	entries := make([]AggregateEntry, 0, lm.Len())
	for _, label := range lm.Labels() {
		positions := rankings[label]
		if len(positions) == 0 {
			continue
		}
		sum := 0
		for _, p := range positions {
			sum += p
		}
		avg := float64(sum) / float64(len(positions))
		blockID, _ := lm.BlockFor(label)
		entries = append(entries, AggregateEntry{
			Label:         label,
			BlockID:       blockID,
			AvgRank:       math.Round(avg*100) / 100,
			RankingsCount: len(positions),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AvgRank < entries[j].AvgRank
	})
	return entries
}

// PersonaBreakdown 按画像分组的汇总排名
func PersonaBreakdown(units []EvaluationUnit, lm *LabelMap) map[string][]AggregateEntry {
	byPersona := make(map[string][]EvaluationUnit)
	for _, unit := range units {
		byPersona[unit.PersonaID] = append(byPersona[unit.PersonaID], unit)
	}

	out := make(map[string][]AggregateEntry, len(byPersona))
	for personaID, personaUnits := range byPersona {
		out[personaID] = AggregateRankings(personaUnits, lm)
	}
	return out
}

// BuildCrossTable 构建评审模型 × 画像 × 草稿的名次交叉表
//
// 表头各维度升序；失败或未排到的格子不写入。
// 同一（模型 × 画像）出现多次时后写覆盖先写。
func BuildCrossTable(units []EvaluationUnit, lm *LabelMap) CrossTable {
	llmSet := make(map[string]bool)
	personaSet := make(map[string]bool)

	data := make(map[string]map[string]map[string]int)
	for _, unit := range units {
		llmSet[unit.BlockID] = true
		personaSet[unit.PersonaID] = true

		if data[unit.BlockID] == nil {
			data[unit.BlockID] = make(map[string]map[string]int)
		}
		cell := make(map[string]int, len(unit.ParsedRanking))
		rank := 0
		for _, label := range unit.ParsedRanking {
			if _, known := lm.BlockFor(label); known {
				rank++
				cell[label] = rank
			}
		}
		data[unit.BlockID][unit.PersonaID] = cell
	}

	return CrossTable{
		Headers: CrossTableHeaders{
			LLMs:     sortedKeys(llmSet),
			Personas: sortedKeys(personaSet),
			Drafts:   sortedCopy(lm.Labels()),
		},
		Data: data,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
