// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"press-council-api/internal/config"
)

// CouncilDefaults 评议会默认设置
type CouncilDefaults struct {
	Mode           string `json:"mode"`
	CriticismLevel int    `json:"criticism_level"`
}

// ConfigResponse 评议会目录响应
type ConfigResponse struct {
	ModelBlocks     []config.ModelBlock     `json:"llm_blocks"`
	Personas        []config.Persona        `json:"personas"`
	Modes           []config.Mode           `json:"modes"`
	CriticismLevels []config.CriticismLevel `json:"criticism_levels"`
	Defaults        CouncilDefaults         `json:"defaults"`
}
