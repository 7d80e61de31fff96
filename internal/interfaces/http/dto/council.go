// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"press-council-api/internal/application/council"
	"press-council-api/internal/config"
)

// MatrixCellRequest 评估矩阵单元
type MatrixCellRequest struct {
	BlockID   string `json:"llm_id" binding:"required"`
	PersonaID string `json:"persona_id" binding:"required"`
}

// PressReleaseRequest 评议会运行请求
//
// mode 之外的字段均为可选覆盖；缺省时使用模式默认值。
type PressReleaseRequest struct {
	Content        string              `json:"content" binding:"required"`
	Mode           string              `json:"mode" binding:"omitempty,oneof=simple standard full"`
	Writers        []string            `json:"writers" binding:"omitempty,max=8"`
	Matrix         []MatrixCellRequest `json:"matrix" binding:"omitempty,max=40,dive"`
	Editor         string              `json:"editor"`
	CriticismLevel int                 `json:"criticism_level" binding:"omitempty,min=1,max=5"`
}

// ToCouncilRequest 转换为应用层请求
func (r *PressReleaseRequest) ToCouncilRequest() council.Request {
	var matrix []config.MatrixCell
	if r.Matrix != nil {
		matrix = make([]config.MatrixCell, 0, len(r.Matrix))
		for _, cell := range r.Matrix {
			matrix = append(matrix, config.MatrixCell{
				BlockID:   cell.BlockID,
				PersonaID: cell.PersonaID,
			})
		}
	}
	return council.Request{
		Content:        r.Content,
		Mode:           r.Mode,
		Writers:        r.Writers,
		Matrix:         matrix,
		Editor:         r.Editor,
		CriticismLevel: r.CriticismLevel,
	}
}

// PressReleaseResponse 同步运行响应
type PressReleaseResponse struct {
	ConversationID string          `json:"conversation_id"`
	Title          string          `json:"title,omitempty"`
	Result         *council.Result `json:"result"`
}

// EstimateRequest 成本与耗时估算请求
type EstimateRequest struct {
	Mode    string              `json:"mode" binding:"omitempty,oneof=simple standard full"`
	Writers []string            `json:"writers" binding:"omitempty,max=8"`
	Matrix  []MatrixCellRequest `json:"matrix" binding:"omitempty,max=40,dive"`
	Editor  string              `json:"editor"`
}

// EstimateResponse 成本与耗时估算响应
type EstimateResponse struct {
	EstimatedCost    int `json:"estimated_cost"`
	EstimatedTimeMin int `json:"estimated_time_min"`
}
