// Package config 提供配置加载和管理功能
package config

// 本文件定义评议会目录：模型块、记者画像、模式与批评强度。
// 目录是代码内置的静态数据，前端通过 /v1/config 读取。

// ModelBlock 单个模型块定义
type ModelBlock struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Provider    string  `json:"provider"`
	Tier        string  `json:"tier"`
	Description string  `json:"description,omitempty"`
	CostFactor  float64 `json:"cost_factor"`
}

// Persona 记者画像定义
type Persona struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MediaType     string   `json:"media_type"`
	OutletExample string   `json:"outlet_example"`
	FocusAreas    []string `json:"focus_areas"`
	Tone          string   `json:"tone"`
	Description   string   `json:"description"`
	CriticismBase int      `json:"criticism_base"`
}

// MatrixCell 评估矩阵单元：哪个模型块以哪个画像评审
type MatrixCell struct {
	BlockID   string `json:"llm_id"`
	PersonaID string `json:"persona_id"`
}

// Mode 模式定义
type Mode struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	DefaultWriters   []string     `json:"default_writers"`
	DefaultMatrix    []MatrixCell `json:"default_matrix"`
	DefaultEditor    string       `json:"default_editor"`
	EstimatedTimeMin int          `json:"estimated_time_min"`
	EstimatedCost    int          `json:"estimated_cost"`
}

// CriticismLevel 批评强度定义
type CriticismLevel struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Instruction 注入评审提示词的严格度指示
	Instruction string `json:"-"`
}

var modelBlocks = []ModelBlock{
	{
		ID:          "opus",
		Name:        "Claude Opus 4.5",
		Model:       "anthropic/claude-opus-4.5",
		Provider:    "Anthropic",
		Tier:        "premium",
		Description: "highest quality drafting",
		CostFactor:  3.0,
	},
	{
		ID:          "gpt",
		Name:        "GPT-5.1",
		Model:       "openai/gpt-5.1",
		Provider:    "OpenAI",
		Tier:        "premium",
		Description: "balanced",
		CostFactor:  2.0,
	},
	{
		ID:          "gemini",
		Name:        "Gemini Pro",
		Model:       "google/gemini-3-pro-preview",
		Provider:    "Google",
		Tier:        "standard",
		Description: "concise",
		CostFactor:  1.0,
	},
	{
		ID:          "grok",
		Name:        "Grok 4.1",
		Model:       "x-ai/grok-4.1-fast",
		Provider:    "xAI",
		Tier:        "premium",
		Description: "distinct viewpoint",
		CostFactor:  2.0,
	},
}

var personas = []Persona{
	{
		ID:            "business",
		Name:          "Business Desk Reporter",
		MediaType:     "financial daily",
		OutletExample: "Nikkei / Financial Times",
		FocusAreas:    []string{"corporate value", "market impact", "strategy", "accuracy of figures"},
		Tone:          "objective, analytical",
		Description:   "Covers corporate news for a financial daily; weighs enterprise value and market impact above all.",
		CriticismBase: 4,
	},
	{
		ID:            "lifestyle",
		Name:          "Lifestyle Desk Reporter",
		MediaType:     "national paper",
		OutletExample: "Asahi / Mainichi lifestyle desk",
		FocusAreas:    []string{"consumer perspective", "everyday impact", "clarity", "social relevance"},
		Tone:          "approachable, empathetic",
		Description:   "Writes for general readers; judges releases by what they mean for consumers.",
		CriticismBase: 3,
	},
	{
		ID:            "web",
		Name:          "Web Media Reporter",
		MediaType:     "online tech media",
		OutletExample: "ITmedia / Impress Watch",
		FocusAreas:    []string{"technical novelty", "industry trends", "readability", "search visibility"},
		Tone:          "casual, engaging",
		Description:   "Covers the tech beat online; values technical accuracy and trend awareness.",
		CriticismBase: 3,
	},
	{
		ID:            "trade",
		Name:          "Trade Press Reporter",
		MediaType:     "industry journal",
		OutletExample: "Nikkan Kogyo / Dempa Shimbun",
		FocusAreas:    []string{"technical detail", "industry dynamics", "terminology accuracy", "sector impact"},
		Tone:          "specialist, technical",
		Description:   "Digs into technical substance and what the announcement changes for the industry.",
		CriticismBase: 5,
	},
	{
		ID:            "tv",
		Name:          "Business TV Reporter",
		MediaType:     "television",
		OutletExample: "WBS / NHK economy desk",
		FocusAreas:    []string{"viewer interest", "visual potential", "catchiness", "social impact"},
		Tone:          "plain, impact-driven",
		Description:   "Thinks in broadcast segments; wants a clear hook an audience grasps in seconds.",
		CriticismBase: 2,
	},
}

var modes = []Mode{
	{
		ID:             "simple",
		Name:           "Simple",
		Description:    "3 writers, 5 evaluations. For a quick look at the result.",
		DefaultWriters: []string{"opus", "gpt", "gemini"},
		DefaultMatrix: []MatrixCell{
			{BlockID: "opus", PersonaID: "business"},
			{BlockID: "gemini", PersonaID: "lifestyle"},
			{BlockID: "gpt", PersonaID: "web"},
			{BlockID: "opus", PersonaID: "trade"},
			{BlockID: "gemini", PersonaID: "tv"},
		},
		DefaultEditor:    "gemini",
		EstimatedTimeMin: 1,
		EstimatedCost:    60,
	},
	{
		ID:             "standard",
		Name:           "Standard",
		Description:    "3 writers, 10 evaluations. Balanced default.",
		DefaultWriters: []string{"opus", "gpt", "gemini"},
		DefaultMatrix: []MatrixCell{
			{BlockID: "opus", PersonaID: "business"},
			{BlockID: "gpt", PersonaID: "business"},
			{BlockID: "gpt", PersonaID: "lifestyle"},
			{BlockID: "gemini", PersonaID: "lifestyle"},
			{BlockID: "gpt", PersonaID: "web"},
			{BlockID: "grok", PersonaID: "web"},
			{BlockID: "opus", PersonaID: "trade"},
			{BlockID: "gpt", PersonaID: "trade"},
			{BlockID: "gemini", PersonaID: "tv"},
			{BlockID: "grok", PersonaID: "tv"},
		},
		DefaultEditor:    "opus",
		EstimatedTimeMin: 2,
		EstimatedCost:    100,
	},
	{
		ID:               "full",
		Name:             "Full",
		Description:      "4 writers, 20 evaluations. Every model against every persona.",
		DefaultWriters:   []string{"opus", "gpt", "gemini", "grok"},
		DefaultMatrix:    fullMatrix(),
		DefaultEditor:    "opus",
		EstimatedTimeMin: 5,
		EstimatedCost:    200,
	},
}

// fullMatrix 全模型 × 全画像
func fullMatrix() []MatrixCell {
	blocks := []string{"opus", "gpt", "gemini", "grok"}
	personaIDs := []string{"business", "lifestyle", "web", "trade", "tv"}
	cells := make([]MatrixCell, 0, len(blocks)*len(personaIDs))
	for _, b := range blocks {
		for _, p := range personaIDs {
			cells = append(cells, MatrixCell{BlockID: b, PersonaID: p})
		}
	}
	return cells
}

var criticismLevels = []CriticismLevel{
	{
		Level:       1,
		Name:        "most lenient",
		Description: "positive, encouraging review",
		Instruction: "Be lenient. Emphasize strengths; mention only the most significant weaknesses briefly.",
	},
	{
		Level:       2,
		Name:        "lenient",
		Description: "somewhat lenient review",
		Instruction: "Lean positive. Note weaknesses, but keep criticism proportionate and constructive.",
	},
	{
		Level:       3,
		Name:        "standard",
		Description: "balanced review",
		Instruction: "Apply your normal professional standard. Weigh strengths and weaknesses evenly.",
	},
	{
		Level:       4,
		Name:        "strict",
		Description: "somewhat strict review",
		Instruction: "Be demanding. Scrutinize claims and call out anything vague, inflated or unsupported.",
	},
	{
		Level:       5,
		Name:        "most strict",
		Description: "harshest scrutiny of every detail",
		Instruction: "Be maximally severe. Challenge every claim, every figure and every wording choice as the toughest desk editor would.",
	},
}

// ModelBlocks 返回全部模型块（请求顺序稳定）
func ModelBlocks() []ModelBlock {
	return modelBlocks
}

// Personas 返回全部记者画像
func Personas() []Persona {
	return personas
}

// Modes 返回全部模式
func Modes() []Mode {
	return modes
}

// CriticismLevels 返回全部批评强度
func CriticismLevels() []CriticismLevel {
	return criticismLevels
}

// GetModelBlock 按 ID 查找模型块
func GetModelBlock(id string) (ModelBlock, bool) {
	for _, b := range modelBlocks {
		if b.ID == id {
			return b, true
		}
	}
	return ModelBlock{}, false
}

// GetPersona 按 ID 查找记者画像
func GetPersona(id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// GetMode 按 ID 查找模式
func GetMode(id string) (Mode, bool) {
	for _, m := range modes {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

// GetCriticismLevel 按强度查找，越界时回退到标准档
func GetCriticismLevel(level int) CriticismLevel {
	for _, l := range criticismLevels {
		if l.Level == level {
			return l
		}
	}
	return criticismLevels[2]
}

// EstimateCost 按所选配置估算成本
func EstimateCost(writers []string, matrix []MatrixCell, editor string) int {
	cost := 0.0

	for _, w := range writers {
		if b, ok := GetModelBlock(w); ok {
			cost += 15 * b.CostFactor
		}
	}
	for _, cell := range matrix {
		if b, ok := GetModelBlock(cell.BlockID); ok {
			cost += 8 * b.CostFactor
		}
	}
	if b, ok := GetModelBlock(editor); ok {
		cost += 20 * b.CostFactor
	}

	return int(cost)
}

// EstimateTime 按所选配置估算耗时（分钟）
// 各阶段内部并行，粗略按单元总数折算。
func EstimateTime(writers []string, matrix []MatrixCell) int {
	n := (len(writers) + len(matrix)) / 6
	if n < 1 {
		n = 1
	}
	return n
}
