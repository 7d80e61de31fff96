package council

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"press-council-api/internal/config"
	"press-council-api/internal/workflow/prompt"
	apperrors "press-council-api/pkg/errors"
	"press-council-api/pkg/logger"
	"press-council-api/pkg/metrics"
)

var tracer = otel.Tracer("council")

// Coordinator 驱动三阶段评议流程并按序发出进度事件
type Coordinator struct {
	invoker Invoker
	prompts *prompt.Registry
	cfg     *config.Config
}

// NewCoordinator 创建流程协调器
func NewCoordinator(invoker Invoker, prompts *prompt.Registry, cfg *config.Config) *Coordinator {
	return &Coordinator{
		invoker: invoker,
		prompts: prompts,
		cfg:     cfg,
	}
}

// effective 解析后的有效运行配置
type effective struct {
	mode      config.Mode
	writers   []config.ModelBlock
	writerIDs []string
	matrix    []config.MatrixCell
	editor    config.ModelBlock
	criticism config.CriticismLevel
}

// resolve 将请求与模式默认值合并为有效配置
//
// 写作者列表中的未知与重复模型块被丢弃；全部未知时报错。
// 去重保证草稿到标签的映射是双射。
// 编辑未知直接报错：阶段三无法降级，宁可在花钱之前失败。
func (c *Coordinator) resolve(req Request) (*effective, error) {
	modeID := req.Mode
	if modeID == "" {
		modeID = c.cfg.Council.DefaultMode
	}
	mode, ok := config.GetMode(modeID)
	if !ok {
		return nil, apperrors.New(apperrors.CodeModeNotFound, "unknown mode").WithDetail(modeID)
	}

	writerIDs := req.Writers
	if len(writerIDs) == 0 {
		writerIDs = mode.DefaultWriters
	}
	writers := make([]config.ModelBlock, 0, len(writerIDs))
	validIDs := make([]string, 0, len(writerIDs))
	seen := make(map[string]bool, len(writerIDs))
	for _, id := range writerIDs {
		if seen[id] {
			continue
		}
		if block, ok := config.GetModelBlock(id); ok {
			seen[id] = true
			writers = append(writers, block)
			validIDs = append(validIDs, id)
		}
	}
	if len(writers) == 0 {
		return nil, apperrors.ErrEmptyWriterSet
	}

	matrix := req.Matrix
	if matrix == nil {
		matrix = mode.DefaultMatrix
	}

	editorID := req.Editor
	if editorID == "" {
		editorID = mode.DefaultEditor
	}
	editor, ok := config.GetModelBlock(editorID)
	if !ok {
		return nil, apperrors.New(apperrors.CodeModelBlockNotFound, "unknown editor model block").WithDetail(editorID)
	}

	criticism := req.CriticismLevel
	if criticism == 0 {
		criticism = c.cfg.Council.DefaultCriticismLevel
	}

	return &effective{
		mode:      mode,
		writers:   writers,
		writerIDs: validIDs,
		matrix:    matrix,
		editor:    editor,
		criticism: config.GetCriticismLevel(criticism),
	}, nil
}

// Run 执行完整的三阶段流程
//
// 事件按固定顺序同步发出：config、stage1_start/complete、
// stage2_start/complete、stage3_start/complete、complete；
// 任何致命失败以 error 事件收尾并返回错误。
// 阶段一与阶段二允许任意数量的单元失败；只有无效请求、
// 取消与阶段三失败是致命的。
// 取消时已完成的产出不丢弃：返回的局部 Result 保留已收集的
// 草稿、评审及其汇总，未完成的单元以 cancelled 类别记入失败列表。
func (c *Coordinator) Run(ctx context.Context, req Request, emit EventSink) (*Result, error) {
	if emit == nil {
		emit = discardEvents
	}

	ctx, span := tracer.Start(ctx, "council.Run")
	defer span.End()

	eff, err := c.resolve(req)
	if err != nil {
		emit(errorEvent(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("council.mode", eff.mode.ID),
		attribute.Int("council.writers", len(eff.writers)),
		attribute.Int("council.matrix_size", len(eff.matrix)),
		attribute.String("council.editor", eff.editor.ID),
	)

	runStart := time.Now()
	mode := eff.mode.ID

	emit(Event{Type: EventConfig, Data: map[string]any{
		"mode":               mode,
		"criticism_level":    eff.criticism.Level,
		"writers":            eff.writerIDs,
		"matrix":             eff.matrix,
		"editor":             eff.editor.ID,
		"estimated_cost":     config.EstimateCost(eff.writerIDs, eff.matrix, eff.editor.ID),
		"estimated_time_min": config.EstimateTime(eff.writerIDs, eff.matrix),
	}})

	// Stage 1
	drafts, stage1Failures, err := c.runDrafting(ctx, req.Content, eff, emit)
	labels := NewLabelMap(drafts)
	if err != nil {
		var partial *Result
		if errors.Is(err, context.Canceled) {
			partial = c.newResult(eff, labels, drafts, nil, nil, nil, CrossTable{}, SynthesisResult{}, stage1Failures)
		}
		return partial, c.finish(ctx, mode, runStart, emit, err)
	}

	// Stage 2
	units, stage2Failures := c.runEvaluation(ctx, drafts, labels, eff, emit)
	failures := append(stage1Failures, stage2Failures...)

	aggregates := AggregateRankings(units, labels)
	breakdown := PersonaBreakdown(units, labels)
	crossTable := BuildCrossTable(units, labels)

	if ctx.Err() != nil {
		// 已完成的评审连同其汇总随取消一并返回，阶段三不再发起
		partial := c.newResult(eff, labels, drafts, units, aggregates, breakdown, crossTable, SynthesisResult{}, failures)
		return partial, c.finish(ctx, mode, runStart, emit, ctx.Err())
	}

	emit(Event{Type: EventStage2Complete, Data: map[string]any{
		"evaluations":        units,
		"label_to_model":     labels.ToMap(),
		"aggregate_rankings": aggregates,
		"persona_breakdown":  breakdown,
		"cross_table":        crossTable,
		"failures":           stage2Failures,
	}})

	// Stage 3
	synthesis, err := c.runSynthesis(ctx, req.Content, drafts, labels, units, aggregates, eff, emit)
	if err != nil {
		var partial *Result
		if errors.Is(err, context.Canceled) {
			partial = c.newResult(eff, labels, drafts, units, aggregates, breakdown, crossTable, SynthesisResult{}, failures)
		}
		return partial, c.finish(ctx, mode, runStart, emit, err)
	}

	result := c.newResult(eff, labels, drafts, units, aggregates, breakdown, crossTable, synthesis, failures)

	emit(Event{Type: EventComplete, Data: result})

	metrics.CouncilRunsTotal.WithLabelValues(mode, "success").Inc()
	logger.Info(ctx, "council run completed",
		"mode", mode,
		"drafts", len(drafts),
		"evaluations", len(units),
		"duration_ms", time.Since(runStart).Milliseconds(),
	)
	return result, nil
}

// newResult 组装运行结果；取消时的局部结果与完整结果共用同一形状
func (c *Coordinator) newResult(eff *effective, labels *LabelMap, drafts []DraftArtifact, units []EvaluationUnit, aggregates []AggregateEntry, breakdown map[string][]AggregateEntry, crossTable CrossTable, synthesis SynthesisResult, failures []UnitFailure) *Result {
	return &Result{
		Stage1: drafts,
		Stage2: units,
		Stage3: synthesis,
		Metadata: Metadata{
			Mode:              eff.mode.ID,
			CriticismLevel:    eff.criticism.Level,
			Writers:           eff.writerIDs,
			Matrix:            eff.matrix,
			Editor:            eff.editor.ID,
			LabelToModel:      labels.ToMap(),
			AggregateRankings: aggregates,
			PersonaBreakdown:  breakdown,
			CrossTable:        crossTable,
			Failures:          failures,
		},
	}
}

// runDrafting 阶段一：多模型并行独立起草
//
// 各写作者互不可见；失败的写作者被剔除，阶段以剩余成功集完成，
// 全部失败也只产生空集，由后续阶段自行处理。
// 草稿顺序与写作者请求顺序一致，标签分配依赖这一点。
func (c *Coordinator) runDrafting(ctx context.Context, content string, eff *effective, emit EventSink) ([]DraftArtifact, []UnitFailure, error) {
	ctx, span := tracer.Start(ctx, "council.stage1",
		trace.WithAttributes(attribute.Int("council.writers", len(eff.writers))))
	defer span.End()

	emit(Event{Type: EventStage1Start, Data: map[string]any{
		"writers":      eff.writerIDs,
		"writer_count": len(eff.writers),
	}})

	tpl, err := c.prompts.ChatTemplate(prompt.PromptWriterV1)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to load writer prompt")
	}
	msgs, err := tpl.Format(ctx, map[string]any{"user_input": content})
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to format writer prompt")
	}

	start := time.Now()
	outcomes := fanOut(ctx, len(eff.writers), func(ctx context.Context, i int) (string, error) {
		return c.invoker.Invoke(ctx, eff.writers[i].Model, msgs, c.cfg.LLM.UnitTimeout)
	})
	metrics.CouncilStageDuration.WithLabelValues("drafting").Observe(time.Since(start).Seconds())

	drafts := make([]DraftArtifact, 0, len(eff.writers))
	var failures []UnitFailure
	for i, out := range outcomes {
		block := eff.writers[i]
		if out.err != nil {
			category := categorize(out.err)
			metrics.CouncilUnitsTotal.WithLabelValues("drafting", unitStatus(category)).Inc()
			failures = append(failures, UnitFailure{
				BlockID:  block.ID,
				Category: category,
				Message:  out.err.Error(),
			})
			logger.Warn(ctx, "writer failed",
				"stage", "drafting",
				"block", block.ID,
				"model", block.Model,
				"error", out.err.Error(),
			)
			continue
		}
		metrics.CouncilUnitsTotal.WithLabelValues("drafting", "success").Inc()
		drafts = append(drafts, DraftArtifact{
			BlockID:   block.ID,
			BlockName: block.Name,
			Model:     block.Model,
			Content:   out.value,
		})
	}

	// 取消时不再走完成事件，已成稿的草稿照常交还上层
	if errors.Is(ctx.Err(), context.Canceled) {
		return drafts, failures, context.Canceled
	}

	if len(drafts) == 0 {
		logger.Warn(ctx, "no writer produced a draft, continuing with empty stage",
			"stage", "drafting",
			"failures", len(failures),
		)
	}

	emit(Event{Type: EventStage1Complete, Data: map[string]any{
		"drafts":   drafts,
		"failures": failures,
	}})
	return drafts, failures, nil
}

// runEvaluation 阶段二：（模型 × 画像）矩阵并行盲审
//
// 评审只见匿名草稿。单元失败或取消不影响其余单元的结果收集；
// 目录中不存在的矩阵单元直接跳过。
func (c *Coordinator) runEvaluation(ctx context.Context, drafts []DraftArtifact, labels *LabelMap, eff *effective, emit EventSink) ([]EvaluationUnit, []UnitFailure) {
	ctx, span := tracer.Start(ctx, "council.stage2",
		trace.WithAttributes(attribute.Int("council.matrix_size", len(eff.matrix))))
	defer span.End()

	type cell struct {
		block   config.ModelBlock
		persona config.Persona
	}
	cells := make([]cell, 0, len(eff.matrix))
	for _, mc := range eff.matrix {
		block, blockOK := config.GetModelBlock(mc.BlockID)
		persona, personaOK := config.GetPersona(mc.PersonaID)
		if !blockOK || !personaOK {
			logger.Warn(ctx, "skipping invalid matrix cell",
				"stage", "evaluation",
				"block", mc.BlockID,
				"persona", mc.PersonaID,
			)
			continue
		}
		cells = append(cells, cell{block: block, persona: persona})
	}

	// 没有草稿就没有可评的对象，不为此花费评审调用
	if labels.Len() == 0 {
		cells = nil
	}

	emit(Event{Type: EventStage2Start, Data: map[string]any{
		"evaluation_count": len(cells),
	}})

	if len(cells) == 0 {
		return nil, nil
	}

	draftsBlock := renderAnonymizedDrafts(labels, drafts)

	start := time.Now()
	outcomes := fanOut(ctx, len(cells), func(ctx context.Context, i int) (string, error) {
		tpl, err := c.prompts.ChatTemplate(prompt.PromptReviewerV1)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeInternalError, "failed to load reviewer prompt")
		}
		p := cells[i].persona
		msgs, err := tpl.Format(ctx, map[string]any{
			"persona_name":          p.Name,
			"media_type":            p.MediaType,
			"outlet_example":        p.OutletExample,
			"focus_areas":           strings.Join(p.FocusAreas, ", "),
			"tone":                  p.Tone,
			"persona_description":   p.Description,
			"criticism_instruction": eff.criticism.Instruction,
			"drafts_block":          draftsBlock,
		})
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeInternalError, "failed to format reviewer prompt")
		}
		return c.invoker.Invoke(ctx, cells[i].block.Model, msgs, c.cfg.LLM.UnitTimeout)
	})
	metrics.CouncilStageDuration.WithLabelValues("evaluation").Observe(time.Since(start).Seconds())

	units := make([]EvaluationUnit, 0, len(cells))
	var failures []UnitFailure
	for i, out := range outcomes {
		cl := cells[i]
		if out.err != nil {
			category := categorize(out.err)
			metrics.CouncilUnitsTotal.WithLabelValues("evaluation", unitStatus(category)).Inc()
			failures = append(failures, UnitFailure{
				BlockID:   cl.block.ID,
				PersonaID: cl.persona.ID,
				Category:  category,
				Message:   out.err.Error(),
			})
			logger.Warn(ctx, "evaluation unit failed",
				"stage", "evaluation",
				"block", cl.block.ID,
				"persona", cl.persona.ID,
				"error", out.err.Error(),
			)
			continue
		}
		metrics.CouncilUnitsTotal.WithLabelValues("evaluation", "success").Inc()
		units = append(units, EvaluationUnit{
			BlockID:       cl.block.ID,
			BlockName:     cl.block.Name,
			Model:         cl.block.Model,
			PersonaID:     cl.persona.ID,
			PersonaName:   cl.persona.Name,
			Evaluation:    out.value,
			ParsedRanking: ParseRanking(out.value, labels.Labels()),
		})
	}

	return units, failures
}

// runSynthesis 阶段三：编辑合成终稿，失败即整次运行失败
func (c *Coordinator) runSynthesis(ctx context.Context, content string, drafts []DraftArtifact, labels *LabelMap, units []EvaluationUnit, aggregates []AggregateEntry, eff *effective, emit EventSink) (SynthesisResult, error) {
	ctx, span := tracer.Start(ctx, "council.stage3",
		trace.WithAttributes(attribute.String("council.editor", eff.editor.ID)))
	defer span.End()

	emit(Event{Type: EventStage3Start, Data: map[string]any{
		"editor": eff.editor.ID,
	}})

	tpl, err := c.prompts.ChatTemplate(prompt.PromptEditorV1)
	if err != nil {
		return SynthesisResult{}, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to load editor prompt")
	}
	msgs, err := tpl.Format(ctx, map[string]any{
		"original_request":  content,
		"drafts_block":      renderAnonymizedDrafts(labels, drafts),
		"evaluations_block": renderEvaluations(units),
		"rankings_block":    renderRankings(aggregates),
	})
	if err != nil {
		return SynthesisResult{}, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to format editor prompt")
	}

	start := time.Now()
	out, err := c.invoker.Invoke(ctx, eff.editor.Model, msgs, c.cfg.LLM.SynthesisTimeout)
	metrics.CouncilStageDuration.WithLabelValues("synthesis").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CouncilUnitsTotal.WithLabelValues("synthesis", "error").Inc()
		if errors.Is(err, context.Canceled) {
			return SynthesisResult{}, context.Canceled
		}
		// 保留底层错误码，额度耗尽等状态要原样到达调用方
		return SynthesisResult{}, err
	}
	metrics.CouncilUnitsTotal.WithLabelValues("synthesis", "success").Inc()

	result := SynthesisResult{
		BlockID:   eff.editor.ID,
		BlockName: eff.editor.Name,
		Model:     eff.editor.Model,
		Content:   out,
	}
	emit(Event{Type: EventStage3Complete, Data: result})
	return result, nil
}

// finish 失败收尾：发出 error 事件并打点
func (c *Coordinator) finish(ctx context.Context, mode string, runStart time.Time, emit EventSink, err error) error {
	status := "failed"
	if errors.Is(err, context.Canceled) {
		status = "cancelled"
	}
	metrics.CouncilRunsTotal.WithLabelValues(mode, status).Inc()

	emit(errorEvent(err))
	logger.Error(ctx, "council run ended early", err,
		"mode", mode,
		"status", status,
		"duration_ms", time.Since(runStart).Milliseconds(),
	)
	return err
}

// errorEvent 将错误折叠为 error 事件负载
func errorEvent(err error) Event {
	data := map[string]any{
		"message":  err.Error(),
		"category": string(categorize(err)),
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		data["code"] = string(appErr.Code)
		data["message"] = appErr.Message
		data["is_credit_error"] = appErr.Code == apperrors.CodeLLMCreditExhausted
	}
	return Event{Type: EventError, Data: data}
}

// unitStatus 单元结果的打点标签
func unitStatus(category FailureCategory) string {
	if category == FailureCancelled {
		return "cancelled"
	}
	return "error"
}
