// Package flows 提供 Eino Graph 流程定义
package flows

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"golang.org/x/sync/errgroup"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/services"
	simcb "whatif-sim/internal/eino/callbacks"
	"whatif-sim/internal/eino/config"
	"whatif-sim/internal/eino/nodes"
	"whatif-sim/pkg/logger"
)

// 图中的节点名，同时作为阶段日志和阶段指标的 stage 名称
const (
	NodeValidate = "validate"
	NodeReject   = "reject"
	NodeProcess  = "process"
	NodeGenerate = "generate"
	NodeFormat   = "format"
	NodePresent  = "present"
)

// MsgUnexpectedFailure 流程意外失败时返回给调用方的消息
const MsgUnexpectedFailure = "Something went wrong while simulating your scenario. Please try again in a moment."

// ConfigUpdate 运行时配置更新，仅替换非 nil 字段
type ConfigUpdate struct {
	EnableLogging            *bool          `json:"enableLogging,omitempty"`
	EnableMetrics            *bool          `json:"enableMetrics,omitempty"`
	EnableParallelGeneration *bool          `json:"enableParallelGeneration,omitempty"`
	MaxProcessingTime        *time.Duration `json:"maxProcessingTime,omitempty"`
}

// simulationState 单次请求的图本地状态，节点之间只传递各阶段的产出，
// 计时、中间结果和指标由状态处理器写入这里
type simulationState struct {
	cfg        config.SimulatorConfig
	start      time.Time
	stageStart time.Time

	validation models.ValidationResult
	scenario   models.ProcessedScenario
	serious    models.Outcome
	fun        models.Outcome
	metrics    models.Metrics
}

// stateContextKey Simulate 预先创建的状态通过 ctx 交给 GenLocalState
type stateContextKey struct{}

// Simulator 场景模拟编排器。
// 流程为 validate -> [reject | process -> generate -> format -> present]，各阶段独立计时。
// 除输入校验失败和意外错误外总是返回 success=true 的结果。
type Simulator struct {
	validator *nodes.InputValidator
	processor *nodes.ScenarioProcessor
	serious   *nodes.OutcomeGenerator
	fun       *nodes.OutcomeGenerator
	formatter *nodes.OutputFormatter

	callbacks *simcb.Factory
	logger    logger.Logger
	runnable  compose.Runnable[string, *models.SimulationResult]

	mu  sync.RWMutex
	cfg config.SimulatorConfig
}

var _ services.SimulationService = (*Simulator)(nil)

// NewSimulator 创建模拟编排器并编译流程图。
// 参数 gen: 外部文本生成能力，两个视角共用。
// 参数 cfg: Eino 配置。
// 参数 factory: 回调工厂，为 nil 时不挂载任何回调。
// 参数 log: 日志记录器。
func NewSimulator(ctx context.Context, gen services.TextGenerator, cfg *config.EinoConfig, factory *simcb.Factory, log logger.Logger) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultEinoConfig()
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Simulator{
		validator: nodes.NewInputValidator(&cfg.Validator),
		processor: nodes.NewScenarioProcessor(),
		serious:   nodes.NewSeriousGenerator(gen, cfg.Retry, &cfg.Generator, log),
		fun:       nodes.NewFunGenerator(gen, cfg.Retry, &cfg.Generator, log),
		formatter: nodes.NewOutputFormatter(&cfg.Formatter),
		callbacks: factory,
		logger:    log,
		cfg:       cfg.Simulator,
	}

	runnable, err := s.compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile simulation graph: %w", err)
	}
	s.runnable = runnable
	return s, nil
}

// compile 构建流程图
func (s *Simulator) compile(ctx context.Context) (compose.Runnable[string, *models.SimulationResult], error) {
	graph := compose.NewGraph[string, *models.SimulationResult](
		compose.WithGenLocalState(func(ctx context.Context) *simulationState {
			if st, ok := ctx.Value(stateContextKey{}).(*simulationState); ok {
				return st
			}
			return &simulationState{cfg: s.GetConfig(), start: time.Now()}
		}),
	)

	// 1. 输入校验
	validateNode := compose.InvokableLambda(s.validator.Validate)
	if err := graph.AddLambdaNode(NodeValidate, validateNode,
		compose.WithNodeName(NodeValidate),
		compose.WithStatePreHandler(markStage[string]),
		compose.WithStatePostHandler(func(ctx context.Context, out models.ValidationResult, st *simulationState) (models.ValidationResult, error) {
			st.validation = out
			st.metrics.ValidationTime = time.Since(st.stageStart).Milliseconds()
			return out, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add validate node: %w", err)
	}

	// 2. 校验失败直接结束，不调用生成能力
	rejectNode := compose.InvokableLambda(s.reject)
	if err := graph.AddLambdaNode(NodeReject, rejectNode, compose.WithNodeName(NodeReject)); err != nil {
		return nil, fmt.Errorf("add reject node: %w", err)
	}

	// 3. 场景结构化，不会向外失败
	processNode := compose.InvokableLambda(s.processor.Process)
	if err := graph.AddLambdaNode(NodeProcess, processNode,
		compose.WithNodeName(NodeProcess),
		compose.WithStatePreHandler(markStage[models.ValidationResult]),
		compose.WithStatePostHandler(func(ctx context.Context, out models.ProcessedScenario, st *simulationState) (models.ProcessedScenario, error) {
			st.scenario = out
			st.metrics.ProcessingTime = time.Since(st.stageStart).Milliseconds()
			return out, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add process node: %w", err)
	}

	// 4. 双视角生成，失败已在生成器内部降级
	generateNode := compose.InvokableLambda(s.generate)
	if err := graph.AddLambdaNode(NodeGenerate, generateNode, compose.WithNodeName(NodeGenerate)); err != nil {
		return nil, fmt.Errorf("add generate node: %w", err)
	}

	// 5. 格式化，耗时从请求开始计算
	formatNode := compose.InvokableLambda(s.formatter.Format)
	if err := graph.AddLambdaNode(NodeFormat, formatNode,
		compose.WithNodeName(NodeFormat),
		compose.WithStatePreHandler(func(ctx context.Context, in *nodes.FormatInput, st *simulationState) (*nodes.FormatInput, error) {
			st.stageStart = time.Now()
			in.ProcessingTimeMs = time.Since(st.start).Milliseconds()
			if !s.formatter.ValidateOutcomes(in.Serious, in.Fun) {
				s.logf(ctx, st, "生成结果未通过格式化前检查，将使用降级内容",
					"serious_length", len(in.Serious),
					"fun_length", len(in.Fun),
				)
			}
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add format node: %w", err)
	}

	// 6. 生成展示文本并组装结果
	presentNode := compose.InvokableLambda(s.present)
	if err := graph.AddLambdaNode(NodePresent, presentNode, compose.WithNodeName(NodePresent)); err != nil {
		return nil, fmt.Errorf("add present node: %w", err)
	}

	// 7. 按校验结果分支
	branch := compose.NewGraphBranch(func(ctx context.Context, v models.ValidationResult) (string, error) {
		if !v.IsValid {
			return NodeReject, nil
		}
		return NodeProcess, nil
	}, map[string]bool{
		NodeReject:  true,
		NodeProcess: true,
	})
	if err := graph.AddBranch(NodeValidate, branch); err != nil {
		return nil, fmt.Errorf("add branch: %w", err)
	}

	// 8. 连接节点
	edges := [][2]string{
		{compose.START, NodeValidate},
		{NodeReject, compose.END},
		{NodeProcess, NodeGenerate},
		{NodeGenerate, NodeFormat},
		{NodeFormat, NodePresent},
		{NodePresent, compose.END},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", e[0], e[1], err)
		}
	}

	return graph.Compile(ctx, compose.WithGraphName("simulation"))
}

// markStage 记录阶段开始时间
func markStage[I any](_ context.Context, in I, st *simulationState) (I, error) {
	st.stageStart = time.Now()
	return in, nil
}

// reject 校验失败分支
func (s *Simulator) reject(ctx context.Context, v models.ValidationResult) (*models.SimulationResult, error) {
	result := &models.SimulationResult{Success: false, Error: v.ErrorMessage}
	err := compose.ProcessState(ctx, func(_ context.Context, st *simulationState) error {
		st.metrics.Success = false
		st.metrics.ErrorType = models.ErrorTypeValidation
		result.Metrics = s.finishMetrics(st)
		return nil
	})
	return result, err
}

// generate 按请求配置并发或顺序生成两个视角
func (s *Simulator) generate(ctx context.Context, scenario models.ProcessedScenario) (*nodes.FormatInput, error) {
	var cfg config.SimulatorConfig
	if err := compose.ProcessState(ctx, func(_ context.Context, st *simulationState) error {
		cfg = st.cfg
		return nil
	}); err != nil {
		return nil, err
	}

	var serious, fun models.Outcome
	if cfg.EnableParallelGeneration {
		serious, fun = s.generateParallel(ctx, scenario)
	} else {
		serious, fun = s.generateSequential(ctx, scenario)
	}

	err := compose.ProcessState(ctx, func(_ context.Context, st *simulationState) error {
		st.serious = serious
		st.fun = fun
		st.metrics.SeriousGenerationTime = serious.Duration
		st.metrics.FunGenerationTime = fun.Duration
		st.metrics.SeriousFallback = serious.Fallback
		st.metrics.FunFallback = fun.Fallback
		st.metrics.SeriousAttempts = serious.Attempts
		st.metrics.FunAttempts = fun.Attempts
		return nil
	})
	return &nodes.FormatInput{
		Serious:  outcomeText(serious),
		Fun:      outcomeText(fun),
		Scenario: scenario,
	}, err
}

// present 生成展示文本，格式化阶段耗时包含这一步
func (s *Simulator) present(ctx context.Context, formatted models.FormattedOutput) (*models.SimulationResult, error) {
	result := &models.SimulationResult{
		Success:            true,
		FormattedOutput:    &formatted,
		PresentationOutput: s.formatter.CreatePresentationOutput(formatted),
	}
	err := compose.ProcessState(ctx, func(_ context.Context, st *simulationState) error {
		st.metrics.FormattingTime = time.Since(st.stageStart).Milliseconds()
		st.metrics.Success = true
		result.Metrics = s.finishMetrics(st)
		return nil
	})
	return result, err
}

// Simulate 执行一次完整模拟。
// 每次调用使用开始时的配置快照，运行中的 UpdateConfig 只影响之后的请求。
func (s *Simulator) Simulate(ctx context.Context, raw string) (result *models.SimulationResult) {
	st := &simulationState{
		cfg:   s.GetConfig(),
		start: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "模拟流程异常", "panic", fmt.Sprint(r))
			result = s.unexpectedFailure(st)
		}
		s.record(result)
	}()

	runCtx := context.WithValue(ctx, stateContextKey{}, st)
	result, err := s.runnable.Invoke(runCtx, raw, s.runOptions(st)...)
	if err != nil || result == nil {
		s.logger.ErrorContext(ctx, "模拟流程执行失败", "error", err)
		return s.unexpectedFailure(st)
	}

	if st.cfg.EnableLogging {
		s.logger.InfoContext(ctx, "模拟完成",
			"success", result.Success,
			"scenario_type", st.scenario.ScenarioType,
			"serious_fallback", st.serious.Fallback,
			"fun_fallback", st.fun.Fallback,
			"total_ms", time.Since(st.start).Milliseconds(),
		)
	}
	return result
}

// Validate 只执行输入校验
func (s *Simulator) Validate(ctx context.Context, raw string) models.ValidationResult {
	return s.validator.ValidateScenario(raw)
}

// GetConfig 返回当前配置的副本
func (s *Simulator) GetConfig() config.SimulatorConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig 局部更新配置，返回更新后的配置
func (s *Simulator) UpdateConfig(update ConfigUpdate) (config.SimulatorConfig, error) {
	if update.MaxProcessingTime != nil && *update.MaxProcessingTime < 0 {
		return s.GetConfig(), fmt.Errorf("maxProcessingTime must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.EnableLogging != nil {
		s.cfg.EnableLogging = *update.EnableLogging
	}
	if update.EnableMetrics != nil {
		s.cfg.EnableMetrics = *update.EnableMetrics
	}
	if update.EnableParallelGeneration != nil {
		s.cfg.EnableParallelGeneration = *update.EnableParallelGeneration
	}
	if update.MaxProcessingTime != nil {
		s.cfg.MaxProcessingTime = *update.MaxProcessingTime
	}
	return s.cfg, nil
}

// Metrics 返回汇总指标处理器，未启用时为 nil
func (s *Simulator) Metrics() *simcb.MetricsHandler {
	if s.callbacks == nil {
		return nil
	}
	return s.callbacks.MetricsHandler()
}

// generateParallel 并发生成两个视角，按位置而不是完成顺序取回结果
func (s *Simulator) generateParallel(ctx context.Context, scenario models.ProcessedScenario) (serious, fun models.Outcome) {
	var g errgroup.Group
	g.Go(func() error {
		var err error
		serious, err = s.serious.Invoke(ctx, scenario)
		return err
	})
	g.Go(func() error {
		var err error
		fun, err = s.fun.Invoke(ctx, scenario)
		return err
	})
	_ = g.Wait()
	return serious, fun
}

// generateSequential 先严肃后趣味
func (s *Simulator) generateSequential(ctx context.Context, scenario models.ProcessedScenario) (serious, fun models.Outcome) {
	serious, _ = s.serious.Invoke(ctx, scenario)
	fun, _ = s.fun.Invoke(ctx, scenario)
	return serious, fun
}

func (s *Simulator) runOptions(st *simulationState) []compose.Option {
	if s.callbacks == nil {
		return nil
	}

	handlers := s.callbacks.LoggingHandlers()
	if !st.cfg.EnableLogging {
		handlers = nil
	}
	if mh := s.callbacks.MetricsHandler(); mh != nil {
		handlers = append(handlers, mh)
	}
	if len(handlers) == 0 {
		return nil
	}
	return []compose.Option{compose.WithCallbacks(handlers...)}
}

// finishMetrics 补齐总耗时；未启用指标时返回 nil
func (s *Simulator) finishMetrics(st *simulationState) *models.Metrics {
	if !st.cfg.EnableMetrics {
		return nil
	}
	m := st.metrics
	m.TotalProcessingTime = time.Since(st.start).Milliseconds()
	return &m
}

func (s *Simulator) unexpectedFailure(st *simulationState) *models.SimulationResult {
	st.metrics.Success = false
	st.metrics.ErrorType = models.ErrorTypeUnknown
	return &models.SimulationResult{
		Success: false,
		Error:   MsgUnexpectedFailure,
		Metrics: s.finishMetrics(st),
	}
}

func (s *Simulator) record(result *models.SimulationResult) {
	if mh := s.Metrics(); mh != nil {
		mh.RecordResult(result)
	}
}

func (s *Simulator) logf(ctx context.Context, st *simulationState, msg string, args ...interface{}) {
	if st.cfg.EnableLogging {
		s.logger.WarnContext(ctx, msg, args...)
	}
}

// outcomeText 降级内容带上 [Fallback] 标记
func outcomeText(o models.Outcome) string {
	if o.Fallback {
		return nodes.LabelFallback(o.Text)
	}
	return o.Text
}
