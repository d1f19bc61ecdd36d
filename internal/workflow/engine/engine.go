// Package engine 顺序执行章节生成流水线，支持流式与非流式两种模式。
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	llmctx "z-novel-agent-api/internal/domain/service"
	"z-novel-agent-api/internal/workflow/pipeline"
	workflowport "z-novel-agent-api/internal/workflow/port"
	workflowprompt "z-novel-agent-api/internal/workflow/prompt"
	"z-novel-agent-api/pkg/metrics"
)

// Chunk 流式执行时回调给 Sink 的一块增量输出。
type Chunk struct {
	TaskName  string
	AgentRole string
	Text      string
}

// ExtractText 实现 stream.TextCarrier。
func (c *Chunk) ExtractText() (string, bool) {
	if c == nil || c.Text == "" {
		return "", false
	}
	return c.Text, true
}

// Sink 消费流式增量。返回错误会终止整条流水线。
type Sink func(chunk *Chunk) error

type Engine struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
	provider string
}

func New(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry, provider string) *Engine {
	return &Engine{factory: factory, registry: registry, provider: provider}
}

// Kickoff 顺序执行各阶段并返回全部任务输出。
func (e *Engine) Kickoff(ctx context.Context, stages []pipeline.Stage, vars map[string]any) (pipeline.Outputs, error) {
	return e.run(ctx, stages, vars, nil)
}

// KickoffStream 同 Kickoff，但每个模型增量都会经由 sink 回调。
// 出错时已完成阶段的输出仍会返回，供调用方决定如何收尾。
func (e *Engine) KickoffStream(ctx context.Context, stages []pipeline.Stage, vars map[string]any, sink Sink) (pipeline.Outputs, error) {
	return e.run(ctx, stages, vars, sink)
}

// 模板中可能引用的变量，缺失时补空值避免渲染出占位符。
var templateVars = []string{"topic", "novel_id", "world", "last_plot", "context"}

func (e *Engine) run(ctx context.Context, stages []pipeline.Stage, vars map[string]any, sink Sink) (pipeline.Outputs, error) {
	if e == nil || e.factory == nil || e.registry == nil {
		return nil, fmt.Errorf("engine not configured")
	}
	if strings.TrimSpace(e.provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}

	outputs := make(pipeline.Outputs, len(stages))
	executed := make([]string, 0, len(stages))

	for _, stage := range stages {
		if stage.Guard != nil && !stage.Guard(outputs) {
			metrics.PipelineStageTotal.WithLabelValues(stage.Task, "skipped").Inc()
			continue
		}

		start := time.Now()
		raw, err := e.runStage(ctx, stage, stageVars(vars, outputs, executed), sink)
		metrics.PipelineStageDuration.WithLabelValues(stage.Task).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PipelineStageTotal.WithLabelValues(stage.Task, "error").Inc()
			return outputs, fmt.Errorf("stage %s: %w", stage.Task, err)
		}
		metrics.PipelineStageTotal.WithLabelValues(stage.Task, "ok").Inc()

		out := &pipeline.TaskOutput{
			Name:      stage.Task,
			AgentRole: stage.AgentRole,
			Raw:       raw,
		}
		if stage.Decode != nil {
			if structured, ok := stage.Decode(raw); ok {
				out.Structured = structured
			}
		}
		outputs[stage.Task] = out
		executed = append(executed, stage.Task)
	}

	return outputs, nil
}

func (e *Engine) runStage(ctx context.Context, stage pipeline.Stage, vars map[string]any, sink Sink) (string, error) {
	tpl, err := e.registry.ChatTemplate(stage.Prompt)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	ctx = llmctx.WithWorkflowProvider(ctx, stage.Task, e.provider)
	chatModel, err := e.factory.Get(ctx, e.provider)
	if err != nil {
		return "", err
	}

	if sink == nil {
		msg, err := chatModel.Generate(ctx, msgs)
		if err != nil {
			return "", err
		}
		if msg == nil {
			return "", fmt.Errorf("empty llm response")
		}
		return msg.Content, nil
	}

	sr, err := chatModel.Stream(ctx, msgs)
	if err != nil {
		return "", err
	}
	defer sr.Close()

	var sb strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		sb.WriteString(msg.Content)
		if err := sink(&Chunk{
			TaskName:  stage.Task,
			AgentRole: stage.AgentRole,
			Text:      msg.Content,
		}); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// stageVars 为当前阶段构造模板变量：补齐缺省值，并把已执行阶段的
// 原始输出拼成上下文块。
func stageVars(base map[string]any, outputs pipeline.Outputs, executed []string) map[string]any {
	vars := make(map[string]any, len(base)+len(templateVars)+1)
	for k, v := range base {
		vars[k] = v
	}
	for _, key := range templateVars {
		if _, ok := vars[key]; !ok {
			vars[key] = ""
		}
	}
	if _, ok := vars["chapter_number"]; !ok {
		vars["chapter_number"] = 0
	}
	vars["context"] = contextDigest(outputs, executed)
	return vars
}

// contextDigest 把前序任务的原始输出按执行顺序拼接成提示词上下文。
func contextDigest(outputs pipeline.Outputs, executed []string) string {
	var sb strings.Builder
	for _, name := range executed {
		out, ok := outputs.Get(name)
		if !ok || strings.TrimSpace(out.Raw) == "" {
			continue
		}
		sb.WriteString("## ")
		sb.WriteString(name)
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(out.Raw))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}
