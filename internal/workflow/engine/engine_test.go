package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workflowmodel "z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/pipeline"
	workflowprompt "z-novel-agent-api/internal/workflow/prompt"
)

// scriptedModel 按调用顺序回放预置的模型输出
type scriptedModel struct {
	responses []string
	calls     int
}

func (m *scriptedModel) next() (string, error) {
	if m.calls >= len(m.responses) {
		return "", fmt.Errorf("unexpected llm call %d", m.calls)
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	resp, err := m.next()
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(resp, nil), nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	resp, err := m.next()
	if err != nil {
		return nil, err
	}
	// 把整段输出切成小片，模拟流式返回
	var msgs []*schema.Message
	runes := []rune(resp)
	const pieceSize = 5
	for i := 0; i < len(runes); i += pieceSize {
		end := i + pieceSize
		if end > len(runes) {
			end = len(runes)
		}
		msgs = append(msgs, schema.AssistantMessage(string(runes[i:end]), nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

type fakeFactory struct {
	model model.BaseChatModel
	err   error
}

func (f *fakeFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func newTestEngine(t *testing.T, responses []string) (*Engine, *scriptedModel) {
	t.Helper()
	m := &scriptedModel{responses: responses}
	return New(&fakeFactory{model: m}, workflowprompt.NewRegistry(), "deepseek"), m
}

const (
	passingReview = `{"overall_score":9,"world_consistency_score":9,"off_topic":false,"summary":"合格"}`
	failingReview = `{"overall_score":5,"world_consistency_score":9,"off_topic":false,"issues":["节奏拖沓"],"summary":"需重写"}`
	writingDoc    = `{"chapter_title":"初稿标题","content":"初稿正文内容"}`
	rewriteDoc    = `{"fail_reasons":["节奏拖沓"],"chapter_title":"重写标题","content":"重写正文内容"}`
	plotDoc       = `{"key_events":["事件一"],"consequences":["后果一"]}`
	memoryDoc     = `{"states":[{"character_name":"林默","location":"废墟","emotion":"警惕","goal":"活下去"}]}`
)

func TestKickoffSkipsRewriteOnPassingReview(t *testing.T) {
	eng, m := newTestEngine(t, []string{writingDoc, passingReview, plotDoc, memoryDoc})

	outputs, err := eng.Kickoff(context.Background(), pipeline.ContinuationSequence(), map[string]any{
		"novel_id": "n-1",
		"topic":    "末日求生",
	})
	require.NoError(t, err)

	// 评审通过：重写与重写评审被跳过，总共只调用四次模型
	assert.Equal(t, 4, m.calls)
	_, ok := outputs.Get(pipeline.TaskChapterRewrite)
	assert.False(t, ok)
	_, ok = outputs.Get(pipeline.TaskChapterRewriteReview)
	assert.False(t, ok)

	writing, ok := pipeline.StructuredAs[workflowmodel.WritingOutput](outputs, pipeline.TaskWriting)
	require.True(t, ok)
	assert.Equal(t, "初稿标题", writing.ChapterTitle)

	out, ok := outputs.Get(pipeline.TaskMemoryUpdate)
	require.True(t, ok)
	assert.Equal(t, "长期剧情记忆与一致性管理员", out.AgentRole)
}

func TestKickoffRunsRewriteOnFailingReview(t *testing.T) {
	eng, m := newTestEngine(t, []string{
		writingDoc, failingReview, rewriteDoc, passingReview, plotDoc, memoryDoc,
	})

	outputs, err := eng.Kickoff(context.Background(), pipeline.ContinuationSequence(), map[string]any{
		"novel_id": "n-1",
		"topic":    "末日求生",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, m.calls)

	rewrite, ok := pipeline.StructuredAs[workflowmodel.ChapterRewriteOutput](outputs, pipeline.TaskChapterRewrite)
	require.True(t, ok)
	assert.Equal(t, "重写标题", rewrite.ChapterTitle)

	ext, err := pipeline.ExtractWriting(outputs)
	require.NoError(t, err)
	assert.Equal(t, "重写标题", ext.FinalTitle)
	assert.Equal(t, "重写正文内容", ext.FinalContent)
}

func TestKickoffStreamDeliversChunks(t *testing.T) {
	eng, _ := newTestEngine(t, []string{writingDoc, passingReview, plotDoc, memoryDoc})

	var tasks []string
	var writingText string
	sink := func(chunk *Chunk) error {
		tasks = append(tasks, chunk.TaskName)
		if chunk.TaskName == pipeline.TaskWriting {
			writingText += chunk.Text
		}
		return nil
	}

	outputs, err := eng.KickoffStream(context.Background(), pipeline.ContinuationSequence(), map[string]any{
		"novel_id": "n-1",
		"topic":    "末日求生",
	}, sink)
	require.NoError(t, err)

	// 流式增量拼起来必须还原完整原始输出
	assert.Equal(t, writingDoc, writingText)
	out, ok := outputs.Get(pipeline.TaskWriting)
	require.True(t, ok)
	assert.Equal(t, writingDoc, out.Raw)
	assert.Contains(t, tasks, pipeline.TaskPlotAnalysis)
}

func TestKickoffStreamSinkErrorAborts(t *testing.T) {
	eng, _ := newTestEngine(t, []string{writingDoc, passingReview, plotDoc, memoryDoc})

	sinkErr := fmt.Errorf("client gone")
	outputs, err := eng.KickoffStream(context.Background(), pipeline.ContinuationSequence(), nil,
		func(*Chunk) error { return sinkErr },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	_, ok := outputs.Get(pipeline.TaskWriting)
	assert.False(t, ok)
}

func TestKickoffModelErrorKeepsCompletedOutputs(t *testing.T) {
	// 第二阶段没有预置输出，模型调用报错
	eng, _ := newTestEngine(t, []string{writingDoc})

	outputs, err := eng.Kickoff(context.Background(), pipeline.ContinuationSequence(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), pipeline.TaskChapterReview)
	_, ok := outputs.Get(pipeline.TaskWriting)
	assert.True(t, ok)
}

func TestEngineNotConfigured(t *testing.T) {
	_, err := New(nil, workflowprompt.NewRegistry(), "deepseek").Kickoff(context.Background(), nil, nil)
	assert.Error(t, err)

	_, err = New(&fakeFactory{model: &scriptedModel{}}, workflowprompt.NewRegistry(), " ").Kickoff(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestStageVarsContextDigest(t *testing.T) {
	outputs := pipeline.Outputs{
		pipeline.TaskStoryPlanning: &pipeline.TaskOutput{Name: pipeline.TaskStoryPlanning, Raw: "规划输出"},
		pipeline.TaskWorldBuilding: &pipeline.TaskOutput{Name: pipeline.TaskWorldBuilding, Raw: "  "},
	}
	executed := []string{pipeline.TaskStoryPlanning, pipeline.TaskWorldBuilding}

	vars := stageVars(map[string]any{"topic": "末日"}, outputs, executed)

	assert.Equal(t, "末日", vars["topic"])
	assert.Equal(t, "", vars["world"])
	assert.Equal(t, 0, vars["chapter_number"])
	// 空白输出不进入上下文块
	assert.Equal(t, "## story_planning_task\n规划输出", vars["context"])
}
