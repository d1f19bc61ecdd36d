package novel

import (
	"context"
	"fmt"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-agent-api/internal/config"
	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/workflow/engine"
	workflowprompt "z-novel-agent-api/internal/workflow/prompt"
)

type fakeNovelRepo struct {
	novels  map[string]*entity.Novel
	created int
}

func newFakeNovelRepo(novels ...*entity.Novel) *fakeNovelRepo {
	repo := &fakeNovelRepo{novels: make(map[string]*entity.Novel)}
	for _, n := range novels {
		repo.novels[n.NovelID] = n
	}
	return repo
}

func (f *fakeNovelRepo) Create(_ context.Context, novel *entity.Novel) error {
	f.novels[novel.NovelID] = novel
	f.created++
	return nil
}

func (f *fakeNovelRepo) GetByID(_ context.Context, novelID string) (*entity.Novel, error) {
	return f.novels[novelID], nil
}

func (f *fakeNovelRepo) ListByUser(_ context.Context, userID string) ([]*entity.Novel, error) {
	var out []*entity.Novel
	for _, n := range f.novels {
		if n.OwnedBy(userID) {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeWorldRepo struct {
	exists  bool
	created int
}

func (f *fakeWorldRepo) Create(_ context.Context, _ *entity.WorldSetting) error {
	f.created++
	return nil
}

func (f *fakeWorldRepo) GetByNovel(_ context.Context, _ string) (*entity.WorldSetting, error) {
	return nil, nil
}

func (f *fakeWorldRepo) ExistsByNovel(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

type fakeCharRepo struct{}

func (fakeCharRepo) CreateBatch(_ context.Context, _ []*entity.Character) error { return nil }
func (fakeCharRepo) GetByNovelAndName(_ context.Context, _, _ string) (*entity.Character, error) {
	return nil, nil
}
func (fakeCharRepo) ListByNovel(_ context.Context, _ string) ([]*entity.Character, error) {
	return nil, nil
}

type failingChapterRepo struct {
	err error
}

func (f *failingChapterRepo) Create(_ context.Context, _ *entity.Chapter) error { return f.err }
func (f *failingChapterRepo) GetLast(_ context.Context, _ string) (*entity.Chapter, error) {
	return nil, nil
}
func (f *failingChapterRepo) ListByNovel(_ context.Context, _ string) ([]*entity.Chapter, error) {
	return nil, nil
}

// replayModel 按调用顺序回放预置的模型输出
type replayModel struct {
	responses []string
	calls     int
}

func (m *replayModel) next() (string, error) {
	if m.calls >= len(m.responses) {
		return "", fmt.Errorf("unexpected llm call %d", m.calls)
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

func (m *replayModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	resp, err := m.next()
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(resp, nil), nil
}

func (m *replayModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	resp, err := m.next()
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(resp, nil)}), nil
}

type replayFactory struct {
	model einomodel.BaseChatModel
}

func (f *replayFactory) Get(_ context.Context, _ string) (einomodel.BaseChatModel, error) {
	return f.model, nil
}

func newReplayEngine(responses []string) (*engine.Engine, *replayModel) {
	m := &replayModel{responses: responses}
	return engine.New(&replayFactory{model: m}, workflowprompt.NewRegistry(), "deepseek"), m
}

func newInitTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	return NewService(deps, &config.PipelineConfig{KnowledgeDir: t.TempDir()})
}

func TestInitNovelIdempotent(t *testing.T) {
	owner := "user-1"
	novelRepo := newFakeNovelRepo(entity.NewNovel("n-1", "末日求生", owner))
	worldRepo := &fakeWorldRepo{exists: true}
	eng, m := newReplayEngine(nil)

	svc := newInitTestService(t, Deps{
		NovelRepo: novelRepo,
		WorldRepo: worldRepo,
		Engine:    eng,
	})

	result, already, err := svc.InitNovel(context.Background(), owner, "n-1", "末日求生")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, "n-1", result.NovelID)
	// 已初始化：不重复建档，也不再触发任何生成
	assert.Zero(t, novelRepo.created)
	assert.Zero(t, m.calls)
}

func TestInitNovelStreamIdempotent(t *testing.T) {
	owner := "user-1"
	novelRepo := newFakeNovelRepo(entity.NewNovel("n-1", "末日求生", owner))
	eng, m := newReplayEngine(nil)

	svc := newInitTestService(t, Deps{
		NovelRepo: novelRepo,
		WorldRepo: &fakeWorldRepo{exists: true},
		Engine:    eng,
	})

	rec := &recorder{}
	err := svc.InitNovelStream(context.Background(), owner, "n-1", "末日求生", rec.emit)
	require.NoError(t, err)

	// 直接给出 final，没有任何生成阶段事件
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventFinal, rec.events[0].Type)
	assert.Equal(t, map[string]string{"novel_id": "n-1"}, rec.events[0].Data)
	assert.Zero(t, m.calls)
}

func TestInitNovelRejectsForeignNovel(t *testing.T) {
	novelRepo := newFakeNovelRepo(entity.NewNovel("n-1", "末日求生", "owner-a"))
	eng, _ := newReplayEngine(nil)

	svc := newInitTestService(t, Deps{
		NovelRepo: novelRepo,
		WorldRepo: &fakeWorldRepo{},
		Engine:    eng,
	})

	_, _, err := svc.InitNovel(context.Background(), "intruder", "n-1", "末日求生")
	assert.Error(t, err)
}

func TestInitNovelCreatesMissingNovel(t *testing.T) {
	novelRepo := newFakeNovelRepo()
	eng, _ := newReplayEngine(nil)

	svc := newInitTestService(t, Deps{
		NovelRepo: novelRepo,
		WorldRepo: &fakeWorldRepo{exists: true},
		Engine:    eng,
	})

	_, already, err := svc.InitNovel(context.Background(), "user-1", "n-new", "新题材")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, novelRepo.created)
	assert.Contains(t, novelRepo.novels, "n-new")
}

func TestInitNovelPersistFailureKeepsContent(t *testing.T) {
	novelRepo := newFakeNovelRepo()
	eng, m := newReplayEngine([]string{
		`{"story_overview":"概要","core_conflicts":["冲突"],"next_chapter_goal":"目标"}`,
		`{"world_rules":["规则一"],"tone":"冷峻","technology_level":"蒸汽"}`,
		`{"characters":[{"name":"林默"}]}`,
		`{"chapter_title":"第一章","content":"正文内容"}`,
		`{"overall_score":9,"world_consistency_score":9,"off_topic":false,"summary":"合格"}`,
		`{"key_events":["事件"],"consequences":["后果"]}`,
		`{"states":[]}`,
	})

	svc := newInitTestService(t, Deps{
		NovelRepo:   novelRepo,
		WorldRepo:   &fakeWorldRepo{},
		CharRepo:    fakeCharRepo{},
		ChapterRepo: &failingChapterRepo{err: fmt.Errorf("connection reset")},
		Engine:      eng,
	})

	// 章节写入失败只降级持久化，生成内容照常返回
	result, already, err := svc.InitNovel(context.Background(), "user-1", "n-1", "末日求生")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, 7, m.calls)
	assert.Equal(t, "第一章", result.Title)
	assert.Equal(t, "正文内容", result.Content)
	assert.Equal(t, []string{"规则一"}, result.WorldRules)
}
