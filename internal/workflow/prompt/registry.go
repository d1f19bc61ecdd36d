package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptStoryPlanningV1        PromptID = "story_planning_v1"
	PromptWorldBuildingV1        PromptID = "world_building_v1"
	PromptCharacterDesignV1      PromptID = "character_design_v1"
	PromptWritingV1              PromptID = "writing_v1"
	PromptChapterReviewV1        PromptID = "chapter_review_v1"
	PromptChapterRewriteV1       PromptID = "chapter_rewrite_v1"
	PromptChapterRewriteReviewV1 PromptID = "chapter_rewrite_review_v1"
	PromptPlotAnalysisV1         PromptID = "plot_analysis_v1"
	PromptMemoryUpdateV1         PromptID = "memory_update_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// ChatTemplate 返回指定模板（懒加载并缓存）。
// 模板采用 Go template 语法，JSON 示例中的花括号无需转义。
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptStoryPlanningV1,
		PromptWorldBuildingV1,
		PromptCharacterDesignV1,
		PromptWritingV1,
		PromptChapterReviewV1,
		PromptChapterRewriteV1,
		PromptChapterRewriteReviewV1,
		PromptPlotAnalysisV1,
		PromptMemoryUpdateV1:
		return fmt.Sprintf("templates/%s.system.txt", id),
			fmt.Sprintf("templates/%s.user.txt", id), nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
