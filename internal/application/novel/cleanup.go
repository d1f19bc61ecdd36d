package novel

import (
	"context"
	"os"
	"path/filepath"

	"z-novel-agent-api/pkg/logger"
)

// 生成过程中各 Agent 落盘的临时知识文件。
var agentKnowledgeFiles = []string{
	"story_planner.json",
	"world_builder.json",
	"character_architect.json",
	"narrative_writer.json",
	"plot_analyst.json",
	"memory_keeper.json",
	"chapter_reviewer.json",
}

// cleanupGeneratedKnowledge 删除生成过程遗留的 Agent 知识文件。
// 每次生成结束后都会执行，无论成功与否；清理失败不阻塞主流程。
func (s *Service) cleanupGeneratedKnowledge(ctx context.Context) {
	if s.knowledgeDir == "" {
		return
	}
	if _, err := os.Stat(s.knowledgeDir); os.IsNotExist(err) {
		return
	}

	log := logger.FromContext(ctx)
	for _, filename := range agentKnowledgeFiles {
		target := filepath.Join(s.knowledgeDir, filename)
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove knowledge file", "file", target, "error", err)
		}
	}
}
