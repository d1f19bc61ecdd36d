package novel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	redisinfra "z-novel-agent-api/internal/infrastructure/persistence/redis"
)

const queryCacheTTL = 30 * time.Second

// Status 查询小说当前章节进度（带短 TTL 缓存）。
func (s *Service) Status(ctx context.Context, userID, novelID string) (*StatusResult, error) {
	ctx, span := tracer.Start(ctx, "novel.Status")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	if _, err := s.authorizeNovel(ctx, userID, novelID); err != nil {
		return nil, err
	}

	load := func() (interface{}, error) {
		last, err := s.chapterRepo.GetLast(ctx, novelID)
		if err != nil {
			return nil, err
		}
		current := 0
		if last != nil {
			current = last.ChapterNumber
		}
		return &StatusResult{NovelID: novelID, CurrentChapter: current}, nil
	}

	if s.cache == nil {
		result, err := load()
		if err != nil {
			return nil, fmt.Errorf("load novel status: %w", err)
		}
		return result.(*StatusResult), nil
	}

	data, err := s.cache.GetOrLoadSafe(ctx, redisinfra.NovelStatusKey(novelID), queryCacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("load novel status: %w", err)
	}
	var result StatusResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached status: %w", err)
	}
	return &result, nil
}

// List 列出当前用户的小说（带短 TTL 缓存）。
func (s *Service) List(ctx context.Context, userID string) ([]NovelSummary, error) {
	ctx, span := tracer.Start(ctx, "novel.List")
	defer span.End()

	load := func() (interface{}, error) {
		novels, err := s.novelRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		summaries := make([]NovelSummary, 0, len(novels))
		for _, n := range novels {
			summaries = append(summaries, NovelSummary{NovelID: n.NovelID, Topic: n.Topic})
		}
		return summaries, nil
	}

	if s.cache == nil {
		result, err := load()
		if err != nil {
			return nil, fmt.Errorf("list novels: %w", err)
		}
		return result.([]NovelSummary), nil
	}

	data, err := s.cache.GetOrLoadSafe(ctx, redisinfra.NovelListKey(userID), queryCacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	var summaries []NovelSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("decode cached novel list: %w", err)
	}
	return summaries, nil
}

// Export 导出小说为纯文本：世界观设定加全部章节正文。
func (s *Service) Export(ctx context.Context, userID, novelID string) (filename, content string, err error) {
	ctx, span := tracer.Start(ctx, "novel.Export")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	novel, err := s.authorizeNovel(ctx, userID, novelID)
	if err != nil {
		return "", "", err
	}

	world, err := s.worldRepo.GetByNovel(ctx, novelID)
	if err != nil {
		return "", "", fmt.Errorf("load world settings: %w", err)
	}
	chapters, err := s.chapterRepo.ListByNovel(ctx, novelID)
	if err != nil {
		return "", "", fmt.Errorf("load chapters: %w", err)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("小说ID: %s", novelID))
	if novel.Topic != "" {
		lines = append(lines, fmt.Sprintf("主题: %s", novel.Topic))
	}
	lines = append(lines, "", "世界观设定")
	if world != nil {
		if world.Tone != "" {
			lines = append(lines, fmt.Sprintf("基调: %s", world.Tone))
		}
		if world.TechnologyLevel != "" {
			lines = append(lines, fmt.Sprintf("科技/文明水平: %s", world.TechnologyLevel))
		}
	}
	lines = append(lines, "世界规则:")
	if world != nil && len(world.WorldRules) > 0 {
		for _, rule := range world.WorldRules {
			lines = append(lines, fmt.Sprintf("- %s", rule))
		}
	} else {
		lines = append(lines, "- （无）")
	}

	lines = append(lines, "", "章节正文")
	if len(chapters) == 0 {
		lines = append(lines, "（暂无章节）")
	}
	for _, ch := range chapters {
		lines = append(lines, fmt.Sprintf("第 %d 章 · %s", ch.ChapterNumber, ch.Title))
		lines = append(lines, ch.Content, "")
	}

	return fmt.Sprintf("novel_%s.txt", novelID), strings.Join(lines, "\n"), nil
}
