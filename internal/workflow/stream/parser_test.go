package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll 按给定分片依次喂入，收集标题与全部正文增量。
func feedAll(t *testing.T, p *Parser, fragments []string) (title string, titleCount int, content string) {
	t.Helper()
	var sb strings.Builder
	for _, frag := range fragments {
		tt, has, delta := p.Feed(frag)
		if has {
			title = tt
			titleCount++
		}
		sb.WriteString(delta)
	}
	return title, titleCount, sb.String()
}

// splitBytes 把文档按 n 字节一片切开，模拟任意位置断流。
func splitBytes(doc string, n int) []string {
	var fragments []string
	for i := 0; i < len(doc); i += n {
		end := i + n
		if end > len(doc) {
			end = len(doc)
		}
		fragments = append(fragments, doc[i:end])
	}
	return fragments
}

func TestParserWholeDocument(t *testing.T) {
	doc := `{"chapter_title": "第一章 觉醒", "content": "夜色沉沉，灯火零落。"}`

	title, count, content := feedAll(t, NewParser(), []string{doc})

	assert.Equal(t, "第一章 觉醒", title)
	assert.Equal(t, 1, count)
	assert.Equal(t, "夜色沉沉，灯火零落。", content)
}

func TestParserSingleByteFragments(t *testing.T) {
	doc := `{"chapter_title":"醒来","content":"他睁开眼，窗外已是黎明。"}`

	title, count, content := feedAll(t, NewParser(), splitBytes(doc, 1))

	assert.Equal(t, "醒来", title)
	assert.Equal(t, 1, count)
	assert.Equal(t, "他睁开眼，窗外已是黎明。", content)
}

func TestParserKeySplitAcrossFragments(t *testing.T) {
	// 键名在片段边界被切断，依赖 search 状态的尾部回看
	fragments := []string{
		`{"chapter_`, `title":"断`, `点","cont`, `ent":"正文内容"}`,
	}

	title, count, content := feedAll(t, NewParser(), fragments)

	assert.Equal(t, "断点", title)
	assert.Equal(t, 1, count)
	assert.Equal(t, "正文内容", content)
}

func TestParserEscapes(t *testing.T) {
	doc := `{"content":"第一行\n\t缩进 \"引用\" 反斜杠\\ 斜杠\/"}`

	_, count, content := feedAll(t, NewParser(), []string{doc})

	assert.Zero(t, count)
	assert.Equal(t, "第一行\n\t缩进 \"引用\" 反斜杠\\ 斜杠/", content)
}

func TestParserEscapeSplitAcrossFragments(t *testing.T) {
	// 反斜杠与转义字符分属两个片段
	fragments := []string{`{"content":"a\`, `nb"}`}

	_, _, content := feedAll(t, NewParser(), fragments)

	assert.Equal(t, "a\nb", content)
}

func TestParserUnicodeEscape(t *testing.T) {
	t.Run("whole", func(t *testing.T) {
		_, _, content := feedAll(t, NewParser(), []string{`{"content":"你好"}`})
		assert.Equal(t, "你好", content)
	})

	t.Run("split mid hex", func(t *testing.T) {
		// 你 的十六进制位分散在三个片段里
		fragments := []string{`{"content":"\u4`, `f`, `60"}`}
		_, _, content := feedAll(t, NewParser(), fragments)
		assert.Equal(t, "你", content)
	})

	t.Run("invalid hex falls back to literal", func(t *testing.T) {
		_, _, content := feedAll(t, NewParser(), []string{`{"content":"\u12zq"}`})
		assert.Equal(t, `\u12zq`, content)
	})
}

func TestParserTitleEmittedOnce(t *testing.T) {
	p := NewParser()

	// 闭合引号还没到，标题不给出
	title, has, _ := p.Feed(`{"chapter_title":"唯一标题`)
	assert.False(t, has)
	assert.Empty(t, title)

	// 标题值闭合时一次性给出
	title, has, _ = p.Feed(`","content":"后续"}`)
	require.True(t, has)
	assert.Equal(t, "唯一标题", title)

	// 之后不再重复给出
	_, has, _ = p.Feed(`{"chapter_title":"另一个"}`)
	assert.False(t, has)
}

func TestParserTitleValueClosesInLaterFragment(t *testing.T) {
	fragments := []string{`{"chapter_title":"前`, `半后半`, `"}`}
	p := NewParser()

	var titles []string
	for _, frag := range fragments {
		if tt, has, _ := p.Feed(frag); has {
			titles = append(titles, tt)
		}
	}

	require.Len(t, titles, 1)
	assert.Equal(t, "前半后半", titles[0])
}

func TestParserIgnoresOtherKeys(t *testing.T) {
	doc := `{"fail_reasons":["节奏拖沓"],"chapter_title":"重写稿","content":"重写后的正文"}`

	title, count, content := feedAll(t, NewParser(), splitBytes(doc, 7))

	assert.Equal(t, "重写稿", title)
	assert.Equal(t, 1, count)
	assert.Equal(t, "重写后的正文", content)
}

func TestParserReset(t *testing.T) {
	p := NewParser()

	title, _, content := feedAll(t, p, []string{`{"chapter_title":"旧","content":"旧正文"}`})
	require.Equal(t, "旧", title)
	require.Equal(t, "旧正文", content)

	p.Reset()

	title, count, content := feedAll(t, p, splitBytes(`{"chapter_title":"新","content":"新正文"}`, 3))
	assert.Equal(t, "新", title)
	assert.Equal(t, 1, count)
	assert.Equal(t, "新正文", content)
}

func TestParserContentOnlyDocument(t *testing.T) {
	title, count, content := feedAll(t, NewParser(), splitBytes(`{"content":"没有标题的章节"}`, 2))

	assert.Empty(t, title)
	assert.Zero(t, count)
	assert.Equal(t, "没有标题的章节", content)
}
