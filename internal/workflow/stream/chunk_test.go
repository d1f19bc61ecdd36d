package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCarrier struct {
	text string
	ok   bool
}

func (f fakeCarrier) ExtractText() (string, bool) { return f.text, f.ok }

func TestChunkTextCarrier(t *testing.T) {
	assert.Equal(t, "增量", ChunkText(fakeCarrier{text: "增量", ok: true}))
	// TextCarrier 说提取失败时不再降级探测
	assert.Empty(t, ChunkText(fakeCarrier{text: "忽略", ok: false}))
	assert.Empty(t, ChunkText(fakeCarrier{text: "", ok: true}))
}

func TestChunkTextPlainTypes(t *testing.T) {
	assert.Equal(t, "文本", ChunkText("文本"))
	assert.Equal(t, "字节", ChunkText([]byte("字节")))
	assert.Empty(t, ChunkText([]byte{0xff, 0xfe}))
	assert.Empty(t, ChunkText(nil))
	assert.Empty(t, ChunkText(42))
}

func TestChunkTextMapProbing(t *testing.T) {
	t.Run("probe order", func(t *testing.T) {
		chunk := map[string]any{
			"delta":   "后到",
			"content": "先到",
		}
		assert.Equal(t, "先到", ChunkText(chunk))
	})

	t.Run("delta fallback", func(t *testing.T) {
		assert.Equal(t, "增量片段", ChunkText(map[string]any{"delta": "增量片段"}))
	})

	t.Run("nested map", func(t *testing.T) {
		chunk := map[string]any{
			"delta": map[string]any{"content": "嵌套文本"},
		}
		assert.Equal(t, "嵌套文本", ChunkText(chunk))
	})

	t.Run("bytes value", func(t *testing.T) {
		assert.Equal(t, "字节值", ChunkText(map[string]any{"raw": []byte("字节值")}))
	})

	t.Run("no known key", func(t *testing.T) {
		assert.Empty(t, ChunkText(map[string]any{"other": "x"}))
	})
}
