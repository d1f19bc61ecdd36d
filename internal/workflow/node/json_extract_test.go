package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "surrounding prose",
			in:   "好的，以下是结果：\n{\"a\":1}\n希望对你有帮助。",
			want: `{"a":1}`,
		},
		{
			name: "markdown fence",
			in:   "```json\n{\"chapter_title\":\"t\"}\n```",
			want: `{"chapter_title":"t"}`,
		},
		{
			name: "array value",
			in:   `前言 ["a","b"] 后记`,
			want: `["a","b"]`,
		},
		{
			name: "object before array",
			in:   `{"list":[1,2]} 尾注`,
			want: `{"list":[1,2]}`,
		},
		{
			name: "empty input",
			in:   "   ",
			want: "",
		},
		{
			name: "no json at all",
			in:   "纯文本输出",
			want: "纯文本输出",
		},
		{
			name: "brace without closing",
			in:   "残缺 { 输出",
			want: "残缺 { 输出",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	t.Run("valid", func(t *testing.T) {
		v, ok := Decode[payload](`输出如下 {"title":"第一章","count":3} 完`)
		assert.True(t, ok)
		assert.Equal(t, "第一章", v.Title)
		assert.Equal(t, 3, v.Count)
	})

	t.Run("empty", func(t *testing.T) {
		v, ok := Decode[payload]("")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("not json", func(t *testing.T) {
		_, ok := Decode[payload]("没有结构化内容")
		assert.False(t, ok)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, ok := Decode[payload](`{"title":123,"count":"x"}`)
		assert.False(t, ok)
	})
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "", TruncateByRunes("abc", -1))
	assert.Equal(t, "abc", TruncateByRunes("abc", 3))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "ab", TruncateByRunes("abc", 2))
	// 按字符截断，不能切坏多字节字符
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}
