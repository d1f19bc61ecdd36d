package stream

import "unicode/utf8"

// TextCarrier 由能够直接给出文本增量的流式块实现。
type TextCarrier interface {
	ExtractText() (string, bool)
}

// ChunkText 从任意流式块中尽量提取文本片段。
// 优先走 TextCarrier；否则按 content/delta/text/chunk/raw 的顺序探测常见载体，
// 提取不到时返回空串，调用方应跳过该块。
func ChunkText(chunk any) string {
	if chunk == nil {
		return ""
	}

	if carrier, ok := chunk.(TextCarrier); ok {
		if text, ok := carrier.ExtractText(); ok && text != "" {
			return text
		}
		return ""
	}

	switch v := chunk.(type) {
	case string:
		return v
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
		return ""
	case map[string]any:
		for _, key := range []string{"content", "delta", "text", "chunk", "raw"} {
			if text := valueText(v[key]); text != "" {
				return text
			}
		}
	}
	return ""
}

// valueText 解析探测字段的值：字符串直接返回，字节流按 UTF-8 解码，
// 嵌套 map 再向下探一层。
func valueText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
	case map[string]any:
		for _, key := range []string{"content", "text", "delta"} {
			if inner, ok := v[key].(string); ok && inner != "" {
				return inner
			}
		}
	}
	return ""
}
