package node

import "encoding/json"

// Decode 从模型原始输出中解析出结构化载荷。
// 解析失败返回 (nil, false)，调用方按“结构化缺失”处理而不是报错。
func Decode[T any](raw string) (*T, bool) {
	candidate := ExtractJSONObject(raw)
	if candidate == "" {
		return nil, false
	}

	var out T
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, false
	}
	return &out, true
}
