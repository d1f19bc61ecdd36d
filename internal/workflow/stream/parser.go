// Package stream 提供章节生成过程中的流式文本处理能力。
package stream

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

const (
	keyChapterTitle = `"chapter_title"`
	keyContent      = `"content"`
)

// maxKeyLen 跨片段匹配键名所需保留的回看长度
var maxKeyLen = len(keyChapterTitle)

type parserState int

const (
	stateSearch parserState = iota
	stateWaitValue
	stateCapture
)

// Parser 增量解析模型流式输出中的章节 JSON。
// 只关心 chapter_title 与 content 两个字符串字段：标题在其值闭合时一次性给出，
// 正文字符随到随出，不跨调用缓存。片段可以在任意位置切断，包括转义序列
// 和 \uXXXX 十六进制的中间。
type Parser struct {
	buf          []byte
	state        parserState
	pendingKey   string
	currentKey   string
	escape       bool
	hexActive    bool
	hexSeq       []byte
	title        []byte
	titleEmitted bool
}

// NewParser 创建解析器
func NewParser() *Parser {
	return &Parser{}
}

// Reset 复位到初始状态，复用同一实例解析下一份文档
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
	p.state = stateSearch
	p.pendingKey = ""
	p.currentKey = ""
	p.escape = false
	p.hexActive = false
	p.hexSeq = p.hexSeq[:0]
	p.title = p.title[:0]
	p.titleEmitted = false
}

// Feed 喂入一个片段，返回本次解析出的标题（至多一次）与正文增量。
// hasTitle 为 true 表示标题值在本次调用中闭合。
func (p *Parser) Feed(fragment string) (title string, hasTitle bool, delta string) {
	p.buf = append(p.buf, fragment...)

	var deltaBuf []byte
	i := 0

	for i < len(p.buf) {
		ch := p.buf[i]

		if p.state == stateCapture {
			if p.hexActive {
				if isHexDigit(ch) {
					p.hexSeq = append(p.hexSeq, ch)
					if len(p.hexSeq) == 4 {
						deltaBuf = p.appendDecoded(decodeHex(p.hexSeq), deltaBuf)
						p.hexActive = false
						p.hexSeq = p.hexSeq[:0]
					}
					i++
					continue
				}
				// 非法十六进制序列，按字面量落回
				fallback := append([]byte(`\u`), p.hexSeq...)
				fallback = append(fallback, ch)
				deltaBuf = p.appendDecoded(fallback, deltaBuf)
				p.hexActive = false
				p.hexSeq = p.hexSeq[:0]
				i++
				continue
			}

			if p.escape {
				if ch == 'u' {
					p.hexActive = true
				} else {
					deltaBuf = p.appendDecoded(unescape(ch), deltaBuf)
				}
				p.escape = false
				i++
				continue
			}

			if ch == '\\' {
				p.escape = true
				i++
				continue
			}

			if ch == '"' {
				if p.currentKey == "chapter_title" && !p.titleEmitted {
					title = string(p.title)
					hasTitle = true
					p.titleEmitted = true
				}
				p.state = stateSearch
				p.currentKey = ""
				i++
				continue
			}

			deltaBuf = p.appendDecoded([]byte{ch}, deltaBuf)
			i++
			continue
		}

		if p.state == stateWaitValue {
			if ch == '"' {
				p.state = stateCapture
				p.currentKey = p.pendingKey
				p.pendingKey = ""
			}
			i++
			continue
		}

		if bytes.HasPrefix(p.buf[i:], []byte(keyChapterTitle)) {
			p.pendingKey = "chapter_title"
			p.state = stateWaitValue
			i += len(keyChapterTitle)
			continue
		}

		if bytes.HasPrefix(p.buf[i:], []byte(keyContent)) {
			p.pendingKey = "content"
			p.state = stateWaitValue
			i += len(keyContent)
			continue
		}

		i++
	}

	// search 状态下保留尾部回看窗口，其余状态不跨调用缓存
	if p.state == stateSearch {
		if len(p.buf) > maxKeyLen {
			tail := p.buf[len(p.buf)-maxKeyLen:]
			p.buf = append(p.buf[:0], tail...)
		}
	} else {
		p.buf = p.buf[:0]
	}

	return title, hasTitle, string(deltaBuf)
}

// appendDecoded 按当前捕获的键分发解码后的文本
func (p *Parser) appendDecoded(decoded []byte, deltaBuf []byte) []byte {
	switch p.currentKey {
	case "chapter_title":
		p.title = append(p.title, decoded...)
	case "content":
		deltaBuf = append(deltaBuf, decoded...)
	}
	return deltaBuf
}

func isHexDigit(ch byte) bool {
	switch {
	case ch >= '0' && ch <= '9':
		return true
	case ch >= 'a' && ch <= 'f':
		return true
	case ch >= 'A' && ch <= 'F':
		return true
	}
	return false
}

func decodeHex(seq []byte) []byte {
	v, err := strconv.ParseUint(string(seq), 16, 32)
	if err != nil {
		return append([]byte(`\u`), seq...)
	}
	return utf8.AppendRune(nil, rune(v))
}

func unescape(ch byte) []byte {
	switch ch {
	case 'n':
		return []byte{'\n'}
	case 'r':
		return []byte{'\r'}
	case 't':
		return []byte{'\t'}
	case 'b':
		return []byte{'\b'}
	case 'f':
		return []byte{'\f'}
	case '"':
		return []byte{'"'}
	case '\\':
		return []byte{'\\'}
	case '/':
		return []byte{'/'}
	default:
		return []byte{ch}
	}
}
