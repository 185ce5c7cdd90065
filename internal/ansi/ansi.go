// Package ansi 终端ANSI着色文本到HTML/结构化片段的解码器
package ansi

import (
	"html"
	"regexp"
	"strings"
)

// colorClasses 识别的SGR前景色代码到CSS类名的映射
var colorClasses = map[string]string{
	"38;5;39":  "ansi-blue",
	"93":       "ansi-yellow",
	"38;5;208": "ansi-orange",
	"91":       "ansi-red",
	"92":       "ansi-green",
	"95":       "ansi-purple",
	"38;5;213": "ansi-pink",
}

var (
	sgrRE = regexp.MustCompile(`\x1b\[([0-9;]+)m`)
	// 非SGR的CSI控制序列（光标移动、清屏等）整体剔除
	controlRE = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-ln-z]`)
)

// Span 一段带样式类的文本片段，Class为空表示无样式
type Span struct {
	Class string `json:"class,omitempty"`
	Text  string `json:"text"`
}

// ClassForCode 返回SGR代码对应的CSS类名，未识别返回空串
func ClassForCode(code string) string {
	return colorClasses[code]
}

// stripControl 剔除非SGR控制序列与回车符
func stripControl(text string) string {
	return strings.ReplaceAll(controlRE.ReplaceAllString(text, ""), "\r", "")
}

// DecodeSpans 将ANSI着色文本解码为结构化片段序列
// 重置码关闭当前样式，未识别的颜色码按纯文本处理。
func DecodeSpans(text string) []Span {
	if text == "" {
		return nil
	}

	clean := stripControl(text)
	var spans []Span
	currentClass := ""
	cursor := 0

	emit := func(segment string) {
		if segment == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Class == currentClass {
			spans[n-1].Text += segment
			return
		}
		spans = append(spans, Span{Class: currentClass, Text: segment})
	}

	for _, match := range sgrRE.FindAllStringSubmatchIndex(clean, -1) {
		emit(clean[cursor:match[0]])
		code := clean[match[2]:match[3]]
		switch {
		case code == "0":
			currentClass = ""
		default:
			if class := colorClasses[code]; class != "" {
				currentClass = class
			}
		}
		cursor = match[1]
	}
	emit(clean[cursor:])

	return spans
}

// Decode 将ANSI着色文本解码为HTML，文本内容经过HTML转义
func Decode(text string) string {
	spans := DecodeSpans(text)
	if len(spans) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, span := range spans {
		escaped := html.EscapeString(span.Text)
		if span.Class == "" {
			sb.WriteString(escaped)
			continue
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(span.Class)
		sb.WriteString(`">`)
		sb.WriteString(escaped)
		sb.WriteString(`</span>`)
	}
	return sb.String()
}

// Strip 剔除全部ANSI序列，返回纯文本（不做HTML转义）
func Strip(text string) string {
	return sgrRE.ReplaceAllString(stripControl(text), "")
}
