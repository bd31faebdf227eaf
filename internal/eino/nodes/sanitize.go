// Package nodes 提供 Eino Graph 中使用的 Lambda 节点实现
package nodes

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wrappingQuotes 会被整体剥离的包裹引号
const wrappingQuotes = "\"'“”‘’`"

// SanitizeScenario 清洗原始场景文本。
// 依次执行：去除首尾空白、移除尖括号、移除控制字符、合并连续空白、剥离成对的包裹引号。
func SanitizeScenario(raw string) string {
	text := strings.TrimSpace(raw)

	// 1. 移除尖括号
	text = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, text)

	// 2. 移除特殊控制字符
	text = removeControlChars(text)

	// 3. 规范化空白字符
	text = normalizeWhitespace(text)

	// 4. 剥离包裹引号（可能有多层）
	for {
		stripped := stripWrappingQuotes(text)
		if stripped == text {
			break
		}
		text = strings.TrimSpace(stripped)
	}

	return text
}

// normalizeWhitespace 规范化空白字符，将连续的空白字符替换为单个空格。
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// removeControlChars 移除字符串中的不可打印控制字符（保留换行和制表符）。
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// stripWrappingQuotes 首尾均为引号字符时去掉这一层
func stripWrappingQuotes(s string) string {
	if utf8.RuneCountInString(s) < 2 {
		return s
	}
	first, firstSize := utf8.DecodeRuneInString(s)
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if !strings.ContainsRune(wrappingQuotes, first) || !strings.ContainsRune(wrappingQuotes, last) {
		return s
	}
	return s[firstSize : len(s)-lastSize]
}

// truncateRunes 按字符截断
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
