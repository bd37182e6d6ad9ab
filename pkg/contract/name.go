package contract

import "strings"

// SanitizeName 清洗输出名：Windows 禁用字符逐个替换为下划线，再去首尾空白。
// 清洗是多对一映射，去重校验必须在清洗之后做。
func SanitizeName(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
	return strings.TrimSpace(mapped)
}

// DisplayName 生成模板标题字段文本（"文件:" 前缀 + 标识原文）。
func DisplayName(id TileID) string {
	return "文件:" + string(id)
}
