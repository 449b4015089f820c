// Package normalize 提供赛程与 M3U 两侧比较前的文本规范化
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 数字(1-2位)月数字(1-2位)日 空白(0或多个，含全角空格与不换行空格) 数字(1-2位):数字(2位)
var chineseDateTime = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日[\s\p{Zs}]*(\d{1,2}):(\d{2})$`)

var vsSeparator = regexp.MustCompile(`(?i)^(.*?)vs(.*)$`)

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// FormatDateTime 将 "1月3日 15:00"、"1月03日15:00" 等统一为 "01月03日15:00"。
// 不符合格式的输入原样返回。
func FormatDateTime(s string) string {
	if s == "" {
		return s
	}
	m := chineseDateTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	return pad2(m[1]) + "月" + pad2(m[2]) + "日" + m[3] + ":" + m[4]
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// StripSpace 去除所有空白字符
func StripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// NormalizeTeamString 标准化队伍字符串：忽略顺序，VS 分隔不区分大小写。
// "热火VS76人" 与 "76人vs热火" 均返回 "76人热火"。
func NormalizeTeamString(s string) string {
	if s == "" {
		return ""
	}
	trimmed := StripSpace(s)
	if m := vsSeparator.FindStringSubmatch(trimmed); m != nil {
		parts := []string{m[1], m[2]}
		sort.Strings(parts)
		return strings.ToLower(strings.Join(parts, ""))
	}
	return strings.ToLower(trimmed)
}

// IsClock 是否为 HH:MM
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ClockMinutes 将 HH:MM 转为当天分钟数
func ClockMinutes(s string) (int, bool) {
	if !IsClock(s) {
		return 0, false
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:5])
	return h*60 + m, true
}

// TailClock 取字符串最后 5 个字符作为 HH:MM，不合法时 ok=false
func TailClock(s string) (string, bool) {
	r := []rune(s)
	if len(r) < 5 {
		return "", false
	}
	tail := string(r[len(r)-5:])
	if !IsClock(tail) {
		return "", false
	}
	return tail, true
}
