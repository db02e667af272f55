package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 字段规范化函数。
// 源端字段是松散类型的：可能是 nil、字符串、数字、布尔、
// 也可能是“单元素数组代替标量”（关联列常见）。
// 所有函数对任意输入都返回确定结果，不会 panic。

// AsString 把任意原始值转成去掉首尾空白的字符串；无法转换时返回空串。
func AsString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		// 单元素数组代替标量（源端关联字段的常见形态）
		if len(v) == 0 {
			return ""
		}
		return AsString(v[0])
	case float64:
		// JSON 数字统一解码为 float64；整数去掉小数部分
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// AsFloat 把任意原始值转成 float64；无法解析时返回 0。
func AsFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case []interface{}:
		if len(v) == 0 {
			return 0
		}
		return AsFloat(v[0])
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		s = strings.TrimPrefix(s, "$")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsInt 把任意原始值转成 int；无法解析时返回 0。
func AsInt(raw interface{}) int {
	s := AsString(raw)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// "2021.0" 之类的写法
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

// AsBool 把任意原始值转成布尔；识别常见的勾选框写法。
func AsBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case []interface{}:
		if len(v) == 0 {
			return false
		}
		return AsBool(v[0])
	default:
		switch strings.ToLower(AsString(raw)) {
		case "true", "yes", "y", "checked", "1":
			return true
		}
		return false
	}
}

// NormalizePhone 规范化电话号码：
// - 去掉除数字和开头 "+" 以外的所有字符
// - 未带国家码时补默认国家码（11 位且以 0 开头时先去掉多余的长途前缀）
// - 幂等：对已规范化的号码再调用一次返回原值
func NormalizePhone(raw interface{}, defaultCode string) string {
	s := AsString(raw)
	if s == "" {
		return ""
	}
	plus := strings.HasPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	if plus {
		return "+" + digits
	}

	code := strings.TrimSpace(defaultCode)
	if code == "" {
		code = "+1"
	}
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	codeDigits := code[1:]

	// 已经带国家码但没写 "+" 的情况
	if strings.HasPrefix(digits, codeDigits) && len(digits) == len(codeDigits)+10 {
		return "+" + digits
	}
	// 多余的长途前缀 0
	if len(digits) == 11 && digits[0] == '0' {
		digits = digits[1:]
	}
	return code + digits
}

// NormalizeEmail 规范化邮箱：去空白、转小写；为空时返回空串。
func NormalizeEmail(raw interface{}) string {
	return strings.ToLower(AsString(raw))
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
}

func parseTime(raw interface{}) (time.Time, bool) {
	if t, ok := raw.(time.Time); ok {
		return t, true
	}
	s := AsString(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate 规范化日期为 YYYY-MM-DD；无法解析时返回空串。
func NormalizeDate(raw interface{}) string {
	t, ok := parseTime(raw)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// NormalizeDateTime 规范化为 ISO-8601 时间戳（保留时分秒）；无法解析时返回空串。
func NormalizeDateTime(raw interface{}) string {
	t, ok := parseTime(raw)
	if !ok {
		return ""
	}
	return t.Format(time.RFC3339)
}

// PhotoURLs 从附件数组中提取 URL 列表；没有 URL 的元素丢弃，
// 输入不是数组时返回 nil。
func PhotoURLs(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		u := AsString(m["url"])
		if u == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

// PickFirst 在一组候选字段名中按顺序取第一个规范化后非空的字符串值。
// 源端同一属性可能散落在不同命名的列里，别名列表保持显式、可审计。
func PickFirst(fields map[string]interface{}, names ...string) string {
	if fields == nil {
		return ""
	}
	for _, name := range names {
		if raw, ok := fields[name]; ok {
			if s := AsString(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

// PickRaw 在一组候选字段名中按顺序取第一个存在且非 nil 的原始值。
func PickRaw(fields map[string]interface{}, names ...string) interface{} {
	if fields == nil {
		return nil
	}
	for _, name := range names {
		if raw, ok := fields[name]; ok && raw != nil {
			return raw
		}
	}
	return nil
}
