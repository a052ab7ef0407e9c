package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"

	// DefaultLocale 未识别语言时的回退
	DefaultLocale = LocaleEnUS

	// ContextLocaleKey 中间件写入的用户语言偏好
	ContextLocaleKey = "user_locale"
)

// T 按语言查找文案，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if msg, ok := catalogs[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 带参数的文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// NormalizeLocale 归一化语言标识
func NormalizeLocale(locale string) string {
	value := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case value == "":
		return DefaultLocale
	case strings.HasPrefix(value, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(value, "en"):
		return LocaleEnUS
	default:
		return DefaultLocale
	}
}

// ResolveLocale 解析请求语言：查询参数 > 用户偏好 > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	if value, ok := c.Get(ContextLocaleKey); ok {
		if locale, ok := value.(string); ok && strings.TrimSpace(locale) != "" {
			return NormalizeLocale(locale)
		}
	}
	if c.Request == nil {
		return DefaultLocale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		return NormalizeLocale(tag)
	}
	return DefaultLocale
}
