package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// 支持的语言
const (
	LocaleZH = "zh-CN"
	LocaleEN = "en-US"
	LocaleRU = "ru-RU"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleRU

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	loadErr  error

	supportedTags = []language.Tag{
		language.MustParse(LocaleRU),
		language.MustParse(LocaleEN),
		language.MustParse(LocaleZH),
	}
	matcher = language.NewMatcher(supportedTags)
)

func load() {
	loadOnce.Do(func() {
		catalogs, loadErr = loadCatalogs(localeFS)
	})
}

func loadCatalogs(fsys fs.FS) (map[string]map[string]string, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	result := make(map[string]map[string]string, len(paths))
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		messages := map[string]string{}
		if err := yaml.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}
		result[strings.TrimSuffix(path.Base(p), ".yaml")] = messages
	}
	return result, nil
}

// NormalizeLocale 将任意语言标记收敛到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedTags[index].String()
}

// ResolveLocale 从请求解析语言（?lang= 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// T 翻译消息 key，缺失时回退 en-US，再回退 key 本身
func T(locale, key string) string {
	load()
	if loadErr != nil {
		return key
	}
	if msg, ok := catalogs[NormalizeLocale(locale)][key]; ok && msg != "" {
		return msg
	}
	if msg, ok := catalogs[LocaleEN][key]; ok && msg != "" {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
