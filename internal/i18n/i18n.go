package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
)

// Language представляет поддерживаемый язык
type Language string

const (
	LangRussian Language = "ru"
	LangEnglish Language = "en"
	LangUzbek   Language = "uz"
	DefaultLang Language = LangRussian
)

// Languages все поддерживаемые языки в порядке показа
var Languages = []Language{LangRussian, LangEnglish, LangUzbek}

//go:embed locales/*.json
var embedded embed.FS

// translations хранит все переводы
var translations = struct {
	sync.RWMutex
	data map[Language]map[string]string
}{data: make(map[Language]map[string]string)}

var embeddedOnce sync.Once

// Load загружает переводы из каталога localesDir
func Load(localesDir string) error {
	return loadFS(os.DirFS(localesDir), localesDir)
}

// LoadEmbedded загружает встроенные переводы
func LoadEmbedded() error {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return err
	}
	return loadFS(sub, "embedded")
}

func loadFS(fsys fs.FS, source string) error {
	loaded := make(map[Language]map[string]string, len(Languages))

	for _, lang := range Languages {
		name := string(lang) + ".json"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("ошибка чтения файла локализации %s/%s: %w", source, name, err)
		}

		var langData map[string]string
		if err := json.Unmarshal(data, &langData); err != nil {
			return fmt.Errorf("ошибка парсинга файла локализации %s/%s: %w", source, name, err)
		}
		loaded[lang] = langData
	}

	translations.Lock()
	for lang, langData := range loaded {
		translations.data[lang] = langData
		log.Printf("Загружена локализация: %s (%d ключей)", lang, len(langData))
	}
	translations.Unlock()

	return nil
}

// ensureLoaded подгружает встроенные переводы, если Load ещё не вызывался
func ensureLoaded() {
	embeddedOnce.Do(func() {
		translations.RLock()
		empty := len(translations.data) == 0
		translations.RUnlock()
		if !empty {
			return
		}
		if err := LoadEmbedded(); err != nil {
			log.Printf("Ошибка загрузки встроенных переводов: %v", err)
		}
	})
}

func lookup(key string, lang Language) (string, bool) {
	ensureLoaded()

	translations.RLock()
	defer translations.RUnlock()

	if langData, ok := translations.data[lang]; ok {
		if text, ok := langData[key]; ok {
			return text, true
		}
	}

	// Fallback на русский
	if lang != DefaultLang {
		if langData, ok := translations.data[DefaultLang]; ok {
			if text, ok := langData[key]; ok {
				return text, true
			}
		}
	}
	return "", false
}

// T возвращает перевод для указанного ключа и языка
func T(key string, lang Language) string {
	if text, ok := lookup(key, lang); ok {
		return text
	}

	// Если ключ не найден, возвращаем сам ключ
	log.Printf("Перевод не найден: key=%s, lang=%s", key, lang)
	return key
}

// Tf возвращает форматированный перевод
func Tf(key string, lang Language, args ...interface{}) string {
	template := T(key, lang)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// Has проверяет наличие ключа
func Has(key string, lang Language) bool {
	_, ok := lookup(key, lang)
	return ok
}

// Variants возвращает значения ключей prefix_1, prefix_2, ... до первого пропуска
func Variants(prefix string, lang Language) []string {
	var out []string
	for i := 1; ; i++ {
		text, ok := lookup(fmt.Sprintf("%s_%d", prefix, i), lang)
		if !ok {
			return out
		}
		out = append(out, text)
	}
}

// IsValidLanguage проверяет, является ли язык поддерживаемым
func IsValidLanguage(lang string) bool {
	switch Language(strings.ToLower(lang)) {
	case LangRussian, LangEnglish, LangUzbek:
		return true
	default:
		return false
	}
}

// ParseLanguage преобразует строку в Language
func ParseLanguage(lang string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(lang))) {
	case LangEnglish:
		return LangEnglish
	case LangUzbek:
		return LangUzbek
	default:
		return LangRussian
	}
}

// GetLanguageName возвращает название языка на этом языке
func GetLanguageName(lang Language) string {
	switch lang {
	case LangEnglish:
		return "English"
	case LangUzbek:
		return "O'zbekcha"
	default:
		return "Русский"
	}
}

// GetLanguageFlag возвращает флаг для языка
func GetLanguageFlag(lang Language) string {
	switch lang {
	case LangEnglish:
		return "🇬🇧"
	case LangUzbek:
		return "🇺🇿"
	default:
		return "🇷🇺"
	}
}
