// Package translate переводит тексты планов через Google Translate
package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// MaxChunk максимальная длина одного запроса, в символах
const MaxChunk = 4500

// sourceLang язык, на котором написаны шаблоны
const sourceLang = "ru"

// Google переводчик на Cloud Translation API v2
type Google struct {
	svc *translate.Service
}

// NewGoogle создаёт переводчик с ключом API. opts нужны для тестов и прокси.
func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента перевода: %w", err)
	}
	return &Google{svc: svc}, nil
}

// Translate переводит text на язык target. Русский возвращается как есть.
func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	if target == "" || target == sourceLang || strings.TrimSpace(text) == "" {
		return text, nil
	}

	chunks := Chunks(text, MaxChunk)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		resp, err := g.svc.Translations.List([]string{chunk}, target).
			Source(sourceLang).
			Format("text").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("ошибка перевода на %s: %w", target, err)
		}
		if len(resp.Translations) == 0 {
			return "", fmt.Errorf("пустой ответ перевода на %s", target)
		}
		out = append(out, resp.Translations[0].TranslatedText)
	}
	return strings.Join(out, "\n\n"), nil
}

// Chunks делит текст по пустым строкам на части не длиннее limit символов.
// Абзац длиннее limit делится по строкам, строка длиннее limit - по символам.
func Chunks(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	add := func(part, sep string) {
		n := len([]rune(part))
		if curLen > 0 && curLen+len(sep)+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(sep)
			curLen += len(sep)
		}
		cur.WriteString(part)
		curLen += n
	}

	for _, para := range strings.Split(text, "\n\n") {
		if len([]rune(para)) <= limit {
			add(para, "\n\n")
			continue
		}
		flush()
		for _, line := range strings.Split(para, "\n") {
			runes := []rune(line)
			for len(runes) > limit {
				flush()
				chunks = append(chunks, string(runes[:limit]))
				runes = runes[limit:]
			}
			add(string(runes), "\n")
		}
		flush()
	}
	flush()
	return chunks
}
