package quality

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind тип проверяемого ответа
type Kind string

const (
	KindNutrition Kind = "nutrition"
	KindWorkout   Kind = "workout"
)

// Response результат ValidateResponse
type Response struct {
	Valid  bool
	Reason string
	Text   string // очищенный текст
}

var (
	serviceTokensRe = regexp.MustCompile(`</?s>|BOS|EOS|/\*|\*/|###|\*\*|\*`)
	caloriesRe      = regexp.MustCompile(`(?i)(\d+)\s*(ккал|kcal|kkal|calories)`)
)

var nutritionKeywords = []string{
	"завтрак", "обед", "ужин", "перекус", "ккал", "грамм", "рецепт", "калори",
	"breakfast", "lunch", "dinner", "snack", "kcal", "calories", "recipe", "meal",
	"nonushta", "tushlik", "kechki", "gazak", "kkal", "retsept", "ovqat",
}

var workoutKeywords = []string{
	"упражнение", "подход", "повторени", "разминка", "заминка", "тренировка", "сет",
	"exercise", "set", "rep", "workout", "warm", "cool", "training",
	"mashq", "takror", "issiq", "mashg'ulot", "trening",
}

const (
	ngramSize      = 5
	ngramMaxRepeat = 3
	minWords       = 10
)

// ValidateResponse проверяет, что текст похож на план нужного типа и не
// зациклился на повторах. labels - постоянные подписи форматтера, строки с
// ними в поиске повторов не участвуют.
func ValidateResponse(text string, kind Kind, labels ...string) Response {
	clean := strings.TrimSpace(serviceTokensRe.ReplaceAllString(text, ""))
	lower := strings.ToLower(clean)

	switch kind {
	case KindNutrition:
		if countKeywords(lower, nutritionKeywords) < 2 && !caloriesRe.MatchString(clean) {
			return Response{Reason: "План питания не содержит достаточно информации", Text: clean}
		}
	case KindWorkout:
		if countKeywords(lower, workoutKeywords) < 1 {
			return Response{Reason: "План тренировки не содержит достаточно информации", Text: clean}
		}
	}

	lowerLabels := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			lowerLabels = append(lowerLabels, l)
		}
	}
	if hasRepeatedNgrams(lower, lowerLabels) {
		return Response{Reason: "Текст содержит многократные повторы", Text: clean}
	}

	return Response{Valid: true, Text: clean}
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// hasRepeatedNgrams ищет 5-граммы, встречающиеся больше трёх раз. Окно идёт
// по всему тексту через переносы строк, строки-подписи пропускаются.
func hasRepeatedNgrams(lower string, labels []string) bool {
	var words []string
	for _, line := range strings.Split(lower, "\n") {
		if isLabelLine(line, labels) {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if len(words) <= minWords {
		return false
	}

	counts := make(map[string]int)
	for i := 0; i+ngramSize <= len(words); i++ {
		key := strings.Join(words[i:i+ngramSize], " ")
		counts[key]++
		if counts[key] > ngramMaxRepeat {
			return true
		}
	}
	return false
}

// isLabelLine строка вида "🔢 подходы: 3", "🌅 завтрак" или "- bmr: 1600":
// перед подписью только значок, после неё двоеточие, "!" или конец строки
func isLabelLine(line string, labels []string) bool {
	line = strings.TrimSpace(line)
	for _, label := range labels {
		idx := strings.Index(line, label)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len(label):])
		if rest != "" && !strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, "!") {
			continue
		}
		before := strings.Fields(line[:idx])
		if len(before) <= 2 && !hasWordLetters(line[:idx]) {
			return true
		}
	}
	return false
}

// hasWordLetters есть ли в s кириллица или латиница
func hasWordLetters(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) || (r >= 'a' && r <= 'z') {
			return true
		}
	}
	return false
}
