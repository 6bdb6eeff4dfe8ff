// Package quality проверяет сгенерированные планы. Результат носит
// рекомендательный характер: бот может отправить план и с ошибками.
package quality

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Result результат проверки плана
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Score    int
}

func (r *Result) addError(penalty int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Score -= penalty
}

func (r *Result) addWarning(penalty int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	r.Score -= penalty
}

func (r *Result) finish() Result {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	r.Valid = len(r.Errors) == 0
	return *r
}

var (
	englishWordRe = regexp.MustCompile(`\b[A-Za-z]{5,}\b`)
	cyrillicRe    = regexp.MustCompile(`[А-Яа-яЁё]`)

	totalRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)итого в плане[:\s]+(\d+)\s*(?:ккал|kcal|kkal)`),
		regexp.MustCompile(`(?i)total in plan[:\s]+(\d+)\s*(?:ккал|kcal|kkal)`),
		regexp.MustCompile(`(?i)rejada jami[:\s]+(\d+)\s*(?:ккал|kcal|kkal)`),
	}

	proteinRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)белк[иа][:\s]+(\d+\.?\d*)\s*г`),
		regexp.MustCompile(`(?i)protein[:\s]+(\d+\.?\d*)\s*g`),
		regexp.MustCompile(`(?i)oqsil[:\s]+(\d+\.?\d*)\s*g`),
	}
	fatRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)жир[ыа][:\s]+(\d+\.?\d*)\s*г`),
		regexp.MustCompile(`(?i)fat[:\s]+(\d+\.?\d*)\s*g`),
		regexp.MustCompile(`(?i)yog'[:\s]+(\d+\.?\d*)\s*g`),
	}
	carbsRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)углевод[ыа][:\s]+(\d+\.?\d*)\s*г`),
		regexp.MustCompile(`(?i)carbs[:\s]+(\d+\.?\d*)\s*g`),
		regexp.MustCompile(`(?i)uglevodlar[:\s]+(\d+\.?\d*)\s*g`),
	}

	ingredientRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)🛒.*ингредиент`),
		regexp.MustCompile(`(?i)🛒.*ingredient`),
		regexp.MustCompile(`(?i)•.*—.*г`),
		regexp.MustCompile(`(?i)•.*—.*g`),
	}
	stepRes = []*regexp.Regexp{
		regexp.MustCompile(`👨‍🍳.*[Пп]риготовление`),
		regexp.MustCompile(`👨‍🍳.*[Pp]reparation`),
		regexp.MustCompile(`👨‍🍳.*[Tt]ayyorlash`),
		regexp.MustCompile(`\d+\.\s+[А-ЯЁA-Z]`),
	}

	separatorRe = regexp.MustCompile(`─+`)
	numberedRe  = regexp.MustCompile(`(?m)^\d+\.\s+[А-ЯЁA-Z]`)
	setsRe      = regexp.MustCompile(`(?i)подход[ыа]|sets|setlar`)
	repsRe      = regexp.MustCompile(`(?i)повторени[яй]|reps|takrorlar`)

	techniqueRes = map[string]*regexp.Regexp{
		"ru": regexp.MustCompile(`(?i)техник[аи]|✅`),
		"en": regexp.MustCompile(`(?i)technique|✅`),
		"uz": regexp.MustCompile(`(?i)texnika|✅`),
	}
)

// allowedLatin термины, допустимые в русском тексте
var allowedLatin = map[string]bool{"BMR": true, "TDEE": true}

// sectionMarkers обязательные секции плана питания
var sectionMarkers = map[string][]struct{ Name, Marker string }{
	"ru": {{"Завтрак", "🌅"}, {"Обед", "🍽"}, {"Ужин", "🌙"}, {"Питательная ценность", "📊"}, {"Совет", "💡"}},
	"en": {{"Breakfast", "🌅"}, {"Lunch", "🍽"}, {"Dinner", "🌙"}, {"Nutritional value", "📊"}, {"Tip", "💡"}},
	"uz": {{"Nonushta", "🌅"}, {"Tushlik", "🍽"}, {"Kechki ovqat", "🌙"}, {"Ozuqaviy qiymat", "📊"}, {"Maslahat", "💡"}},
}

// VerifyNutritionPlan проверяет текст плана питания
func VerifyNutritionPlan(text string, targetCalories int, lang string) Result {
	r := &Result{Score: 100}

	if !CheckLanguagePurity(text, lang) {
		r.addError(30, "Обнаружено смешивание языков (ожидался %s)", lang)
	}

	if parsed := ParseTotalCalories(text); parsed > 0 {
		diff := absInt(parsed - targetCalories)
		switch {
		case diff > 200:
			r.addError(25, "Калории сильно не сходятся: %d vs %d (разница %d)", parsed, targetCalories, diff)
		case diff > 100:
			r.addWarning(10, "Калории немного не сходятся: %d vs %d (разница %d)", parsed, targetCalories, diff)
		}
	}

	var missing []string
	for _, s := range sectionMarkers[lang] {
		if !strings.Contains(text, s.Marker) {
			missing = append(missing, s.Name)
			r.Score -= 10
		}
	}
	if len(missing) > 0 {
		r.Errors = append(r.Errors, "Отсутствуют секции: "+strings.Join(missing, ", "))
	}

	if !matchAny(ingredientRes, text) {
		r.addError(15, "В плане отсутствуют ингредиенты")
	}
	if !matchAny(stepRes, text) {
		r.addWarning(5, "В плане могут отсутствовать шаги приготовления")
	}

	if macros, ok := ParseMacros(text); ok {
		for _, w := range validateMacros(macros, targetCalories) {
			r.addWarning(5, "%s", w)
		}
	}

	return r.finish()
}

// VerifyWorkoutPlan проверяет текст плана тренировки
func VerifyWorkoutPlan(text, lang string) Result {
	r := &Result{Score: 100}

	if !CheckLanguagePurity(text, lang) {
		r.addError(30, "Обнаружено смешивание языков (ожидался %s)", lang)
	}

	switch count := CountExercises(text); {
	case count == 0:
		r.addError(40, "В плане нет упражнений")
	case count < 3:
		r.addWarning(10, "Мало упражнений в плане: %d", count)
	}

	if !setsRe.MatchString(text) && !repsRe.MatchString(text) {
		r.addWarning(15, "Возможно отсутствует информация о подходах и повторениях")
	}

	re, ok := techniqueRes[lang]
	if !ok {
		re = techniqueRes["ru"]
	}
	if !re.MatchString(text) {
		r.addWarning(10, "Отсутствует описание техники выполнения")
	}

	return r.finish()
}

// CheckLanguagePurity: в русском тексте меньше трёх длинных английских слов,
// в английском и узбекском нет кириллицы
func CheckLanguagePurity(text, lang string) bool {
	switch lang {
	case "ru":
		count := 0
		for _, w := range englishWordRe.FindAllString(text, -1) {
			if !allowedLatin[strings.ToUpper(w)] {
				count++
			}
		}
		return count < 3
	case "en", "uz":
		return !cyrillicRe.MatchString(text)
	}
	return true
}

// ParseTotalCalories ищет строку «Итого в плане: N ккал», 0 если не найдена
func ParseTotalCalories(text string) int {
	for _, re := range totalRes {
		if m := re.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// Macros суммарные БЖУ, найденные в тексте
type Macros struct {
	Protein float64
	Fat     float64
	Carbs   float64
}

// ParseMacros суммирует все упоминания белков, жиров и углеводов
func ParseMacros(text string) (Macros, bool) {
	m := Macros{
		Protein: sumMatches(proteinRes, text),
		Fat:     sumMatches(fatRes, text),
		Carbs:   sumMatches(carbsRes, text),
	}
	return m, m.Protein > 0 || m.Fat > 0 || m.Carbs > 0
}

func validateMacros(m Macros, targetCalories int) []string {
	var warnings []string

	calculated := m.Protein*4 + m.Fat*9 + m.Carbs*4
	if math.Abs(calculated-float64(targetCalories)) > 200 {
		warnings = append(warnings, fmt.Sprintf("Калории из макросов (%.0f) не соответствуют целевым (%d)", calculated, targetCalories))
	}
	if calculated <= 0 {
		return warnings
	}

	protein := m.Protein * 4 / calculated * 100
	fat := m.Fat * 9 / calculated * 100

	switch {
	case protein < 15:
		warnings = append(warnings, fmt.Sprintf("Слишком мало белка: %.0f%% от калорий", protein))
	case protein > 40:
		warnings = append(warnings, fmt.Sprintf("Слишком много белка: %.0f%% от калорий", protein))
	}
	switch {
	case fat < 15:
		warnings = append(warnings, fmt.Sprintf("Слишком мало жиров: %.0f%% от калорий", fat))
	case fat > 40:
		warnings = append(warnings, fmt.Sprintf("Слишком много жиров: %.0f%% от калорий", fat))
	}
	return warnings
}

// CountExercises max(разделители - 1, нумерованные строки)
func CountExercises(text string) int {
	separators := len(separatorRe.FindAllString(text, -1)) - 1
	numbered := len(numberedRe.FindAllString(text, -1))
	if separators > numbered {
		return separators
	}
	return numbered
}

func sumMatches(res []*regexp.Regexp, text string) float64 {
	total := 0.0
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				total += v
			}
		}
	}
	return total
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
