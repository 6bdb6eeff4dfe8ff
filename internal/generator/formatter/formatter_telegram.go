package formatter

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
)

const (
	exerciseSeparator = "─────────────────────────"
	planSeparator     = "═════════════════════════"

	// MaxMessageLen лимит Telegram с запасом на UTF-16
	MaxMessageLen = 4000

	maxMistakes = 3
)

// TelegramFormatter - форматтер для Telegram
type TelegramFormatter struct{}

// NewTelegramFormatter создаёт новый форматтер
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{}
}

// labelKeys ключи постоянных подписей, которые повторяются в каждом плане
var labelKeys = []string{
	"meal_title", "meal_total", "meal_ready", "meal_target", "meal_recognized",
	"meal_metabolism", "meal_water", "meal_advice", "meal_enjoy",
	"meal_breakfast", "meal_lunch", "meal_dinner", "meal_snack",
	"meal_ingredients", "meal_preparation", "meal_nutrition", "meal_tip",
	"label_calories", "label_protein", "label_fat", "label_carbs",
	"label_sets", "label_reps", "label_rest", "label_duration",
	"workout_title", "workout_type", "workout_level", "workout_technique",
	"workout_mistakes", "workout_explanation", "workout_ready", "workout_advice",
	"workout_good_luck",
}

// Labels подписи форматтера на языке lang, для проверки повторов в тексте
func (f *TelegramFormatter) Labels(lang i18n.Language) []string {
	labels := []string{"BMR", "TDEE"}
	for _, key := range labelKeys {
		if i18n.Has(key, lang) {
			labels = append(labels, i18n.T(key, lang))
		}
	}
	return labels
}

// FormatMealPlan форматирует план питания на языке lang
func (f *TelegramFormatter) FormatMealPlan(plan *models.MealPlan, lang i18n.Language) string {
	var sb strings.Builder
	t := func(key string) string { return i18n.T(key, lang) }

	sb.WriteString(t("meal_title"))
	sb.WriteString("\n\n")

	for _, meal := range plan.Meals {
		sb.WriteString(f.formatMeal(meal, lang))
		sb.WriteString("\n")
	}

	total := plan.TotalCalories()
	kcal := t("unit_kcal")

	sb.WriteString(fmt.Sprintf("📊 %s: %d %s\n", t("meal_total"), total, kcal))
	sb.WriteString(exerciseSeparator + "\n")
	sb.WriteString(t("meal_ready") + "\n\n")
	sb.WriteString(fmt.Sprintf("🎯 %s: %d %s\n", t("meal_target"), plan.TargetCalories, kcal))
	sb.WriteString(fmt.Sprintf("📋 %s: %d %s\n\n", t("meal_recognized"), total, kcal))

	sb.WriteString(t("meal_metabolism") + "\n")
	sb.WriteString(fmt.Sprintf("- BMR: %d %s\n", plan.BMR, kcal))
	sb.WriteString(fmt.Sprintf("- TDEE: %d %s\n", plan.TDEE, kcal))
	sb.WriteString(fmt.Sprintf("- 💧 %s: %.1f %s %s\n\n", t("meal_water"), float64(plan.WaterML)/1000, t("unit_l"), t("meal_per_day")))

	if advice := pick(i18n.Variants("advice_"+string(plan.Goal), lang), plan.ID); advice != "" {
		sb.WriteString("🎯 " + advice + "\n\n")
	}
	sb.WriteString(t("meal_advice") + "\n")
	sb.WriteString(t("meal_enjoy"))

	return sb.String()
}

// formatMeal форматирует один приём пищи
func (f *TelegramFormatter) formatMeal(meal models.PlannedMeal, lang i18n.Language) string {
	var sb strings.Builder
	l := string(lang)
	t := func(key string) string { return i18n.T(key, lang) }
	g := t("unit_g")

	sb.WriteString(t("meal_"+string(meal.MealType)) + "\n")
	sb.WriteString("🍳 " + meal.Names.Get(l) + "\n\n")

	sb.WriteString(t("meal_ingredients") + "\n")
	for _, ing := range meal.Ingredients {
		sb.WriteString(fmt.Sprintf("🔸 %s — %d %s\n", ing.Names.Get(l), ing.Grams, g))
	}
	sb.WriteString("\n")

	if steps := meal.Steps.Get(l); len(steps) > 0 {
		sb.WriteString(t("meal_preparation") + "\n")
		for _, step := range steps {
			sb.WriteString("🥘 " + step + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(t("meal_nutrition") + "\n")
	sb.WriteString(fmt.Sprintf("➡️ %s: %d %s\n", t("label_calories"), meal.Calories, t("unit_kcal")))
	sb.WriteString(fmt.Sprintf("➡️ %s: %.1f %s\n", t("label_protein"), meal.Protein, g))
	sb.WriteString(fmt.Sprintf("➡️ %s: %.1f %s\n", t("label_fat"), meal.Fat, g))
	sb.WriteString(fmt.Sprintf("➡️ %s: %.1f %s\n", t("label_carbs"), meal.Carbs, g))

	if tip := meal.Tip.Get(l); tip != "" {
		sb.WriteString("\n" + t("meal_tip") + "\n")
		sb.WriteString(tip + "\n")
	}

	return sb.String()
}

// FormatWorkoutPlan форматирует план тренировки на языке lang
func (f *TelegramFormatter) FormatWorkoutPlan(plan *models.WorkoutPlan, lang i18n.Language) string {
	var sb strings.Builder
	t := func(key string) string { return i18n.T(key, lang) }

	sb.WriteString(t("workout_title") + "\n\n")
	sb.WriteString(fmt.Sprintf("📋 %s: %s\n", t("workout_type"), t("wtype_"+string(plan.Type))))
	sb.WriteString(fmt.Sprintf("⭐ %s: %s\n", t("workout_level"), t("level_"+string(plan.Level))))
	if plan.EstimatedMinutes > 0 {
		sb.WriteString("🕒 " + i18n.Tf("workout_estimate", lang, plan.EstimatedMinutes, plan.EstimatedCalories) + "\n")
	}
	sb.WriteString("\n")

	explained := make(map[string]bool)
	for i, ex := range plan.Exercises {
		sb.WriteString(exerciseSeparator + "\n")
		sb.WriteString(f.formatExercise(i+1, ex, lang, explained))
		sb.WriteString("\n")
	}

	sb.WriteString(planSeparator + "\n")
	sb.WriteString(t("workout_ready") + "\n\n")
	sb.WriteString(t("workout_advice") + "\n")
	sb.WriteString(t("workout_good_luck"))

	return sb.String()
}

// formatExercise форматирует упражнение. Объяснение группы мышц выводится
// один раз за план: берётся первая ещё не описанная группа упражнения.
func (f *TelegramFormatter) formatExercise(num int, ex models.PlannedExercise, lang i18n.Language, explained map[string]bool) string {
	var sb strings.Builder
	l := string(lang)
	t := func(key string) string { return i18n.T(key, lang) }

	// Номер и название
	sb.WriteString(fmt.Sprintf("%d. %s\n", num, ex.Exercise.Names.Get(l)))

	switch {
	case ex.DurationMinutes > 0:
		sb.WriteString(fmt.Sprintf("⏱ %s: %d %s\n", t("label_duration"), ex.DurationMinutes, t("unit_min")))
	case ex.DurationSeconds > 0:
		if ex.Sets > 0 {
			sb.WriteString(fmt.Sprintf("🔢 %s: %d\n", t("label_sets"), ex.Sets))
		}
		sb.WriteString(fmt.Sprintf("⏱ %s: %d %s\n", t("label_duration"), ex.DurationSeconds, t("unit_sec")))
	default:
		sb.WriteString(fmt.Sprintf("🔢 %s: %d\n", t("label_sets"), ex.Sets))
		sb.WriteString(fmt.Sprintf("🔁 %s: %s\n", t("label_reps"), ex.Reps))
	}
	sb.WriteString(fmt.Sprintf("⏸ %s: %d %s\n", t("label_rest"), ex.RestSeconds, t("unit_sec")))

	if technique := ex.Exercise.Technique.Get(l); technique != "" {
		sb.WriteString(fmt.Sprintf("\n✅ %s:\n%s\n", t("workout_technique"), technique))
	}

	if mistakes := ex.Exercise.CommonMistakes.Get(l); len(mistakes) > 0 {
		sb.WriteString(fmt.Sprintf("\n❌ %s:\n", t("workout_mistakes")))
		for i, m := range mistakes {
			if i == maxMistakes {
				break
			}
			sb.WriteString("🔸 " + m + "\n")
		}
	}

	for _, group := range ex.Exercise.MuscleGroups {
		key := "muscle_" + group
		if explained[group] || !i18n.Has(key, lang) {
			continue
		}
		explained[group] = true
		sb.WriteString(fmt.Sprintf("\nℹ️  %s:\n%s\n", t("workout_explanation"), t(key)))
		break
	}

	return sb.String()
}

// pick детерминированно выбирает вариант по идентификатору плана
func pick(variants []string, id string) string {
	if len(variants) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return variants[h.Sum32()%uint32(len(variants))]
}

// SplitMessage разбивает длинное сообщение на части по переносам строк
func SplitMessage(text string, maxLen int) []string {
	var parts []string
	for len(text) > maxLen {
		// Ищем последний перенос строки в пределах лимита
		cutIndex := -1
		for i := maxLen - 1; i > maxLen/2; i-- {
			if text[i] == '\n' {
				cutIndex = i
				break
			}
		}
		if cutIndex < 0 {
			// переноса нет, режем по границе символа
			cutIndex = maxLen
			for cutIndex > 0 && !utf8.RuneStart(text[cutIndex]) {
				cutIndex--
			}
		}
		parts = append(parts, text[:cutIndex])
		text = strings.TrimLeft(text[cutIndex:], "\n")
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}
