package formatter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"fitbot/internal/i18n"
	"fitbot/internal/knowledge"
	"fitbot/internal/models"
	"fitbot/internal/quality"
)

func testPlan() *models.MealPlan {
	return &models.MealPlan{
		ID:   "plan-1",
		Goal: models.GoalLose,
		Meals: []models.PlannedMeal{
			{
				MealType: models.MealBreakfast,
				Names:    models.Localized{"ru": "Овсянка", "en": "Oatmeal", "uz": "Suli bo'tqasi"},
				Ingredients: []models.PlannedIngredient{
					{Key: "oatmeal", Names: models.Localized{"ru": "Овсяные хлопья", "en": "Oatmeal", "uz": "Suli"}, Grams: 60},
				},
				Steps:     models.LocalizedList{"ru": {"Сварите кашу."}, "en": {"Cook the porridge."}, "uz": {"Bo'tqani pishiring."}},
				Tip:       models.Localized{"ru": "Добавьте ягоды.", "en": "Add berries.", "uz": "Rezavor qo'shing."},
				Nutrition: models.Nutrition{Calories: 400, Protein: 20, Fat: 10, Carbs: 55.5},
			},
			{
				MealType:  models.MealDinner,
				Names:     models.Localized{"ru": "Треска", "en": "Cod", "uz": "Treska"},
				Nutrition: models.Nutrition{Calories: 350, Protein: 35, Fat: 8, Carbs: 20},
			},
		},
		TargetCalories: 800,
		BMR:            1600,
		TDEE:           2400,
		WaterML:        2500,
	}
}

func TestFormatMealPlan(t *testing.T) {
	f := NewTelegramFormatter()

	for _, lang := range i18n.Languages {
		t.Run(string(lang), func(t *testing.T) {
			text := f.FormatMealPlan(testPlan(), lang)

			if got := quality.ParseTotalCalories(text); got != 750 {
				t.Errorf("ParseTotalCalories() = %d, want 750", got)
			}
			macros, ok := quality.ParseMacros(text)
			if !ok || macros.Protein != 55 || macros.Carbs != 75.5 {
				t.Errorf("ParseMacros() = %+v, want protein 55 carbs 75.5", macros)
			}
			if !quality.CheckLanguagePurity(text, string(lang)) {
				t.Errorf("language is mixed:\n%s", text)
			}
			if !strings.Contains(text, "2.5") {
				t.Errorf("water amount missing:\n%s", text)
			}
			if resp := quality.ValidateResponse(text, quality.KindNutrition, f.Labels(lang)...); !resp.Valid {
				t.Errorf("ValidateResponse() reason = %q", resp.Reason)
			}
			if strings.Count(text, i18n.T("meal_preparation", lang)) != 1 {
				t.Error("meal without steps should not print a preparation header")
			}
		})
	}
}

func TestFormatMealPlanAdviceIsStable(t *testing.T) {
	f := NewTelegramFormatter()
	a := f.FormatMealPlan(testPlan(), i18n.LangRussian)
	b := f.FormatMealPlan(testPlan(), i18n.LangRussian)
	if a != b {
		t.Error("same plan formatted differently")
	}
}

func TestFormatWorkoutPlan(t *testing.T) {
	store, err := knowledge.NewEmbedded()
	if err != nil {
		t.Fatal(err)
	}

	var exercises []models.PlannedExercise
	for _, id := range []string{"pushups", "dumbbell_press", "bench_press", "dips", "plank"} {
		for _, ex := range store.Exercises() {
			if ex.ID == id {
				exercises = append(exercises, models.PlannedExercise{Exercise: ex, Progression: ex.ProgressionFor(models.LevelBeginner)})
			}
		}
	}
	plan := &models.WorkoutPlan{
		ID:               "w-1",
		Type:             models.WorkoutUpperBody,
		Level:            models.LevelBeginner,
		Exercises:        exercises,
		EstimatedMinutes: 30,
	}

	for _, lang := range i18n.Languages {
		t.Run(string(lang), func(t *testing.T) {
			text := NewTelegramFormatter().FormatWorkoutPlan(plan, lang)

			if got := quality.CountExercises(text); got != 5 {
				t.Errorf("CountExercises() = %d, want 5", got)
			}
			// chest, triceps, shoulders и abs объясняются по одному разу
			if got := strings.Count(text, i18n.T("workout_explanation", lang)); got != 4 {
				t.Errorf("explanations = %d, want 4", got)
			}
			if got := strings.Count(text, i18n.T("muscle_chest", lang)); got != 1 {
				t.Errorf("chest explained %d times", got)
			}
			if res := quality.VerifyWorkoutPlan(text, string(lang)); !res.Valid {
				t.Errorf("VerifyWorkoutPlan() errors = %v", res.Errors)
			}
			f := NewTelegramFormatter()
			if resp := quality.ValidateResponse(text, quality.KindWorkout, f.Labels(lang)...); !resp.Valid {
				t.Errorf("ValidateResponse() reason = %q", resp.Reason)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		if got := SplitMessage("привет", 100); len(got) != 1 || got[0] != "привет" {
			t.Errorf("SplitMessage() = %q", got)
		}
	})

	t.Run("by lines", func(t *testing.T) {
		lines := make([]string, 50)
		for i := range lines {
			lines[i] = strings.Repeat("строка", 5)
		}
		text := strings.Join(lines, "\n")

		parts := SplitMessage(text, 500)
		if len(parts) < 2 {
			t.Fatalf("got %d parts", len(parts))
		}
		for _, p := range parts {
			if len(p) > 500 {
				t.Errorf("part is %d bytes", len(p))
			}
		}
		if strings.Join(parts, "\n") != text {
			t.Error("parts do not join back to the text")
		}
	})

	t.Run("no newlines", func(t *testing.T) {
		text := strings.Repeat("ж", 1000)
		parts := SplitMessage(text, 301)
		for _, p := range parts {
			if !utf8.ValidString(p) {
				t.Errorf("part cut inside a rune: %q", p)
			}
			if len(p) > 301 {
				t.Errorf("part is %d bytes", len(p))
			}
		}
		if strings.Join(parts, "") != text {
			t.Error("parts do not join back to the text")
		}
	})
}
