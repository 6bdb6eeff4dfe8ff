// Package generator собирает планы питания и тренировок из справочников,
// проверяет текст и повторяет генерацию, если проверка не пройдена.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fitbot/internal/generator/formatter"
	"fitbot/internal/i18n"
	"fitbot/internal/knowledge"
	"fitbot/internal/models"
	"fitbot/internal/quality"
)

// MaxAttempts сколько раз генерировать план, пока он не пройдёт проверку
const MaxAttempts = 3

// CacheKindPlan вид записи кэша с готовым текстом плана
const CacheKindPlan = "plan"

// Translator переводит текст плана на язык пользователя
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// PlanStore сохраняет готовые тексты планов, например для ссылки на сайт
type PlanStore interface {
	Set(ctx context.Context, kind, prompt, response string) error
}

// GenerationError все попытки генерации не прошли проверку
type GenerationError struct {
	Kind     quality.Kind
	Attempts int
	Last     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("генерация %s не удалась после %d попыток: %v", e.Kind, e.Attempts, e.Last)
}

func (e *GenerationError) Unwrap() error {
	return e.Last
}

// Result готовый план
type Result struct {
	PlanID   string
	Text     string
	Attempts int
	Quality  quality.Result

	Meal    *models.MealPlan
	Workout *models.WorkoutPlan
}

// Generator - генератор планов
type Generator struct {
	meals      *MealPlanner
	workouts   *WorkoutPlanner
	formatter  *formatter.TelegramFormatter
	translator Translator
	plans      PlanStore
	seed       int64
}

// Option настройка генератора
type Option func(*Generator)

// WithTranslator подключает перевод для текстов, не прошедших проверку языка
func WithTranslator(t Translator) Option {
	return func(g *Generator) { g.translator = t }
}

// WithPlanStore сохраняет каждый готовый план
func WithPlanStore(s PlanStore) Option {
	return func(g *Generator) { g.plans = s }
}

// WithSeed фиксирует случайность, для тестов
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// New создаёт генератор поверх справочника
func New(store *knowledge.Store, opts ...Option) *Generator {
	g := &Generator{
		formatter: formatter.NewTelegramFormatter(),
		seed:      time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.meals = NewMealPlanner(store, NewRecent(DefaultRecentSize), g.seed)
	g.workouts = NewWorkoutPlanner(store, NewRecent(DefaultRecentSize), g.seed)
	return g
}

// MealPlan генерирует и проверяет план питания
func (g *Generator) MealPlan(ctx context.Context, profile *models.UserProfile, prefs models.FoodPreferences, lang i18n.Language) (*Result, error) {
	return g.generate(ctx, quality.KindNutrition, lang, func() (*Result, int) {
		plan := g.meals.Plan(profile, prefs)
		return &Result{
			PlanID: plan.ID,
			Text:   g.formatter.FormatMealPlan(plan, lang),
			Meal:   plan,
		}, plan.TargetCalories
	})
}

// WorkoutPlan генерирует и проверяет план тренировки
func (g *Generator) WorkoutPlan(ctx context.Context, profile *models.UserProfile, req WorkoutRequest, lang i18n.Language) (*Result, error) {
	return g.generate(ctx, quality.KindWorkout, lang, func() (*Result, int) {
		plan := g.workouts.Plan(profile, req)
		return &Result{
			PlanID:  plan.ID,
			Text:    g.formatter.FormatWorkoutPlan(plan, lang),
			Workout: plan,
		}, 0
	})
}

func (g *Generator) generate(ctx context.Context, kind quality.Kind, lang i18n.Language, build func() (*Result, int)) (*Result, error) {
	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, target := build()
		res.Attempts = attempt

		text, err := g.ensureLanguage(ctx, res.Text, lang)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Перевод плана %s на %s не удался: %v", kind, lang, err)
		}
		res.Text = text

		if resp := quality.ValidateResponse(res.Text, kind, g.formatter.Labels(lang)...); !resp.Valid {
			last = errors.New(resp.Reason)
			log.Printf("Попытка %d/%d (%s): %s", attempt, MaxAttempts, kind, resp.Reason)
			continue
		}

		if kind == quality.KindNutrition {
			res.Quality = quality.VerifyNutritionPlan(res.Text, target, string(lang))
		} else {
			res.Quality = quality.VerifyWorkoutPlan(res.Text, string(lang))
		}
		if !res.Quality.Valid {
			last = errors.New(strings.Join(res.Quality.Errors, "; "))
			log.Printf("Попытка %d/%d (%s): оценка %d, %v", attempt, MaxAttempts, kind, res.Quality.Score, res.Quality.Errors)
			continue
		}

		if g.plans != nil {
			if err := g.plans.Set(ctx, CacheKindPlan, res.PlanID, res.Text); err != nil {
				log.Printf("Не удалось сохранить план %s: %v", res.PlanID, err)
			}
		}
		return res, nil
	}

	return nil, &GenerationError{Kind: kind, Attempts: MaxAttempts, Last: last}
}

// ensureLanguage переводит текст, только если в нём смешаны языки
func (g *Generator) ensureLanguage(ctx context.Context, text string, lang i18n.Language) (string, error) {
	if lang == i18n.LangRussian || g.translator == nil || quality.CheckLanguagePurity(text, string(lang)) {
		return text, nil
	}
	translated, err := g.translator.Translate(ctx, text, string(lang))
	if err != nil {
		return text, err
	}
	return translated, nil
}
