// Package gamification достижения, уровни и статистика тренировок
package gamification

import (
	"context"
	"fmt"
	"time"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/repository"
)

// Achievement описание достижения
type Achievement struct {
	Key  string
	Icon string
}

// Name название на языке пользователя
func (a Achievement) Name(lang i18n.Language) string {
	return i18n.T("ach_"+a.Key, lang)
}

type threshold struct {
	key   string
	value int
}

var (
	workoutThresholds = []threshold{
		{"first_workout", 1}, {"workouts_5", 5}, {"workouts_10", 10},
		{"workouts_25", 25}, {"workouts_50", 50}, {"workouts_100", 100},
	}
	streakThresholds = []threshold{
		{"streak_3", 3}, {"streak_7", 7}, {"streak_14", 14}, {"streak_30", 30},
	}
	calorieThresholds = []threshold{
		{"calories_1000", 1000}, {"calories_5000", 5000}, {"calories_10000", 10000},
	}
)

// Achievements все достижения в порядке показа
var Achievements = []Achievement{
	{"first_workout", "🏋️"},
	{"workouts_5", "💪"},
	{"workouts_10", "⭐"},
	{"workouts_25", "🌟"},
	{"workouts_50", "🏆"},
	{"workouts_100", "👑"},
	{"streak_3", "🔥"},
	{"streak_7", "🔥🔥"},
	{"streak_14", "🔥🔥🔥"},
	{"streak_30", "🔥🔥🔥🔥"},
	{"calories_1000", "🔥"},
	{"calories_5000", "💥"},
	{"calories_10000", "🌋"},
	{"early_bird", "🌅"},
	{"night_owl", "🦉"},
	{"weekend_warrior", "⚔️"},
}

// Lookup достижение по ключу
func Lookup(key string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.Key == key {
			return a, true
		}
	}
	return Achievement{}, false
}

// Earned ключи достижений, на которые хватает статистики. at - время
// тренировки для особых достижений, нулевое значение их не проверяет.
func Earned(stats models.WorkoutStats, at time.Time) []string {
	var keys []string
	for _, th := range workoutThresholds {
		if stats.TotalWorkouts >= th.value {
			keys = append(keys, th.key)
		}
	}
	for _, th := range streakThresholds {
		if stats.CurrentStreak >= th.value {
			keys = append(keys, th.key)
		}
	}
	for _, th := range calorieThresholds {
		if stats.TotalCalories >= th.value {
			keys = append(keys, th.key)
		}
	}

	if !at.IsZero() {
		if at.Hour() < 7 {
			keys = append(keys, "early_bird")
		}
		if at.Hour() >= 22 {
			keys = append(keys, "night_owl")
		}
		if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
			keys = append(keys, "weekend_warrior")
		}
	}
	return keys
}

// Store операции с достижениями в базе
type Store interface {
	Add(ctx context.Context, userID int64, achievementType, name string) (bool, error)
	List(ctx context.Context, userID int64) ([]models.Achievement, error)
}

// StatsSource статистика тренировок
type StatsSource interface {
	Stats(ctx context.Context, userID int64, now time.Time) (models.WorkoutStats, error)
}

// System выдаёт достижения
type System struct {
	achievements Store
	workouts     StatsSource
}

// NewSystem создаёт систему на репозиториях
func NewSystem(repo *repository.Repository) *System {
	return &System{achievements: repo.Achievement, workouts: repo.Workout}
}

// CheckAndAward выдаёт все заслуженные достижения и возвращает новые.
// Повторная проверка ничего не выдаёт.
func (s *System) CheckAndAward(ctx context.Context, userID int64, workoutAt time.Time) ([]Achievement, error) {
	now := workoutAt
	if now.IsZero() {
		now = time.Now()
	}
	stats, err := s.workouts.Stats(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	var awarded []Achievement
	for _, key := range Earned(stats, workoutAt) {
		a, _ := Lookup(key)
		isNew, err := s.achievements.Add(ctx, userID, key, a.Name(i18n.DefaultLang))
		if err != nil {
			return awarded, fmt.Errorf("ошибка выдачи достижения %s: %w", key, err)
		}
		if isNew {
			awarded = append(awarded, a)
		}
	}
	return awarded, nil
}

// List полученные достижения пользователя
func (s *System) List(ctx context.Context, userID int64) ([]Achievement, error) {
	rows, err := s.achievements.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Achievement, 0, len(rows))
	for _, r := range rows {
		if a, ok := Lookup(r.AchievementType); ok {
			out = append(out, a)
		}
	}
	return out, nil
}
