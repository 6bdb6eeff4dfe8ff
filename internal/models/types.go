package models

import (
	"strings"
	"time"
)

// Goal цель пользователя
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalGain     Goal = "gain"
	GoalMaintain Goal = "maintain"
)

// ParseGoal принимает как короткие, так и длинные формы (lose_weight, gain_muscle)
func ParseGoal(s string) Goal {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lose", "lose_weight", "похудение", "похудеть":
		return GoalLose
	case "gain", "gain_muscle", "набор", "набор массы":
		return GoalGain
	default:
		return GoalMaintain
	}
}

// Gender пол пользователя
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsMale понимает русские и короткие варианты
func (g Gender) IsMale() bool {
	switch strings.ToLower(strings.TrimSpace(string(g))) {
	case "male", "m", "мужской", "м", "erkak":
		return true
	}
	return false
}

// Level уровень подготовки
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelAthlete      Level = "athlete"
)

// ParseLevel возвращает intermediate для неизвестных значений
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBeginner:
		return LevelBeginner
	case LevelAdvanced:
		return LevelAdvanced
	case LevelAthlete:
		return LevelAthlete
	default:
		return LevelIntermediate
	}
}

// UserProfile профиль пользователя бота
type UserProfile struct {
	UserID        int64
	Name          string
	Age           int
	Gender        Gender
	HeightCm      float64
	WeightKg      float64
	Goal          Goal
	Level         Level
	ActivityLevel string
	Language      string
	Location      string
	Limitations   string

	DailyCalories int
	DailyProtein  int
	DailyFats     int
	DailyCarbs    int

	ReferredBy      int64
	SubscriptionEnd *time.Time
	LastFreeTip     *time.Time
	TotalPayments   float64

	CreatedAt  time.Time
	LastActive time.Time
}

// HasSubscription проверяет активную подписку на момент now
func (p *UserProfile) HasSubscription(now time.Time) bool {
	return p.SubscriptionEnd != nil && p.SubscriptionEnd.After(now)
}

// ProfileUpdate частичное обновление профиля, nil поля не меняются
type ProfileUpdate struct {
	Name          *string
	Age           *int
	Gender        *Gender
	HeightCm      *float64
	WeightKg      *float64
	Goal          *Goal
	Level         *Level
	ActivityLevel *string
	Language      *string
	Location      *string
	Limitations   *string

	DailyCalories *int
	DailyProtein  *int
	DailyFats     *int
	DailyCarbs    *int

	ReferredBy      *int64
	SubscriptionEnd *time.Time
	LastFreeTip     *time.Time
	TotalPayments   *float64
}

// FoodPreferences ограничения и предпочтения в питании
type FoodPreferences struct {
	Allergies     []string
	Diet          string // vegetarian, vegan, pescatarian
	Excludes      []string
	Favorites     []string
	Available     []string
	IncludeSnacks bool
}

// Preference types stored in food_preferences
const (
	PrefAllergy   = "allergy"
	PrefDiet      = "diet"
	PrefExclude   = "exclude"
	PrefFavorite  = "favorite"
	PrefAvailable = "available"
	PrefSnacks    = "snacks"
)
