package models

import "time"

// WorkoutEntry запись о выполненной тренировке
type WorkoutEntry struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	WorkoutDate     time.Time `db:"workout_date"`
	WorkoutType     string    `db:"workout_type"`
	DurationMinutes int       `db:"duration_minutes"`
	CaloriesBurned  int       `db:"calories_burned"`
	ExercisesCount  int       `db:"exercises_count"`
	WorkoutData     string    `db:"workout_data"` // JSON
	Completed       bool      `db:"completed"`
}

// MealEntry запись о приёме пищи
type MealEntry struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	MealDate time.Time `db:"meal_date"`
	MealType string    `db:"meal_type"`
	MealName string    `db:"meal_name"`
	Calories int       `db:"calories"`
	Protein  float64   `db:"protein"`
	Fats     float64   `db:"fats"`
	Carbs    float64   `db:"carbs"`
}

// Measurement замер тела
type Measurement struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	MeasurementDate time.Time `db:"measurement_date"`
	Weight          float64   `db:"weight"`
	Chest           float64   `db:"chest"`
	Waist           float64   `db:"waist"`
	Hips            float64   `db:"hips"`
	Biceps          float64   `db:"biceps"`
	Notes           string    `db:"notes"`
}

// Achievement полученное достижение
type Achievement struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	AchievementType string    `db:"achievement_type"`
	AchievementName string    `db:"achievement_name"`
	EarnedAt        time.Time `db:"earned_at"`
}

// Streak серия тренировок подряд
type Streak struct {
	UserID          int64      `db:"user_id"`
	CurrentStreak   int        `db:"current_streak"`
	LongestStreak   int        `db:"longest_streak"`
	LastWorkoutDate *time.Time `db:"last_workout_date"`
}

// WorkoutStats агрегированная статистика
type WorkoutStats struct {
	TotalWorkouts int
	TotalMinutes  int
	TotalCalories int
	AvgDuration   float64
	WorkoutsWeek  int
	CurrentStreak int
	LongestStreak int
}

// Payment запись об оплате подписки
type Payment struct {
	ID              string    `db:"id"`
	UserID          int64     `db:"user_id"`
	Provider        string    `db:"provider"` // stars, yookassa
	SubscriptionKey string    `db:"subscription_key"`
	Amount          float64   `db:"amount"`
	Currency        string    `db:"currency"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
}
