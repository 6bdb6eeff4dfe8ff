package nutrition

import (
	"math"
	"strings"

	"fitbot/internal/models"
)

// MealTarget калорийность одного приёма пищи
type MealTarget struct {
	MealType models.MealType
	Calories int
}

// Distribute делит дневную норму на приёмы пищи:
// без перекусов 25/40/35, с перекусами 20/10/35/10/25
func Distribute(total int, withSnacks bool) []MealTarget {
	kcal := float64(total)
	share := func(p float64) int { return int(math.Round(kcal * p)) }

	if !withSnacks {
		return []MealTarget{
			{models.MealBreakfast, share(0.25)},
			{models.MealLunch, share(0.40)},
			{models.MealDinner, share(0.35)},
		}
	}
	return []MealTarget{
		{models.MealBreakfast, share(0.20)},
		{models.MealSnack, share(0.10)},
		{models.MealLunch, share(0.35)},
		{models.MealSnack, share(0.10)},
		{models.MealDinner, share(0.25)},
	}
}

// DailySplit рекомендация 30/40/25/5 для экрана профиля
type DailySplit struct {
	Breakfast int
	Lunch     int
	Dinner    int
	Snacks    int
}

// SplitDay распределяет норму для показа пользователю
func SplitDay(total int) DailySplit {
	kcal := float64(total)
	return DailySplit{
		Breakfast: int(kcal * 0.30),
		Lunch:     int(kcal * 0.40),
		Dinner:    int(kcal * 0.25),
		Snacks:    int(kcal * 0.05),
	}
}

// MealMacros цели приёма пищи по БЖУ в граммах, доли 30/25/45
func MealMacros(calories int) (protein, fat, carbs float64) {
	kcal := float64(calories)
	return kcal * 0.30 / 4, kcal * 0.25 / 9, kcal * 0.45 / 4
}

// AdjustForTraining добавляет к норме часть сожжённых на тренировке калорий
func AdjustForTraining(base, workoutCalories int, goal models.Goal) int {
	switch goal {
	case models.GoalLose:
		return base + int(float64(workoutCalories)*0.3)
	case models.GoalGain:
		return base + int(float64(workoutCalories)*1.1)
	default:
		return base + workoutCalories
	}
}

// Prediction прогноз изменения веса
type Prediction struct {
	TotalDeficit  int
	WeightChange  float64
	ChangePerWeek float64
}

// PredictWeightChange 1 кг жира примерно 7700 ккал
func PredictWeightChange(dailyDeficit, weeks int) Prediction {
	total := dailyDeficit * 7 * weeks
	change := float64(total) / CaloriesPerKgFat
	perWeek := 0.0
	if weeks > 0 {
		perWeek = change / float64(weeks)
	}
	return Prediction{
		TotalDeficit:  total,
		WeightChange:  math.Round(change*10) / 10,
		ChangePerWeek: math.Round(perWeek*100) / 100,
	}
}

// IdealWeightRange диапазон веса для ИМТ 18.5-24.9
func IdealWeightRange(heightCm float64) (min, max float64) {
	h := heightCm / 100
	return math.Round(18.5*h*h*10) / 10, math.Round(24.9*h*h*10) / 10
}

// metValues MET по интенсивности
var metValues = map[string]float64{
	"high":     6.0,
	"medium":   5.0,
	"low":      4.0,
	"recovery": 3.0,
}

// WorkoutCaloriesMET калории тренировки по MET значению
func WorkoutCaloriesMET(weight float64, minutes int, intensity string) int {
	met, ok := metValues[strings.ToLower(intensity)]
	if !ok {
		met = 5.0
	}
	return int(math.Round(met * weight * float64(minutes) / 60))
}

// caloriesPerMinute расход по типу тренировки
var caloriesPerMinute = map[models.WorkoutType]int{
	models.WorkoutStrength:    6,
	models.WorkoutCardio:      10,
	models.WorkoutFlexibility: 3,
	models.WorkoutFullBody:    8,
	models.WorkoutUpperBody:   6,
	models.WorkoutLowerBody:   6,
}

// WorkoutCalories расход калорий за тренировку по её типу
func WorkoutCalories(workoutType models.WorkoutType, minutes int) int {
	perMinute, ok := caloriesPerMinute[workoutType]
	if !ok {
		perMinute = 6
	}
	return perMinute * minutes
}
