package models

import "time"

// PlannedIngredient продукт с рассчитанной порцией
type PlannedIngredient struct {
	Key      string
	Names    Localized
	Category string
	Grams    int
	Nutrition
}

// PlannedMeal один приём пищи в плане
type PlannedMeal struct {
	MealType    MealType
	RecipeID    string // пусто, если блюдо собрано из продуктов
	Names       Localized
	Ingredients []PlannedIngredient
	Steps       LocalizedList
	Tip         Localized
	Nutrition
}

// MealPlan план питания на день
type MealPlan struct {
	ID             string
	UserID         int64
	Goal           Goal
	Meals          []PlannedMeal
	TargetCalories int
	BMR            int
	TDEE           int
	WaterML        int
	CreatedAt      time.Time
}

// TotalCalories сумма калорий по приёмам пищи
func (p *MealPlan) TotalCalories() int {
	total := 0
	for _, m := range p.Meals {
		total += m.Calories
	}
	return total
}

// PlannedExercise упражнение с подходами и отдыхом
type PlannedExercise struct {
	Exercise Exercise
	Progression
}

// WorkoutPlan план тренировки
type WorkoutPlan struct {
	ID                string
	UserID            int64
	Type              WorkoutType
	Level             Level
	Equipment         string
	Exercises         []PlannedExercise
	EstimatedMinutes  int
	EstimatedCalories int
	CreatedAt         time.Time
}
