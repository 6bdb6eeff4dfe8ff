package nutrition

import (
	"math"
	"strings"

	"fitbot/internal/models"
)

// Значения по умолчанию для незаполненного профиля
const (
	DefaultWeight = 70.0
	DefaultHeight = 170.0
	DefaultAge    = 25

	CaloriesPerKgFat = 7700
	WaterMLPerKg     = 35
	FixedOffsetKcal  = 300
)

// activityMultipliers коэффициенты активности по уровню подготовки и по образу жизни
var activityMultipliers = map[string]float64{
	string(models.LevelBeginner):     1.375,
	string(models.LevelIntermediate): 1.55,
	string(models.LevelAdvanced):     1.725,
	string(models.LevelAthlete):      1.9,

	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Metabolism результат расчёта дневной нормы
type Metabolism struct {
	BMR            int
	TDEE           int
	TargetCalories int
	Protein        int
	Fats           int
	Carbs          int
	WaterML        int
	Goal           models.Goal
}

// Macros граммы белков, жиров и углеводов
type Macros struct {
	Protein int
	Fats    int
	Carbs   int
}

// BMR базальный метаболизм по формуле Миффлина-Сан Жеора
func BMR(weight, height float64, age int, gender models.Gender) float64 {
	base := 10*weight + 6.25*height - 5*float64(age)
	if gender.IsMale() {
		return base + 5
	}
	return base - 161
}

// ActivityMultiplier возвращает 1.55 для неизвестного уровня
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return 1.55
}

// TDEE общий расход энергии
func TDEE(bmr float64, level string) float64 {
	return bmr * ActivityMultiplier(level)
}

// GoalFactor процентная поправка на цель: -10% / +15% / 0
func GoalFactor(goal models.Goal) float64 {
	switch goal {
	case models.GoalLose:
		return 0.90
	case models.GoalGain:
		return 1.15
	default:
		return 1.0
	}
}

// MacroSplit доли калорий на белки, жиры и углеводы
func MacroSplit(goal models.Goal) (protein, fats, carbs float64) {
	switch goal {
	case models.GoalLose:
		return 0.40, 0.30, 0.30
	case models.GoalGain:
		return 0.30, 0.20, 0.50
	default:
		return 0.30, 0.30, 0.40
	}
}

// CalculateMacros белки и углеводы по 4 ккал/г, жиры по 9 ккал/г
func CalculateMacros(calories int, goal models.Goal) Macros {
	p, f, c := MacroSplit(goal)
	kcal := float64(calories)
	return Macros{
		Protein: int(kcal * p / 4),
		Fats:    int(kcal * f / 9),
		Carbs:   int(kcal * c / 4),
	}
}

// profileInputs подставляет значения по умолчанию для пустых полей
func profileInputs(p *models.UserProfile) (weight, height float64, age int, gender models.Gender, level string) {
	weight, height, age, gender = DefaultWeight, DefaultHeight, DefaultAge, models.GenderMale
	level = string(models.LevelIntermediate)
	if p == nil {
		return
	}
	if p.WeightKg > 0 {
		weight = p.WeightKg
	}
	if p.HeightCm > 0 {
		height = p.HeightCm
	}
	if p.Age > 0 {
		age = p.Age
	}
	if p.Gender != "" {
		gender = p.Gender
	}
	if p.ActivityLevel != "" {
		level = p.ActivityLevel
	} else if p.Level != "" {
		level = string(p.Level)
	}
	return
}

// Calculate рассчитывает норму с процентной поправкой на цель
func Calculate(p *models.UserProfile) Metabolism {
	weight, height, age, gender, level := profileInputs(p)
	goal := models.GoalMaintain
	if p != nil && p.Goal != "" {
		goal = p.Goal
	}

	bmr := BMR(weight, height, age, gender)
	tdee := TDEE(bmr, level)
	target := int(math.Round(tdee * GoalFactor(goal)))
	macros := CalculateMacros(target, goal)

	return Metabolism{
		BMR:            int(math.Round(bmr)),
		TDEE:           int(math.Round(tdee)),
		TargetCalories: target,
		Protein:        macros.Protein,
		Fats:           macros.Fats,
		Carbs:          macros.Carbs,
		WaterML:        WaterML(weight),
		Goal:           goal,
	}
}

// CalculateFixedOffset вариант с фиксированным дефицитом/профицитом 300 ккал
// и белком 2 г/кг, жиром 1 г/кг, остаток в углеводах
func CalculateFixedOffset(p *models.UserProfile) Metabolism {
	weight, height, age, gender, level := profileInputs(p)
	goal := models.GoalMaintain
	if p != nil && p.Goal != "" {
		goal = p.Goal
	}

	bmr := BMR(weight, height, age, gender)
	tdee := TDEE(bmr, level)

	target := int(tdee)
	switch goal {
	case models.GoalLose:
		target = int(tdee - FixedOffsetKcal)
	case models.GoalGain:
		target = int(tdee + FixedOffsetKcal)
	}

	protein := weight * 2
	fats := weight * 1
	carbs := (float64(target) - protein*4 - fats*9) / 4
	if carbs < 0 {
		carbs = 0
	}

	return Metabolism{
		BMR:            int(math.Round(bmr)),
		TDEE:           int(math.Round(tdee)),
		TargetCalories: target,
		Protein:        int(math.Round(protein)),
		Fats:           int(math.Round(fats)),
		Carbs:          int(math.Round(carbs)),
		WaterML:        WaterML(weight),
		Goal:           goal,
	}
}

// WaterML дневная норма воды, 35 мл на кг
func WaterML(weight float64) int {
	return int(math.Round(weight * WaterMLPerKg))
}
