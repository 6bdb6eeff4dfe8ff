package models

import "math"

// Localized строка на нескольких языках (ru, en, uz)
type Localized map[string]string

// Get возвращает текст на языке lang, иначе русский, иначе любой непустой
func (l Localized) Get(lang string) string {
	if s := l[lang]; s != "" {
		return s
	}
	if s := l["ru"]; s != "" {
		return s
	}
	for _, s := range l {
		if s != "" {
			return s
		}
	}
	return ""
}

// Has сообщает, есть ли текст именно на языке lang
func (l Localized) Has(lang string) bool {
	return l[lang] != ""
}

// LocalizedList список строк на нескольких языках
type LocalizedList map[string][]string

// Get возвращает список на языке lang с тем же fallback, что и Localized
func (l LocalizedList) Get(lang string) []string {
	if s := l[lang]; len(s) > 0 {
		return s
	}
	if s := l["ru"]; len(s) > 0 {
		return s
	}
	for _, s := range l {
		if len(s) > 0 {
			return s
		}
	}
	return nil
}

// MealType тип приёма пищи
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Product categories
const (
	CategoryProtein    = "protein"
	CategoryCarbs      = "carbs"
	CategoryDairy      = "dairy"
	CategoryFats       = "fats"
	CategoryFruits     = "fruits"
	CategoryNuts       = "nuts"
	CategoryVegetables = "vegetables"
	CategorySweeteners = "sweeteners"
)

// FoodItem продукт из справочника
type FoodItem struct {
	Key                string    `json:"key"`
	Names              Localized `json:"names"`
	CaloriesPer100g    float64   `json:"calories_per_100g"`
	ProteinPer100g     float64   `json:"protein_per_100g"`
	FatPer100g         float64   `json:"fat_per_100g"`
	CarbsPer100g       float64   `json:"carbs_per_100g"`
	Category           string    `json:"category"`
	CookingMethods     []string  `json:"cooking_methods"`
	CookingTimeMinutes int       `json:"cooking_time_minutes"`
}

// Nutrition пищевая ценность порции
type Nutrition struct {
	Calories int
	Protein  float64
	Fat      float64
	Carbs    float64
}

// NutritionFor рассчитывает ценность порции в граммах
func (f FoodItem) NutritionFor(grams int) Nutrition {
	ratio := float64(grams) / 100
	return Nutrition{
		Calories: int(math.Round(f.CaloriesPer100g * ratio)),
		Protein:  round1(f.ProteinPer100g * ratio),
		Fat:      round1(f.FatPer100g * ratio),
		Carbs:    round1(f.CarbsPer100g * ratio),
	}
}

// RecipeIngredient ингредиент рецепта
type RecipeIngredient struct {
	Product string `json:"product"`
	Grams   int    `json:"grams"`
}

// Recipe готовый рецепт
type Recipe struct {
	ID          string             `json:"id"`
	Names       Localized          `json:"names"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Calories    int                `json:"calories"`
	Protein     float64            `json:"protein"`
	Fat         float64            `json:"fat"`
	Carbs       float64            `json:"carbs"`
	MealType    MealType           `json:"meal_type"`
	GoalTags    []Goal             `json:"goal_tags"`
	Steps       LocalizedList      `json:"steps"`
	Tip         Localized          `json:"tip"`
}

// SuitsGoal true, если у рецепта нет тегов или среди них есть goal
func (r Recipe) SuitsGoal(goal Goal) bool {
	if len(r.GoalTags) == 0 {
		return true
	}
	for _, g := range r.GoalTags {
		if g == goal {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
