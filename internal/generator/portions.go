package generator

import (
	"math"
	"strings"

	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

// Ограничения порций
const (
	MinPortionGrams = 10
	MaxPortionGrams = 500

	// Корректировка приёма пищи, если промах больше
	MealTolerance = 100
	// Корректировка дня, если промах не меньше
	DayTolerance = 150
)

// CalculatePortions жадно рассчитывает граммы: белковые продукты закрывают белок,
// углеводные - углеводы, остальные делят оставшиеся калории. Затем один проход
// корректировки самого калорийного продукта. Остаточная ошибка допускается.
func CalculatePortions(products []models.FoodItem, targetCalories int) []models.PlannedIngredient {
	protein, _, carbs := nutrition.MealMacros(targetCalories)
	remainingCalories := float64(targetCalories)
	remainingProtein := protein
	remainingCarbs := carbs

	portions := make([]models.PlannedIngredient, 0, len(products))
	for i, p := range products {
		var grams float64
		switch p.Category {
		case models.CategoryProtein:
			needed := math.Max(remainingProtein, 10)
			grams = gramsFor(needed, p.ProteinPer100g)
		case models.CategoryCarbs:
			needed := math.Max(remainingCarbs, 20)
			grams = gramsFor(needed, p.CarbsPer100g)
		default:
			left := len(products) - i
			perProduct := math.Max(remainingCalories/float64(left), 50)
			grams = gramsFor(perProduct, p.CaloriesPer100g)
		}

		grams = math.Max(MinPortionGrams, math.Min(grams, MaxPortionGrams))
		g := RoundPractical(grams, p)

		portion := plannedIngredient(p, g)
		portions = append(portions, portion)

		remainingCalories -= float64(portion.Calories)
		remainingProtein -= portion.Protein
		remainingCarbs -= portion.Carbs
	}

	if math.Abs(remainingCalories) > MealTolerance && len(portions) > 0 {
		portions = fineTune(portions, products, targetCalories)
	}
	return portions
}

func gramsFor(amount, per100g float64) float64 {
	if per100g <= 0 {
		return 100
	}
	return amount / per100g * 100
}

// RoundPractical округляет до кулинарных значений: яйца по 50 г (штуками),
// рис и гречка по 25 г, мясо и рыба по 50 г, орехи и сладкое по 5 г, остальное по 10 г
func RoundPractical(grams float64, p models.FoodItem) int {
	name := strings.ToLower(p.Names["ru"])
	switch {
	case strings.Contains(name, "яйц") || p.Key == "eggs":
		return roundStep(grams, 50, 50)
	case strings.Contains(name, "рис") || strings.Contains(name, "гречка"):
		return roundStep(grams, 25, 25)
	case p.Category == models.CategoryProtein:
		return roundStep(grams, 50, 50)
	case p.Category == models.CategoryNuts || p.Category == models.CategorySweeteners:
		return roundStep(grams, 5, 5)
	default:
		return roundStep(grams, 10, 10)
	}
}

func roundStep(grams float64, step, min int) int {
	g := int(math.Round(grams/float64(step))) * step
	if g < min {
		return min
	}
	return g
}

// fineTune подгоняет самый калорийный продукт под цель, не меньше 10 г
func fineTune(portions []models.PlannedIngredient, products []models.FoodItem, targetCalories int) []models.PlannedIngredient {
	diff := targetCalories - sumNutrition(portions).Calories
	if absInt(diff) < 50 {
		return portions
	}

	idx := 0
	for i := range portions {
		if portions[i].Calories > portions[idx].Calories {
			idx = i
		}
	}

	p := products[idx]
	if p.CaloriesPer100g <= 0 {
		return portions
	}

	newCalories := float64(portions[idx].Calories + diff)
	grams := int(newCalories / p.CaloriesPer100g * 100)
	if grams < MinPortionGrams {
		grams = MinPortionGrams
	}
	portions[idx] = plannedIngredient(p, grams)
	return portions
}

func plannedIngredient(p models.FoodItem, grams int) models.PlannedIngredient {
	return models.PlannedIngredient{
		Key:       p.Key,
		Names:     p.Names,
		Category:  p.Category,
		Grams:     grams,
		Nutrition: p.NutritionFor(grams),
	}
}

func sumNutrition(portions []models.PlannedIngredient) models.Nutrition {
	var n models.Nutrition
	for _, p := range portions {
		n.Calories += p.Calories
		n.Protein += p.Protein
		n.Fat += p.Fat
		n.Carbs += p.Carbs
	}
	n.Protein = round1(n.Protein)
	n.Fat = round1(n.Fat)
	n.Carbs = round1(n.Carbs)
	return n
}

// AdjustToTarget пропорционально масштабирует все приёмы пищи, если итог дня
// отличается от цели на 150 ккал и больше. Граммы ингредиентов пересчитываются
// вместе с калориями и БЖУ, поэтому план остаётся согласованным.
func AdjustToTarget(meals []models.PlannedMeal, targetCalories int, lookup func(string) (models.FoodItem, bool)) []models.PlannedMeal {
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	if total == 0 || absInt(targetCalories-total) < DayTolerance {
		return meals
	}

	factor := float64(targetCalories) / float64(total)
	for i := range meals {
		meals[i] = scaleMeal(meals[i], factor, lookup)
	}
	return meals
}

func scaleMeal(m models.PlannedMeal, factor float64, lookup func(string) (models.FoodItem, bool)) models.PlannedMeal {
	ingredients := make([]models.PlannedIngredient, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		grams := int(math.Round(float64(ing.Grams) * factor))
		if grams < 1 {
			grams = 1
		}
		if p, ok := lookup(ing.Key); ok {
			ingredients[i] = plannedIngredient(p, grams)
			continue
		}
		ing.Grams = grams
		ingredients[i] = ing
	}
	m.Ingredients = ingredients

	if m.RecipeID != "" {
		// у рецепта сохранённые итоги, масштабируем их тем же коэффициентом
		m.Nutrition = models.Nutrition{
			Calories: int(math.Round(float64(m.Calories) * factor)),
			Protein:  round1(m.Protein * factor),
			Fat:      round1(m.Fat * factor),
			Carbs:    round1(m.Carbs * factor),
		}
		return m
	}
	m.Nutrition = sumNutrition(ingredients)
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
