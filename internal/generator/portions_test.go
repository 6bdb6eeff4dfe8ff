package generator

import (
	"testing"

	"fitbot/internal/models"
)

func product(t *testing.T, key string) models.FoodItem {
	t.Helper()
	p, ok := embeddedStore(t).Product(key)
	if !ok {
		t.Fatalf("product %s not found", key)
	}
	return p
}

func TestRoundPractical(t *testing.T) {
	tests := []struct {
		key   string
		grams float64
		want  int
	}{
		{"chicken_breast", 137, 150},
		{"chicken_breast", 20, 50},
		{"eggs", 120, 100},
		{"eggs", 10, 50},
		{"white_rice", 37, 25},
		{"buckwheat", 40, 50},
		{"almonds", 12, 10},
		{"almonds", 13, 15},
		{"honey", 7, 5},
		{"broccoli", 144, 140},
		{"olive_oil", 14, 10},
		{"cottage_cheese", 155, 160},
	}

	for _, tt := range tests {
		p := product(t, tt.key)
		if got := RoundPractical(tt.grams, p); got != tt.want {
			t.Errorf("RoundPractical(%v, %s) = %d, want %d", tt.grams, tt.key, got, tt.want)
		}
	}
}

func TestCalculatePortions(t *testing.T) {
	products := []models.FoodItem{
		product(t, "chicken_breast"),
		product(t, "brown_rice"),
		product(t, "broccoli"),
	}

	portions := CalculatePortions(products, 600)
	if len(portions) != 3 {
		t.Fatalf("len(portions) = %d, want 3", len(portions))
	}

	wantGrams := []int{150, 100, 150}
	for i, p := range portions {
		if p.Grams != wantGrams[i] {
			t.Errorf("%s grams = %d, want %d", p.Key, p.Grams, wantGrams[i])
		}
		if p.Nutrition != products[i].NutritionFor(p.Grams) {
			t.Errorf("%s nutrition = %+v, want %+v", p.Key, p.Nutrition, products[i].NutritionFor(p.Grams))
		}
	}
	if total := sumNutrition(portions).Calories; total != 636 {
		t.Errorf("total = %d, want 636", total)
	}
}

func TestFineTune(t *testing.T) {
	chicken := product(t, "chicken_breast")
	broccoli := product(t, "broccoli")
	products := []models.FoodItem{chicken, broccoli}

	portions := []models.PlannedIngredient{plannedIngredient(chicken, 100), plannedIngredient(broccoli, 100)}
	got := fineTune(portions, products, 500)
	if got[0].Grams != 282 {
		t.Errorf("chicken grams = %d, want 282", got[0].Grams)
	}
	if got[1].Grams != 100 {
		t.Errorf("broccoli grams = %d, want 100", got[1].Grams)
	}

	small := []models.PlannedIngredient{plannedIngredient(chicken, 100), plannedIngredient(broccoli, 100)}
	if got := fineTune(small, products, 230); got[0].Grams != 100 {
		t.Errorf("diff under 50 changed grams to %d", got[0].Grams)
	}
}

func TestAdjustToTarget(t *testing.T) {
	store := embeddedStore(t)
	chicken := product(t, "chicken_breast")
	rice := product(t, "brown_rice")

	t.Run("scales product meals", func(t *testing.T) {
		meals := []models.PlannedMeal{
			{MealType: models.MealLunch, Ingredients: []models.PlannedIngredient{plannedIngredient(chicken, 200)}},
			{MealType: models.MealDinner, Ingredients: []models.PlannedIngredient{plannedIngredient(rice, 100)}},
		}
		for i := range meals {
			meals[i].Nutrition = sumNutrition(meals[i].Ingredients)
		}

		got := AdjustToTarget(meals, 1000, store.Product)
		total := 0
		for _, m := range got {
			total += m.Calories
		}
		if absInt(total-1000) > 5 {
			t.Errorf("total = %d, want about 1000", total)
		}
		if got[0].Ingredients[0].Grams != 300 {
			t.Errorf("chicken grams = %d, want 300", got[0].Ingredients[0].Grams)
		}
		if got[1].Ingredients[0].Grams != 150 {
			t.Errorf("rice grams = %d, want 150", got[1].Ingredients[0].Grams)
		}
	})

	t.Run("scales recipe totals", func(t *testing.T) {
		meals := []models.PlannedMeal{{
			RecipeID:    "custom",
			Ingredients: []models.PlannedIngredient{{Key: "mystery", Grams: 100}},
			Nutrition:   models.Nutrition{Calories: 500, Protein: 30, Fat: 10, Carbs: 50},
		}}

		got := AdjustToTarget(meals, 1000, store.Product)
		if got[0].Calories != 1000 || got[0].Protein != 60 {
			t.Errorf("nutrition = %+v, want doubled", got[0].Nutrition)
		}
		if got[0].Ingredients[0].Grams != 200 {
			t.Errorf("grams = %d, want 200", got[0].Ingredients[0].Grams)
		}
	})

	t.Run("within tolerance", func(t *testing.T) {
		meals := []models.PlannedMeal{{
			RecipeID:  "custom",
			Nutrition: models.Nutrition{Calories: 900},
		}}
		if got := AdjustToTarget(meals, 1000, store.Product); got[0].Calories != 900 {
			t.Errorf("calories = %d, want unchanged 900", got[0].Calories)
		}
	})
}
