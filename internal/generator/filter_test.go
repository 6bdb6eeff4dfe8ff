package generator

import (
	"testing"

	"fitbot/internal/knowledge"
	"fitbot/internal/models"
)

func embeddedStore(t *testing.T) *knowledge.Store {
	t.Helper()
	s, err := knowledge.NewEmbedded()
	if err != nil {
		t.Fatalf("NewEmbedded() error = %v", err)
	}
	return s
}

func TestFilterProducts(t *testing.T) {
	store := embeddedStore(t)

	tests := []struct {
		name    string
		prefs   models.FoodPreferences
		allowed []string
		denied  []string
	}{
		{
			name:    "no restrictions",
			allowed: []string{"chicken_breast", "cheese", "eggs", "almonds"},
		},
		{
			name:    "lactose",
			prefs:   models.FoodPreferences{Allergies: []string{"лактоза"}},
			allowed: []string{"chicken_breast", "eggs", "olive_oil"},
			denied:  []string{"cottage_cheese", "greek_yogurt", "kefir", "cheese"},
		},
		{
			name:    "gluten in english",
			prefs:   models.FoodPreferences{Allergies: []string{"Gluten"}},
			allowed: []string{"buckwheat", "white_rice"},
			denied:  []string{"oatmeal", "whole_grain_bread", "pasta"},
		},
		{
			name:    "vegetarian keeps eggs",
			prefs:   models.FoodPreferences{Diet: "vegetarian"},
			allowed: []string{"eggs", "tofu", "cottage_cheese"},
			denied:  []string{"chicken_breast", "beef", "turkey", "cod", "salmon", "shrimp", "tuna"},
		},
		{
			name:    "vegan",
			prefs:   models.FoodPreferences{Diet: "vegan"},
			allowed: []string{"tofu", "lentils", "broccoli"},
			denied:  []string{"eggs", "kefir", "chicken_breast", "salmon"},
		},
		{
			name:    "unknown allergy is a product name",
			prefs:   models.FoodPreferences{Allergies: []string{"банан"}},
			allowed: []string{"apple"},
			denied:  []string{"banana"},
		},
		{
			name:    "excludes",
			prefs:   models.FoodPreferences{Excludes: []string{"Брокколи", "avocado"}},
			allowed: []string{"zucchini"},
			denied:  []string{"broccoli", "avocado"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.prefs)
			for _, key := range tt.allowed {
				p, ok := store.Product(key)
				if !ok {
					t.Fatalf("product %s not found", key)
				}
				if !f.AllowsProduct(p) {
					t.Errorf("AllowsProduct(%s) = false, want true", key)
				}
			}
			for _, key := range tt.denied {
				p, ok := store.Product(key)
				if !ok {
					t.Fatalf("product %s not found", key)
				}
				if f.AllowsProduct(p) {
					t.Errorf("AllowsProduct(%s) = true, want false", key)
				}
			}
		})
	}
}

func TestFilterRecipes(t *testing.T) {
	store := embeddedStore(t)
	f := NewFilter(models.FoodPreferences{Allergies: []string{"eggs"}})

	for _, r := range f.Recipes(store.Recipes(), store.Product) {
		for _, ing := range r.Ingredients {
			if ing.Product == "eggs" {
				t.Errorf("recipe %s with eggs passed the filter", r.ID)
			}
		}
	}

	unknown := models.Recipe{
		ID:          "mystery",
		Names:       models.Localized{"ru": "Загадка"},
		Ingredients: []models.RecipeIngredient{{Product: "egg_powder", Grams: 10}},
	}
	if f.AllowsRecipe(unknown, store.Product) {
		t.Error("unknown ingredient should be checked by key")
	}
}
