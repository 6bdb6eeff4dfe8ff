package generator

import (
	"reflect"
	"testing"

	"fitbot/internal/models"
)

func TestSelectRecipe(t *testing.T) {
	store := embeddedStore(t)
	all := NewFilter(models.FoodPreferences{})

	t.Run("within tolerance and goal", func(t *testing.T) {
		want := map[string]bool{"oatmeal_berries": true, "omelette_spinach": true, "buckwheat_eggs": true}
		for seed := int64(1); seed <= 10; seed++ {
			s := NewFoodSelector(store, nil, seed)
			r, ok := s.SelectRecipe(RecipeQuery{
				MealType:       models.MealBreakfast,
				Goal:           models.GoalLose,
				TargetCalories: 400,
				Filter:         all,
			})
			if !ok {
				t.Fatalf("seed %d: no recipe", seed)
			}
			if !want[r.ID] {
				t.Errorf("seed %d: got %s", seed, r.ID)
			}
		}
	})

	t.Run("available products", func(t *testing.T) {
		s := NewFoodSelector(store, nil, 1)
		r, ok := s.SelectRecipe(RecipeQuery{
			MealType:       models.MealBreakfast,
			Goal:           models.GoalLose,
			TargetCalories: 400,
			Filter:         all,
			Available:      []string{"гречка"},
		})
		if !ok || r.ID != "buckwheat_eggs" {
			t.Errorf("SelectRecipe() = %s, %v, want buckwheat_eggs", r.ID, ok)
		}
	})

	t.Run("skip used", func(t *testing.T) {
		s := NewFoodSelector(store, nil, 1)
		_, ok := s.SelectRecipe(RecipeQuery{
			MealType:       models.MealBreakfast,
			Goal:           models.GoalLose,
			TargetCalories: 400,
			Filter:         all,
			Skip:           map[string]bool{"oatmeal_berries": true, "omelette_spinach": true, "buckwheat_eggs": true},
		})
		if ok {
			t.Error("SelectRecipe() found a skipped recipe")
		}
	})

	t.Run("out of range falls back to closest", func(t *testing.T) {
		s := NewFoodSelector(store, nil, 1)
		q := RecipeQuery{MealType: models.MealBreakfast, Goal: models.GoalGain, TargetCalories: 1500, Filter: all}
		if _, ok := s.SelectRecipe(q); ok {
			t.Fatal("SelectRecipe() found a recipe far from target")
		}
		r, ok := s.AnyRecipe(q)
		if !ok || r.ID != "oats_banana_gain" {
			t.Errorf("AnyRecipe() = %s, %v, want oats_banana_gain", r.ID, ok)
		}
	})

	t.Run("forbidden never selected", func(t *testing.T) {
		vegan := NewFilter(models.FoodPreferences{Diet: "vegan"})
		for _, meal := range []models.MealType{models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack} {
			for seed := int64(1); seed <= 5; seed++ {
				s := NewFoodSelector(store, nil, seed)
				q := RecipeQuery{MealType: meal, TargetCalories: 400, Filter: vegan}
				if r, ok := s.AnyRecipe(q); ok && !vegan.AllowsRecipe(r, store.Product) {
					t.Errorf("%s: forbidden recipe %s", meal, r.ID)
				}
			}
		}
	})
}

func TestProductTokens(t *testing.T) {
	got := productTokens([]string{"Курица и рис", "нет", " ", "eggs, milk"})
	want := []string{"курица", "рис", "eggs", "milk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("productTokens() = %v, want %v", got, want)
	}
}

func TestChooseBestProduct(t *testing.T) {
	proteins := []models.FoodItem{product(t, "chicken_breast"), product(t, "cod"), product(t, "salmon")}
	carbs := []models.FoodItem{product(t, "potato"), product(t, "oatmeal")}

	tests := []struct {
		name      string
		products  []models.FoodItem
		favorites []string
		priority  string
		goal      models.Goal
		want      string
	}{
		{"favorite key", proteins, []string{"salmon"}, priorityLight, models.GoalLose, "salmon"},
		{"favorite name", proteins, []string{"лосось"}, priorityLight, models.GoalLose, "salmon"},
		{"lose light", proteins, nil, priorityLight, models.GoalLose, "cod"},
		{"lose satiety lean", proteins, nil, prioritySatiety, models.GoalLose, "cod"},
		{"gain satiety", proteins, nil, prioritySatiety, models.GoalGain, "chicken_breast"},
		{"gain energy", carbs, nil, priorityEnergy, models.GoalGain, "oatmeal"},
		{"lose energy low gi", carbs, nil, priorityEnergy, models.GoalLose, "oatmeal"},
		{"no goal quick", proteins, nil, priorityQuickCook, "", "cod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseBestProduct(tt.products, tt.favorites, tt.priority, tt.goal)
			if !ok || got.Key != tt.want {
				t.Errorf("chooseBestProduct() = %s, want %s", got.Key, tt.want)
			}
		})
	}

	if _, ok := chooseBestProduct(nil, nil, priorityNone, ""); ok {
		t.Error("chooseBestProduct(nil) = ok")
	}
}

func TestSelectProducts(t *testing.T) {
	store := embeddedStore(t)
	recent := NewRecent(DefaultRecentSize)
	s := NewFoodSelector(store, recent, 3)

	got := s.SelectProducts(models.MealLunch, 600, store.Products(), nil, models.GoalMaintain)
	if len(got) != 3 {
		t.Fatalf("lunch has %d products, want 3", len(got))
	}
	wantCategories := []string{models.CategoryProtein, models.CategoryCarbs, models.CategoryVegetables}
	for i, p := range got {
		if p.Category != wantCategories[i] {
			t.Errorf("product %d = %s (%s), want %s", i, p.Key, p.Category, wantCategories[i])
		}
	}
	if recent.Len() != 3 {
		t.Errorf("recent has %d keys, want 3", recent.Len())
	}

	dinner := s.SelectProducts(models.MealDinner, 300, store.Products(), nil, models.GoalLose)
	for _, p := range dinner {
		for _, l := range got {
			if p.Key == l.Key {
				t.Errorf("dinner repeats lunch product %s", p.Key)
			}
		}
	}
}
