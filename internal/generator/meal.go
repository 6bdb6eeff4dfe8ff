package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitbot/internal/i18n"
	"fitbot/internal/knowledge"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

// MealPlanner собирает дневной план питания из рецептов и продуктов справочника
type MealPlanner struct {
	store    *knowledge.Store
	selector *FoodSelector
	rnd      *randSource
}

// NewMealPlanner создаёт планировщик, recent - общая история продуктов
func NewMealPlanner(store *knowledge.Store, recent *Recent, seed int64) *MealPlanner {
	return &MealPlanner{
		store:    store,
		selector: NewFoodSelector(store, recent, seed),
		rnd:      newRandSource(seed + 1),
	}
}

// Plan рассчитывает норму и подбирает приёмы пищи. Язык не важен: все тексты
// плана хранятся сразу на всех языках.
func (p *MealPlanner) Plan(profile *models.UserProfile, prefs models.FoodPreferences) *models.MealPlan {
	met := nutrition.Calculate(profile)
	filter := NewFilter(prefs)
	products := filter.Products(p.store.Products())

	picker := newVariantPicker(p.rnd)
	usedRecipes := make(map[string]bool)

	var meals []models.PlannedMeal
	for _, target := range nutrition.Distribute(met.TargetCalories, prefs.IncludeSnacks) {
		q := RecipeQuery{
			MealType:       target.MealType,
			Goal:           met.Goal,
			TargetCalories: target.Calories,
			Filter:         filter,
			Available:      prefs.Available,
			Skip:           usedRecipes,
		}
		meal, ok := p.planMeal(q, products, prefs.Favorites, picker)
		if !ok {
			continue
		}
		if meal.RecipeID != "" {
			usedRecipes[meal.RecipeID] = true
		}
		meals = append(meals, meal)
	}

	meals = AdjustToTarget(meals, met.TargetCalories, p.store.Product)

	// шаги и советы блюд из продуктов пишутся по итоговым граммам
	for i := range meals {
		if meals[i].RecipeID == "" {
			meals[i].Steps = cookingSteps(meals[i].Ingredients, picker)
			meals[i].Tip = tipFor(meals[i].Nutrition, picker)
		}
	}

	plan := &models.MealPlan{
		ID:             uuid.NewString(),
		Goal:           met.Goal,
		Meals:          meals,
		TargetCalories: met.TargetCalories,
		BMR:            met.BMR,
		TDEE:           met.TDEE,
		WaterML:        met.WaterML,
		CreatedAt:      time.Now(),
	}
	if profile != nil {
		plan.UserID = profile.UserID
	}
	return plan
}

// planMeal: рецепт в пределах ±30%, иначе блюдо из продуктов, иначе любой рецепт
func (p *MealPlanner) planMeal(q RecipeQuery, products []models.FoodItem, favorites []string, picker *variantPicker) (models.PlannedMeal, bool) {
	if r, ok := p.selector.SelectRecipe(q); ok {
		return p.mealFromRecipe(r, q.MealType, picker), true
	}

	if selected := p.selector.SelectProducts(q.MealType, q.TargetCalories, products, favorites, q.Goal); len(selected) > 0 {
		return mealFromProducts(selected, q.MealType, q.TargetCalories), true
	}

	if r, ok := p.selector.AnyRecipe(q); ok {
		return p.mealFromRecipe(r, q.MealType, picker), true
	}
	return models.PlannedMeal{}, false
}

func (p *MealPlanner) mealFromRecipe(r models.Recipe, meal models.MealType, picker *variantPicker) models.PlannedMeal {
	ingredients := make([]models.PlannedIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if product, ok := p.store.Product(ing.Product); ok {
			ingredients = append(ingredients, plannedIngredient(product, ing.Grams))
			continue
		}
		ingredients = append(ingredients, models.PlannedIngredient{
			Key:   ing.Product,
			Names: models.Localized{"ru": ing.Product},
			Grams: ing.Grams,
		})
	}

	n := models.Nutrition{Calories: r.Calories, Protein: r.Protein, Fat: r.Fat, Carbs: r.Carbs}

	steps := r.Steps
	if len(steps) == 0 {
		steps = cookingSteps(ingredients, picker)
	}
	tip := r.Tip
	if len(tip) == 0 {
		tip = tipFor(n, picker)
	}

	return models.PlannedMeal{
		MealType:    meal,
		RecipeID:    r.ID,
		Names:       r.Names,
		Ingredients: ingredients,
		Steps:       steps,
		Tip:         tip,
		Nutrition:   n,
	}
}

// mealFromProducts блюдо без шагов и совета, их добавляет Plan
func mealFromProducts(products []models.FoodItem, meal models.MealType, targetCalories int) models.PlannedMeal {
	portions := CalculatePortions(products, targetCalories)
	return models.PlannedMeal{
		MealType:    meal,
		Names:       dishName(portions),
		Ingredients: portions,
		Nutrition:   sumNutrition(portions),
	}
}

// dishName «Первый и второй» по двум первым продуктам
func dishName(portions []models.PlannedIngredient) models.Localized {
	names := make(models.Localized, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		l := string(lang)
		switch len(portions) {
		case 0:
			names[l] = i18n.T("dish_default", lang)
		case 1:
			names[l] = portions[0].Names.Get(l)
		default:
			names[l] = i18n.Tf("dish_with", lang, portions[0].Names.Get(l), strings.ToLower(portions[1].Names.Get(l)))
		}
	}
	return names
}

// stepFamily способ приготовления продукта
func stepFamily(ing models.PlannedIngredient) string {
	ru := strings.ToLower(ing.Names["ru"])
	switch ing.Category {
	case models.CategoryProtein:
		if strings.Contains(ru, "яйц") || ing.Key == "eggs" {
			return "step_fry"
		}
		if ing.Key == "tuna" {
			return "step_raw"
		}
		return "step_cook_meat"
	case models.CategoryCarbs:
		if strings.Contains(ru, "хлеб") {
			return "step_raw"
		}
		return "step_boil_grain"
	case models.CategoryVegetables:
		return "step_steam_veg"
	case models.CategoryDairy:
		return "step_mix_dairy"
	default:
		return "step_raw"
	}
}

// cookingSteps подготовка, по шагу на продукт и подача
func cookingSteps(portions []models.PlannedIngredient, picker *variantPicker) models.LocalizedList {
	type step struct {
		key string
		ing int // индекс продукта, -1 для подготовки и подачи
		idx int
	}

	plan := []step{{key: "step_prep", ing: -1, idx: picker.next("step_prep")}}
	for i, ing := range portions {
		family := stepFamily(ing)
		plan = append(plan, step{key: family, ing: i, idx: picker.next(family)})
	}
	plan = append(plan, step{key: "step_serve", ing: -1, idx: picker.next("step_serve")})

	out := make(models.LocalizedList, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		l := string(lang)
		lines := make([]string, 0, len(plan))
		for _, s := range plan {
			if s.ing >= 0 {
				ing := portions[s.ing]
				lines = append(lines, fmt.Sprintf(variantOf(s.key, s.idx, lang), ing.Names.Get(l), ing.Grams))
				continue
			}
			lines = append(lines, variantOf(s.key, s.idx, lang))
		}
		if len(portions) == 0 {
			lines = []string{i18n.T("step_default", lang)}
		}
		out[l] = lines
	}
	return out
}

// tipFor совет по составу блюда
func tipFor(n models.Nutrition, picker *variantPicker) models.Localized {
	family := "tip_balanced"
	switch {
	case n.Protein > 30:
		family = "tip_high_protein"
	case n.Carbs > 50:
		family = "tip_high_fiber"
	case n.Calories < 400:
		family = "tip_low_calorie"
	}

	idx := picker.next(family)
	tip := make(models.Localized, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		tip[string(lang)] = variantOf(family, idx, lang)
	}
	return tip
}
