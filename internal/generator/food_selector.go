package generator

import (
	"math"
	"sort"
	"strings"

	"fitbot/internal/knowledge"
	"fitbot/internal/models"
)

// RecipeCalorieTolerance допустимое отклонение калорийности рецепта от цели приёма пищи
const RecipeCalorieTolerance = 0.30

// stopwords союзы и предлоги в списке продуктов пользователя
var stopwords = map[string]bool{
	"и": true, "с": true, "или": true, "на": true, "в": true, "из": true, "от": true,
	"для": true, "по": true, "к": true, "у": true,
	"and": true, "with": true, "or": true, "on": true, "in": true, "from": true,
	"for": true, "to": true, "at": true, "the": true,
	"va": true, "bilan": true,
}

// Наборы продуктов по приёмам пищи
var (
	breakfastCarbs    = []string{"oatmeal", "whole_grain_bread", "buckwheat"}
	breakfastProteins = []string{"eggs", "cottage_cheese", "greek_yogurt"}
	lunchProteins     = []string{"chicken_breast", "beef", "cod", "salmon", "turkey", "tuna", "shrimp"}
	lunchSides        = []string{"white_rice", "brown_rice", "buckwheat", "pasta", "potato", "sweet_potato", "lentils"}
	dinnerProteins    = []string{"cod", "salmon", "chicken_breast", "turkey", "shrimp", "tuna", "tofu"}
	dinnerCarbs       = []string{"sweet_potato", "lentils"}
	snackDairy        = []string{"greek_yogurt", "cottage_cheese", "cheese", "kefir"}

	lowGICarbs   = []string{"brown_rice", "buckwheat", "oatmeal", "sweet_potato"}
	leanProteins = []string{"chicken_breast", "turkey", "cod", "shrimp", "cottage_cheese"}
)

// Приоритеты выбора продукта
const (
	priorityNone      = ""
	priorityEnergy    = "energy"
	prioritySatiety   = "satiety"
	priorityLight     = "light"
	priorityQuickCook = "quick_cook"
)

// FoodSelector - подбор рецептов и продуктов для приёмов пищи
type FoodSelector struct {
	store  *knowledge.Store
	recent *Recent
	rnd    *randSource
}

// NewFoodSelector создаёт селектор поверх справочника
func NewFoodSelector(store *knowledge.Store, recent *Recent, seed int64) *FoodSelector {
	if recent == nil {
		recent = NewRecent(DefaultRecentSize)
	}
	return &FoodSelector{
		store:  store,
		recent: recent,
		rnd:    newRandSource(seed),
	}
}

// RecipeQuery - параметры поиска рецепта
type RecipeQuery struct {
	MealType       models.MealType
	Goal           models.Goal
	TargetCalories int
	Filter         *Filter
	Available      []string        // продукты, которые есть у пользователя
	Skip           map[string]bool // рецепты, уже вошедшие в план
}

type scoredRecipe struct {
	recipe models.Recipe
	score  int
}

// SelectRecipe ищет рецепт в пределах ±30% от цели: сначала по совпадениям
// с продуктами пользователя, затем случайно из трёх лучших
func (s *FoodSelector) SelectRecipe(q RecipeQuery) (models.Recipe, bool) {
	wanted := productTokens(q.Available)
	low := float64(q.TargetCalories) * (1 - RecipeCalorieTolerance)
	high := float64(q.TargetCalories) * (1 + RecipeCalorieTolerance)

	var suitable []scoredRecipe
	for _, r := range s.allowedRecipes(q) {
		if !r.SuitsGoal(q.Goal) {
			continue
		}
		if kcal := float64(r.Calories); kcal < low || kcal > high {
			continue
		}

		score := s.matchCount(r, wanted)
		if len(wanted) > 0 && score == 0 {
			continue
		}
		suitable = append(suitable, scoredRecipe{r, score})
	}

	if len(suitable) == 0 {
		return models.Recipe{}, false
	}

	sort.SliceStable(suitable, func(i, j int) bool {
		return suitable[i].score > suitable[j].score
	})
	top := suitable
	if len(top) > 3 {
		top = top[:3]
	}
	return top[s.rnd.Intn(len(top))].recipe, true
}

// AnyRecipe любой разрешённый рецепт приёма пищи, ближайший по калориям к цели
func (s *FoodSelector) AnyRecipe(q RecipeQuery) (models.Recipe, bool) {
	recipes := s.allowedRecipes(q)
	if len(recipes) == 0 {
		return models.Recipe{}, false
	}
	best := recipes[0]
	for _, r := range recipes[1:] {
		if absInt(r.Calories-q.TargetCalories) < absInt(best.Calories-q.TargetCalories) {
			best = r
		}
	}
	return best, true
}

func (s *FoodSelector) allowedRecipes(q RecipeQuery) []models.Recipe {
	recipes := s.store.RecipesFor(q.MealType)
	if q.Filter != nil {
		recipes = q.Filter.Recipes(recipes, s.store.Product)
	}
	out := recipes[:0]
	for _, r := range recipes {
		if !q.Skip[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// matchCount сколько продуктов пользователя встречается в ингредиентах
func (s *FoodSelector) matchCount(r models.Recipe, wanted []string) int {
	if len(wanted) == 0 {
		return 0
	}

	var names []string
	for _, ing := range r.Ingredients {
		names = append(names, strings.ToLower(ing.Product))
		if p, ok := s.store.Product(ing.Product); ok {
			for _, n := range p.Names {
				names = append(names, strings.ToLower(n))
			}
		}
	}

	count := 0
	for _, w := range wanted {
		for _, n := range names {
			if strings.Contains(n, w) {
				count++
				break
			}
		}
	}
	return count
}

// productTokens разбирает ввод пользователя на продукты без союзов и предлогов
func productTokens(available []string) []string {
	var out []string
	for _, item := range available {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" || item == "-" || item == "нет" || item == "все" {
			continue
		}
		for _, w := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ' ' || r == ',' || r == ';'
		}) {
			if !stopwords[w] {
				out = append(out, w)
			}
		}
	}
	return out
}

// SelectProducts подбирает продукты под приём пищи и цель пользователя
func (s *FoodSelector) SelectProducts(meal models.MealType, targetCalories int, products []models.FoodItem, favorites []string, goal models.Goal) []models.FoodItem {
	// Последние использованные продукты пропускаем, если останется хотя бы 5
	var fresh []models.FoodItem
	for _, p := range products {
		if !s.recent.Contains(p.Key, recentWindow) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) < 5 {
		fresh = products
	}

	var selected []models.FoodItem
	pick := func(candidates []models.FoodItem, priority string) {
		if best, ok := chooseBestProduct(candidates, favorites, priority, goal); ok {
			selected = append(selected, best)
		}
	}

	switch meal {
	case models.MealBreakfast:
		// Углеводная база для энергии
		carbs := byKeys(fresh, models.CategoryCarbs, breakfastCarbs)
		if len(carbs) == 0 {
			carbs = byCategory(fresh, models.CategoryCarbs)
		}
		pick(carbs, priorityEnergy)

		var proteins []models.FoodItem
		for _, p := range fresh {
			if p.Category != models.CategoryProtein && p.Category != models.CategoryDairy {
				continue
			}
			if contains(breakfastProteins, p.Key) || p.CookingTimeMinutes <= 5 {
				proteins = append(proteins, p)
			}
		}
		pick(proteins, priorityQuickCook)
		pick(byCategory(fresh, models.CategoryFruits), priorityNone)

		if s.rnd.Float64() > 0.5 {
			pick(byCategory(fresh, models.CategoryNuts), priorityNone)
		}

	case models.MealLunch:
		pick(byKeys(fresh, models.CategoryProtein, lunchProteins), prioritySatiety)
		pick(byKeys(fresh, models.CategoryCarbs, lunchSides), priorityNone)
		pick(byCategory(fresh, models.CategoryVegetables), priorityNone)

	case models.MealDinner:
		pick(byKeys(fresh, models.CategoryProtein, dinnerProteins), priorityLight)

		// Два разных овоща
		veggies := byCategory(fresh, models.CategoryVegetables)
		for i := 0; i < 2 && len(veggies) > 0; i++ {
			best, _ := chooseBestProduct(veggies, favorites, priorityNone, "")
			selected = append(selected, best)
			veggies = withoutKey(veggies, best.Key)
		}

		if targetCalories > 400 && s.rnd.Float64() > 0.6 {
			pick(byKeys(fresh, models.CategoryCarbs, dinnerCarbs), priorityNone)
		}

	case models.MealSnack:
		if s.rnd.Float64() > 0.3 {
			pick(byCategory(fresh, models.CategoryFruits), priorityNone)
		}
		if s.rnd.Float64() > 0.4 {
			pick(byCategory(fresh, models.CategoryNuts), priorityNone)
		}
		if s.rnd.Float64() > 0.5 {
			pick(byKeys(fresh, models.CategoryDairy, snackDairy), priorityQuickCook)
		}
	}

	// Если не удалось подобрать - берём случайные
	if len(selected) == 0 && len(fresh) > 0 {
		shuffled := append([]models.FoodItem(nil), fresh...)
		s.rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		n := 3
		if len(shuffled) < n {
			n = len(shuffled)
		}
		selected = shuffled[:n]
	}

	for _, p := range selected {
		s.recent.Add(p.Key)
	}
	return selected
}

// chooseBestProduct выбирает продукт: сначала любимые, затем по цели и приоритету
func chooseBestProduct(products []models.FoodItem, favorites []string, priority string, goal models.Goal) (models.FoodItem, bool) {
	if len(products) == 0 {
		return models.FoodItem{}, false
	}

	if p, ok := favoriteProduct(products, favorites); ok {
		return p, true
	}

	switch goal {
	case models.GoalGain:
		switch priority {
		case priorityEnergy:
			return maxBy(products, func(p models.FoodItem) float64 { return p.CaloriesPer100g + p.CarbsPer100g*2 }), true
		case prioritySatiety:
			return maxBy(products, func(p models.FoodItem) float64 { return p.ProteinPer100g }), true
		default:
			return maxBy(products, func(p models.FoodItem) float64 { return p.ProteinPer100g*2 + p.CaloriesPer100g*0.5 }), true
		}

	case models.GoalLose:
		switch priority {
		case priorityEnergy:
			if low := byKeys(products, "", lowGICarbs); len(low) > 0 {
				return minBy(low, func(p models.FoodItem) float64 { return p.CaloriesPer100g }), true
			}
			return minBy(products, func(p models.FoodItem) float64 { return p.CaloriesPer100g }), true
		case prioritySatiety:
			if lean := byKeys(products, "", leanProteins); len(lean) > 0 {
				return maxBy(lean, func(p models.FoodItem) float64 { return p.ProteinPer100g / math.Max(p.FatPer100g, 1) }), true
			}
			return maxBy(products, func(p models.FoodItem) float64 { return p.ProteinPer100g - p.FatPer100g }), true
		case priorityLight:
			return minBy(products, func(p models.FoodItem) float64 { return p.CaloriesPer100g }), true
		default:
			return minBy(products, func(p models.FoodItem) float64 { return p.CaloriesPer100g - p.ProteinPer100g*2 }), true
		}

	case models.GoalMaintain:
		switch priority {
		case priorityEnergy:
			return minBy(products, func(p models.FoodItem) float64 { return math.Abs(p.CaloriesPer100g - 150) }), true
		case prioritySatiety:
			return maxBy(products, func(p models.FoodItem) float64 { return p.ProteinPer100g }), true
		default:
			return maxBy(products, func(p models.FoodItem) float64 {
				return (p.ProteinPer100g + p.CarbsPer100g + p.FatPer100g) / 3
			}), true
		}
	}

	// Цель не указана
	switch priority {
	case priorityEnergy:
		return maxBy(products, func(p models.FoodItem) float64 { return p.CarbsPer100g }), true
	case prioritySatiety:
		return maxBy(products, func(p models.FoodItem) float64 { return p.ProteinPer100g }), true
	case priorityLight:
		return minBy(products, func(p models.FoodItem) float64 { return p.CaloriesPer100g }), true
	case priorityQuickCook:
		return minBy(products, func(p models.FoodItem) float64 { return float64(p.CookingTimeMinutes) }), true
	}
	return products[0], true
}

// favoriteProduct точное совпадение ключа, затем вхождение в ключ или название
func favoriteProduct(products []models.FoodItem, favorites []string) (models.FoodItem, bool) {
	for _, p := range products {
		if contains(favorites, p.Key) {
			return p, true
		}
	}
	for _, fav := range productTokens(favorites) {
		if len([]rune(fav)) < 3 {
			continue
		}
		for _, p := range products {
			for _, name := range productNames(p) {
				if strings.Contains(strings.ToLower(name), fav) {
					return p, true
				}
			}
		}
	}
	return models.FoodItem{}, false
}

func maxBy(products []models.FoodItem, key func(models.FoodItem) float64) models.FoodItem {
	best := products[0]
	for _, p := range products[1:] {
		if key(p) > key(best) {
			best = p
		}
	}
	return best
}

func minBy(products []models.FoodItem, key func(models.FoodItem) float64) models.FoodItem {
	best := products[0]
	for _, p := range products[1:] {
		if key(p) < key(best) {
			best = p
		}
	}
	return best
}

func byCategory(products []models.FoodItem, category string) []models.FoodItem {
	var out []models.FoodItem
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// byKeys продукты из списка keys, category "" - любой категории
func byKeys(products []models.FoodItem, category string, keys []string) []models.FoodItem {
	var out []models.FoodItem
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if contains(keys, p.Key) {
			out = append(out, p)
		}
	}
	return out
}

func withoutKey(products []models.FoodItem, key string) []models.FoodItem {
	out := make([]models.FoodItem, 0, len(products))
	for _, p := range products {
		if p.Key != key {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
