package knowledge

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"sort"
	"sync"

	"fitbot/internal/models"
)

// ============================================
// KNOWLEDGE STORE - справочники продуктов, рецептов и упражнений
// ============================================

//go:embed data/*.json
var embedded embed.FS

// Файлы справочников
const (
	ProductsFile  = "products.json"
	RecipesFile   = "recipes.json"
	ExercisesFile = "exercises.json"
)

// MaxRecipeDrift допустимое расхождение сохранённых итогов рецепта с пересчитанными
const MaxRecipeDrift = 0.15

// Store - потокобезопасное хранилище справочников
type Store struct {
	mu        sync.RWMutex
	products  map[string]models.FoodItem
	order     []string
	recipes   []models.Recipe
	exercises []models.Exercise
	loaded    bool
	source    string
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		products: make(map[string]models.FoodItem),
	}
}

// NewEmbedded создаёт хранилище со встроенными справочниками
func NewEmbedded() (*Store, error) {
	s := NewStore()
	if err := s.Load(""); err != nil {
		return nil, err
	}
	return s, nil
}

// Load загружает справочники из каталога dir, пустой dir - встроенные данные.
// При ошибке текущие данные не меняются.
func (s *Store) Load(dir string) error {
	var fsys fs.FS
	source := dir
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return fmt.Errorf("встроенные справочники: %w", err)
		}
		fsys = sub
		source = "embedded"
	} else {
		fsys = os.DirFS(dir)
	}

	var products []models.FoodItem
	if err := readJSON(fsys, ProductsFile, &products); err != nil {
		return err
	}
	var recipes []models.Recipe
	if err := readJSON(fsys, RecipesFile, &recipes); err != nil {
		return err
	}
	var exercises []models.Exercise
	if err := readJSON(fsys, ExercisesFile, &exercises); err != nil {
		return err
	}

	byKey := make(map[string]models.FoodItem, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		if p.Key == "" {
			return fmt.Errorf("%s: продукт без ключа", ProductsFile)
		}
		if _, dup := byKey[p.Key]; !dup {
			order = append(order, p.Key)
		}
		byKey[p.Key] = p
	}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if _, ok := byKey[ing.Product]; !ok {
				return fmt.Errorf("%s: рецепт %s ссылается на неизвестный продукт %q", RecipesFile, r.ID, ing.Product)
			}
		}
	}

	s.mu.Lock()
	s.products = byKey
	s.order = order
	s.recipes = recipes
	s.exercises = exercises
	s.loaded = true
	s.source = source
	s.mu.Unlock()

	for _, d := range s.CheckRecipeTotals() {
		log.Printf("Рецепт %s: итог %d ккал, по ингредиентам %d ккал (%.0f%%)", d.RecipeID, d.Stored, d.Computed, d.Ratio*100)
	}
	return nil
}

func readJSON(fsys fs.FS, name string, v interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("не удалось прочитать %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка парсинга %s: %w", name, err)
	}
	return nil
}

// IsLoaded возвращает true если справочники загружены
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Source откуда загружены данные
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Count возвращает количество продуктов, рецептов и упражнений
func (s *Store) Count() (products, recipes, exercises int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), len(s.recipes), len(s.exercises)
}

// Product ищет продукт по ключу
func (s *Store) Product(key string) (models.FoodItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[key]
	return p, ok
}

// Products возвращает продукты в порядке файла
func (s *Store) Products() []models.FoodItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FoodItem, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.products[k])
	}
	return out
}

// ProductsByCategory продукты одной категории
func (s *Store) ProductsByCategory(category string) []models.FoodItem {
	var out []models.FoodItem
	for _, p := range s.Products() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Recipes возвращает копию списка рецептов
func (s *Store) Recipes() []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Recipe(nil), s.recipes...)
}

// RecipesFor рецепты для типа приёма пищи
func (s *Store) RecipesFor(meal models.MealType) []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Recipe
	for _, r := range s.recipes {
		if r.MealType == meal {
			out = append(out, r)
		}
	}
	return out
}

// Exercises возвращает копию списка упражнений
func (s *Store) Exercises() []models.Exercise {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Exercise(nil), s.exercises...)
}

// RecipeDrift расхождение итогов рецепта
type RecipeDrift struct {
	RecipeID string
	Stored   int
	Computed int
	Ratio    float64
}

// CheckRecipeTotals пересчитывает калории рецептов по ингредиентам и
// возвращает те, где расхождение больше MaxRecipeDrift. Данные не меняются.
func (s *Store) CheckRecipeTotals() []RecipeDrift {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var drifts []RecipeDrift
	for _, r := range s.recipes {
		computed := 0
		for _, ing := range r.Ingredients {
			computed += s.products[ing.Product].NutritionFor(ing.Grams).Calories
		}
		if computed == 0 {
			continue
		}
		ratio := math.Abs(float64(r.Calories-computed)) / float64(computed)
		if ratio > MaxRecipeDrift {
			drifts = append(drifts, RecipeDrift{RecipeID: r.ID, Stored: r.Calories, Computed: computed, Ratio: ratio})
		}
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Ratio > drifts[j].Ratio })
	return drifts
}
