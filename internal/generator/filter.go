package generator

import (
	"strings"

	"fitbot/internal/models"
)

// Группы запрещённых продуктов, подстроки в нижнем регистре
var (
	lactoseTerms = []string{
		"молоко", "сливки", "сметана", "кефир", "йогурт", "творог",
		"сыр", "масло сливочное", "мороженое", "сгущенка",
		"milk", "cream", "kefir", "yogurt", "cottage_cheese", "cheese",
	}
	glutenTerms = []string{
		"пшеница", "мука", "хлеб", "макароны", "манка", "булка",
		"печенье", "торт", "овсянка", "овсян", "ячмень", "рожь",
		"flour", "bread", "pasta", "oat", "barley", "rye",
	}
	meatTerms = []string{
		"говядина", "свинина", "баранина", "мясо", "фарш", "колбаса",
		"сосиски", "курица", "куриная", "индейка", "утка", "кролик",
		"beef", "pork", "lamb", "meat", "chicken breast", "chicken_breast", "turkey", "duck",
	}
	fishTerms = []string{
		"рыба", "треска", "лосось", "тунец", "семга", "форель",
		"креветки", "кальмар", "мидии", "краб",
		"fish", "cod", "salmon", "tuna", "trout", "shrimp", "squid", "crab",
	}
	eggTerms = []string{"яйцо", "яйц", "яичный", "омлет", "egg", "omelette"}
	nutTerms = []string{
		"орех", "грецкий", "миндаль", "кешью", "фундук", "арахис", "фисташки",
		"almond", "walnut", "cashew", "hazelnut", "peanut", "pistachio",
	}
)

// allergyTerms аллергия -> подстроки, ключи на русском и английском
var allergyTerms = map[string][]string{
	"лактоза": lactoseTerms,
	"lactose": lactoseTerms,
	"глютен":  glutenTerms,
	"gluten":  glutenTerms,
	"мясо":    meatTerms,
	"meat":    meatTerms,
	"рыба":    fishTerms,
	"fish":    fishTerms,
	"яйца":    eggTerms,
	"eggs":    eggTerms,
	"орехи":   nutTerms,
	"nuts":    nutTerms,
}

// dietTerms ограничения диет
var dietTerms = map[string][][]string{
	"vegetarian":      {meatTerms, fishTerms},
	"вегетарианство":  {meatTerms, fishTerms},
	"vegan":           {meatTerms, fishTerms, eggTerms, lactoseTerms},
	"веганство":       {meatTerms, fishTerms, eggTerms, lactoseTerms},
	"pescatarian":     {meatTerms},
	"пескетарианство": {meatTerms},
}

// Filter отсеивает продукты и рецепты с запрещёнными ингредиентами
type Filter struct {
	forbidden []string
}

// NewFilter собирает запрещённые подстроки из аллергий, диеты и исключений
func NewFilter(prefs models.FoodPreferences) *Filter {
	seen := make(map[string]bool)
	f := &Filter{}
	add := func(terms ...string) {
		for _, t := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			f.forbidden = append(f.forbidden, t)
		}
	}

	for _, a := range prefs.Allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if terms, ok := allergyTerms[a]; ok {
			add(terms...)
			continue
		}
		// неизвестную аллергию считаем названием продукта
		add(a)
	}
	for _, group := range dietTerms[strings.ToLower(strings.TrimSpace(prefs.Diet))] {
		add(group...)
	}
	add(prefs.Excludes...)

	return f
}

// Forbidden возвращает список запрещённых подстрок
func (f *Filter) Forbidden() []string {
	return f.forbidden
}

// Allows true, если ни одно из названий не содержит запрещённой подстроки
func (f *Filter) Allows(names ...string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, term := range f.forbidden {
			if strings.Contains(lower, term) {
				return false
			}
		}
	}
	return true
}

// AllowsProduct проверяет ключ и все названия продукта
func (f *Filter) AllowsProduct(p models.FoodItem) bool {
	return f.Allows(productNames(p)...)
}

// AllowsRecipe проверяет название рецепта и каждый ингредиент.
// Неизвестный справочнику ингредиент проверяется по ключу.
func (f *Filter) AllowsRecipe(r models.Recipe, lookup func(string) (models.FoodItem, bool)) bool {
	names := []string{r.ID}
	for _, n := range r.Names {
		names = append(names, n)
	}
	if !f.Allows(names...) {
		return false
	}

	for _, ing := range r.Ingredients {
		if p, ok := lookup(ing.Product); ok {
			if !f.AllowsProduct(p) {
				return false
			}
			continue
		}
		if !f.Allows(ing.Product) {
			return false
		}
	}
	return true
}

// Products оставляет разрешённые продукты в исходном порядке
func (f *Filter) Products(items []models.FoodItem) []models.FoodItem {
	out := make([]models.FoodItem, 0, len(items))
	for _, p := range items {
		if f.AllowsProduct(p) {
			out = append(out, p)
		}
	}
	return out
}

// Recipes оставляет разрешённые рецепты
func (f *Filter) Recipes(recipes []models.Recipe, lookup func(string) (models.FoodItem, bool)) []models.Recipe {
	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.AllowsRecipe(r, lookup) {
			out = append(out, r)
		}
	}
	return out
}

func productNames(p models.FoodItem) []string {
	names := []string{p.Key}
	for _, n := range p.Names {
		names = append(names, n)
	}
	return names
}
