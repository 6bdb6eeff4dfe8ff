// plancli генерирует план питания или тренировки без Telegram, для проверки справочников
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"fitbot/internal/generator"
	"fitbot/internal/i18n"
	"fitbot/internal/knowledge"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

func main() {
	// Что генерировать
	kind := flag.String("kind", "meal", "Тип плана: meal или workout")
	lang := flag.String("lang", "ru", "Язык: ru, en, uz")
	knowledgeDir := flag.String("knowledge", "", "Каталог со справочниками (по умолчанию встроенные)")
	seed := flag.Int64("seed", 0, "Seed генератора (0 = текущее время)")
	out := flag.String("out", "", "Файл для текста плана (по умолчанию stdout)")
	asJSON := flag.Bool("json", false, "Вывести структуру плана в JSON")
	check := flag.Bool("check", false, "Только проверить итоги рецептов")
	calc := flag.Bool("calc", false, "Только сравнить нормы двух калькуляторов")

	// Профиль
	age := flag.Int("age", 30, "Возраст")
	gender := flag.String("gender", "male", "Пол: male или female")
	height := flag.Float64("height", 175, "Рост, см")
	weight := flag.Float64("weight", 75, "Вес, кг")
	goal := flag.String("goal", "maintain", "Цель: lose, gain, maintain")
	level := flag.String("level", "intermediate", "Уровень: beginner, intermediate, advanced, athlete")

	// Питание
	allergies := flag.String("allergies", "", "Аллергии через запятую")
	diet := flag.String("diet", "", "Диета: vegetarian, vegan, pescatarian")
	exclude := flag.String("exclude", "", "Исключить продукты через запятую")
	favorites := flag.String("favorites", "", "Любимые продукты через запятую")
	snacks := flag.Bool("snacks", false, "Добавить перекус")

	// Тренировка
	workoutType := flag.String("type", string(models.WorkoutFullBody), "Тип: full_body, upper_body, lower_body, cardio, strength, flexibility")
	equipment := flag.String("equipment", models.EquipmentAll, "Оборудование: none, dumbbells, barbell, all")

	flag.Parse()

	store, err := openStore(*knowledgeDir)
	if err != nil {
		log.Fatalf("Ошибка загрузки справочников: %v", err)
	}

	if *check {
		drifts := store.CheckRecipeTotals()
		for _, d := range drifts {
			fmt.Printf("%s: заявлено %d ккал, по продуктам %d (%.0f%%)\n", d.RecipeID, d.Stored, d.Computed, d.Ratio*100)
		}
		if len(drifts) > 0 {
			os.Exit(1)
		}
		fmt.Println("✅ Итоги рецептов сходятся")
		return
	}

	profile := &models.UserProfile{
		UserID:   1,
		Name:     "CLI",
		Age:      *age,
		Gender:   models.Gender(*gender),
		HeightCm: *height,
		WeightKg: *weight,
		Goal:     models.ParseGoal(*goal),
		Level:    models.ParseLevel(*level),
	}
	if *calc {
		printNorms("Процент от TDEE", nutrition.Calculate(profile))
		printNorms("Фиксированный ±300", nutrition.CalculateFixedOffset(profile))
		return
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gen := generator.New(store, generator.WithSeed(*seed))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	language := i18n.ParseLanguage(*lang)
	var res *generator.Result
	switch *kind {
	case "meal":
		m := nutrition.Calculate(profile)
		log.Printf("BMR %d, TDEE %d, цель %d ккал (Б %d / Ж %d / У %d)", m.BMR, m.TDEE, m.TargetCalories, m.Protein, m.Fats, m.Carbs)
		prefs := models.FoodPreferences{
			Allergies:     splitFlag(*allergies),
			Diet:          *diet,
			Excludes:      splitFlag(*exclude),
			Favorites:     splitFlag(*favorites),
			IncludeSnacks: *snacks,
		}
		res, err = gen.MealPlan(ctx, profile, prefs, language)
	case "workout":
		req := generator.WorkoutRequest{Type: models.WorkoutType(*workoutType), Equipment: *equipment}
		res, err = gen.WorkoutPlan(ctx, profile, req, language)
	default:
		log.Fatalf("Неизвестный тип плана %q", *kind)
	}
	if err != nil {
		log.Fatalf("Генерация не удалась: %v", err)
	}
	log.Printf("План %s готов с попытки %d, оценка %d", res.PlanID, res.Attempts, res.Quality.Score)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Ошибка создания %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	if *asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var v interface{} = res.Meal
		if res.Workout != nil {
			v = res.Workout
		}
		if err := enc.Encode(v); err != nil {
			log.Fatalf("Ошибка записи JSON: %v", err)
		}
		return
	}
	fmt.Fprintln(w, res.Text)
}

func printNorms(title string, m nutrition.Metabolism) {
	fmt.Printf("%s: BMR %d, TDEE %d, цель %d ккал, Б %d / Ж %d / У %d\n",
		title, m.BMR, m.TDEE, m.TargetCalories, m.Protein, m.Fats, m.Carbs)
}

func openStore(dir string) (*knowledge.Store, error) {
	if dir == "" {
		return knowledge.NewEmbedded()
	}
	store := knowledge.NewStore()
	return store, store.Load(dir)
}

func splitFlag(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
