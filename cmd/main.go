package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/bot"
	"fitbot/internal/cache"
	"fitbot/internal/config"
	"fitbot/internal/generator"
	"fitbot/internal/knowledge"
	"fitbot/internal/payment"
	"fitbot/internal/ratelimit"
	"fitbot/internal/repository"
	"fitbot/internal/storage"
	"fitbot/internal/translate"
	"fitbot/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Ошибка создания %s: %v", cfg.DataDir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}
	defer repo.Close()
	log.Printf("База данных: %s", cfg.DBDriver)

	store, err := openKnowledge(ctx, cfg.KnowledgeDir)
	if err != nil {
		log.Fatalf("Ошибка загрузки справочников: %v", err)
	}
	products, recipes, exercises := store.Count()
	log.Printf("Справочники (%s): %d продуктов, %d рецептов, %d упражнений", store.Source(), products, recipes, exercises)
	for _, d := range store.CheckRecipeTotals() {
		log.Printf("Рецепт %s: заявлено %d ккал, по продуктам %d", d.RecipeID, d.Stored, d.Computed)
	}

	plans := openPlanCache(ctx, cfg)

	opts := []generator.Option{
		generator.WithPlanStore(plans),
		generator.WithSeed(time.Now().UnixNano()),
	}
	if cfg.TranslateAPIKey != "" {
		tr, err := translate.NewGoogle(ctx, cfg.TranslateAPIKey)
		if err != nil {
			log.Printf("Перевод отключён: %v", err)
		} else {
			opts = append(opts, generator.WithTranslator(tr))
		}
	}
	gen := generator.New(store, opts...)

	settings, err := storage.OpenSettings(filepath.Join(cfg.DataDir, "settings.json"))
	if err != nil {
		log.Fatalf("Ошибка чтения настроек: %v", err)
	}
	workoutLog, err := storage.OpenWorkoutLog(filepath.Join(cfg.DataDir, "workout_history.json"))
	if err != nil {
		log.Fatalf("Ошибка чтения журнала тренировок: %v", err)
	}

	var yoo payment.YooKassaAPI
	if cfg.YooKassaEnabled() {
		yoo = payment.NewYooKassa(cfg.YooKassaShopID, cfg.YooKassaSecretKey, cfg.YooKassaReturnURL, "")
		log.Println("Оплата картой через ЮKassa включена")
	}
	payments := payment.NewService(repo, payment.NewCatalog(settings), yoo)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Ошибка подключения к Telegram: %v", err)
	}
	api.Debug = cfg.Debug
	log.Printf("Авторизован как @%s", api.Self.UserName)

	b := bot.New(api, cfg, bot.Deps{
		Repo:       repo,
		Generator:  gen,
		Plans:      plans,
		Payments:   payments,
		Limiter:    ratelimit.New(ratelimit.PerMinute, ratelimit.PerHour),
		WorkoutLog: workoutLog,
		Settings:   settings,
	})

	srv := web.NewServer(repo.DB(), plans, payments)
	srv.OnPayment(b.NotifyActivation)
	go func() {
		if err := srv.Run(ctx, ":"+cfg.HTTPPort); err != nil {
			log.Printf("HTTP сервер остановлен: %v", err)
		}
	}()

	log.Println("Бот запущен")
	if err := b.Start(ctx); err != nil {
		log.Fatalf("Ошибка бота: %v", err)
	}
	log.Println("Бот остановлен")
}

// openKnowledge встроенные справочники или каталог KNOWLEDGE_DIR с перезагрузкой при изменениях
func openKnowledge(ctx context.Context, dir string) (*knowledge.Store, error) {
	if dir == "" {
		return knowledge.NewEmbedded()
	}
	store := knowledge.NewStore()
	if err := store.Load(dir); err != nil {
		return nil, err
	}
	if err := store.Watch(ctx, dir); err != nil {
		log.Printf("Слежение за %s недоступно: %v", dir, err)
	}
	return store, nil
}

// openPlanCache Redis, если задан REDIS_URL, иначе JSON файл
func openPlanCache(ctx context.Context, cfg *config.Config) cache.PlanCache {
	if cfg.RedisURL != "" {
		addr := strings.TrimPrefix(cfg.RedisURL, "redis://")
		rc, err := cache.NewRedisCache(ctx, addr, cfg.RedisPassword, cache.DefaultTTL)
		if err == nil {
			log.Printf("Кэш планов: Redis %s", addr)
			return rc
		}
		log.Printf("Redis недоступен (%v), используем файл", err)
	}
	return cache.NewFileCache(filepath.Join(cfg.DataDir, "ai_cache.json"), cache.DefaultTTL)
}
