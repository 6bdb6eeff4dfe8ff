package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	BotToken string
	Debug    bool

	// База данных: sqlite3 (по умолчанию) или postgres
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Рабочие файлы
	DataDir      string // data
	KnowledgeDir string // каталог с JSON-таблицами продуктов/рецептов/упражнений, пусто = встроенные

	// Кэш планов в Redis (если пусто - JSON файл)
	RedisURL      string
	RedisPassword string

	// Перевод
	TranslateAPIKey string

	// ЮKassa
	YooKassaShopID    string
	YooKassaSecretKey string
	YooKassaReturnURL string

	// HTTP
	HTTPPort  string
	PublicURL string

	AdminIDs     []int64
	ReminderCron string
}

// Load загружает конфигурацию из переменных окружения или .env файла
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		BotToken: getEnv("BOT_TOKEN", ""),
		Debug:    getEnvAsBool("DEBUG", false),

		DBDriver:   getEnv("DB_DRIVER", "sqlite3"),
		DBPath:     getEnv("DB_PATH", filepath.Join(dataDir, "fitness_bot.db")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "fitbot"),

		DataDir:      dataDir,
		KnowledgeDir: getEnv("KNOWLEDGE_DIR", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TranslateAPIKey: getEnv("GOOGLE_TRANSLATE_API_KEY", ""),

		YooKassaShopID:    getEnv("YOOKASSA_SHOP_ID", ""),
		YooKassaSecretKey: getEnv("YOOKASSA_SECRET_KEY", ""),
		YooKassaReturnURL: getEnv("YOOKASSA_RETURN_URL", "https://t.me"),

		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),

		AdminIDs:     parseIDs(getEnv("ADMIN_IDS", "")),
		ReminderCron: getEnv("REMINDER_CRON", "0 0 9 * * *"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN не задан")
	}
	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("неизвестный DB_DRIVER %q (ожидается sqlite3 или postgres)", cfg.DBDriver)
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
		)
	}
	return c.DBPath + "?_foreign_keys=on"
}

// YooKassaEnabled сообщает, настроены ли ключи ЮKassa
func (c *Config) YooKassaEnabled() bool {
	return c.YooKassaShopID != "" && c.YooKassaSecretKey != ""
}

// IsAdmin проверяет, входит ли пользователь в ADMIN_IDS
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// parseIDs разбирает список вида "123,456"
func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Некорректный ADMIN_IDS элемент %q: %v", part, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
