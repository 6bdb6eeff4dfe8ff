package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL драйвер
	_ "github.com/mattn/go-sqlite3" // SQLite драйвер
)

// dateLayout формат дат в таблицах истории
const dateLayout = "2006-01-02"

// Repository содержит все репозитории
type Repository struct {
	db *sqlx.DB

	User        *UserRepository
	Preference  *PreferenceRepository
	Workout     *WorkoutRepository
	Meal        *MealRepository
	Measurement *MeasurementRepository
	Achievement *AchievementRepository
	Payment     *PaymentRepository
	Referral    *ReferralRepository
}

// New создаёт новый экземпляр Repository
func New(db *sqlx.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepository(db),
		Preference:  NewPreferenceRepository(db),
		Workout:     NewWorkoutRepository(db),
		Meal:        NewMealRepository(db),
		Measurement: NewMeasurementRepository(db),
		Achievement: NewAchievementRepository(db),
		Payment:     NewPaymentRepository(db),
		Referral:    NewReferralRepository(db),
	}
}

// Open подключается к базе (sqlite3 или postgres) и создаёт таблицы
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}
	if driver == "sqlite3" {
		// одно соединение: :memory: живёт внутри соединения, а файл не блокируется
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания таблиц: %w", err)
	}
	return New(db), nil
}

// DB возвращает подключение, например для проверки здоровья
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Close закрывает подключение к базе
func (r *Repository) Close() error {
	return r.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	age INTEGER,
	gender TEXT,
	height DOUBLE PRECISION,
	weight DOUBLE PRECISION,
	goal TEXT NOT NULL DEFAULT 'maintain',
	level TEXT DEFAULT 'intermediate',
	activity_level TEXT,
	language TEXT,
	location TEXT NOT NULL DEFAULT '',
	limitations TEXT,
	daily_calories INTEGER,
	daily_protein INTEGER,
	daily_fats INTEGER,
	daily_carbs INTEGER,
	referred_by BIGINT,
	subscription_end TIMESTAMP,
	last_free_tip TIMESTAMP,
	total_payments DOUBLE PRECISION DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_active TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS food_preferences (
	id %[1]s,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	preference_type TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(user_id, preference_type, value)
);

CREATE TABLE IF NOT EXISTS workout_history (
	id %[1]s,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	workout_date DATE NOT NULL,
	workout_type TEXT NOT NULL,
	duration_minutes INTEGER,
	calories_burned INTEGER,
	exercises_count INTEGER,
	workout_data TEXT,
	completed BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meal_history (
	id %[1]s,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	meal_date DATE NOT NULL,
	meal_type TEXT NOT NULL,
	meal_name TEXT,
	calories INTEGER,
	protein DOUBLE PRECISION,
	fats DOUBLE PRECISION,
	carbs DOUBLE PRECISION,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS achievements (
	id %[1]s,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	achievement_type TEXT NOT NULL,
	achievement_name TEXT NOT NULL,
	earned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, achievement_type)
);

CREATE TABLE IF NOT EXISTS streaks (
	user_id BIGINT PRIMARY KEY REFERENCES users(user_id),
	current_streak INTEGER DEFAULT 0,
	longest_streak INTEGER DEFAULT 0,
	last_workout_date DATE
);

CREATE TABLE IF NOT EXISTS measurements (
	id %[1]s,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	measurement_date DATE NOT NULL,
	weight DOUBLE PRECISION,
	chest DOUBLE PRECISION,
	waist DOUBLE PRECISION,
	hips DOUBLE PRECISION,
	biceps DOUBLE PRECISION,
	notes TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	provider TEXT NOT NULL,
	subscription_key TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS referrals (
	referred_id BIGINT PRIMARY KEY,
	referrer_id BIGINT NOT NULL,
	rewarded BOOLEAN DEFAULT FALSE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workout_user_date ON workout_history(user_id, workout_date);
CREATE INDEX IF NOT EXISTS idx_meal_user_date ON meal_history(user_id, meal_date);
CREATE INDEX IF NOT EXISTS idx_measurement_user_date ON measurements(user_id, measurement_date);
`

// initSchema создаёт таблицы, если их нет. Отличается только тип id.
func initSchema(ctx context.Context, db *sqlx.DB) error {
	idType := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idType = "BIGSERIAL PRIMARY KEY"
	}

	for _, stmt := range strings.Split(fmt.Sprintf(schema, idType), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Totals общие цифры для администратора
type Totals struct {
	Users    int     `db:"users"`
	Workouts int     `db:"workouts"`
	Payments int     `db:"payments"`
	Revenue  float64 `db:"revenue"`
}

// Totals считает пользователей, тренировки и успешные оплаты
func (r *Repository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.GetContext(ctx, &t, r.db.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM workout_history) AS workouts,
			(SELECT COUNT(*) FROM payments WHERE status = ?) AS payments,
			(SELECT COALESCE(SUM(total_payments), 0) FROM users) AS revenue`),
		PaymentSucceeded)
	if err != nil {
		return t, fmt.Errorf("ошибка подсчёта итогов: %w", err)
	}
	return t, nil
}
