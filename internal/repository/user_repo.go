package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// ErrUserExists пользователь уже зарегистрирован
var ErrUserExists = errors.New("пользователь уже существует")

// userRow строка таблицы users
type userRow struct {
	UserID          int64           `db:"user_id"`
	Name            string          `db:"name"`
	Age             sql.NullInt64   `db:"age"`
	Gender          sql.NullString  `db:"gender"`
	Height          sql.NullFloat64 `db:"height"`
	Weight          sql.NullFloat64 `db:"weight"`
	Goal            string          `db:"goal"`
	Level           sql.NullString  `db:"level"`
	ActivityLevel   sql.NullString  `db:"activity_level"`
	Language        sql.NullString  `db:"language"`
	Location        string          `db:"location"`
	Limitations     sql.NullString  `db:"limitations"`
	DailyCalories   sql.NullInt64   `db:"daily_calories"`
	DailyProtein    sql.NullInt64   `db:"daily_protein"`
	DailyFats       sql.NullInt64   `db:"daily_fats"`
	DailyCarbs      sql.NullInt64   `db:"daily_carbs"`
	ReferredBy      sql.NullInt64   `db:"referred_by"`
	SubscriptionEnd sql.NullTime    `db:"subscription_end"`
	LastFreeTip     sql.NullTime    `db:"last_free_tip"`
	TotalPayments   sql.NullFloat64 `db:"total_payments"`
	CreatedAt       time.Time       `db:"created_at"`
	LastActive      time.Time       `db:"last_active"`
}

const userColumns = `user_id, name, age, gender, height, weight, goal, level, activity_level,
	language, location, limitations, daily_calories, daily_protein, daily_fats, daily_carbs,
	referred_by, subscription_end, last_free_tip, total_payments, created_at, last_active`

func (u userRow) profile() *models.UserProfile {
	p := &models.UserProfile{
		UserID:        u.UserID,
		Name:          u.Name,
		Age:           int(u.Age.Int64),
		Gender:        models.Gender(u.Gender.String),
		HeightCm:      u.Height.Float64,
		WeightKg:      u.Weight.Float64,
		Goal:          models.ParseGoal(u.Goal),
		Level:         models.ParseLevel(u.Level.String),
		ActivityLevel: u.ActivityLevel.String,
		Language:      u.Language.String,
		Location:      u.Location,
		Limitations:   u.Limitations.String,
		DailyCalories: int(u.DailyCalories.Int64),
		DailyProtein:  int(u.DailyProtein.Int64),
		DailyFats:     int(u.DailyFats.Int64),
		DailyCarbs:    int(u.DailyCarbs.Int64),
		ReferredBy:    u.ReferredBy.Int64,
		TotalPayments: u.TotalPayments.Float64,
		CreatedAt:     u.CreatedAt,
		LastActive:    u.LastActive,
	}
	if u.SubscriptionEnd.Valid {
		t := u.SubscriptionEnd.Time
		p.SubscriptionEnd = &t
	}
	if u.LastFreeTip.Valid {
		t := u.LastFreeTip.Time
		p.LastFreeTip = &t
	}
	return p
}

// UserRepository работает с таблицей users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт репозиторий пользователей
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт пользователя и пустую серию тренировок
func (r *UserRepository) Create(ctx context.Context, p *models.UserProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	level := p.Level
	if level == "" {
		level = models.LevelIntermediate
	}
	goal := p.Goal
	if goal == "" {
		goal = models.GoalMaintain
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (user_id, name, age, gender, height, weight, goal, level,
		                   activity_level, language, location, limitations, referred_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`),
		p.UserID, p.Name, nullInt(p.Age), nullString(string(p.Gender)),
		nullFloat(p.HeightCm), nullFloat(p.WeightKg), string(goal), string(level),
		nullString(p.ActivityLevel), nullString(p.Language), p.Location,
		nullString(p.Limitations), nullInt64(p.ReferredBy),
	)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя %d: %w", p.UserID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserExists
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO streaks (user_id, current_streak, longest_streak)
		VALUES (?, 0, 0)
		ON CONFLICT (user_id) DO NOTHING`), p.UserID); err != nil {
		return fmt.Errorf("ошибка создания серии %d: %w", p.UserID, err)
	}

	return tx.Commit()
}

// Get возвращает пользователя, nil если не найден
func (r *UserRepository) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователя %d: %w", userID, err)
	}
	return row.profile(), nil
}

// Exists проверяет существование пользователя
func (r *UserRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`), userID)
	return exists, err
}

// All возвращает всех пользователей, для рассылок
func (r *UserRepository) All(ctx context.Context) ([]models.UserProfile, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	users := make([]models.UserProfile, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.profile())
	}
	return users, nil
}

// SubscriptionsEndingBetween пользователи, чья подписка заканчивается в интервале
func (r *UserRepository) SubscriptionsEndingBetween(ctx context.Context, from, to time.Time) ([]models.UserProfile, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE subscription_end >= ? AND subscription_end < ?
		ORDER BY user_id`), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения подписок: %w", err)
	}
	users := make([]models.UserProfile, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.profile())
	}
	return users, nil
}

// Update меняет только заданные поля и обновляет last_active.
// Возвращает false, если менять нечего или пользователь не найден.
func (r *UserRepository) Update(ctx context.Context, userID int64, u models.ProfileUpdate) (bool, error) {
	var fields []string
	var values []interface{}
	set := func(column string, value interface{}) {
		fields = append(fields, column+" = ?")
		values = append(values, value)
	}

	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Age != nil {
		set("age", *u.Age)
	}
	if u.Gender != nil {
		set("gender", string(*u.Gender))
	}
	if u.HeightCm != nil {
		set("height", *u.HeightCm)
	}
	if u.WeightKg != nil {
		set("weight", *u.WeightKg)
	}
	if u.Goal != nil {
		set("goal", string(*u.Goal))
	}
	if u.Level != nil {
		set("level", string(*u.Level))
	}
	if u.ActivityLevel != nil {
		set("activity_level", *u.ActivityLevel)
	}
	if u.Language != nil {
		set("language", *u.Language)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Limitations != nil {
		set("limitations", *u.Limitations)
	}
	if u.DailyCalories != nil {
		set("daily_calories", *u.DailyCalories)
	}
	if u.DailyProtein != nil {
		set("daily_protein", *u.DailyProtein)
	}
	if u.DailyFats != nil {
		set("daily_fats", *u.DailyFats)
	}
	if u.DailyCarbs != nil {
		set("daily_carbs", *u.DailyCarbs)
	}
	if u.ReferredBy != nil {
		set("referred_by", *u.ReferredBy)
	}
	if u.SubscriptionEnd != nil {
		set("subscription_end", u.SubscriptionEnd.UTC())
	}
	if u.LastFreeTip != nil {
		set("last_free_tip", u.LastFreeTip.UTC())
	}
	if u.TotalPayments != nil {
		set("total_payments", *u.TotalPayments)
	}

	if len(fields) == 0 {
		return false, nil
	}

	fields = append(fields, "last_active = CURRENT_TIMESTAMP")
	values = append(values, userID)

	query := r.db.Rebind("UPDATE users SET " + strings.Join(fields, ", ") + " WHERE user_id = ?")
	res, err := r.db.ExecContext(ctx, query, values...)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления пользователя %d: %w", userID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Touch обновляет время последней активности
func (r *UserRepository) Touch(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_active = CURRENT_TIMESTAMP WHERE user_id = ?`), userID)
	return err
}

// ExtendSubscription продлевает подписку от текущего конца или от now, если
// подписки нет или она истекла, и прибавляет сумму оплаты
func (r *UserRepository) ExtendSubscription(ctx context.Context, userID int64, d time.Duration, amount float64, now time.Time) (time.Time, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	var end sql.NullTime
	err = tx.GetContext(ctx, &end, tx.Rebind(`SELECT subscription_end FROM users WHERE user_id = ?`), userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("ошибка чтения подписки %d: %w", userID, err)
	}

	base := now
	if end.Valid && end.Time.After(now) {
		base = end.Time
	}
	newEnd := base.Add(d).UTC()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users
		SET subscription_end = ?, total_payments = COALESCE(total_payments, 0) + ?,
		    last_active = CURRENT_TIMESTAMP
		WHERE user_id = ?`), newEnd, amount, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("ошибка продления подписки %d: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, err
	}
	return newEnd, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}
