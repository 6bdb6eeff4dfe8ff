package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// MealRepository работает с дневником питания
type MealRepository struct {
	db *sqlx.DB
}

// NewMealRepository создаёт репозиторий питания
func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

// Add сохраняет приём пищи
func (r *MealRepository) Add(ctx context.Context, e *models.MealEntry) (int64, error) {
	date := e.MealDate
	if date.IsZero() {
		date = time.Now()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO meal_history (user_id, meal_date, meal_type, meal_name, calories, protein, fats, carbs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		e.UserID, date.Format(dateLayout), e.MealType, e.MealName,
		e.Calories, e.Protein, e.Fats, e.Carbs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения приёма пищи: %w", err)
	}
	e.ID = id
	return id, nil
}

// History приёмы пищи за последние days дней, новые первыми
func (r *MealRepository) History(ctx context.Context, userID int64, days int, now time.Time) ([]models.MealEntry, error) {
	since := now.AddDate(0, 0, -days).Format(dateLayout)
	var entries []models.MealEntry
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(`
		SELECT id, user_id, meal_date, meal_type,
		       COALESCE(meal_name, '') AS meal_name,
		       COALESCE(calories, 0) AS calories,
		       COALESCE(protein, 0) AS protein,
		       COALESCE(fats, 0) AS fats,
		       COALESCE(carbs, 0) AS carbs
		FROM meal_history
		WHERE user_id = ? AND meal_date >= ?
		ORDER BY meal_date DESC, id DESC`), userID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения дневника питания: %w", err)
	}
	return entries, nil
}
