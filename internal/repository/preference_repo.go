package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// PreferenceRepository работает с таблицей food_preferences
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository создаёт репозиторий предпочтений
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Add добавляет предпочтение, false если такое уже есть
func (r *PreferenceRepository) Add(ctx context.Context, userID int64, prefType, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO food_preferences (user_id, preference_type, value)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, preference_type, value) DO NOTHING`),
		userID, prefType, value)
	if err != nil {
		return false, fmt.Errorf("ошибка добавления предпочтения: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Remove удаляет предпочтение
func (r *PreferenceRepository) Remove(ctx context.Context, userID int64, prefType, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM food_preferences
		WHERE user_id = ? AND preference_type = ? AND value = ?`),
		userID, prefType, value)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления предпочтения: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Replace заменяет все значения одного типа
func (r *PreferenceRepository) Replace(ctx context.Context, userID int64, prefType string, values []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM food_preferences WHERE user_id = ? AND preference_type = ?`),
		userID, prefType); err != nil {
		return fmt.Errorf("ошибка очистки предпочтений: %w", err)
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO food_preferences (user_id, preference_type, value)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, preference_type, value) DO NOTHING`),
			userID, prefType, v); err != nil {
			return fmt.Errorf("ошибка добавления предпочтения: %w", err)
		}
	}
	return tx.Commit()
}

// Get возвращает предпочтения по типам
func (r *PreferenceRepository) Get(ctx context.Context, userID int64) (map[string][]string, error) {
	var rows []struct {
		Type  string `db:"preference_type"`
		Value string `db:"value"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT preference_type, value FROM food_preferences
		WHERE user_id = ?
		ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения предпочтений: %w", err)
	}

	prefs := make(map[string][]string)
	for _, row := range rows {
		prefs[row.Type] = append(prefs[row.Type], row.Value)
	}
	return prefs, nil
}

// FoodPreferences собирает предпочтения для генератора питания
func (r *PreferenceRepository) FoodPreferences(ctx context.Context, userID int64) (models.FoodPreferences, error) {
	prefs, err := r.Get(ctx, userID)
	if err != nil {
		return models.FoodPreferences{}, err
	}

	fp := models.FoodPreferences{
		Allergies: prefs[models.PrefAllergy],
		Excludes:  prefs[models.PrefExclude],
		Favorites: prefs[models.PrefFavorite],
		Available: prefs[models.PrefAvailable],
	}
	if diets := prefs[models.PrefDiet]; len(diets) > 0 {
		fp.Diet = diets[len(diets)-1]
	}
	for _, v := range prefs[models.PrefSnacks] {
		switch strings.ToLower(v) {
		case "yes", "true", "1", "да":
			fp.IncludeSnacks = true
		}
	}
	return fp, nil
}
