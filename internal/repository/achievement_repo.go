package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// AchievementRepository работает с полученными достижениями
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository создаёт репозиторий достижений
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Add выдаёт достижение. Повторная выдача ничего не меняет и возвращает false.
func (r *AchievementRepository) Add(ctx context.Context, userID int64, achievementType, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO achievements (user_id, achievement_type, achievement_name)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_type) DO NOTHING`),
		userID, achievementType, name)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи достижения %s: %w", achievementType, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Has проверяет, есть ли достижение у пользователя
func (r *AchievementRepository) Has(ctx context.Context, userID int64, achievementType string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM achievements WHERE user_id = ? AND achievement_type = ?)`),
		userID, achievementType)
	return exists, err
}

// List достижения пользователя в порядке получения
func (r *AchievementRepository) List(ctx context.Context, userID int64) ([]models.Achievement, error) {
	var list []models.Achievement
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT id, user_id, achievement_type, achievement_name, earned_at
		FROM achievements
		WHERE user_id = ?
		ORDER BY earned_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения достижений: %w", err)
	}
	return list, nil
}
