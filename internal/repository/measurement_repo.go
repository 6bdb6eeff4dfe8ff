package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// MeasurementRepository работает с замерами тела
type MeasurementRepository struct {
	db *sqlx.DB
}

// NewMeasurementRepository создаёт репозиторий замеров
func NewMeasurementRepository(db *sqlx.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

const measurementColumns = `id, user_id, measurement_date,
	COALESCE(weight, 0) AS weight,
	COALESCE(chest, 0) AS chest,
	COALESCE(waist, 0) AS waist,
	COALESCE(hips, 0) AS hips,
	COALESCE(biceps, 0) AS biceps,
	COALESCE(notes, '') AS notes`

// Add сохраняет замер. Нулевые значения пишутся как NULL.
func (r *MeasurementRepository) Add(ctx context.Context, m *models.Measurement) (int64, error) {
	date := m.MeasurementDate
	if date.IsZero() {
		date = time.Now()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO measurements (user_id, measurement_date, weight, chest, waist, hips, biceps, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		m.UserID, date.Format(dateLayout),
		nullFloat(m.Weight), nullFloat(m.Chest), nullFloat(m.Waist),
		nullFloat(m.Hips), nullFloat(m.Biceps), nullString(m.Notes),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения замера: %w", err)
	}
	m.ID = id
	return id, nil
}

// History замеры за последние days дней, новые первыми
func (r *MeasurementRepository) History(ctx context.Context, userID int64, days int, now time.Time) ([]models.Measurement, error) {
	since := now.AddDate(0, 0, -days).Format(dateLayout)
	var list []models.Measurement
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT `+measurementColumns+`
		FROM measurements
		WHERE user_id = ? AND measurement_date >= ?
		ORDER BY measurement_date DESC, id DESC`), userID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения замеров: %w", err)
	}
	return list, nil
}

// Latest последний замер, nil если замеров нет
func (r *MeasurementRepository) Latest(ctx context.Context, userID int64) (*models.Measurement, error) {
	var m models.Measurement
	err := r.db.GetContext(ctx, &m, r.db.Rebind(`
		SELECT `+measurementColumns+`
		FROM measurements
		WHERE user_id = ?
		ORDER BY measurement_date DESC, id DESC
		LIMIT 1`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения замера: %w", err)
	}
	return &m, nil
}
