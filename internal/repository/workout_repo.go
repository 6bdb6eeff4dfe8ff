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

// Окна истории по умолчанию, в днях
const (
	WorkoutHistoryDays     = 30
	MealHistoryDays        = 7
	MeasurementHistoryDays = 90
)

// WorkoutRepository работает с историей тренировок и сериями
type WorkoutRepository struct {
	db *sqlx.DB
}

// NewWorkoutRepository создаёт репозиторий тренировок
func NewWorkoutRepository(db *sqlx.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// Add сохраняет тренировку и в той же транзакции обновляет серию
func (r *WorkoutRepository) Add(ctx context.Context, e *models.WorkoutEntry) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	date := e.WorkoutDate
	if date.IsZero() {
		date = time.Now()
	}

	var id int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO workout_history
		(user_id, workout_date, workout_type, duration_minutes,
		 calories_burned, exercises_count, workout_data, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		e.UserID, date.Format(dateLayout), e.WorkoutType, e.DurationMinutes,
		e.CaloriesBurned, e.ExercisesCount, e.WorkoutData, true,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения тренировки: %w", err)
	}

	if err := updateStreak(ctx, tx, e.UserID, date); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// NextStreak считает серию после тренировки в день date: следующий день
// продолжает серию, тот же день ничего не меняет, пропуск начинает заново
func NextStreak(s models.Streak, date time.Time) models.Streak {
	day := truncateDay(date)
	if s.LastWorkoutDate == nil {
		s.CurrentStreak = 1
	} else {
		last := truncateDay(*s.LastWorkoutDate)
		switch diff := int(day.Sub(last).Hours() / 24); {
		case diff == 0:
		case diff == 1:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastWorkoutDate = &day
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func updateStreak(ctx context.Context, tx *sqlx.Tx, userID int64, date time.Time) error {
	var s models.Streak
	err := tx.GetContext(ctx, &s, tx.Rebind(`
		SELECT user_id, current_streak, longest_streak, last_workout_date
		FROM streaks WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		// серии нет у пользователей, созданных в обход Create
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения серии %d: %w", userID, err)
	}

	// тренировка задним числом не двигает серию назад
	if s.LastWorkoutDate != nil && truncateDay(date).Before(truncateDay(*s.LastWorkoutDate)) {
		return nil
	}

	s = NextStreak(s, date)
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE streaks
		SET current_streak = ?, longest_streak = ?, last_workout_date = ?
		WHERE user_id = ?`),
		s.CurrentStreak, s.LongestStreak, s.LastWorkoutDate.Format(dateLayout), userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления серии %d: %w", userID, err)
	}
	return nil
}

const workoutColumns = `id, user_id, workout_date, workout_type,
	COALESCE(duration_minutes, 0) AS duration_minutes,
	COALESCE(calories_burned, 0) AS calories_burned,
	COALESCE(exercises_count, 0) AS exercises_count,
	COALESCE(workout_data, '') AS workout_data,
	completed`

// History тренировки за последние days дней, новые первыми
func (r *WorkoutRepository) History(ctx context.Context, userID int64, days int, now time.Time) ([]models.WorkoutEntry, error) {
	since := now.AddDate(0, 0, -days).Format(dateLayout)
	var entries []models.WorkoutEntry
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(`
		SELECT `+workoutColumns+`
		FROM workout_history
		WHERE user_id = ? AND workout_date >= ?
		ORDER BY workout_date DESC, id DESC`), userID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории тренировок: %w", err)
	}
	return entries, nil
}

// Streak текущая серия, нулевая если записи нет
func (r *WorkoutRepository) Streak(ctx context.Context, userID int64) (models.Streak, error) {
	s := models.Streak{UserID: userID}
	err := r.db.GetContext(ctx, &s, r.db.Rebind(`
		SELECT user_id, current_streak, longest_streak, last_workout_date
		FROM streaks WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("ошибка чтения серии %d: %w", userID, err)
	}
	return s, nil
}

// Stats общая статистика, за неделю и серия
func (r *WorkoutRepository) Stats(ctx context.Context, userID int64, now time.Time) (models.WorkoutStats, error) {
	var stats models.WorkoutStats

	var totals struct {
		Count    int     `db:"total_workouts"`
		Minutes  int     `db:"total_minutes"`
		Calories int     `db:"total_calories"`
		Avg      float64 `db:"avg_duration"`
	}
	err := r.db.GetContext(ctx, &totals, r.db.Rebind(`
		SELECT COUNT(*) AS total_workouts,
		       COALESCE(SUM(duration_minutes), 0) AS total_minutes,
		       COALESCE(SUM(calories_burned), 0) AS total_calories,
		       COALESCE(AVG(duration_minutes), 0) AS avg_duration
		FROM workout_history
		WHERE user_id = ?`), userID)
	if err != nil {
		return stats, fmt.Errorf("ошибка чтения статистики: %w", err)
	}
	stats.TotalWorkouts = totals.Count
	stats.TotalMinutes = totals.Minutes
	stats.TotalCalories = totals.Calories
	stats.AvgDuration = totals.Avg

	since := now.AddDate(0, 0, -7).Format(dateLayout)
	err = r.db.GetContext(ctx, &stats.WorkoutsWeek, r.db.Rebind(`
		SELECT COUNT(*) FROM workout_history
		WHERE user_id = ? AND workout_date >= ?`), userID, since)
	if err != nil {
		return stats, fmt.Errorf("ошибка чтения статистики за неделю: %w", err)
	}

	streak, err := r.Streak(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.CurrentStreak = streak.CurrentStreak
	stats.LongestStreak = streak.LongestStreak
	return stats, nil
}

// CountsByType количество тренировок и минут по типам
func (r *WorkoutRepository) CountsByType(ctx context.Context, userID int64) (map[string][2]int, error) {
	var rows []struct {
		Type    string `db:"workout_type"`
		Count   int    `db:"cnt"`
		Minutes int    `db:"minutes"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT workout_type, COUNT(*) AS cnt, COALESCE(SUM(duration_minutes), 0) AS minutes
		FROM workout_history
		WHERE user_id = ?
		GROUP BY workout_type
		ORDER BY workout_type`), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тренировок по типам: %w", err)
	}
	out := make(map[string][2]int, len(rows))
	for _, row := range rows {
		out[row.Type] = [2]int{row.Count, row.Minutes}
	}
	return out, nil
}
