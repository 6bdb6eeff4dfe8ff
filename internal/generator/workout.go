package generator

import (
	"time"

	"github.com/google/uuid"

	"fitbot/internal/knowledge"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

// Оценка длительности подхода, когда упражнение задано повторениями
const secondsPerSet = 45

// WorkoutRequest параметры тренировки
type WorkoutRequest struct {
	Type      models.WorkoutType
	Equipment string
}

// WorkoutPlanner собирает тренировку из справочника упражнений
type WorkoutPlanner struct {
	selector *ExerciseSelector
}

// NewWorkoutPlanner создаёт планировщик, recent - общая история упражнений
func NewWorkoutPlanner(store *knowledge.Store, recent *Recent, seed int64) *WorkoutPlanner {
	return &WorkoutPlanner{selector: NewExerciseSelector(store, recent, seed)}
}

// Plan подбирает упражнения и параметры под уровень пользователя
func (w *WorkoutPlanner) Plan(profile *models.UserProfile, req WorkoutRequest) *models.WorkoutPlan {
	level := models.LevelIntermediate
	var userID int64
	if profile != nil {
		userID = profile.UserID
		if profile.Level != "" {
			level = profile.Level
		}
	}
	if req.Type == "" {
		req.Type = models.WorkoutFullBody
	}

	exercises := w.selector.SelectExercises(SelectionCriteria{Type: req.Type, Equipment: req.Equipment})

	planned := make([]models.PlannedExercise, 0, len(exercises))
	seconds := 0
	for _, ex := range exercises {
		pe := models.PlannedExercise{Exercise: ex, Progression: ex.ProgressionFor(level)}
		planned = append(planned, pe)
		seconds += exerciseSeconds(pe.Progression)
	}

	minutes := (seconds + 59) / 60
	return &models.WorkoutPlan{
		ID:                uuid.NewString(),
		UserID:            userID,
		Type:              req.Type,
		Level:             level,
		Equipment:         req.Equipment,
		Exercises:         planned,
		EstimatedMinutes:  minutes,
		EstimatedCalories: nutrition.WorkoutCalories(req.Type, minutes),
		CreatedAt:         time.Now(),
	}
}

// exerciseSeconds время упражнения с отдыхом между подходами
func exerciseSeconds(p models.Progression) int {
	sets := p.Sets
	if sets == 0 {
		sets = 1
	}
	work := secondsPerSet
	switch {
	case p.DurationMinutes > 0:
		work = p.DurationMinutes * 60
	case p.DurationSeconds > 0:
		work = p.DurationSeconds
	}
	return sets*work + (sets-1)*p.RestSeconds
}
