package storage

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"fitbot/internal/models"
)

// MaxLogEntries сколько последних планов хранится на пользователя
const MaxLogEntries = 100

// LogEntry выданный план тренировки
type LogEntry struct {
	Date           time.Time `json:"date"`
	Type           string    `json:"type"`
	Level          string    `json:"level"`
	Equipment      string    `json:"equipment,omitempty"`
	Duration       int       `json:"duration"`
	Calories       int       `json:"calories"`
	ExercisesCount int       `json:"exercises_count"`
	Exercises      []string  `json:"exercises"`
}

// ExerciseStat сколько раз упражнение попадало в планы
type ExerciseStat struct {
	Count    int       `json:"count"`
	LastDate time.Time `json:"last_date"`
}

type userLog struct {
	Workouts  []LogEntry              `json:"workouts"`
	Exercises map[string]ExerciseStat `json:"exercises"`
}

// WorkoutLog журнал выданных планов тренировок (workout_history.json)
type WorkoutLog struct {
	mu   sync.Mutex
	path string
	data map[string]*userLog
}

// OpenWorkoutLog загружает журнал из файла
func OpenWorkoutLog(path string) (*WorkoutLog, error) {
	l := &WorkoutLog{path: path, data: make(map[string]*userLog)}
	if err := readJSON(path, &l.data); err != nil {
		return nil, err
	}
	return l, nil
}

// Record добавляет план в журнал пользователя и сохраняет файл
func (l *WorkoutLog) Record(userID int64, plan *models.WorkoutPlan) error {
	if plan == nil {
		return fmt.Errorf("пустой план")
	}

	date := plan.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}

	entry := LogEntry{
		Date:           date,
		Type:           string(plan.Type),
		Level:          string(plan.Level),
		Equipment:      plan.Equipment,
		Duration:       plan.EstimatedMinutes,
		Calories:       plan.EstimatedCalories,
		ExercisesCount: len(plan.Exercises),
	}
	for _, ex := range plan.Exercises {
		entry.Exercises = append(entry.Exercises, ex.Exercise.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	u := l.data[key]
	if u == nil {
		u = &userLog{}
		l.data[key] = u
	}
	if u.Exercises == nil {
		u.Exercises = make(map[string]ExerciseStat)
	}

	u.Workouts = append(u.Workouts, entry)
	if len(u.Workouts) > MaxLogEntries {
		u.Workouts = append([]LogEntry(nil), u.Workouts[len(u.Workouts)-MaxLogEntries:]...)
	}
	for _, id := range entry.Exercises {
		st := u.Exercises[id]
		st.Count++
		st.LastDate = date
		u.Exercises[id] = st
	}

	return writeJSON(l.path, l.data)
}

// Entries копия журнала пользователя, старые первыми
func (l *WorkoutLog) Entries(userID int64) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.data[strconv.FormatInt(userID, 10)]
	if u == nil {
		return nil
	}
	return append([]LogEntry(nil), u.Workouts...)
}

// TopExercises n самых частых упражнений пользователя
func (l *WorkoutLog) TopExercises(userID int64, n int) []string {
	l.mu.Lock()
	u := l.data[strconv.FormatInt(userID, 10)]
	var ids []string
	counts := make(map[string]int)
	if u != nil {
		for id, st := range u.Exercises {
			ids = append(ids, id)
			counts[id] = st.Count
		}
	}
	l.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
