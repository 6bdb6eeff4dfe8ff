package models

import "strings"

// WorkoutType тип тренировки
type WorkoutType string

const (
	WorkoutFullBody    WorkoutType = "full_body"
	WorkoutUpperBody   WorkoutType = "upper_body"
	WorkoutLowerBody   WorkoutType = "lower_body"
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutStrength    WorkoutType = "strength"
	WorkoutFlexibility WorkoutType = "flexibility"
)

// Equipment values
const (
	EquipmentNone      = "none"
	EquipmentAll       = "all"
	EquipmentDumbbells = "dumbbells"
	EquipmentBarbell   = "barbell"
	EquipmentMachine   = "machine"
)

// Progression параметры упражнения для уровня подготовки
type Progression struct {
	Sets            int    `json:"sets"`
	Reps            string `json:"reps"`
	RestSeconds     int    `json:"rest_seconds"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Exercise упражнение из справочника
type Exercise struct {
	ID             string                `json:"id"`
	Names          Localized             `json:"names"`
	MuscleGroups   []string              `json:"muscle_groups"`
	Equipment      string                `json:"equipment"`
	Difficulty     string                `json:"difficulty"`
	CaloriesPerRep float64               `json:"calories_per_rep"`
	Technique      Localized             `json:"technique"`
	CommonMistakes LocalizedList         `json:"common_mistakes"`
	Progression    map[Level]Progression `json:"progression"`
}

// Targets проверяет, тренирует ли упражнение группу мышц
func (e Exercise) Targets(group string) bool {
	for _, g := range e.MuscleGroups {
		if g == group {
			return true
		}
	}
	return false
}

// IsPlank планка всегда ставится в конец тренировки
func (e Exercise) IsPlank() bool {
	if strings.Contains(strings.ToLower(e.ID), "plank") {
		return true
	}
	return strings.Contains(strings.ToLower(e.Names["ru"]), "планка")
}

// ProgressionFor возвращает параметры для уровня или 3 x 10-12, отдых 60
func (e Exercise) ProgressionFor(level Level) Progression {
	p, ok := e.Progression[level]
	if !ok {
		return Progression{Sets: 3, Reps: "10-12", RestSeconds: 60}
	}
	if p.Sets == 0 && p.DurationSeconds == 0 && p.DurationMinutes == 0 {
		p.Sets = 3
	}
	if p.Reps == "" {
		p.Reps = "10-12"
	}
	if p.RestSeconds == 0 {
		p.RestSeconds = 60
	}
	return p
}
