package gamification

import (
	"fmt"

	"fitbot/internal/i18n"
)

// Параметры опыта
const (
	XPPerWorkout = 100
	XPPerLevel   = 500
	MaxTitle     = 10
)

// Level уровень пользователя по опыту
type Level struct {
	Number      int
	XP          int
	CurrentBase int // опыт на начало уровня
	NextXP      int // опыт для следующего уровня
}

// LevelFor уровень по количеству тренировок: 1 + XP/500
func LevelFor(totalWorkouts int) Level {
	if totalWorkouts < 0 {
		totalWorkouts = 0
	}
	xp := totalWorkouts * XPPerWorkout
	n := 1 + xp/XPPerLevel
	return Level{
		Number:      n,
		XP:          xp,
		CurrentBase: (n - 1) * XPPerLevel,
		NextXP:      n * XPPerLevel,
	}
}

// ToNext сколько опыта осталось до следующего уровня
func (l Level) ToNext() int {
	return l.NextXP - l.XP
}

// Progress процент пройденного уровня
func (l Level) Progress() float64 {
	return float64(l.XP-l.CurrentBase) / float64(l.NextXP-l.CurrentBase) * 100
}

// Title название уровня. Выше десятого все уровни называются как десятый.
func (l Level) Title(lang i18n.Language) string {
	n := l.Number
	if n > MaxTitle {
		n = MaxTitle
	}
	if n < 1 {
		n = 1
	}
	return i18n.T(fmt.Sprintf("title_%d", n), lang)
}
