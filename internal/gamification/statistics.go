package gamification

import (
	"math"
	"sort"
	"time"

	"fitbot/internal/models"
)

// TypeCount тренировки одного типа
type TypeCount struct {
	Type    string
	Count   int
	Minutes int
}

// Summary сводка тренировок за период
type Summary struct {
	PeriodDays      int
	TotalWorkouts   int
	TotalMinutes    int
	TotalCalories   int
	AvgDuration     float64
	WorkoutsPerWeek float64
	ByType          []TypeCount
}

// TotalHours время тренировок в часах, до десятых
func (s Summary) TotalHours() float64 {
	return math.Round(float64(s.TotalMinutes)/60*10) / 10
}

// Summarize сводка по записям истории
func Summarize(entries []models.WorkoutEntry, days int) Summary {
	s := Summary{PeriodDays: days, TotalWorkouts: len(entries)}
	byType := make(map[string]*TypeCount)
	for _, e := range entries {
		s.TotalMinutes += e.DurationMinutes
		s.TotalCalories += e.CaloriesBurned
		tc := byType[e.WorkoutType]
		if tc == nil {
			tc = &TypeCount{Type: e.WorkoutType}
			byType[e.WorkoutType] = tc
		}
		tc.Count++
		tc.Minutes += e.DurationMinutes
	}
	if s.TotalWorkouts > 0 {
		s.AvgDuration = math.Round(float64(s.TotalMinutes)/float64(s.TotalWorkouts)*10) / 10
	}
	if days > 0 {
		s.WorkoutsPerWeek = math.Round(float64(s.TotalWorkouts)/float64(days)*7*10) / 10
	}

	for _, tc := range byType {
		s.ByType = append(s.ByType, *tc)
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Count != s.ByType[j].Count {
			return s.ByType[i].Count > s.ByType[j].Count
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})
	return s
}

// WeightProgress изменение веса между первым и последним замером
type WeightProgress struct {
	First         float64
	Last          float64
	ChangeKg      float64
	ChangePercent float64
	Count         int
	PeriodDays    int
}

// Weight прогресс по весу. false, если замеров с весом меньше двух.
func Weight(measurements []models.Measurement) (WeightProgress, bool) {
	var withWeight []models.Measurement
	for _, m := range measurements {
		if m.Weight > 0 {
			withWeight = append(withWeight, m)
		}
	}
	if len(withWeight) < 2 {
		return WeightProgress{}, false
	}
	sort.SliceStable(withWeight, func(i, j int) bool {
		return withWeight[i].MeasurementDate.Before(withWeight[j].MeasurementDate)
	})

	first, last := withWeight[0], withWeight[len(withWeight)-1]
	change := last.Weight - first.Weight
	return WeightProgress{
		First:         first.Weight,
		Last:          last.Weight,
		ChangeKg:      math.Round(change*10) / 10,
		ChangePercent: math.Round(change/first.Weight*100*10) / 10,
		Count:         len(withWeight),
		PeriodDays:    int(last.MeasurementDate.Sub(first.MeasurementDate) / (24 * time.Hour)),
	}, true
}
