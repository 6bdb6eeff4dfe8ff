package generator

import (
	"math/rand"
	"sync"

	"fitbot/internal/knowledge"
	"fitbot/internal/models"
)

// randSource - генератор случайных чисел, безопасный для горутин
type randSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newRandSource(seed int64) *randSource {
	return &randSource{r: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *randSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *randSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}

// recentWindow сколько последних ключей избегать при выборе
const recentWindow = 10

// ExerciseSelector - подбор упражнений для тренировки
type ExerciseSelector struct {
	store  *knowledge.Store
	recent *Recent
	rnd    *randSource
}

// NewExerciseSelector создаёт селектор поверх справочника
func NewExerciseSelector(store *knowledge.Store, recent *Recent, seed int64) *ExerciseSelector {
	if recent == nil {
		recent = NewRecent(DefaultRecentSize)
	}
	return &ExerciseSelector{
		store:  store,
		recent: recent,
		rnd:    newRandSource(seed),
	}
}

// SelectionCriteria - критерии подбора
type SelectionCriteria struct {
	Type       models.WorkoutType
	Equipment  string   // none, dumbbells, barbell, all
	ExcludeIDs []string // Исключить эти упражнения
}

// DayPattern - как набирать упражнения для типа тренировки
type DayPattern struct {
	Groups []string // по одному упражнению на группу
	Pool   []string // или до Count случайных упражнений из этих групп
	Count  int
	Ranked bool // выбирать лучшее по scoreExercise, а не случайное
}

// getDayPatterns возвращает паттерн для типа тренировки
func getDayPatterns(t models.WorkoutType) DayPattern {
	switch t {
	case models.WorkoutUpperBody:
		return DayPattern{Groups: []string{"chest", "back", "shoulders", "biceps", "triceps"}}
	case models.WorkoutLowerBody:
		return DayPattern{Pool: []string{"legs", "glutes"}, Count: 5}
	case models.WorkoutCardio:
		return DayPattern{Pool: []string{"cardio"}, Count: 3}
	case models.WorkoutStrength:
		return DayPattern{Groups: []string{"legs", "chest", "back", "shoulders", "triceps"}, Ranked: true}
	case models.WorkoutFlexibility:
		return DayPattern{Groups: []string{"abs", "glutes", "back", "legs"}, Ranked: true}
	default:
		// По умолчанию - full body
		return DayPattern{Groups: []string{"chest", "back", "legs", "shoulders", "abs"}}
	}
}

// SelectExercises подбирает упражнения без повторов, планка всегда последняя
func (s *ExerciseSelector) SelectExercises(criteria SelectionCriteria) []models.Exercise {
	available := s.filterExercises(criteria)
	pattern := getDayPatterns(criteria.Type)

	var selected []models.Exercise
	used := make(map[string]bool)

	if len(pattern.Groups) > 0 {
		for _, group := range pattern.Groups {
			var candidates []models.Exercise
			for _, ex := range available {
				if ex.Targets(group) && !used[ex.ID] {
					candidates = append(candidates, ex)
				}
			}
			if len(candidates) == 0 {
				continue
			}

			var ex models.Exercise
			if pattern.Ranked {
				ex = s.rankAndSelect(candidates)
			} else {
				ex = s.pickFresh(candidates)
			}
			selected = append(selected, ex)
			used[ex.ID] = true
		}
	} else {
		var pool []models.Exercise
		for _, ex := range available {
			for _, group := range pattern.Pool {
				if ex.Targets(group) {
					pool = append(pool, ex)
					break
				}
			}
		}
		pool = s.freshFirst(pool)
		for _, ex := range pool {
			if len(selected) == pattern.Count {
				break
			}
			selected = append(selected, ex)
		}
	}

	if len(selected) == 0 {
		selected = firstN(available, 5)
	}
	if len(selected) == 0 {
		selected = firstN(s.store.Exercises(), 5)
	}

	selected = plankLast(selected)

	ids := make([]string, 0, len(selected))
	for _, ex := range selected {
		ids = append(ids, ex.ID)
	}
	s.recent.Add(ids...)

	return selected
}

// filterExercises фильтрует упражнения по оборудованию и исключениям
func (s *ExerciseSelector) filterExercises(criteria SelectionCriteria) []models.Exercise {
	var filtered []models.Exercise
	for _, ex := range s.store.Exercises() {
		if exercisePassesFilters(ex, criteria) {
			filtered = append(filtered, ex)
		}
	}
	return filtered
}

// exercisePassesFilters проверяет упражнение по всем фильтрам
func exercisePassesFilters(ex models.Exercise, criteria SelectionCriteria) bool {
	// Проверка оборудования
	eq := criteria.Equipment
	if eq != "" && eq != models.EquipmentAll {
		if ex.Equipment != eq && ex.Equipment != models.EquipmentNone {
			return false
		}
	}

	// Проверка исключений
	for _, id := range criteria.ExcludeIDs {
		if ex.ID == id {
			return false
		}
	}
	return true
}

// pickFresh случайный выбор, недавно использованные упражнения только если других нет
func (s *ExerciseSelector) pickFresh(candidates []models.Exercise) models.Exercise {
	var fresh []models.Exercise
	for _, ex := range candidates {
		if !s.recent.Contains(ex.ID, recentWindow) {
			fresh = append(fresh, ex)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}
	return fresh[s.rnd.Intn(len(fresh))]
}

// freshFirst перемешивает список и ставит вперёд давно не использованные
func (s *ExerciseSelector) freshFirst(pool []models.Exercise) []models.Exercise {
	shuffled := append([]models.Exercise(nil), pool...)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	out := make([]models.Exercise, 0, len(shuffled))
	var stale []models.Exercise
	for _, ex := range shuffled {
		if s.recent.Contains(ex.ID, recentWindow) {
			stale = append(stale, ex)
			continue
		}
		out = append(out, ex)
	}
	return append(out, stale...)
}

// rankAndSelect выбирает лучшее упражнение из кандидатов
func (s *ExerciseSelector) rankAndSelect(candidates []models.Exercise) models.Exercise {
	best := candidates[0]
	bestScore := s.scoreExercise(best)

	for i := 1; i < len(candidates); i++ {
		score := s.scoreExercise(candidates[i])
		if score > bestScore {
			best = candidates[i]
			bestScore = score
		}
	}
	return best
}

// scoreExercise оценивает упражнение
func (s *ExerciseSelector) scoreExercise(ex models.Exercise) int {
	score := 0

	// Свободные веса +2
	if ex.Equipment == models.EquipmentBarbell || ex.Equipment == models.EquipmentDumbbells {
		score += 2
	}

	// Многосуставные +1
	if len(ex.MuscleGroups) > 1 {
		score++
	}

	// Недавно были -3
	if s.recent.Contains(ex.ID, recentWindow) {
		score -= 3
	}
	return score
}

func plankLast(exercises []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, 0, len(exercises))
	var planks []models.Exercise
	for _, ex := range exercises {
		if ex.IsPlank() {
			planks = append(planks, ex)
			continue
		}
		out = append(out, ex)
	}
	return append(out, planks...)
}

func firstN(exercises []models.Exercise, n int) []models.Exercise {
	if len(exercises) < n {
		n = len(exercises)
	}
	return append([]models.Exercise(nil), exercises[:n]...)
}
