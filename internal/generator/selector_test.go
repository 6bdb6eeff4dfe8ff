package generator

import (
	"testing"

	"fitbot/internal/models"
)

func TestSelectExercises(t *testing.T) {
	store := embeddedStore(t)

	tests := []struct {
		name      string
		criteria  SelectionCriteria
		wantCount int
		check     func(t *testing.T, ex models.Exercise)
	}{
		{
			name:      "full body",
			criteria:  SelectionCriteria{Type: models.WorkoutFullBody, Equipment: models.EquipmentAll},
			wantCount: 5,
		},
		{
			name:      "bodyweight only",
			criteria:  SelectionCriteria{Type: models.WorkoutUpperBody, Equipment: models.EquipmentNone},
			wantCount: 5,
			check: func(t *testing.T, ex models.Exercise) {
				if ex.Equipment != models.EquipmentNone {
					t.Errorf("%s needs %s", ex.ID, ex.Equipment)
				}
			},
		},
		{
			name:      "dumbbells",
			criteria:  SelectionCriteria{Type: models.WorkoutUpperBody, Equipment: models.EquipmentDumbbells},
			wantCount: 5,
			check: func(t *testing.T, ex models.Exercise) {
				if ex.Equipment != models.EquipmentDumbbells && ex.Equipment != models.EquipmentNone {
					t.Errorf("%s needs %s", ex.ID, ex.Equipment)
				}
			},
		},
		{
			name:      "cardio",
			criteria:  SelectionCriteria{Type: models.WorkoutCardio},
			wantCount: 3,
			check: func(t *testing.T, ex models.Exercise) {
				if !ex.Targets("cardio") {
					t.Errorf("%s is not cardio", ex.ID)
				}
			},
		},
		{
			name:      "lower body",
			criteria:  SelectionCriteria{Type: models.WorkoutLowerBody},
			wantCount: 5,
			check: func(t *testing.T, ex models.Exercise) {
				if !ex.Targets("legs") && !ex.Targets("glutes") {
					t.Errorf("%s is not a leg exercise", ex.ID)
				}
			},
		},
		{
			name:      "excluded ids",
			criteria:  SelectionCriteria{Type: models.WorkoutFullBody, ExcludeIDs: []string{"pushups", "squats", "plank"}},
			wantCount: 5,
			check: func(t *testing.T, ex models.Exercise) {
				switch ex.ID {
				case "pushups", "squats", "plank":
					t.Errorf("excluded %s selected", ex.ID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 10; seed++ {
				s := NewExerciseSelector(store, nil, seed)
				got := s.SelectExercises(tt.criteria)
				if len(got) != tt.wantCount {
					t.Fatalf("seed %d: got %d exercises, want %d", seed, len(got), tt.wantCount)
				}

				seen := make(map[string]bool)
				for i, ex := range got {
					if seen[ex.ID] {
						t.Errorf("seed %d: %s selected twice", seed, ex.ID)
					}
					seen[ex.ID] = true
					if ex.IsPlank() && i != len(got)-1 {
						t.Errorf("seed %d: plank at position %d of %d", seed, i, len(got))
					}
					if tt.check != nil {
						tt.check(t, ex)
					}
				}
			}
		})
	}
}

func TestSelectExercisesAvoidsRecent(t *testing.T) {
	store := embeddedStore(t)
	s := NewExerciseSelector(store, NewRecent(DefaultRecentSize), 7)

	first := s.SelectExercises(SelectionCriteria{Type: models.WorkoutCardio})
	second := s.SelectExercises(SelectionCriteria{Type: models.WorkoutCardio})

	used := make(map[string]bool)
	for _, ex := range first {
		used[ex.ID] = true
	}

	var cardio int
	for _, ex := range store.Exercises() {
		if ex.Targets("cardio") {
			cardio++
		}
	}

	// сначала идут все ещё не использованные упражнения
	fresh := cardio - len(first)
	for i := 0; i < fresh && i < len(second); i++ {
		if used[second[i].ID] {
			t.Errorf("second workout repeats %s before fresh exercises", second[i].ID)
		}
	}
}

func TestStrengthPrefersFreeWeights(t *testing.T) {
	s := NewExerciseSelector(embeddedStore(t), nil, 1)
	got := s.SelectExercises(SelectionCriteria{Type: models.WorkoutStrength, Equipment: models.EquipmentAll})
	if len(got) == 0 {
		t.Fatal("no exercises selected")
	}
	if got[0].ID != "barbell_squat" {
		t.Errorf("first exercise = %s, want barbell_squat", got[0].ID)
	}
	for _, ex := range got {
		if ex.IsPlank() {
			continue
		}
		if ex.Equipment == models.EquipmentNone && len(ex.MuscleGroups) == 1 {
			t.Errorf("%s scored low but was selected", ex.ID)
		}
	}
}
