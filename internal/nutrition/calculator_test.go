package nutrition

import (
	"math"
	"testing"

	"fitbot/internal/models"
)

func TestBMR(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		age    int
		gender models.Gender
		want   float64
	}{
		{"male 70/175/25", 70, 175, 25, models.GenderMale, 1673.75},   // 700 + 1093.75 - 125 + 5
		{"female 70/175/25", 70, 175, 25, models.GenderFemale, 1507.75}, // 700 + 1093.75 - 125 - 161
		{"russian male alias", 80, 180, 30, "мужской", 1780},
		{"short alias", 80, 180, 30, "м", 1780},
		{"unknown is female", 60, 165, 40, "", 1270.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BMR(tt.weight, tt.height, tt.age, tt.gender)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("BMR(%v, %v, %v, %q) = %v, want %v", tt.weight, tt.height, tt.age, tt.gender, got, tt.want)
			}
		})
	}
}

func TestActivityMultiplier(t *testing.T) {
	tests := []struct {
		level string
		want  float64
	}{
		{"beginner", 1.375},
		{"intermediate", 1.55},
		{"advanced", 1.725},
		{"athlete", 1.9},
		{"sedentary", 1.2},
		{" Very_Active ", 1.9},
		{"unknown", 1.55},
		{"", 1.55},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := ActivityMultiplier(tt.level); got != tt.want {
				t.Errorf("ActivityMultiplier(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	profile := &models.UserProfile{
		WeightKg: 70, HeightCm: 175, Age: 25, Gender: models.GenderMale,
		Level: models.LevelIntermediate,
	}

	tests := []struct {
		name   string
		goal   models.Goal
		target int
	}{
		// TDEE = 1673.75 * 1.55 = 2594.3125
		{"maintain", models.GoalMaintain, 2594},
		{"lose is minus 10 percent", models.GoalLose, 2335},
		{"gain is plus 15 percent", models.GoalGain, 2983},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *profile
			p.Goal = tt.goal
			m := Calculate(&p)
			if m.BMR != 1674 {
				t.Errorf("BMR = %d, want 1674", m.BMR)
			}
			if m.TDEE != 2594 {
				t.Errorf("TDEE = %d, want 2594", m.TDEE)
			}
			if m.TargetCalories != tt.target {
				t.Errorf("TargetCalories = %d, want %d", m.TargetCalories, tt.target)
			}
			if m.WaterML != 2450 {
				t.Errorf("WaterML = %d, want 2450", m.WaterML)
			}
		})
	}
}

func TestCalculateDefaults(t *testing.T) {
	// 70 кг, 170 см, 25 лет, мужчина, intermediate
	m := Calculate(&models.UserProfile{})
	if m.BMR != 1643 { // 700 + 1062.5 - 125 + 5 = 1642.5
		t.Errorf("BMR = %d, want 1643", m.BMR)
	}
	if m.Goal != models.GoalMaintain {
		t.Errorf("Goal = %q, want maintain", m.Goal)
	}

	if got := Calculate(nil); got.BMR != m.BMR {
		t.Errorf("Calculate(nil).BMR = %d, want %d", got.BMR, m.BMR)
	}
}

func TestCalculateMacros(t *testing.T) {
	tests := []struct {
		name     string
		calories int
		goal     models.Goal
		want     Macros
	}{
		{"lose 40/30/30", 2000, models.GoalLose, Macros{Protein: 200, Fats: 66, Carbs: 150}},
		{"gain 30/20/50", 3000, models.GoalGain, Macros{Protein: 225, Fats: 66, Carbs: 375}},
		{"maintain 30/30/40", 2400, models.GoalMaintain, Macros{Protein: 180, Fats: 80, Carbs: 240}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateMacros(tt.calories, tt.goal); got != tt.want {
				t.Errorf("CalculateMacros(%d, %s) = %+v, want %+v", tt.calories, tt.goal, got, tt.want)
			}
		})
	}
}

func TestCalculateFixedOffset(t *testing.T) {
	p := &models.UserProfile{
		WeightKg: 70, HeightCm: 175, Age: 25, Gender: models.GenderMale,
		Level: models.LevelIntermediate, Goal: models.GoalLose,
	}
	m := CalculateFixedOffset(p)
	// int(2594.3125 - 300) = 2294
	if m.TargetCalories != 2294 {
		t.Errorf("TargetCalories = %d, want 2294", m.TargetCalories)
	}
	if m.Protein != 140 || m.Fats != 70 {
		t.Errorf("Protein/Fats = %d/%d, want 140/70", m.Protein, m.Fats)
	}
	// (2294 - 560 - 630) / 4 = 276
	if m.Carbs != 276 {
		t.Errorf("Carbs = %d, want 276", m.Carbs)
	}

	p.Goal = models.GoalGain
	if got := CalculateFixedOffset(p).TargetCalories; got != 2894 {
		t.Errorf("gain TargetCalories = %d, want 2894", got)
	}
}
