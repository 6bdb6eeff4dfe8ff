package bot

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"fitbot/internal/gamification"
	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
	"fitbot/internal/payment"
)

func TestParseReferral(t *testing.T) {
	tests := []struct {
		name   string
		arg    string
		userID int64
		want   int64
		wantOK bool
	}{
		{"valid", "REF12345", 1, 12345, true},
		{"spaces", "  REF42 ", 1, 42, true},
		{"empty", "", 1, 0, false},
		{"no prefix", "12345", 1, 0, false},
		{"lowercase", "ref12345", 1, 0, false},
		{"not a number", "REFabc", 1, 0, false},
		{"zero", "REF0", 1, 0, false},
		{"self", "REF7", 7, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseReferral(tt.arg, tt.userID)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseReferral(%q) = %d, %v, want %d, %v", tt.arg, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReferralLink(t *testing.T) {
	link := referralLink("fit_bot", 42)
	if link != "https://t.me/fit_bot?start=REF42" {
		t.Fatalf("referralLink = %q", link)
	}
	if id, ok := parseReferral(strings.TrimPrefix(link, "https://t.me/fit_bot?start="), 1); !ok || id != 42 {
		t.Errorf("parseReferral(link) = %d, %v", id, ok)
	}
}

func TestMatchMenu(t *testing.T) {
	for _, lang := range i18n.Languages {
		for _, row := range menuButtons {
			for _, key := range row {
				if got := matchMenu(i18n.T(key, lang)); got != key {
					t.Errorf("matchMenu(%s/%s) = %q", lang, key, got)
				}
			}
		}
	}
	if got := matchMenu("привет"); got != "" {
		t.Errorf("matchMenu(привет) = %q, want empty", got)
	}
}

func TestIsCancel(t *testing.T) {
	for _, lang := range i18n.Languages {
		if !isCancel(" " + i18n.T("btn_cancel", lang) + " ") {
			t.Errorf("isCancel(%s) = false", lang)
		}
	}
	if isCancel("Отменить всё") {
		t.Error("isCancel(arbitrary text) = true")
	}
}

func TestStateHelpers(t *testing.T) {
	const chatID = 777
	setState(chatID, stateRegName)
	setFlowValue(chatID, "cardio")
	registrationStore.Lock()
	registrationStore.data[chatID] = &RegistrationData{Name: "Анна"}
	registrationStore.Unlock()

	if got := getState(chatID); got != stateRegName {
		t.Fatalf("getState = %q", got)
	}
	if got := getFlowValue(chatID); got != "cardio" {
		t.Fatalf("getFlowValue = %q", got)
	}

	clearState(chatID)
	if getState(chatID) != "" || getFlowValue(chatID) != "" {
		t.Error("clearState left state behind")
	}
	registrationStore.RLock()
	_, ok := registrationStore.data[chatID]
	registrationStore.RUnlock()
	if ok {
		t.Error("clearState left registration data")
	}
}

func TestRegistrationPrompts(t *testing.T) {
	states := []string{
		stateRegLanguage, stateRegName, stateRegAge, stateRegGender, stateRegHeight,
		stateRegWeight, stateRegGoal, stateRegLevel, stateRegLimitations,
	}
	for _, s := range states {
		if key := registrationPrompt(s); !i18n.Has(key, i18n.LangEnglish) {
			t.Errorf("registrationPrompt(%s) = %q: no translation", s, key)
		}
	}
	for _, s := range []string{statePrefAllergies, statePrefDiet, statePrefExcludes, statePrefFavorites, statePrefSnacks} {
		if key := preferencePrompt(s); !i18n.Has(key, i18n.LangEnglish) {
			t.Errorf("preferencePrompt(%s) = %q: no translation", s, key)
		}
	}
}

func TestBuildProfile(t *testing.T) {
	reg := &RegistrationData{
		Language:   i18n.LangEnglish,
		Name:       "Anna",
		Age:        30,
		Gender:     models.GenderFemale,
		HeightCm:   165,
		WeightKg:   60,
		Goal:       models.GoalLose,
		Level:      models.LevelBeginner,
		ReferrerID: 5,
	}
	p := buildProfile(10, reg)
	m := nutrition.Calculate(p)

	if p.UserID != 10 || p.Language != "en" || p.ReferredBy != 5 {
		t.Errorf("profile = %+v", p)
	}
	if p.DailyCalories != m.TargetCalories || p.DailyProtein != m.Protein || p.DailyFats != m.Fats || p.DailyCarbs != m.Carbs {
		t.Errorf("norms = %d/%d/%d/%d, want %+v", p.DailyCalories, p.DailyProtein, p.DailyFats, p.DailyCarbs, m)
	}
	if p.DailyCalories == 0 {
		t.Error("DailyCalories = 0")
	}
}

func TestWithNorms(t *testing.T) {
	p := models.UserProfile{Age: 30, Gender: models.GenderMale, HeightCm: 180, WeightKg: 80, Goal: models.GoalMaintain}
	weight := 90.0
	u := withNorms(p, models.ProfileUpdate{WeightKg: &weight})

	changed := p
	changed.WeightKg = 90
	want := nutrition.Calculate(&changed)

	if u.WeightKg == nil || *u.WeightKg != 90 {
		t.Fatal("weight lost from update")
	}
	if u.DailyCalories == nil || *u.DailyCalories != want.TargetCalories {
		t.Errorf("DailyCalories = %v, want %d", u.DailyCalories, want.TargetCalories)
	}
	if *u.DailyCalories <= nutrition.Calculate(&p).TargetCalories {
		t.Error("heavier profile should need more calories")
	}
	if p.WeightKg != 80 {
		t.Error("withNorms changed the original profile")
	}
}

func TestProfileText(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := now.Add(48 * time.Hour)
	p := &models.UserProfile{
		Name: "Anna", Age: 30, Gender: models.GenderFemale, HeightCm: 165, WeightKg: 60,
		Goal: models.GoalLose, Level: models.LevelBeginner, DailyCalories: 1600,
		SubscriptionEnd: &end,
	}

	text := profileText(p, i18n.LangEnglish, now)
	for _, want := range []string{"Anna", "1600 kcal", "Weight loss", "Beginner", "50.4", "67.8", "12.03.2025"} {
		if !strings.Contains(text, want) {
			t.Errorf("profile text has no %q:\n%s", want, text)
		}
	}

	p.SubscriptionEnd = nil
	if text := profileText(p, i18n.LangEnglish, now); strings.Contains(text, "Subscription until") {
		t.Error("inactive subscription shown")
	}
}

func TestHasPlanAccess(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		p    models.UserProfile
		want bool
	}{
		{"new user in trial", models.UserProfile{CreatedAt: now.Add(-2 * time.Hour)}, true},
		{"trial over", models.UserProfile{CreatedAt: now.Add(-25 * time.Hour)}, false},
		{"subscription", models.UserProfile{CreatedAt: now.AddDate(0, -1, 0), SubscriptionEnd: &future}, true},
		{"expired subscription", models.UserProfile{CreatedAt: now.AddDate(0, -1, 0), SubscriptionEnd: &past}, false},
		{"unknown creation time", models.UserProfile{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasPlanAccess(&tt.p, now, 24*time.Hour); got != tt.want {
				t.Errorf("hasPlanAccess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWaitSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{300 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{time.Minute, 60},
	}
	for _, tt := range tests {
		if got := waitSeconds(tt.d); got != tt.want {
			t.Errorf("waitSeconds(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestPlanURL(t *testing.T) {
	if got := planURL("https://fit.example.com/", "abc"); got != "https://fit.example.com/plans/abc" {
		t.Errorf("planURL = %q", got)
	}
	if got := planURL("", "abc"); got != "" {
		t.Errorf("planURL without base = %q", got)
	}
	if got := planURL("https://fit.example.com", ""); got != "" {
		t.Errorf("planURL without id = %q", got)
	}
}

func TestLogPlanData(t *testing.T) {
	data := logPlanData(models.WorkoutCardio, 40, 400, 6)
	if len(data) > 64 {
		t.Fatalf("callback data too long: %d bytes", len(data))
	}
	entry, ok := parseLogPlan(strings.TrimPrefix(data, cbLogPlan))
	if !ok {
		t.Fatalf("parseLogPlan(%q) failed", data)
	}
	if entry.WorkoutType != "cardio" || entry.DurationMinutes != 40 || entry.CaloriesBurned != 400 || entry.ExercisesCount != 6 {
		t.Errorf("entry = %+v", entry)
	}

	for _, bad := range []string{"", "cardio:40:400", "cardio:x:400:6", "cardio:0:400:6", "cardio:40:-1:6", "cardio:999:400:6"} {
		if _, ok := parseLogPlan(bad); ok {
			t.Errorf("parseLogPlan(%q) accepted", bad)
		}
	}

	if entry, ok := parseLogPlan("yoga:30:100:5"); !ok || entry.WorkoutType != string(models.WorkoutFullBody) {
		t.Errorf("unknown type = %+v, %v", entry, ok)
	}
}

func TestWaterNorm(t *testing.T) {
	liters, glasses := waterNorm(70)
	if math.Abs(liters-2.45) > 0.001 || glasses != 10 {
		t.Errorf("waterNorm(70) = %.2f, %d", liters, glasses)
	}
}

func TestStatsText(t *testing.T) {
	if got := statsText(statsData{}, i18n.LangRussian); got != i18n.T("stats_empty", i18n.LangRussian) {
		t.Errorf("empty stats = %q", got)
	}

	d := statsData{
		Stats:     models.WorkoutStats{TotalWorkouts: 7, TotalMinutes: 300, TotalCalories: 2500, AvgDuration: 42.8, WorkoutsWeek: 3, CurrentStreak: 2, LongestStreak: 4},
		Period:    gamification.Summary{PeriodDays: 30, TotalWorkouts: 5, TotalMinutes: 200, WorkoutsPerWeek: 1.2},
		ByType:    map[string][2]int{"cardio": {2, 60}, "strength": {5, 240}},
		Weight:    gamification.WeightProgress{First: 80, Last: 78, ChangeKg: -2},
		HasWeight: true,
	}
	text := statsText(d, i18n.LangEnglish)

	for _, want := range []string{"Workouts: 7", "Level 2", "XP: 700, 300", "Last 30 days: 5 workouts, 3.3 h", "80.0 → 78.0 kg (-2.0 kg)"} {
		if !strings.Contains(text, want) {
			t.Errorf("stats text has no %q:\n%s", want, text)
		}
	}
	strength := strings.Index(text, "Strength: 5")
	cardio := strings.Index(text, "Cardio: 2")
	if strength < 0 || cardio < 0 || strength > cardio {
		t.Errorf("types not sorted by count:\n%s", text)
	}
}

func TestTipAvailable(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-20*time.Hour - 30*time.Minute)
	old := now.Add(-25 * time.Hour)
	exact := now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		last      *time.Time
		wantOK    bool
		wantHours int
	}{
		{"never", nil, true, 0},
		{"yesterday", &old, true, 0},
		{"exactly a day", &exact, true, 0},
		{"recent", &recent, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, hours := tipAvailable(tt.last, now)
			if ok != tt.wantOK || hours != tt.wantHours {
				t.Errorf("tipAvailable = %v, %d, want %v, %d", ok, hours, tt.wantOK, tt.wantHours)
			}
		})
	}
}

func TestTips(t *testing.T) {
	day := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if dailyTip(i18n.LangRussian, day) != dailyTip(i18n.LangRussian, day.Add(10*time.Hour)) {
		t.Error("tip changed within one day")
	}
	if dailyTip(i18n.LangEnglish, day) == "" {
		t.Error("empty daily tip")
	}

	advice := i18n.Variants("advice_gain", i18n.LangEnglish)
	got := paidTip(models.GoalGain, i18n.LangEnglish)
	found := false
	for _, a := range advice {
		if a == got {
			found = true
		}
	}
	if !found {
		t.Errorf("paidTip = %q, not a gain advice", got)
	}
}

func TestStarsInvoice(t *testing.T) {
	payload := payment.Payload{UserID: 5, Kind: "7_days", Stars: true}
	inv := starsInvoice(5, "Sub", "Desc", payload, 300)

	if inv.Currency != payment.CurrencyStars || inv.Payload != "5:7_days:stars" {
		t.Errorf("invoice = %+v", inv)
	}
	if len(inv.Prices) != 1 || inv.Prices[0].Amount != 300 {
		t.Errorf("prices = %+v", inv.Prices)
	}
	if inv.SuggestedTipAmounts == nil {
		t.Error("SuggestedTipAmounts must be an empty list")
	}
}

func TestParseSetPrices(t *testing.T) {
	plans := payment.DefaultPlans

	got, err := parseSetPrices("1_day=70  14_days=900", plans)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["1_day"] != 70 || got["14_days"] != 900 {
		t.Errorf("prices = %v", got)
	}

	for _, bad := range []string{"", "1_day", "1_day=", "1_day=abc", "1_day=0", "1_day=1000000", "30_days=100", "1_day=50 bad"} {
		if _, err := parseSetPrices(bad, plans); !errors.Is(err, errBadPrices) {
			t.Errorf("parseSetPrices(%q) error = %v", bad, err)
		}
	}
}

func TestPricesList(t *testing.T) {
	got := pricesList(payment.DefaultPlans)
	want := "1_day = 50 ⭐\n7_days = 300 ⭐\n14_days = 600 ⭐"
	if got != want {
		t.Errorf("pricesList = %q, want %q", got, want)
	}
}

func TestReminderChecks(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	active := models.UserProfile{LastActive: now.Add(-48 * time.Hour)}
	idle := models.UserProfile{LastActive: now.AddDate(0, 0, -30)}

	workoutTests := []struct {
		name string
		p    models.UserProfile
		s    models.Streak
		want bool
	}{
		{"no workouts", active, models.Streak{}, true},
		{"trained yesterday", active, models.Streak{LastWorkoutDate: &yesterday}, true},
		{"trained today", active, models.Streak{LastWorkoutDate: &today}, false},
		{"idle user", idle, models.Streak{LastWorkoutDate: &lastWeek}, false},
	}
	for _, tt := range workoutTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsWorkoutReminder(tt.p, tt.s, now); got != tt.want {
				t.Errorf("needsWorkoutReminder = %v, want %v", got, tt.want)
			}
		})
	}

	streakTests := []struct {
		name string
		s    models.Streak
		want bool
	}{
		{"streak from yesterday", models.Streak{CurrentStreak: 3, LastWorkoutDate: &yesterday}, true},
		{"single day", models.Streak{CurrentStreak: 1, LastWorkoutDate: &yesterday}, false},
		{"already trained", models.Streak{CurrentStreak: 3, LastWorkoutDate: &today}, false},
		{"already broken", models.Streak{CurrentStreak: 3, LastWorkoutDate: &lastWeek}, false},
	}
	for _, tt := range streakTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streakAtRisk(tt.s, now); got != tt.want {
				t.Errorf("streakAtRisk = %v, want %v", got, tt.want)
			}
		})
	}
}
