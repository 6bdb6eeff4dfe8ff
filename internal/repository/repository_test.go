package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitbot/internal/models"
)

func openTest(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), "sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *Repository, id int64) {
	t.Helper()
	err := repo.User.Create(context.Background(), &models.UserProfile{
		UserID:   id,
		Name:     "Анна",
		Age:      28,
		Gender:   models.GenderFemale,
		HeightCm: 165,
		WeightKg: 60,
		Goal:     models.GoalLose,
		Language: "ru",
	})
	if err != nil {
		t.Fatalf("Create(%d) error = %v", id, err)
	}
}

func TestUserCreateGet(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)

	if err := repo.User.Create(ctx, &models.UserProfile{UserID: 1, Name: "дубль"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Create() error = %v, want ErrUserExists", err)
	}

	u, err := repo.User.Get(ctx, 1)
	if err != nil || u == nil {
		t.Fatalf("Get() = %v, %v", u, err)
	}
	if u.Name != "Анна" || u.Age != 28 || u.Goal != models.GoalLose || u.Level != models.LevelIntermediate {
		t.Errorf("Get() = %+v", u)
	}
	if u.SubscriptionEnd != nil {
		t.Errorf("new user has subscription until %v", u.SubscriptionEnd)
	}

	missing, err := repo.User.Get(ctx, 404)
	if err != nil || missing != nil {
		t.Errorf("Get(404) = %v, %v, want nil, nil", missing, err)
	}

	ok, err := repo.User.Exists(ctx, 1)
	if err != nil || !ok {
		t.Errorf("Exists(1) = %v, %v", ok, err)
	}
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)

	weight := 58.5
	goal := models.GoalMaintain
	ok, err := repo.User.Update(ctx, 1, models.ProfileUpdate{WeightKg: &weight, Goal: &goal})
	if err != nil || !ok {
		t.Fatalf("Update() = %v, %v", ok, err)
	}

	u, _ := repo.User.Get(ctx, 1)
	if u.WeightKg != 58.5 || u.Goal != models.GoalMaintain || u.Name != "Анна" {
		t.Errorf("after Update() = %+v", u)
	}

	if ok, _ := repo.User.Update(ctx, 1, models.ProfileUpdate{}); ok {
		t.Error("empty Update() reported a change")
	}
	if ok, _ := repo.User.Update(ctx, 404, models.ProfileUpdate{WeightKg: &weight}); ok {
		t.Error("Update() of a missing user reported a change")
	}
}

func TestExtendSubscription(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	end, err := repo.User.ExtendSubscription(ctx, 1, 24*time.Hour, 100, now)
	if err != nil {
		t.Fatal(err)
	}
	if want := now.Add(24 * time.Hour); !end.Equal(want) {
		t.Errorf("first extension ends %v, want %v", end, want)
	}

	// активная подписка продлевается от её конца
	end, err = repo.User.ExtendSubscription(ctx, 1, 7*24*time.Hour, 600, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if want := now.Add(8 * 24 * time.Hour); !end.Equal(want) {
		t.Errorf("second extension ends %v, want %v", end, want)
	}

	u, _ := repo.User.Get(ctx, 1)
	if u.SubscriptionEnd == nil || !u.SubscriptionEnd.Equal(end) {
		t.Errorf("stored subscription end = %v, want %v", u.SubscriptionEnd, end)
	}
	if u.TotalPayments != 700 {
		t.Errorf("total payments = %v, want 700", u.TotalPayments)
	}

	ending, err := repo.User.SubscriptionsEndingBetween(ctx, end.Add(-time.Hour), end.Add(time.Hour))
	if err != nil || len(ending) != 1 {
		t.Errorf("SubscriptionsEndingBetween() = %d users, %v", len(ending), err)
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d int) *time.Time {
		t := time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name        string
		prev        models.Streak
		date        time.Time
		wantCurrent int
		wantLongest int
	}{
		{"first workout", models.Streak{}, *day(10), 1, 1},
		{"next day", models.Streak{CurrentStreak: 3, LongestStreak: 3, LastWorkoutDate: day(9)}, *day(10), 4, 4},
		{"same day", models.Streak{CurrentStreak: 3, LongestStreak: 5, LastWorkoutDate: day(10)}, day(10).Add(20 * time.Hour), 3, 5},
		{"gap", models.Streak{CurrentStreak: 6, LongestStreak: 6, LastWorkoutDate: day(7)}, *day(10), 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStreak(tt.prev, tt.date)
			if got.CurrentStreak != tt.wantCurrent || got.LongestStreak != tt.wantLongest {
				t.Errorf("NextStreak() = %d/%d, want %d/%d", got.CurrentStreak, got.LongestStreak, tt.wantCurrent, tt.wantLongest)
			}
			if got.LastWorkoutDate == nil || !got.LastWorkoutDate.Equal(*day(10)) {
				t.Errorf("last workout date = %v", got.LastWorkoutDate)
			}
		})
	}
}

func TestWorkoutHistoryAndStats(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	now := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)

	entries := []models.WorkoutEntry{
		{UserID: 1, WorkoutDate: now.AddDate(0, 0, -40), WorkoutType: "cardio", DurationMinutes: 20, CaloriesBurned: 200},
		{UserID: 1, WorkoutDate: now.AddDate(0, 0, -2), WorkoutType: "full_body", DurationMinutes: 40, CaloriesBurned: 300},
		{UserID: 1, WorkoutDate: now.AddDate(0, 0, -1), WorkoutType: "full_body", DurationMinutes: 50, CaloriesBurned: 350},
		{UserID: 1, WorkoutDate: now, WorkoutType: "strength", DurationMinutes: 30, CaloriesBurned: 250},
	}
	for i := range entries {
		id, err := repo.Workout.Add(ctx, &entries[i])
		if err != nil || id == 0 {
			t.Fatalf("Add() = %d, %v", id, err)
		}
	}

	history, err := repo.Workout.History(ctx, 1, WorkoutHistoryDays, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("History() returned %d entries, want 3", len(history))
	}
	if history[0].WorkoutType != "strength" {
		t.Errorf("newest entry = %s, want strength", history[0].WorkoutType)
	}

	stats, err := repo.Workout.Stats(ctx, 1, now)
	if err != nil {
		t.Fatal(err)
	}
	want := models.WorkoutStats{
		TotalWorkouts: 4,
		TotalMinutes:  140,
		TotalCalories: 1100,
		AvgDuration:   35,
		WorkoutsWeek:  3,
		CurrentStreak: 3,
		LongestStreak: 3,
	}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	byType, err := repo.Workout.CountsByType(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := byType["full_body"]; got != [2]int{2, 90} {
		t.Errorf("full_body = %v, want [2 90]", got)
	}
}

func TestBackdatedWorkoutKeepsStreak(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

	repo.Workout.Add(ctx, &models.WorkoutEntry{UserID: 1, WorkoutDate: now.AddDate(0, 0, -1), WorkoutType: "cardio"})
	repo.Workout.Add(ctx, &models.WorkoutEntry{UserID: 1, WorkoutDate: now, WorkoutType: "cardio"})
	repo.Workout.Add(ctx, &models.WorkoutEntry{UserID: 1, WorkoutDate: now.AddDate(0, 0, -10), WorkoutType: "cardio"})

	s, err := repo.Workout.Streak(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.CurrentStreak != 2 || s.LongestStreak != 2 {
		t.Errorf("streak = %d/%d, want 2/2", s.CurrentStreak, s.LongestStreak)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)

	for _, p := range [][2]string{
		{models.PrefAllergy, "орехи"},
		{models.PrefFavorite, "лосось"},
		{models.PrefExclude, "свинина"},
		{models.PrefSnacks, "yes"},
	} {
		if ok, err := repo.Preference.Add(ctx, 1, p[0], p[1]); err != nil || !ok {
			t.Fatalf("Add(%s) = %v, %v", p[1], ok, err)
		}
	}
	if ok, _ := repo.Preference.Add(ctx, 1, models.PrefAllergy, "орехи"); ok {
		t.Error("duplicate Add() reported a change")
	}
	if ok, _ := repo.Preference.Add(ctx, 1, models.PrefAllergy, "  "); ok {
		t.Error("blank Add() reported a change")
	}

	if err := repo.Preference.Replace(ctx, 1, models.PrefDiet, []string{"vegetarian"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Preference.Replace(ctx, 1, models.PrefDiet, []string{"vegan"}); err != nil {
		t.Fatal(err)
	}

	fp, err := repo.Preference.FoodPreferences(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fp.Diet != "vegan" || !fp.IncludeSnacks {
		t.Errorf("diet %q, snacks %v", fp.Diet, fp.IncludeSnacks)
	}
	if len(fp.Allergies) != 1 || fp.Allergies[0] != "орехи" || len(fp.Favorites) != 1 || len(fp.Excludes) != 1 {
		t.Errorf("FoodPreferences() = %+v", fp)
	}

	if ok, _ := repo.Preference.Remove(ctx, 1, models.PrefAllergy, "орехи"); !ok {
		t.Error("Remove() found nothing")
	}
	fp, _ = repo.Preference.FoodPreferences(ctx, 1)
	if len(fp.Allergies) != 0 {
		t.Errorf("allergies after Remove() = %v", fp.Allergies)
	}
}

func TestAchievementsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)

	first, err := repo.Achievement.Add(ctx, 1, "first_workout", "Первая тренировка")
	if err != nil || !first {
		t.Fatalf("first Add() = %v, %v", first, err)
	}
	again, err := repo.Achievement.Add(ctx, 1, "first_workout", "Первая тренировка")
	if err != nil || again {
		t.Errorf("second Add() = %v, %v, want false", again, err)
	}

	list, err := repo.Achievement.List(ctx, 1)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %d, %v", len(list), err)
	}
	if has, _ := repo.Achievement.Has(ctx, 1, "streak_7"); has {
		t.Error("Has(streak_7) = true")
	}
}

func TestMealsAndMeasurements(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

	repo.Meal.Add(ctx, &models.MealEntry{UserID: 1, MealDate: now, MealType: "breakfast", MealName: "Овсянка", Calories: 350})
	repo.Meal.Add(ctx, &models.MealEntry{UserID: 1, MealDate: now.AddDate(0, 0, -10), MealType: "lunch", Calories: 600})
	meals, err := repo.Meal.History(ctx, 1, MealHistoryDays, now)
	if err != nil || len(meals) != 1 || meals[0].MealName != "Овсянка" {
		t.Errorf("Meal.History() = %+v, %v", meals, err)
	}

	if m, err := repo.Measurement.Latest(ctx, 1); err != nil || m != nil {
		t.Errorf("Latest() without data = %v, %v", m, err)
	}
	repo.Measurement.Add(ctx, &models.Measurement{UserID: 1, MeasurementDate: now.AddDate(0, 0, -7), Weight: 61})
	repo.Measurement.Add(ctx, &models.Measurement{UserID: 1, MeasurementDate: now, Weight: 60, Waist: 70})

	latest, err := repo.Measurement.Latest(ctx, 1)
	if err != nil || latest == nil || latest.Weight != 60 || latest.Waist != 70 || latest.Chest != 0 {
		t.Errorf("Latest() = %+v, %v", latest, err)
	}
	list, _ := repo.Measurement.History(ctx, 1, MeasurementHistoryDays, now)
	if len(list) != 2 {
		t.Errorf("Measurement.History() = %d entries, want 2", len(list))
	}
}

func TestPaymentsAndReferrals(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	createUser(t, repo, 2)

	p := &models.Payment{ID: "pay-1", UserID: 2, Provider: "yookassa", SubscriptionKey: "7_days", Amount: 600, Currency: "RUB", Status: PaymentPending}
	if err := repo.Payment.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.Payment.UpdateStatus(ctx, "pay-1", PaymentPending, PaymentSucceeded); !ok {
		t.Fatal("UpdateStatus() did not apply")
	}
	if ok, _ := repo.Payment.UpdateStatus(ctx, "pay-1", PaymentPending, PaymentSucceeded); ok {
		t.Error("second UpdateStatus() applied twice")
	}
	got, err := repo.Payment.Get(ctx, "pay-1")
	if err != nil || got == nil || got.Status != PaymentSucceeded {
		t.Errorf("Get() = %+v, %v", got, err)
	}
	if n, _ := repo.Payment.CountSucceeded(ctx, 2); n != 1 {
		t.Errorf("CountSucceeded() = %d, want 1", n)
	}

	if ok, _ := repo.Referral.Add(ctx, 2, 2); ok {
		t.Error("self referral accepted")
	}
	if ok, err := repo.Referral.Add(ctx, 1, 2); err != nil || !ok {
		t.Fatalf("Add() = %v, %v", ok, err)
	}
	if ok, _ := repo.Referral.Add(ctx, 3, 2); ok {
		t.Error("user referred twice")
	}
	if id, _ := repo.Referral.Referrer(ctx, 2); id != 1 {
		t.Errorf("Referrer() = %d, want 1", id)
	}
	if n, _ := repo.Referral.Count(ctx, 1); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if ok, _ := repo.Referral.MarkRewarded(ctx, 2); !ok {
		t.Error("first MarkRewarded() = false")
	}
	if ok, _ := repo.Referral.MarkRewarded(ctx, 2); ok {
		t.Error("second MarkRewarded() = true")
	}
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	repo := openTest(t)
	createUser(t, repo, 1)
	createUser(t, repo, 2)

	if _, err := repo.Workout.Add(ctx, &models.WorkoutEntry{UserID: 1, WorkoutType: "cardio", DurationMinutes: 20}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for i, status := range []string{PaymentSucceeded, PaymentPending} {
		err := repo.Payment.Save(ctx, &models.Payment{
			ID: string(rune('a' + i)), UserID: 1, Provider: "stars", SubscriptionKey: "1_day",
			Amount: 50, Currency: "XTR", Status: status,
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if _, err := repo.User.ExtendSubscription(ctx, 1, 24*time.Hour, 100, time.Now()); err != nil {
		t.Fatalf("ExtendSubscription: %v", err)
	}

	got, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	want := Totals{Users: 2, Workouts: 1, Payments: 1, Revenue: 100}
	if got != want {
		t.Errorf("Totals() = %+v, want %+v", got, want)
	}
}
