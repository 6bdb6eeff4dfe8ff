package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron"

	"fitbot/internal/models"
)

// Расписания фоновых задач (cron с секундами)
const (
	streakReminderSpec = "0 0 20 * * *"
	expiryReminderSpec = "0 0 10 * * *"
	cleanupSpec        = "@hourly"

	// напоминаем только тем, кто заходил недавно
	reminderActiveDays = 14
	pendingPaymentTTL  = 24 * time.Hour
	jobTimeout         = 5 * time.Minute
)

// startReminders регистрирует задачи и запускает планировщик
func (b *Bot) startReminders() error {
	b.cron = cron.New()

	jobs := []struct {
		spec string
		name string
		fn   func(context.Context)
	}{
		{b.config.ReminderCron, "workout reminder", b.sendWorkoutReminders},
		{streakReminderSpec, "streak reminder", b.sendStreakReminders},
		{expiryReminderSpec, "subscription expiry", b.sendExpiryReminders},
		{cleanupSpec, "cleanup", b.cleanup},
	}
	for _, job := range jobs {
		job := job
		err := b.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			job.fn(ctx)
		})
		if err != nil {
			return fmt.Errorf("ошибка расписания %s (%q): %w", job.name, job.spec, err)
		}
	}

	b.cron.Start()
	log.Printf("Напоминания запущены: тренировка %q, серия %q", b.config.ReminderCron, streakReminderSpec)
	return nil
}

// daysBetween число календарных дней от from до to
func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	c := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(c.Sub(a).Hours() / 24)
}

// needsWorkoutReminder активный пользователь ещё не тренировался сегодня
func needsWorkoutReminder(p models.UserProfile, s models.Streak, now time.Time) bool {
	if p.LastActive.IsZero() || daysBetween(p.LastActive, now) > reminderActiveDays {
		return false
	}
	return s.LastWorkoutDate == nil || daysBetween(*s.LastWorkoutDate, now) > 0
}

// streakAtRisk серия прервётся, если сегодня не будет тренировки
func streakAtRisk(s models.Streak, now time.Time) bool {
	if s.CurrentStreak < 2 || s.LastWorkoutDate == nil {
		return false
	}
	return daysBetween(*s.LastWorkoutDate, now) == 1
}

func (b *Bot) sendWorkoutReminders(ctx context.Context) {
	users, err := b.repo.User.All(ctx)
	if err != nil {
		log.Printf("Ошибка чтения пользователей для напоминаний: %v", err)
		return
	}
	now := b.now()
	sent := 0
	for _, u := range users {
		s, err := b.repo.Workout.Streak(ctx, u.UserID)
		if err != nil {
			log.Printf("Ошибка чтения серии %d: %v", u.UserID, err)
			continue
		}
		if !needsWorkoutReminder(u, s, now) {
			continue
		}
		if b.sendMessage(u.UserID, b.t("reminder_workout", u.UserID)) == nil {
			sent++
		}
	}
	log.Printf("Напоминания о тренировке: %d из %d", sent, len(users))
}

func (b *Bot) sendStreakReminders(ctx context.Context) {
	users, err := b.repo.User.All(ctx)
	if err != nil {
		log.Printf("Ошибка чтения пользователей для напоминаний: %v", err)
		return
	}
	now := b.now()
	for _, u := range users {
		s, err := b.repo.Workout.Streak(ctx, u.UserID)
		if err != nil {
			log.Printf("Ошибка чтения серии %d: %v", u.UserID, err)
			continue
		}
		if streakAtRisk(s, now) {
			b.sendMessage(u.UserID, b.tf("reminder_streak", u.UserID, s.CurrentStreak))
		}
	}
}

func (b *Bot) sendExpiryReminders(ctx context.Context) {
	now := b.now()
	users, err := b.repo.User.SubscriptionsEndingBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		log.Printf("Ошибка чтения подписок: %v", err)
		return
	}
	for _, u := range users {
		b.sendMessage(u.UserID, b.tf("reminder_sub_expiring", u.UserID, u.SubscriptionEnd.Local().Format(dateTimeLayout)))
	}
}

// cleanup чистит кэш планов, лимитер и зависшие платежи
func (b *Bot) cleanup(ctx context.Context) {
	now := b.now()
	if b.plans != nil {
		if n, err := b.plans.ClearOld(ctx); err != nil {
			log.Printf("Ошибка очистки кэша планов: %v", err)
		} else if n > 0 {
			log.Printf("Удалено устаревших планов: %d", n)
		}
	}
	b.limiter.Cleanup(now)
	if b.payments != nil {
		if n := b.payments.Pending().Expire(now, pendingPaymentTTL); n > 0 {
			log.Printf("Удалено зависших платежей: %d", n)
		}
	}
}
