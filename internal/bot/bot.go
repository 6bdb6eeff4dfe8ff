package bot

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron"

	"fitbot/internal/cache"
	"fitbot/internal/config"
	"fitbot/internal/gamification"
	"fitbot/internal/generator"
	"fitbot/internal/payment"
	"fitbot/internal/ratelimit"
	"fitbot/internal/repository"
	"fitbot/internal/storage"
)

// Deps зависимости бота
type Deps struct {
	Repo       *repository.Repository
	Generator  *generator.Generator
	Plans      cache.PlanCache
	Payments   *payment.Service
	Limiter    *ratelimit.Limiter
	WorkoutLog *storage.WorkoutLog
	Settings   *storage.Settings
}

// Bot представляет Telegram бота
type Bot struct {
	api        *tgbotapi.BotAPI
	config     *config.Config
	repo       *repository.Repository
	gen        *generator.Generator
	plans      cache.PlanCache
	payments   *payment.Service
	awards     *gamification.System
	limiter    *ratelimit.Limiter
	workoutLog *storage.WorkoutLog
	settings   *storage.Settings
	cron       *cron.Cron
	now        func() time.Time
}

// New создаёт новый экземпляр бота
func New(api *tgbotapi.BotAPI, cfg *config.Config, d Deps) *Bot {
	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.PerMinute, ratelimit.PerHour)
	}
	return &Bot{
		api:        api,
		config:     cfg,
		repo:       d.Repo,
		gen:        d.Generator,
		plans:      d.Plans,
		payments:   d.Payments,
		awards:     gamification.NewSystem(d.Repo),
		limiter:    limiter,
		workoutLog: d.WorkoutLog,
		settings:   d.Settings,
		now:        time.Now,
	}
}

// Start запускает напоминания и обрабатывает обновления до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	if err := b.startReminders(); err != nil {
		return err
	}
	defer b.cron.Stop()

	updates := b.initUpdatesChannel()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) initUpdatesChannel() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	return b.api.GetUpdatesChan(u)
}

// handleUpdate разбирает одно обновление. Паника в обработчике не роняет бота.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Паника при обработке обновления %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		msg := update.Message
		if msg.SuccessfulPayment != nil {
			b.handleSuccessfulPayment(msg)
			return
		}
		if msg.IsCommand() {
			b.handleCommand(msg)
			return
		}
		b.handleMessage(msg)
	}
}

// ctx контекст для одного обработчика
func (b *Bot) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
