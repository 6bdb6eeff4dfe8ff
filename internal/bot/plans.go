package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/generator"
	"fitbot/internal/i18n"
	"fitbot/internal/models"
)

const (
	// planTimeout сколько ждать генерацию вместе с переводом
	planTimeout = 90 * time.Second

	settingTrialHours = "trial_hours"
	defaultTrialHours = 24
)

var workoutTypes = []models.WorkoutType{
	models.WorkoutFullBody,
	models.WorkoutUpperBody,
	models.WorkoutLowerBody,
	models.WorkoutCardio,
	models.WorkoutStrength,
	models.WorkoutFlexibility,
}

var equipmentChoices = []string{
	models.EquipmentNone,
	models.EquipmentDumbbells,
	models.EquipmentBarbell,
	models.EquipmentAll,
}

// hasPlanAccess подписка активна или не закончился пробный период после регистрации
func hasPlanAccess(p *models.UserProfile, now time.Time, trial time.Duration) bool {
	if p.HasSubscription(now) {
		return true
	}
	return !p.CreatedAt.IsZero() && now.Before(p.CreatedAt.Add(trial))
}

// waitSeconds округляет ожидание вверх, минимум секунда
func waitSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// planURL ссылка на план на сайте, пусто если PUBLIC_URL не задан
func planURL(publicURL, planID string) string {
	if publicURL == "" || planID == "" {
		return ""
	}
	return strings.TrimRight(publicURL, "/") + "/plans/" + planID
}

func (b *Bot) settingInt(key string, def int) int {
	if b.settings == nil {
		return def
	}
	return b.settings.Int(key, def)
}

// allowPlan проверяет доступ и лимит запросов, сам отвечает пользователю при отказе
func (b *Bot) allowPlan(p *models.UserProfile) bool {
	chatID := p.UserID
	trial := time.Duration(b.settingInt(settingTrialHours, defaultTrialHours)) * time.Hour
	if !hasPlanAccess(p, b.now(), trial) {
		lang := b.getLanguage(chatID)
		b.sendMessageWithKeyboard(chatID, b.t("subscription_required", chatID), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_subscription", lang), cbSubscribe+"menu"),
			),
		))
		return false
	}
	if ok, wait := b.limiter.Allow(chatID); !ok {
		b.sendMessage(chatID, b.tf("rate_limited", chatID, waitSeconds(wait)))
		return false
	}
	return true
}

// sendPlan отправляет текст плана и ссылку на него
func (b *Bot) sendPlan(chatID int64, res *generator.Result) {
	if err := b.sendLong(chatID, res.Text); err != nil {
		return
	}
	if link := planURL(b.config.PublicURL, res.PlanID); link != "" {
		b.sendMessage(chatID, b.tf("plan_link", chatID, link))
	}
}

// planFailed сообщает об ошибке генерации
func (b *Bot) planFailed(chatID int64, err error) {
	var genErr *generator.GenerationError
	if errors.As(err, &genErr) {
		log.Printf("План %s для %d не прошёл проверку за %d попыток: %v", genErr.Kind, chatID, genErr.Attempts, genErr.Last)
	} else {
		log.Printf("Ошибка генерации плана для %d: %v", chatID, err)
	}
	b.sendMessage(chatID, b.t("plan_failed", chatID))
}

// handleMealPlan генерирует план питания на день
func (b *Bot) handleMealPlan(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil || !b.allowPlan(p) {
		return
	}
	lang := b.getLanguage(chatID)

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	prefs, err := b.repo.Preference.FoodPreferences(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}

	b.sendMessage(chatID, b.t("plan_generating", chatID))
	res, err := b.gen.MealPlan(ctx, p, prefs, lang)
	if err != nil {
		b.planFailed(chatID, err)
		return
	}
	b.sendPlan(chatID, res)

	if res.Meal != nil {
		b.logMeals(ctx, chatID, res.Meal, lang)
	}
}

// logMeals записывает приёмы пищи плана в историю питания
func (b *Bot) logMeals(ctx context.Context, userID int64, plan *models.MealPlan, lang i18n.Language) {
	date := b.now()
	for _, m := range plan.Meals {
		entry := &models.MealEntry{
			UserID:   userID,
			MealDate: date,
			MealType: string(m.MealType),
			MealName: m.Names.Get(string(lang)),
			Calories: m.Calories,
			Protein:  m.Protein,
			Fats:     m.Fat,
			Carbs:    m.Carbs,
		}
		if _, err := b.repo.Meal.Add(ctx, entry); err != nil {
			log.Printf("Ошибка записи питания %d: %v", userID, err)
			return
		}
	}
}

// handleWorkoutPlan предлагает выбрать тип тренировки
func (b *Bot) handleWorkoutPlan(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	b.sendMessageWithKeyboard(chatID, b.t("workout_choose_type", chatID), workoutTypeKeyboard(cbWorkoutType, b.getLanguage(chatID), workoutTypes))
}

func workoutTypeKeyboard(prefix string, lang i18n.Language, types []models.WorkoutType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range types {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(i18n.T("wtype_"+string(t), lang), prefix+string(t)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseWorkoutType тип из callback, неизвестный становится full_body
func parseWorkoutType(s string) models.WorkoutType {
	for _, t := range workoutTypes {
		if string(t) == s {
			return t
		}
	}
	return models.WorkoutFullBody
}

func (b *Bot) handleWorkoutTypeChoice(chatID int64, messageID int, value string) {
	wtype := parseWorkoutType(value)
	setFlowValue(chatID, string(wtype))

	lang := b.getLanguage(chatID)
	var row []tgbotapi.InlineKeyboardButton
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, eq := range equipmentChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_eq_"+eq, lang), cbEquipment+eq))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.editMessage(chatID, messageID, i18n.T("wtype_"+string(wtype), lang)+"\n\n"+b.t("workout_choose_equipment", chatID), &kb)
}

func (b *Bot) handleEquipmentChoice(chatID int64, messageID int, equipment string) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	wtype := parseWorkoutType(getFlowValue(chatID))
	clearState(chatID)
	b.editMessage(chatID, messageID, i18n.T("wtype_"+string(wtype), b.getLanguage(chatID))+", "+b.t("btn_eq_"+equipment, chatID), nil)

	if !b.allowPlan(p) {
		return
	}
	lang := b.getLanguage(chatID)

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	b.sendMessage(chatID, b.t("plan_generating", chatID))
	res, err := b.gen.WorkoutPlan(ctx, p, generator.WorkoutRequest{Type: wtype, Equipment: equipment}, lang)
	if err != nil {
		b.planFailed(chatID, err)
		return
	}
	b.sendPlan(chatID, res)

	plan := res.Workout
	if plan == nil {
		return
	}
	if b.workoutLog != nil {
		if err := b.workoutLog.Record(chatID, plan); err != nil {
			log.Printf("Ошибка записи журнала тренировок %d: %v", chatID, err)
		}
	}

	data := logPlanData(plan.Type, plan.EstimatedMinutes, plan.EstimatedCalories, len(plan.Exercises))
	b.sendMessageWithKeyboard(chatID, "✅", tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_log_this", lang), data),
		),
	))
}

// logPlanData callback кнопки "записать тренировку": logplan:type:min:kcal:count
func logPlanData(t models.WorkoutType, minutes, calories, exercises int) string {
	return fmt.Sprintf("%s%s:%d:%d:%d", cbLogPlan, t, minutes, calories, exercises)
}

// parseLogPlan разбирает данные после префикса logplan:
func parseLogPlan(s string) (models.WorkoutEntry, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return models.WorkoutEntry{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return models.WorkoutEntry{}, false
		}
		nums[i] = n
	}
	if nums[0] < minMinutes || nums[0] > maxMinutes {
		return models.WorkoutEntry{}, false
	}
	return models.WorkoutEntry{
		WorkoutType:     string(parseWorkoutType(parts[0])),
		DurationMinutes: nums[0],
		CaloriesBurned:  nums[1],
		ExercisesCount:  nums[2],
	}, true
}

// handleLogPlan записывает сгенерированную тренировку как выполненную
func (b *Bot) handleLogPlan(chatID int64, messageID int, data string) {
	entry, ok := parseLogPlan(data)
	if !ok {
		log.Printf("Невалидные данные тренировки %q от %d", data, chatID)
		return
	}
	// убираем кнопку, чтобы не записать дважды
	if _, err := b.api.Send(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})); err != nil {
		log.Printf("Ошибка редактирования сообщения [chat=%d]: %v", chatID, err)
	}
	entry.UserID = chatID
	b.saveWorkout(chatID, &entry)
}
