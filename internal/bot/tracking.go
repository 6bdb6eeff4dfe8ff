package bot

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/excel"
	"fitbot/internal/gamification"
	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

const (
	statsPeriodDays = 30
	exportDays      = 365
	glassML         = 250
)

// Типы, которые можно записать вручную
var loggableTypes = []models.WorkoutType{
	models.WorkoutStrength,
	models.WorkoutCardio,
	models.WorkoutFlexibility,
	models.WorkoutFullBody,
}

// handleLogWorkout начинает запись выполненной тренировки
func (b *Bot) handleLogWorkout(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	b.sendMessageWithKeyboard(chatID, b.t("log_choose_type", chatID), workoutTypeKeyboard(cbLogType, b.getLanguage(chatID), loggableTypes))
}

func (b *Bot) handleLogTypeChoice(chatID int64, messageID int, value string) {
	wtype := parseWorkoutType(value)
	setFlowValue(chatID, string(wtype))
	setState(chatID, stateLogMinutes)

	b.editMessage(chatID, messageID, b.t("wtype_"+string(wtype), chatID), nil)
	b.sendMessageWithKeyboard(chatID, b.t("log_ask_minutes", chatID), cancelKeyboard(b.getLanguage(chatID)))
}

func (b *Bot) processLogMinutes(chatID int64, text string) {
	minutes, err := validateMinutes(text)
	if err != nil {
		b.sendMessage(chatID, "❌ "+b.t(errorKey(err), chatID))
		return
	}
	wtype := getFlowValue(chatID)
	clearState(chatID)

	b.saveWorkout(chatID, &models.WorkoutEntry{
		UserID:          chatID,
		WorkoutType:     string(parseWorkoutType(wtype)),
		DurationMinutes: minutes,
	})
	b.showMainMenu(chatID)
}

// saveWorkout сохраняет тренировку, обновляет серию и выдаёт достижения
func (b *Bot) saveWorkout(chatID int64, entry *models.WorkoutEntry) {
	now := b.now()
	entry.WorkoutDate = now
	if entry.CaloriesBurned == 0 {
		entry.CaloriesBurned = nutrition.WorkoutCalories(models.WorkoutType(entry.WorkoutType), entry.DurationMinutes)
	}

	ctx, cancel := b.ctx()
	defer cancel()

	if _, err := b.repo.Workout.Add(ctx, entry); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	streak, err := b.repo.Workout.Streak(ctx, chatID)
	if err != nil {
		log.Printf("Ошибка чтения серии %d: %v", chatID, err)
	}

	b.sendMessage(chatID, b.tf("log_saved", chatID,
		b.t("wtype_"+entry.WorkoutType, chatID), entry.DurationMinutes, entry.CaloriesBurned, streak.CurrentStreak))

	awarded, err := b.awards.CheckAndAward(ctx, chatID, now)
	if err != nil {
		log.Printf("Ошибка выдачи достижений %d: %v", chatID, err)
	}
	lang := b.getLanguage(chatID)
	for _, a := range awarded {
		b.sendMessage(chatID, i18n.Tf("achievement_unlocked", lang, a.Icon+" "+a.Name(lang)))
	}
}

// handleWeightLog просит ввести текущий вес
func (b *Bot) handleWeightLog(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	setState(chatID, stateWeightLog)
	b.sendMessageWithKeyboard(chatID, b.t("weight_ask", chatID), cancelKeyboard(b.getLanguage(chatID)))
}

// processWeightLog записывает замер, меняет вес в профиле и пересчитывает нормы
func (b *Bot) processWeightLog(chatID int64, text string) {
	weight, err := validateWeight(text)
	if err != nil {
		b.sendMessage(chatID, "❌ "+b.t(errorKey(err), chatID))
		return
	}
	clearState(chatID)

	p := b.requireProfile(chatID)
	if p == nil {
		return
	}

	ctx, cancel := b.ctx()
	defer cancel()

	previous := p.WeightKg
	if last, err := b.repo.Measurement.Latest(ctx, chatID); err == nil && last != nil && last.Weight > 0 {
		previous = last.Weight
	}

	if _, err := b.repo.Measurement.Add(ctx, &models.Measurement{
		UserID:          chatID,
		MeasurementDate: b.now(),
		Weight:          weight,
	}); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if _, err := b.repo.User.Update(ctx, chatID, withNorms(*p, models.ProfileUpdate{WeightKg: &weight})); err != nil {
		log.Printf("Ошибка обновления веса %d: %v", chatID, err)
	}

	diff := 0.0
	if previous > 0 {
		diff = math.Round((weight-previous)*10) / 10
	}
	b.sendMessage(chatID, b.tf("weight_saved", chatID, weight, diff))
	b.showMainMenu(chatID)
}

// waterNorm литры и стаканы по 250 мл
func waterNorm(weightKg float64) (liters float64, glasses int) {
	ml := nutrition.WaterML(weightKg)
	return float64(ml) / 1000, int(math.Ceil(float64(ml) / glassML))
}

func (b *Bot) handleWater(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	liters, glasses := waterNorm(p.WeightKg)
	b.sendMessage(chatID, b.tf("water_text", chatID, liters, glasses))
}

// statsData всё, что нужно для экрана статистики
type statsData struct {
	Stats     models.WorkoutStats
	Period    gamification.Summary
	ByType    map[string][2]int
	Weight    gamification.WeightProgress
	HasWeight bool
}

// statsText собирает экран статистики
func statsText(d statsData, lang i18n.Language) string {
	if d.Stats.TotalWorkouts == 0 {
		return i18n.T("stats_empty", lang)
	}
	lvl := gamification.LevelFor(d.Stats.TotalWorkouts)

	var sb strings.Builder
	sb.WriteString(i18n.Tf("stats_text", lang,
		d.Stats.TotalWorkouts, d.Stats.TotalMinutes, d.Stats.TotalCalories, d.Stats.AvgDuration,
		d.Stats.WorkoutsWeek, d.Stats.CurrentStreak, d.Stats.LongestStreak,
		lvl.Number, lvl.Title(lang), lvl.XP, lvl.ToNext()))

	if d.Period.TotalWorkouts > 0 {
		sb.WriteString("\n")
		sb.WriteString(i18n.Tf("stats_period", lang,
			d.Period.PeriodDays, d.Period.TotalWorkouts, d.Period.TotalHours(), d.Period.WorkoutsPerWeek))
	}

	if len(d.ByType) > 0 {
		types := make([]string, 0, len(d.ByType))
		for t := range d.ByType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool {
			ci, cj := d.ByType[types[i]][0], d.ByType[types[j]][0]
			if ci != cj {
				return ci > cj
			}
			return types[i] < types[j]
		})

		sb.WriteString("\n")
		sb.WriteString(i18n.T("stats_by_type", lang))
		for _, t := range types {
			name := i18n.T("wtype_"+t, lang)
			sb.WriteString("\n")
			sb.WriteString(i18n.Tf("stats_type_line", lang, name, d.ByType[t][0], d.ByType[t][1]))
		}
	}

	if d.HasWeight {
		sb.WriteString("\n")
		sb.WriteString(i18n.Tf("stats_weight_progress", lang, d.Weight.First, d.Weight.Last, d.Weight.ChangeKg))
	}
	return sb.String()
}

// handleStats показывает статистику, уровень и прогресс веса
func (b *Bot) handleStats(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	ctx, cancel := b.ctx()
	defer cancel()

	d, err := b.loadStats(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.sendMessage(chatID, statsText(d, b.getLanguage(chatID)))
}

func (b *Bot) loadStats(ctx context.Context, chatID int64) (statsData, error) {
	var d statsData
	now := b.now()

	stats, err := b.repo.Workout.Stats(ctx, chatID, now)
	if err != nil {
		return d, err
	}
	d.Stats = stats

	history, err := b.repo.Workout.History(ctx, chatID, statsPeriodDays, now)
	if err != nil {
		return d, err
	}
	d.Period = gamification.Summarize(history, statsPeriodDays)

	if d.ByType, err = b.repo.Workout.CountsByType(ctx, chatID); err != nil {
		return d, err
	}

	measurements, err := b.repo.Measurement.History(ctx, chatID, 90, now)
	if err != nil {
		return d, err
	}
	d.Weight, d.HasWeight = gamification.Weight(measurements)
	return d, nil
}

// handleAchievements список полученных достижений
func (b *Bot) handleAchievements(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	ctx, cancel := b.ctx()
	defer cancel()

	list, err := b.awards.List(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if len(list) == 0 {
		b.sendMessage(chatID, b.t("achievements_empty", chatID))
		return
	}

	lang := b.getLanguage(chatID)
	lines := []string{i18n.T("achievements_title", lang), ""}
	for _, a := range list {
		lines = append(lines, a.Icon+" "+a.Name(lang))
	}
	b.sendMessage(chatID, strings.Join(lines, "\n"))
}

// handleExport отправляет историю в Excel
func (b *Bot) handleExport(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	ctx, cancel := b.ctx()
	defer cancel()
	now := b.now()

	h := excel.History{User: p, GeneratedAt: now}
	var err error
	if h.Stats, err = b.repo.Workout.Stats(ctx, chatID, now); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if h.Workouts, err = b.repo.Workout.History(ctx, chatID, exportDays, now); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if h.Meals, err = b.repo.Meal.History(ctx, chatID, exportDays, now); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if h.Measurements, err = b.repo.Measurement.History(ctx, chatID, exportDays, now); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if len(h.Workouts) == 0 && len(h.Meals) == 0 && len(h.Measurements) == 0 {
		b.sendMessage(chatID, b.t("export_empty", chatID))
		return
	}
	if h.Achievements, err = b.awards.List(ctx, chatID); err != nil {
		log.Printf("Ошибка чтения достижений для экспорта %d: %v", chatID, err)
	}

	data, err := excel.ExportHistoryBytes(h)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: excel.FileName(chatID, now), Bytes: data})
	doc.Caption = b.t("export_caption", chatID)
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Ошибка отправки файла [chat=%d]: %v", chatID, err)
	}
}
