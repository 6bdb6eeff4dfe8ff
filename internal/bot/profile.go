package bot

import (
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
)

// handleProfile показывает профиль с нормами
func (b *Bot) handleProfile(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	lang := b.getLanguage(chatID)
	b.sendMessageWithKeyboard(chatID, profileText(p, lang, b.now()), profileKeyboard(lang))
}

// profileText текст профиля: анкета, нормы, здоровый вес и подписка
func profileText(p *models.UserProfile, lang i18n.Language, now time.Time) string {
	m := nutrition.Calculate(p)
	kcal := p.DailyCalories
	if kcal == 0 {
		kcal = m.TargetCalories
	}
	split := nutrition.SplitDay(kcal)

	gender := i18n.T("gender_female", lang)
	if p.Gender.IsMale() {
		gender = i18n.T("gender_male", lang)
	}

	text := i18n.Tf("profile_text", lang,
		p.Name, p.Age, gender, p.HeightCm, p.WeightKg,
		i18n.T("goal_"+string(p.Goal), lang), i18n.T("level_"+string(p.Level), lang),
		kcal, orDefault(p.DailyProtein, m.Protein), orDefault(p.DailyFats, m.Fats), orDefault(p.DailyCarbs, m.Carbs),
		m.BMR, m.TDEE,
		split.Breakfast, split.Lunch, split.Dinner, split.Snacks,
	)
	if p.HeightCm > 0 {
		low, high := nutrition.IdealWeightRange(p.HeightCm)
		text += "\n\n" + i18n.Tf("profile_ideal_weight", lang, low, high)
	}
	if p.HasSubscription(now) {
		text += "\n" + i18n.Tf("profile_subscription_active", lang, p.SubscriptionEnd.Format(dateTimeLayout))
	}
	return text
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func profileKeyboard(lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_edit_age", lang), cbEdit+"age"),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_edit_height", lang), cbEdit+"height"),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_edit_weight", lang), cbEdit+"weight"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_edit_goal", lang), cbEdit+"goal"),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_edit_level", lang), cbEdit+"level"),
		),
	)
}

func (b *Bot) handleProfileEditCallback(chatID int64, messageID int, field string) {
	if b.requireProfile(chatID) == nil {
		return
	}
	lang := b.getLanguage(chatID)

	switch field {
	case "age":
		setState(chatID, stateEditAge)
		b.sendMessageWithKeyboard(chatID, b.t("reg_ask_age", chatID), cancelKeyboard(lang))
	case "height":
		setState(chatID, stateEditHeight)
		b.sendMessageWithKeyboard(chatID, b.t("reg_ask_height", chatID), cancelKeyboard(lang))
	case "weight":
		// вес из профиля пишется и в замеры
		b.handleWeightLog(chatID)
	case "goal":
		b.sendMessageWithKeyboard(chatID, b.t("reg_ask_goal", chatID), goalKeyboard(cbSetGoal, lang))
	case "level":
		b.sendMessageWithKeyboard(chatID, b.t("reg_ask_level", chatID), levelKeyboard(cbSetLevel, lang))
	default:
		log.Printf("Неизвестное поле профиля %q", field)
	}
}

// processProfileEdit ввод нового возраста или роста
func (b *Bot) processProfileEdit(chatID int64, state, text string) {
	var u models.ProfileUpdate
	switch state {
	case stateEditAge:
		age, err := validateAge(text)
		if err != nil {
			b.sendMessage(chatID, "❌ "+b.t(errorKey(err), chatID))
			return
		}
		u.Age = &age
	case stateEditHeight:
		height, err := validateHeight(text)
		if err != nil {
			b.sendMessage(chatID, "❌ "+b.t(errorKey(err), chatID))
			return
		}
		u.HeightCm = &height
	}
	clearState(chatID)
	b.applyProfileUpdate(chatID, u)
}

func (b *Bot) handleSetGoal(chatID int64, messageID int, value string) {
	goal := models.ParseGoal(value)
	b.editMessage(chatID, messageID, b.t("reg_ask_goal", chatID)+" "+b.t("goal_"+string(goal), chatID), nil)
	b.applyProfileUpdate(chatID, models.ProfileUpdate{Goal: &goal})
}

func (b *Bot) handleSetLevel(chatID int64, messageID int, value string) {
	level := models.ParseLevel(value)
	b.editMessage(chatID, messageID, b.t("reg_ask_level", chatID)+" "+b.t("level_"+string(level), chatID), nil)
	b.applyProfileUpdate(chatID, models.ProfileUpdate{Level: &level})
}

// withNorms применяет изменения к копии профиля и добавляет пересчитанные нормы
func withNorms(p models.UserProfile, u models.ProfileUpdate) models.ProfileUpdate {
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.WeightKg != nil {
		p.WeightKg = *u.WeightKg
	}
	if u.Goal != nil {
		p.Goal = *u.Goal
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}

	m := nutrition.Calculate(&p)
	u.DailyCalories = &m.TargetCalories
	u.DailyProtein = &m.Protein
	u.DailyFats = &m.Fats
	u.DailyCarbs = &m.Carbs
	return u
}

// applyProfileUpdate сохраняет изменения и новые нормы
func (b *Bot) applyProfileUpdate(chatID int64, u models.ProfileUpdate) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	u = withNorms(*p, u)

	ctx, cancel := b.ctx()
	defer cancel()
	if _, err := b.repo.User.Update(ctx, chatID, u); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.sendMessage(chatID, b.tf("profile_updated", chatID, *u.DailyCalories))
	b.showMainMenu(chatID)
}

// PreferenceData ответы анкеты предпочтений
type PreferenceData struct {
	Allergies []string
	Diet      string
	Excludes  []string
	Favorites []string
}

var preferenceStore = struct {
	sync.RWMutex
	data map[int64]*PreferenceData
}{data: make(map[int64]*PreferenceData)}

var diets = []string{"none", "vegetarian", "vegan", "pescatarian"}

func preferencePrompt(state string) string {
	switch state {
	case statePrefAllergies:
		return "pref_ask_allergies"
	case statePrefDiet:
		return "pref_ask_diet"
	case statePrefExcludes:
		return "pref_ask_excludes"
	case statePrefFavorites:
		return "pref_ask_favorites"
	default:
		return "pref_ask_snacks"
	}
}

// startPreferences начинает анкету предпочтений в питании
func (b *Bot) startPreferences(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	preferenceStore.Lock()
	preferenceStore.data[chatID] = &PreferenceData{}
	preferenceStore.Unlock()

	setState(chatID, statePrefAllergies)
	b.sendMessageWithKeyboard(chatID, b.t("pref_ask_allergies", chatID), cancelKeyboard(b.getLanguage(chatID)))
}

// processPreferences текстовые шаги анкеты
func (b *Bot) processPreferences(chatID int64, state, text string) {
	items := validatePreferences(splitList(text))

	preferenceStore.Lock()
	data := preferenceStore.data[chatID]
	if data != nil {
		switch state {
		case statePrefAllergies:
			data.Allergies = items
		case statePrefExcludes:
			data.Excludes = items
		case statePrefFavorites:
			data.Favorites = items
		}
	}
	preferenceStore.Unlock()
	if data == nil {
		clearState(chatID)
		b.showMainMenu(chatID)
		return
	}

	lang := b.getLanguage(chatID)
	switch state {
	case statePrefAllergies:
		setState(chatID, statePrefDiet)
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, d := range diets {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_diet_"+d, lang), cbDiet+d),
			))
		}
		b.sendMessageWithKeyboard(chatID, b.t("pref_ask_diet", chatID), tgbotapi.NewInlineKeyboardMarkup(rows...))
	case statePrefExcludes:
		setState(chatID, statePrefFavorites)
		b.sendMessage(chatID, b.t("pref_ask_favorites", chatID))
	case statePrefFavorites:
		setState(chatID, statePrefSnacks)
		b.sendMessageWithKeyboard(chatID, b.t("pref_ask_snacks", chatID), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_yes", lang), cbSnacks+"yes"),
				tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_no", lang), cbSnacks+"no"),
			),
		))
	}
}

func (b *Bot) handleDietChoice(chatID int64, messageID int, diet string) {
	if getState(chatID) != statePrefDiet {
		return
	}
	preferenceStore.Lock()
	if data := preferenceStore.data[chatID]; data != nil {
		data.Diet = diet
		if diet == "none" {
			data.Diet = ""
		}
	}
	preferenceStore.Unlock()

	b.editMessage(chatID, messageID, b.t("pref_ask_diet", chatID)+" "+b.t("btn_diet_"+diet, chatID), nil)
	setState(chatID, statePrefExcludes)
	b.sendMessage(chatID, b.t("pref_ask_excludes", chatID))
}

func (b *Bot) handleSnacksChoice(chatID int64, messageID int, answer string) {
	if getState(chatID) != statePrefSnacks {
		return
	}
	preferenceStore.Lock()
	data := preferenceStore.data[chatID]
	preferenceStore.Unlock()
	clearState(chatID)
	if data == nil {
		b.showMainMenu(chatID)
		return
	}

	var diet []string
	if data.Diet != "" {
		diet = []string{data.Diet}
	}
	snacks := "no"
	if answer == "yes" {
		snacks = "yes"
	}
	replace := []struct {
		prefType string
		values   []string
	}{
		{models.PrefAllergy, data.Allergies},
		{models.PrefDiet, diet},
		{models.PrefExclude, data.Excludes},
		{models.PrefFavorite, data.Favorites},
		{models.PrefSnacks, []string{snacks}},
	}

	ctx, cancel := b.ctx()
	defer cancel()
	for _, r := range replace {
		if err := b.repo.Preference.Replace(ctx, chatID, r.prefType, r.values); err != nil {
			b.sendError(chatID, b.t("error_generic", chatID), err)
			return
		}
	}

	b.editMessage(chatID, messageID, b.t("pref_ask_snacks", chatID)+" "+b.t("btn_"+snacks, chatID), nil)
	b.sendMessage(chatID, b.t("pref_saved", chatID))
	b.showMainMenu(chatID)
}
