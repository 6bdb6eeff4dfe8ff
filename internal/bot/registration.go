package bot

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/nutrition"
	"fitbot/internal/repository"
)

// RegistrationData данные, собранные во время регистрации
type RegistrationData struct {
	Language    i18n.Language
	Name        string
	Age         int
	Gender      models.Gender
	HeightCm    float64
	WeightKg    float64
	Goal        models.Goal
	Level       models.Level
	Limitations string
	ReferrerID  int64
}

var registrationStore = struct {
	sync.RWMutex
	data map[int64]*RegistrationData
}{data: make(map[int64]*RegistrationData)}

// referralPrefix параметр /start у реферальной ссылки: REF<id>
const referralPrefix = "REF"

// parseReferral разбирает параметр /start. Свою же ссылку не засчитываем.
func parseReferral(arg string, userID int64) (int64, bool) {
	arg = strings.TrimSpace(arg)
	if !strings.HasPrefix(arg, referralPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(arg[len(referralPrefix):], 10, 64)
	if err != nil || id <= 0 || id == userID {
		return 0, false
	}
	return id, true
}

// referralLink ссылка-приглашение пользователя
func referralLink(botName string, userID int64) string {
	return "https://t.me/" + botName + "?start=" + referralPrefix + strconv.FormatInt(userID, 10)
}

// registrationPrompt вопрос для шага регистрации
func registrationPrompt(state string) string {
	switch state {
	case stateRegLanguage:
		return "welcome_choose_language"
	case stateRegName:
		return "reg_ask_name"
	case stateRegAge:
		return "reg_ask_age"
	case stateRegGender:
		return "reg_ask_gender"
	case stateRegHeight:
		return "reg_ask_height"
	case stateRegWeight:
		return "reg_ask_weight"
	case stateRegGoal:
		return "reg_ask_goal"
	case stateRegLevel:
		return "reg_ask_level"
	default:
		return "reg_ask_limitations"
	}
}

// handleStart регистрирует нового пользователя или показывает меню
func (b *Bot) handleStart(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	ctx, cancel := b.ctx()
	defer cancel()
	p, err := b.repo.User.Get(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	if p != nil {
		clearState(chatID)
		b.showMainMenu(chatID)
		return
	}

	reg := &RegistrationData{}
	if ref, ok := parseReferral(message.CommandArguments(), chatID); ok {
		reg.ReferrerID = ref
	}

	clearState(chatID)
	registrationStore.Lock()
	registrationStore.data[chatID] = reg
	registrationStore.Unlock()
	setState(chatID, stateRegLanguage)

	b.sendMessageWithKeyboard(chatID, i18n.T("welcome_choose_language", i18n.DefaultLang), languageKeyboard(cbRegLanguage))
}

// rememberLanguage кладёт язык в кэш до создания профиля
func rememberLanguage(userID int64, lang i18n.Language) {
	langCache.Lock()
	langCache.cache[userID] = lang
	langCache.Unlock()
}

func (b *Bot) handleRegistrationLanguage(chatID int64, messageID int, code string) {
	if getState(chatID) != stateRegLanguage {
		return
	}
	lang := i18n.ParseLanguage(code)

	registrationStore.Lock()
	reg := registrationStore.data[chatID]
	if reg != nil {
		reg.Language = lang
	}
	registrationStore.Unlock()
	if reg == nil {
		clearState(chatID)
		return
	}

	rememberLanguage(chatID, lang)
	setState(chatID, stateRegName)
	b.editMessage(chatID, messageID, i18n.GetLanguageFlag(lang)+" "+i18n.GetLanguageName(lang), nil)
	b.sendMessageWithKeyboard(chatID, b.t("reg_ask_name", chatID), cancelKeyboard(lang))
}

// processRegistration обрабатывает текстовые шаги регистрации
func (b *Bot) processRegistration(chatID int64, state, text string) {
	registrationStore.Lock()
	reg := registrationStore.data[chatID]
	if reg == nil {
		registrationStore.Unlock()
		clearState(chatID)
		b.sendMessage(chatID, b.t("need_registration", chatID))
		return
	}

	var (
		next string
		err  error
	)
	switch state {
	case stateRegName:
		reg.Name, err = validateName(text)
		next = stateRegAge
	case stateRegAge:
		reg.Age, err = validateAge(text)
		next = stateRegGender
	case stateRegHeight:
		reg.HeightCm, err = validateHeight(text)
		next = stateRegWeight
	case stateRegWeight:
		reg.WeightKg, err = validateWeight(text)
		next = stateRegGoal
	case stateRegLimitations:
		reg.Limitations = validateLimitations(text)
	}
	registrationStore.Unlock()

	if err != nil {
		b.sendMessage(chatID, "❌ "+b.t(errorKey(err), chatID)+"\n\n"+b.t(registrationPrompt(state), chatID))
		return
	}
	if state == stateRegLimitations {
		b.finishRegistration(chatID)
		return
	}
	b.askRegistrationStep(chatID, next)
}

// askRegistrationStep переводит на шаг и задаёт вопрос
func (b *Bot) askRegistrationStep(chatID int64, state string) {
	setState(chatID, state)
	lang := b.getLanguage(chatID)
	text := b.t(registrationPrompt(state), chatID)

	switch state {
	case stateRegGender:
		b.sendMessageWithKeyboard(chatID, text, genderKeyboard(lang))
	case stateRegGoal:
		b.sendMessageWithKeyboard(chatID, text, goalKeyboard(cbGoal, lang))
	case stateRegLevel:
		b.sendMessageWithKeyboard(chatID, text, levelKeyboard(cbLevel, lang))
	case stateRegLimitations:
		b.sendMessageWithKeyboard(chatID, text, tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_skip", lang), cbRegSkip),
			),
		))
	default:
		b.sendMessage(chatID, text)
	}
}

// handleRegistrationChoice обрабатывает шаги регистрации с кнопками
func (b *Bot) handleRegistrationChoice(chatID int64, messageID int, state, value string) {
	if getState(chatID) != state {
		return
	}
	lang := b.getLanguage(chatID)

	registrationStore.Lock()
	reg := registrationStore.data[chatID]
	if reg == nil {
		registrationStore.Unlock()
		clearState(chatID)
		return
	}

	var label, next string
	switch state {
	case stateRegGender:
		reg.Gender = models.GenderFemale
		if value == string(models.GenderMale) {
			reg.Gender = models.GenderMale
		}
		label = i18n.T("gender_"+string(reg.Gender), lang)
		next = stateRegHeight
	case stateRegGoal:
		reg.Goal = models.ParseGoal(value)
		label = i18n.T("goal_"+string(reg.Goal), lang)
		next = stateRegLevel
	case stateRegLevel:
		reg.Level = models.ParseLevel(value)
		label = i18n.T("level_"+string(reg.Level), lang)
		next = stateRegLimitations
	case stateRegLimitations:
		reg.Limitations = ""
		label = i18n.T("btn_skip", lang)
	}
	registrationStore.Unlock()

	b.editMessage(chatID, messageID, b.t(registrationPrompt(state), chatID)+" "+label, nil)
	if state == stateRegLimitations {
		b.finishRegistration(chatID)
		return
	}
	b.askRegistrationStep(chatID, next)
}

// buildProfile профиль из данных регистрации с рассчитанными нормами
func buildProfile(userID int64, reg *RegistrationData) *models.UserProfile {
	p := &models.UserProfile{
		UserID:      userID,
		Name:        reg.Name,
		Age:         reg.Age,
		Gender:      reg.Gender,
		HeightCm:    reg.HeightCm,
		WeightKg:    reg.WeightKg,
		Goal:        reg.Goal,
		Level:       reg.Level,
		Language:    string(reg.Language),
		Limitations: reg.Limitations,
		ReferredBy:  reg.ReferrerID,
	}
	applyNorms(p, nutrition.Calculate(p))
	return p
}

// applyNorms переносит рассчитанные нормы в профиль
func applyNorms(p *models.UserProfile, m nutrition.Metabolism) {
	p.DailyCalories = m.TargetCalories
	p.DailyProtein = m.Protein
	p.DailyFats = m.Fats
	p.DailyCarbs = m.Carbs
}

// normsUpdate обновление профиля с новыми нормами
func normsUpdate(m nutrition.Metabolism) models.ProfileUpdate {
	return models.ProfileUpdate{
		DailyCalories: &m.TargetCalories,
		DailyProtein:  &m.Protein,
		DailyFats:     &m.Fats,
		DailyCarbs:    &m.Carbs,
	}
}

// finishRegistration сохраняет профиль, нормы и приглашение
func (b *Bot) finishRegistration(chatID int64) {
	registrationStore.Lock()
	reg := registrationStore.data[chatID]
	registrationStore.Unlock()
	clearState(chatID)
	if reg == nil {
		b.sendMessage(chatID, b.t("need_registration", chatID))
		return
	}

	p := buildProfile(chatID, reg)

	ctx, cancel := b.ctx()
	defer cancel()

	err := b.repo.User.Create(ctx, p)
	if errors.Is(err, repository.ErrUserExists) {
		b.showMainMenu(chatID)
		return
	}
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}

	// нормы пишем отдельно: Create сохраняет только анкету
	if _, err := b.repo.User.Update(ctx, chatID, normsUpdate(nutrition.Calculate(p))); err != nil {
		log.Printf("Ошибка сохранения норм %d: %v", chatID, err)
	}

	if reg.ReferrerID != 0 {
		referrer, err := b.repo.User.Get(ctx, reg.ReferrerID)
		switch {
		case err != nil:
			log.Printf("Ошибка чтения пригласившего %d: %v", reg.ReferrerID, err)
		case referrer != nil:
			if _, err := b.repo.Referral.Add(ctx, reg.ReferrerID, chatID); err != nil {
				log.Printf("Ошибка сохранения приглашения %d -> %d: %v", reg.ReferrerID, chatID, err)
			}
		}
	}

	log.Printf("Новый пользователь %d (%s), цель %s", chatID, p.Name, p.Goal)
	b.sendMessage(chatID, b.tf("reg_done", chatID, p.Name, p.DailyCalories, p.DailyProtein, p.DailyFats, p.DailyCarbs))
	b.showMainMenu(chatID)
}

func genderKeyboard(lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_male", lang), cbGender+string(models.GenderMale)),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_female", lang), cbGender+string(models.GenderFemale)),
		),
	)
}

// goalKeyboard кнопки цели, prefix отличает регистрацию от редактирования
func goalKeyboard(prefix string, lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, g := range []models.Goal{models.GoalLose, models.GoalGain, models.GoalMaintain} {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_goal_"+string(g), lang), prefix+string(g)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func levelKeyboard(prefix string, lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	levels := []models.Level{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced, models.LevelAthlete}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(levels); i += 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_level_"+string(levels[i]), lang), prefix+string(levels[i])),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_level_"+string(levels[i+1]), lang), prefix+string(levels[i+1])),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
