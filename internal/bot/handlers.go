package bot

import (
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
)

const (
	commandStart         = "start"
	commandMenu          = "menu"
	commandProfile       = "profile"
	commandMeal          = "meal"
	commandWorkout       = "workout"
	commandStats         = "stats"
	commandExport        = "export"
	commandLanguage      = "language"
	commandResetLanguage = "reset_language"
	commandHelp          = "help"
	commandSetPrices     = "setprices"
	commandAdmin         = "admin"
)

// Префиксы callback data
const (
	cbLanguage    = "lang_"
	cbRegLanguage = "reglang_"
	cbGender      = "gender_"
	cbGoal        = "goal_"
	cbLevel       = "level_"
	cbRegSkip     = "reg_skip"
	cbEdit        = "edit_"
	cbSetGoal     = "setgoal_"
	cbSetLevel    = "setlevel_"
	cbDiet        = "diet_"
	cbSnacks      = "snacks_"
	cbWorkoutType = "wtype_"
	cbEquipment   = "weq_"
	cbLogType     = "logtype_"
	cbLogPlan     = "logplan:"
	cbSubscribe   = "sub_"
	cbPayStars    = "paystars_"
	cbPayCard     = "paycard_"
	cbCheckPay    = "checkpay_"
	cbBuyTip      = "buy_tip"
	cbCancel      = "cancel"
)

// Состояния диалога
const (
	stateRegLanguage    = "reg_language"
	stateRegName        = "reg_name"
	stateRegAge         = "reg_age"
	stateRegGender      = "reg_gender"
	stateRegHeight      = "reg_height"
	stateRegWeight      = "reg_weight"
	stateRegGoal        = "reg_goal"
	stateRegLevel       = "reg_level"
	stateRegLimitations = "reg_limitations"

	stateEditAge    = "edit_age"
	stateEditHeight = "edit_height"

	statePrefAllergies = "pref_allergies"
	statePrefDiet      = "pref_diet"
	statePrefExcludes  = "pref_excludes"
	statePrefFavorites = "pref_favorites"
	statePrefSnacks    = "pref_snacks"

	stateLogMinutes = "log_minutes"
	stateWeightLog  = "weight_log"
)

var userStates = struct {
	sync.RWMutex
	states map[int64]string
}{states: make(map[int64]string)}

// setState sets user state with proper locking
func setState(chatID int64, state string) {
	userStates.Lock()
	userStates.states[chatID] = state
	userStates.Unlock()
}

// getState gets user state with proper locking
func getState(chatID int64) string {
	userStates.RLock()
	defer userStates.RUnlock()
	return userStates.states[chatID]
}

// clearState clears user state and flow data
func clearState(chatID int64) {
	userStates.Lock()
	delete(userStates.states, chatID)
	userStates.Unlock()

	registrationStore.Lock()
	delete(registrationStore.data, chatID)
	registrationStore.Unlock()

	preferenceStore.Lock()
	delete(preferenceStore.data, chatID)
	preferenceStore.Unlock()

	flowValues.Lock()
	delete(flowValues.data, chatID)
	flowValues.Unlock()
}

// flowValues одно значение, выбранное на прошлом шаге (тип тренировки и т.п.)
var flowValues = struct {
	sync.RWMutex
	data map[int64]string
}{data: make(map[int64]string)}

func setFlowValue(chatID int64, v string) {
	flowValues.Lock()
	flowValues.data[chatID] = v
	flowValues.Unlock()
}

func getFlowValue(chatID int64) string {
	flowValues.RLock()
	defer flowValues.RUnlock()
	return flowValues.data[chatID]
}

// menuButtons ключи кнопок главного меню в порядке показа
var menuButtons = [][]string{
	{"btn_meal_plan", "btn_workout_plan"},
	{"btn_log_workout", "btn_weight"},
	{"btn_stats", "btn_achievements"},
	{"btn_profile", "btn_preferences"},
	{"btn_water", "btn_tip"},
	{"btn_subscription", "btn_referral"},
	{"btn_export", "btn_language", "btn_help"},
}

// matchMenu находит кнопку меню по тексту на любом языке
func matchMenu(text string) string {
	text = strings.TrimSpace(text)
	for _, row := range menuButtons {
		for _, key := range row {
			for _, lang := range i18n.Languages {
				if i18n.T(key, lang) == text {
					return key
				}
			}
		}
	}
	return ""
}

// isCancel текст кнопки отмены на любом языке
func isCancel(text string) bool {
	text = strings.TrimSpace(text)
	for _, lang := range i18n.Languages {
		if i18n.T("btn_cancel", lang) == text {
			return true
		}
	}
	return false
}

func mainMenuKeyboard(lang i18n.Language) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(menuButtons))
	for _, keys := range menuButtons {
		var row []tgbotapi.KeyboardButton
		for _, key := range keys {
			row = append(row, tgbotapi.NewKeyboardButton(i18n.T(key, lang)))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard(lang i18n.Language) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(i18n.T("btn_cancel", lang)),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// showMainMenu отправляет главное меню
func (b *Bot) showMainMenu(chatID int64) {
	b.sendMessageWithKeyboard(chatID, b.t("menu_title", chatID), mainMenuKeyboard(b.getLanguage(chatID)))
}

// requireProfile возвращает профиль или просит зарегистрироваться
func (b *Bot) requireProfile(chatID int64) *models.UserProfile {
	ctx, cancel := b.ctx()
	defer cancel()

	p, err := b.repo.User.Get(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return nil
	}
	if p == nil {
		b.sendMessage(chatID, b.t("need_registration", chatID))
		return nil
	}
	if err := b.repo.User.Touch(ctx, chatID); err != nil {
		log.Printf("Ошибка обновления активности %d: %v", chatID, err)
	}
	return p
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if cmd := message.Command(); cmd != commandStart {
		// команда прерывает незаконченный диалог, кроме регистрации
		if strings.HasPrefix(getState(chatID), "reg_") {
			b.sendMessage(chatID, b.t("need_registration", chatID))
			return
		}
		clearState(chatID)
	}

	switch message.Command() {
	case commandStart:
		b.handleStart(message)
	case commandMenu:
		if b.requireProfile(chatID) != nil {
			b.showMainMenu(chatID)
		}
	case commandProfile:
		b.handleProfile(chatID)
	case commandMeal:
		b.handleMealPlan(chatID)
	case commandWorkout:
		b.handleWorkoutPlan(chatID)
	case commandStats:
		b.handleStats(chatID)
	case commandExport:
		b.handleExport(chatID)
	case commandLanguage:
		b.handleLanguageCommand(chatID)
	case commandResetLanguage:
		b.handleResetLanguage(chatID)
	case commandHelp:
		b.sendMessage(chatID, b.t("help_text", chatID))
	case commandSetPrices:
		b.handleSetPrices(message)
	case commandAdmin:
		b.handleAdminStats(chatID)
	default:
		b.sendMessage(chatID, b.t("unknown_command", chatID))
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if isCancel(text) {
		state := getState(chatID)
		clearState(chatID)
		b.sendMessage(chatID, b.t("cancelled", chatID))
		if strings.HasPrefix(state, "reg_") {
			b.sendMessage(chatID, b.t("need_registration", chatID))
			return
		}
		b.showMainMenu(chatID)
		return
	}

	if state := getState(chatID); state != "" {
		b.handleStateInput(message, state)
		return
	}

	switch matchMenu(text) {
	case "btn_meal_plan":
		b.handleMealPlan(chatID)
	case "btn_workout_plan":
		b.handleWorkoutPlan(chatID)
	case "btn_log_workout":
		b.handleLogWorkout(chatID)
	case "btn_weight":
		b.handleWeightLog(chatID)
	case "btn_stats":
		b.handleStats(chatID)
	case "btn_achievements":
		b.handleAchievements(chatID)
	case "btn_profile":
		b.handleProfile(chatID)
	case "btn_preferences":
		b.startPreferences(chatID)
	case "btn_water":
		b.handleWater(chatID)
	case "btn_tip":
		b.handleTip(chatID)
	case "btn_subscription":
		b.handleSubscription(chatID)
	case "btn_referral":
		b.handleReferral(chatID)
	case "btn_export":
		b.handleExport(chatID)
	case "btn_language":
		b.handleLanguageCommand(chatID)
	case "btn_help":
		b.sendMessage(chatID, b.t("help_text", chatID))
	default:
		b.sendMessage(chatID, b.t("unknown_command", chatID))
	}
}

// handleStateInput текстовый ввод внутри диалога
func (b *Bot) handleStateInput(message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch state {
	case stateRegName, stateRegAge, stateRegHeight, stateRegWeight, stateRegLimitations:
		b.processRegistration(chatID, state, text)
	case stateRegLanguage, stateRegGender, stateRegGoal, stateRegLevel:
		// ждём нажатия кнопки
		b.sendMessage(chatID, b.t(registrationPrompt(state), chatID))
	case stateEditAge, stateEditHeight:
		b.processProfileEdit(chatID, state, text)
	case statePrefAllergies, statePrefExcludes, statePrefFavorites:
		b.processPreferences(chatID, state, text)
	case statePrefDiet, statePrefSnacks:
		b.sendMessage(chatID, b.t(preferencePrompt(state), chatID))
	case stateLogMinutes:
		b.processLogMinutes(chatID, text)
	case stateWeightLog:
		b.processWeightLog(chatID, text)
	default:
		log.Printf("Неизвестное состояние %q у %d", state, chatID)
		clearState(chatID)
		b.showMainMenu(chatID)
	}
}

// handleCallbackQuery обрабатывает нажатия на inline-кнопки
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		b.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	// Отвечаем на callback чтобы убрать "часики"
	b.answerCallback(callback.ID, "")

	switch {
	case data == cbCancel:
		clearState(chatID)
		b.editMessage(chatID, messageID, b.t("cancelled", chatID), nil)

	case strings.HasPrefix(data, cbRegLanguage):
		b.handleRegistrationLanguage(chatID, messageID, strings.TrimPrefix(data, cbRegLanguage))
	case strings.HasPrefix(data, cbLanguage):
		b.handleLanguageChange(chatID, messageID, strings.TrimPrefix(data, cbLanguage))

	case strings.HasPrefix(data, cbGender):
		b.handleRegistrationChoice(chatID, messageID, stateRegGender, strings.TrimPrefix(data, cbGender))
	case strings.HasPrefix(data, cbGoal):
		b.handleRegistrationChoice(chatID, messageID, stateRegGoal, strings.TrimPrefix(data, cbGoal))
	case strings.HasPrefix(data, cbLevel):
		b.handleRegistrationChoice(chatID, messageID, stateRegLevel, strings.TrimPrefix(data, cbLevel))
	case data == cbRegSkip:
		b.handleRegistrationChoice(chatID, messageID, stateRegLimitations, "")

	case strings.HasPrefix(data, cbEdit):
		b.handleProfileEditCallback(chatID, messageID, strings.TrimPrefix(data, cbEdit))
	case strings.HasPrefix(data, cbSetGoal):
		b.handleSetGoal(chatID, messageID, strings.TrimPrefix(data, cbSetGoal))
	case strings.HasPrefix(data, cbSetLevel):
		b.handleSetLevel(chatID, messageID, strings.TrimPrefix(data, cbSetLevel))

	case strings.HasPrefix(data, cbDiet):
		b.handleDietChoice(chatID, messageID, strings.TrimPrefix(data, cbDiet))
	case strings.HasPrefix(data, cbSnacks):
		b.handleSnacksChoice(chatID, messageID, strings.TrimPrefix(data, cbSnacks))

	case strings.HasPrefix(data, cbWorkoutType):
		b.handleWorkoutTypeChoice(chatID, messageID, strings.TrimPrefix(data, cbWorkoutType))
	case strings.HasPrefix(data, cbEquipment):
		b.handleEquipmentChoice(chatID, messageID, strings.TrimPrefix(data, cbEquipment))
	case strings.HasPrefix(data, cbLogType):
		b.handleLogTypeChoice(chatID, messageID, strings.TrimPrefix(data, cbLogType))
	case strings.HasPrefix(data, cbLogPlan):
		b.handleLogPlan(chatID, messageID, strings.TrimPrefix(data, cbLogPlan))

	case strings.HasPrefix(data, cbSubscribe):
		b.handleSubscriptionChoice(chatID, messageID, strings.TrimPrefix(data, cbSubscribe))
	case strings.HasPrefix(data, cbPayStars):
		b.sendStarsInvoice(chatID, strings.TrimPrefix(data, cbPayStars))
	case strings.HasPrefix(data, cbPayCard):
		b.handleCardPayment(chatID, strings.TrimPrefix(data, cbPayCard))
	case strings.HasPrefix(data, cbCheckPay):
		b.checkCardPayment(chatID, messageID, strings.TrimPrefix(data, cbCheckPay))
	case data == cbBuyTip:
		b.sendTipInvoice(chatID)

	default:
		log.Printf("Неизвестный callback %q от %d", data, chatID)
	}
}
