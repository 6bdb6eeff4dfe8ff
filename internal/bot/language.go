package bot

import (
	"context"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
)

// langCache кэширует язык пользователей
var langCache = struct {
	sync.RWMutex
	cache map[int64]i18n.Language
}{cache: make(map[int64]i18n.Language)}

// getLanguage возвращает язык пользователя (с кэшированием)
func (b *Bot) getLanguage(userID int64) i18n.Language {
	langCache.RLock()
	if lang, ok := langCache.cache[userID]; ok {
		langCache.RUnlock()
		return lang
	}
	langCache.RUnlock()

	ctx, cancel := b.ctx()
	defer cancel()
	p, err := b.repo.User.Get(ctx, userID)
	if err != nil {
		log.Printf("Ошибка чтения языка %d: %v", userID, err)
		return i18n.DefaultLang
	}
	if p == nil || p.Language == "" {
		// незарегистрированных не кэшируем, язык выбирается при регистрации
		return i18n.DefaultLang
	}

	lang := i18n.ParseLanguage(p.Language)

	langCache.Lock()
	langCache.cache[userID] = lang
	langCache.Unlock()

	return lang
}

// setLanguage запоминает язык и сохраняет его в профиль, если профиль уже есть
func (b *Bot) setLanguage(ctx context.Context, userID int64, lang i18n.Language) error {
	code := string(lang)
	if _, err := b.repo.User.Update(ctx, userID, models.ProfileUpdate{Language: &code}); err != nil {
		return err
	}

	langCache.Lock()
	langCache.cache[userID] = lang
	langCache.Unlock()

	return nil
}

// clearLanguageCache очищает кэш языка для пользователя
func clearLanguageCache(userID int64) {
	langCache.Lock()
	delete(langCache.cache, userID)
	langCache.Unlock()
}

// t возвращает перевод для пользователя
func (b *Bot) t(key string, userID int64) string {
	return i18n.T(key, b.getLanguage(userID))
}

// tf возвращает форматированный перевод для пользователя
func (b *Bot) tf(key string, userID int64, args ...interface{}) string {
	return i18n.Tf(key, b.getLanguage(userID), args...)
}

// languageKeyboard кнопки выбора языка. prefix отличает регистрацию от смены языка.
func languageKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, lang := range i18n.Languages {
		label := i18n.GetLanguageFlag(lang) + " " + i18n.GetLanguageName(lang)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, prefix+string(lang)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// handleLanguageCommand показывает выбор языка
func (b *Bot) handleLanguageCommand(chatID int64) {
	b.sendMessageWithKeyboard(chatID, b.t("language_choose", chatID), languageKeyboard(cbLanguage))
}

// handleLanguageChange меняет язык пользователя
func (b *Bot) handleLanguageChange(chatID int64, messageID int, code string) {
	lang := i18n.ParseLanguage(code)

	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.setLanguage(ctx, chatID, lang); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}

	b.editMessage(chatID, messageID, b.tf("language_changed", chatID, i18n.GetLanguageName(lang)), nil)
	b.showMainMenu(chatID)
}

// handleResetLanguage возвращает русский язык
func (b *Bot) handleResetLanguage(chatID int64) {
	ctx, cancel := b.ctx()
	defer cancel()
	clearLanguageCache(chatID)
	if err := b.setLanguage(ctx, chatID, i18n.DefaultLang); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.sendMessage(chatID, b.t("language_reset", chatID))
	b.showMainMenu(chatID)
}
