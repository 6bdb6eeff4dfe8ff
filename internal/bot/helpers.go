package bot

import (
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/translate"
)

// maxMessageLen запас до лимита Telegram в 4096 символов
const maxMessageLen = 4000

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

// sendError sends error message to user and logs it
func (b *Bot) sendError(chatID int64, userMessage string, err error) {
	if err != nil {
		log.Printf("Error [chat=%d]: %v", chatID, err)
	}
	msg := tgbotapi.NewMessage(chatID, userMessage)
	if _, sendErr := b.api.Send(msg); sendErr != nil {
		log.Printf("Failed to send error message [chat=%d]: %v", chatID, sendErr)
	}
}

// sendMessage sends message to user with error logging
func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send message [chat=%d]: %v", chatID, err)
	}
	return err
}

// sendMessageWithKeyboard sends message with reply or inline keyboard
func (b *Bot) sendMessageWithKeyboard(chatID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send message with keyboard [chat=%d]: %v", chatID, err)
	}
	return err
}

// sendLong режет длинный текст по абзацам и отправляет частями
func (b *Bot) sendLong(chatID int64, text string) error {
	for _, chunk := range translate.Chunks(text, maxMessageLen) {
		if err := b.sendMessage(chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// editMessage заменяет текст inline-сообщения, keyboard может быть nil
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Ошибка редактирования сообщения [chat=%d]: %v", chatID, err)
	}
}

// answerCallback убирает "часики" на кнопке
func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Ошибка ответа на callback: %v", err)
	}
}

// safeFloat64 safely converts string to float64, returns 0 on error
func safeFloat64(s string) float64 {
	s = strings.Replace(s, ",", ".", 1)
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// safeInt safely converts string to int, returns 0 on error
func safeInt(s string) int {
	s = strings.TrimSpace(s)
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// truncateString truncates string to maxLen runes with ellipsis
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// splitList разбирает "молоко, орехи; рыба". Прочерк означает пустой список.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	var out []string
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
