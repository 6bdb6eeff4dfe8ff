package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/payment"
)

// maxStarsPrice защита от опечатки в цене
const maxStarsPrice = 100000

var errBadPrices = errors.New("невалидные цены")

// isAdmin проверяет, есть ли пользователь в ADMIN_IDS
func (b *Bot) isAdmin(telegramID int64) bool {
	return b.config != nil && b.config.IsAdmin(telegramID)
}

// handleAdminStats общая статистика для администратора
func (b *Bot) handleAdminStats(chatID int64) {
	if !b.isAdmin(chatID) {
		b.sendMessage(chatID, b.t("admin_only", chatID))
		return
	}
	ctx, cancel := b.ctx()
	defer cancel()

	t, err := b.repo.Totals(ctx)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.sendMessage(chatID, b.tf("admin_stats", chatID, t.Users, t.Workouts, t.Payments, t.Revenue))
}

// parseSetPrices разбирает "1_day=50 7_days=300"
func parseSetPrices(args string, plans []payment.Plan) (map[string]int, error) {
	known := make(map[string]bool, len(plans))
	for _, p := range plans {
		known[p.Key] = true
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, errBadPrices
	}
	prices := make(map[string]int, len(fields))
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || !known[key] {
			return nil, fmt.Errorf("%w: %q", errBadPrices, f)
		}
		stars, err := strconv.Atoi(value)
		if err != nil || stars <= 0 || stars > maxStarsPrice {
			return nil, fmt.Errorf("%w: %q", errBadPrices, f)
		}
		prices[key] = stars
	}
	return prices, nil
}

// pricesList текущие цены для /setprices без аргументов
func pricesList(plans []payment.Plan) string {
	lines := make([]string, 0, len(plans))
	for _, p := range plans {
		lines = append(lines, fmt.Sprintf("%s = %d ⭐", p.Key, p.Stars))
	}
	return strings.Join(lines, "\n")
}

// handleSetPrices меняет цены тарифов в Stars
func (b *Bot) handleSetPrices(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.sendMessage(chatID, b.t("admin_only", chatID))
		return
	}

	catalog := b.payments.Catalog()
	args := strings.TrimSpace(message.CommandArguments())
	if args == "" {
		b.sendMessage(chatID, b.tf("admin_prices", chatID, pricesList(catalog.Plans())))
		return
	}

	prices, err := parseSetPrices(args, catalog.Plans())
	if err != nil || b.settings == nil {
		b.sendMessage(chatID, b.t("admin_prices_error", chatID))
		return
	}
	for key, stars := range prices {
		if err := b.settings.Set(payment.StarsSettingKey(key), strconv.Itoa(stars)); err != nil {
			b.sendError(chatID, b.t("error_generic", chatID), err)
			return
		}
		log.Printf("Админ %d изменил цену %s: %d Stars", chatID, key, stars)
	}
	b.sendMessage(chatID, b.t("admin_prices_saved", chatID)+"\n\n"+pricesList(catalog.Plans()))
}
