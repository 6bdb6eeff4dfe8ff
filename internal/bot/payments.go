package bot

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitbot/internal/i18n"
	"fitbot/internal/models"
	"fitbot/internal/payment"
	"fitbot/internal/repository"
)

// freeTipInterval как часто можно получить бесплатный совет
const freeTipInterval = 24 * time.Hour

// handleSubscription показывает статус подписки и тарифы
func (b *Bot) handleSubscription(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	lang := b.getLanguage(chatID)

	status := i18n.T("sub_inactive", lang)
	if p.HasSubscription(b.now()) {
		status = i18n.Tf("sub_active", lang, p.SubscriptionEnd.Format(dateTimeLayout))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, plan := range b.payments.Catalog().Plans() {
		label := i18n.Tf("btn_sub_plan", lang, i18n.T("plan_"+plan.Key, lang), plan.Stars, plan.RUB)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbSubscribe+plan.Key),
		))
	}
	b.sendMessageWithKeyboard(chatID, i18n.Tf("sub_title", lang, status), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// handleSubscriptionChoice выбор тарифа: способ оплаты или сразу счёт в Stars
func (b *Bot) handleSubscriptionChoice(chatID int64, messageID int, key string) {
	if key == "menu" {
		b.handleSubscription(chatID)
		return
	}
	plan, err := b.payments.Catalog().Plan(key)
	if err != nil {
		log.Printf("Тариф %q от %d: %v", key, chatID, err)
		return
	}
	if !b.payments.YooKassaEnabled() {
		b.sendStarsInvoice(chatID, plan.Key)
		return
	}

	lang := b.getLanguage(chatID)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_pay_stars", lang), cbPayStars+plan.Key),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_pay_card", lang), cbPayCard+plan.Key),
		),
	)
	b.editMessage(chatID, messageID, i18n.Tf("pay_choose_method", lang, i18n.T("plan_"+plan.Key, lang)), &kb)
}

// starsInvoice счёт в Telegram Stars, провайдер для XTR не нужен
func starsInvoice(chatID int64, title, description string, payload payment.Payload, stars int) tgbotapi.InvoiceConfig {
	invoice := tgbotapi.NewInvoice(chatID, title, description, payload.String(), "", "", payment.CurrencyStars,
		[]tgbotapi.LabeledPrice{{Label: title, Amount: stars}})
	// без пустого списка библиотека отправляет null и Telegram отклоняет счёт
	invoice.SuggestedTipAmounts = []int{}
	return invoice
}

func (b *Bot) sendStarsInvoice(chatID int64, key string) {
	plan, err := b.payments.Catalog().Plan(key)
	if err != nil {
		log.Printf("Тариф %q от %d: %v", key, chatID, err)
		return
	}
	lang := b.getLanguage(chatID)
	invoice := starsInvoice(chatID,
		i18n.Tf("invoice_title", lang, i18n.T("plan_"+plan.Key, lang)),
		i18n.T("invoice_description", lang),
		payment.Payload{UserID: chatID, Kind: plan.Key, Stars: true},
		plan.Stars)
	if _, err := b.api.Send(invoice); err != nil {
		b.sendError(chatID, b.t("payment_failed", chatID), err)
	}
}

// handlePreCheckout подтверждает счёт, если payload наш
func (b *Bot) handlePreCheckout(q *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}
	if _, err := payment.ParsePayload(q.InvoicePayload); err != nil {
		log.Printf("Pre-checkout с чужим payload %q: %v", q.InvoicePayload, err)
		answer.OK = false
		answer.ErrorMessage = i18n.T("payment_failed", b.getLanguage(q.From.ID))
	}
	if _, err := b.api.Request(answer); err != nil {
		log.Printf("Ошибка ответа на pre-checkout %s: %v", q.ID, err)
	}
}

// handleSuccessfulPayment оплата Stars прошла
func (b *Bot) handleSuccessfulPayment(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	sp := message.SuccessfulPayment

	payload, err := payment.ParsePayload(sp.InvoicePayload)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}

	ctx, cancel := b.ctx()
	defer cancel()

	if payload.IsTip() {
		b.completeTip(ctx, payload.UserID, sp.TelegramPaymentChargeID, sp.TotalAmount)
		return
	}

	act, err := b.payments.ActivateStars(ctx, sp.TelegramPaymentChargeID, payload, sp.TotalAmount)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.NotifyActivation(act)
}

// NotifyActivation сообщает о продлении подписки и о бонусе пригласившему
func (b *Bot) NotifyActivation(act *payment.Activation) {
	if act == nil || !act.Applied {
		return
	}
	b.sendMessage(act.UserID, b.tf("payment_success", act.UserID, act.End.Local().Format(dateTimeLayout)))
	if act.ReferrerID != 0 {
		b.sendMessage(act.ReferrerID, b.tf("referral_bonus", act.ReferrerID, payment.ReferralBonusDays))
	}
}

// handleCardPayment создаёт платёж ЮKassa и отправляет ссылку
func (b *Bot) handleCardPayment(chatID int64, key string) {
	if !b.payments.YooKassaEnabled() {
		b.sendMessage(chatID, b.t("payment_unavailable", chatID))
		return
	}
	plan, err := b.payments.Catalog().Plan(key)
	if err != nil {
		log.Printf("Тариф %q от %d: %v", key, chatID, err)
		return
	}
	lang := b.getLanguage(chatID)

	ctx, cancel := b.ctx()
	defer cancel()
	p, err := b.payments.CreateYooKassa(ctx, chatID, plan.Key, i18n.Tf("invoice_title", lang, i18n.T("plan_"+plan.Key, lang)))
	if err != nil {
		b.sendError(chatID, b.t("payment_failed", chatID), err)
		return
	}

	url := p.ConfirmationURL()
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(i18n.T("btn_pay_card", lang), url)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(i18n.T("btn_check_payment", lang), cbCheckPay+p.ID)),
	)
	b.sendMessageWithKeyboard(chatID, i18n.Tf("payment_link", lang, url), kb)
}

// checkCardPayment кнопка "Проверить оплату"
func (b *Bot) checkCardPayment(chatID int64, messageID int, paymentID string) {
	ctx, cancel := b.ctx()
	defer cancel()

	act, err := b.payments.CheckYooKassa(ctx, paymentID)
	if errors.Is(err, payment.ErrYooKassaDisabled) {
		b.sendMessage(chatID, b.t("payment_unavailable", chatID))
		return
	}
	if err != nil {
		b.sendError(chatID, b.t("payment_failed", chatID), err)
		return
	}
	if act == nil {
		b.sendMessage(chatID, b.t("payment_pending", chatID))
		return
	}

	b.editMessage(chatID, messageID, b.t("btn_check_payment", chatID)+" ✅", nil)
	if act.Applied {
		b.NotifyActivation(act)
		return
	}
	// уже учтён, например вебхуком
	p, err := b.repo.User.Get(ctx, chatID)
	if err == nil && p != nil && p.SubscriptionEnd != nil {
		b.sendMessage(chatID, b.tf("payment_success", chatID, p.SubscriptionEnd.Local().Format(dateTimeLayout)))
	}
}

// tipAvailable можно ли получить бесплатный совет и через сколько часов следующий
func tipAvailable(last *time.Time, now time.Time) (bool, int) {
	if last == nil {
		return true, 0
	}
	next := last.Add(freeTipInterval)
	if !now.Before(next) {
		return true, 0
	}
	return false, int(math.Ceil(next.Sub(now).Hours()))
}

// dailyTip совет дня, один на всех в течение дня
func dailyTip(lang i18n.Language, now time.Time) string {
	tips := i18n.Variants("daily_tip", lang)
	if len(tips) == 0 {
		return ""
	}
	return tips[now.YearDay()%len(tips)]
}

// paidTip случайный совет под цель пользователя
func paidTip(goal models.Goal, lang i18n.Language) string {
	tips := i18n.Variants("advice_"+string(goal), lang)
	if len(tips) == 0 {
		tips = i18n.Variants("daily_tip", lang)
	}
	if len(tips) == 0 {
		return ""
	}
	return tips[rand.Intn(len(tips))]
}

// handleTip бесплатный совет раз в сутки, иначе предложение купить
func (b *Bot) handleTip(chatID int64) {
	p := b.requireProfile(chatID)
	if p == nil {
		return
	}
	lang := b.getLanguage(chatID)
	now := b.now()

	ok, hours := tipAvailable(p.LastFreeTip, now)
	if !ok {
		b.sendMessageWithKeyboard(chatID, i18n.Tf("tip_paid_offer", lang, hours), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.Tf("btn_buy_tip", lang, payment.TipStars), cbBuyTip),
			),
		))
		return
	}

	ctx, cancel := b.ctx()
	defer cancel()
	if _, err := b.repo.User.Update(ctx, chatID, models.ProfileUpdate{LastFreeTip: &now}); err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	b.sendMessage(chatID, i18n.Tf("tip_free", lang, dailyTip(lang, now)))
}

func (b *Bot) sendTipInvoice(chatID int64) {
	lang := b.getLanguage(chatID)
	invoice := starsInvoice(chatID,
		i18n.T("tip_invoice_title", lang),
		i18n.T("btn_tip", lang),
		payment.Payload{UserID: chatID, Kind: payment.KindTip, Stars: true},
		payment.TipStars)
	if _, err := b.api.Send(invoice); err != nil {
		b.sendError(chatID, b.t("payment_failed", chatID), err)
	}
}

// completeTip записывает оплату совета и отправляет его. Повторный charge id игнорируется.
func (b *Bot) completeTip(ctx context.Context, userID int64, chargeID string, stars int) {
	existing, err := b.repo.Payment.Get(ctx, chargeID)
	if err != nil {
		b.sendError(userID, b.t("error_generic", userID), err)
		return
	}
	if existing != nil {
		return
	}
	err = b.repo.Payment.Save(ctx, &models.Payment{
		ID:              chargeID,
		UserID:          userID,
		Provider:        payment.ProviderStars,
		SubscriptionKey: payment.KindTip,
		Amount:          float64(stars),
		Currency:        payment.CurrencyStars,
		Status:          repository.PaymentSucceeded,
	})
	if err != nil {
		b.sendError(userID, b.t("error_generic", userID), err)
		return
	}

	goal := models.GoalMaintain
	if p, err := b.repo.User.Get(ctx, userID); err == nil && p != nil {
		goal = p.Goal
	}
	lang := b.getLanguage(userID)
	b.sendMessage(userID, i18n.Tf("tip_paid", lang, paidTip(goal, lang)))
}

// handleReferral ссылка-приглашение и число приглашённых
func (b *Bot) handleReferral(chatID int64) {
	if b.requireProfile(chatID) == nil {
		return
	}
	ctx, cancel := b.ctx()
	defer cancel()

	count, err := b.repo.Referral.Count(ctx, chatID)
	if err != nil {
		b.sendError(chatID, b.t("error_generic", chatID), err)
		return
	}
	link := referralLink(b.api.Self.UserName, chatID)
	b.sendMessage(chatID, b.tf("referral_text", chatID, link, count, payment.ReferralBonusDays))
}
