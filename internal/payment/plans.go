// Package payment тарифы подписки, оплата Telegram Stars и ЮKassa
package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownPlan неизвестный тариф
	ErrUnknownPlan = errors.New("неизвестный тариф")
	// ErrBadPayload невалидный payload счёта
	ErrBadPayload = errors.New("невалидный payload")
)

// Константы оплаты
const (
	CurrencyStars     = "XTR"
	CurrencyRUB       = "RUB"
	TipStars          = 100
	ReferralBonusDays = 3

	ProviderStars    = "stars"
	ProviderYooKassa = "yookassa"
)

// Plan тариф подписки
type Plan struct {
	Key   string
	Days  int
	Stars int
	RUB   float64
}

// Duration длительность подписки
func (p Plan) Duration() time.Duration {
	return time.Duration(p.Days) * 24 * time.Hour
}

// DefaultPlans тарифы по умолчанию
var DefaultPlans = []Plan{
	{Key: "1_day", Days: 1, Stars: 50, RUB: 100},
	{Key: "7_days", Days: 7, Stars: 300, RUB: 600},
	{Key: "14_days", Days: 14, Stars: 600, RUB: 1200},
}

// PriceSource источник изменённых цен, например storage.Settings
type PriceSource interface {
	Int(key string, def int) int
}

// Catalog тарифы с ценами из настроек
type Catalog struct {
	prices PriceSource
}

// NewCatalog создаёт каталог. prices может быть nil.
func NewCatalog(prices PriceSource) *Catalog {
	return &Catalog{prices: prices}
}

// StarsSettingKey ключ настройки цены тарифа в Stars
func StarsSettingKey(planKey string) string {
	return "price_" + planKey + "_stars"
}

// Plans все тарифы с актуальными ценами
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(DefaultPlans))
	for i, p := range DefaultPlans {
		if c != nil && c.prices != nil {
			p.Stars = c.prices.Int(StarsSettingKey(p.Key), p.Stars)
		}
		out[i] = p
	}
	return out
}

// Plan тариф по ключу
func (c *Catalog) Plan(key string) (Plan, error) {
	for _, p := range c.Plans() {
		if p.Key == key {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, key)
}

// KindTip вид платежа: разовый совет
const KindTip = "tip"

// Payload данные счёта Telegram: user_id:type[:stars]
type Payload struct {
	UserID int64
	Kind   string // ключ тарифа или tip
	Stars  bool
}

func (p Payload) String() string {
	s := strconv.FormatInt(p.UserID, 10) + ":" + p.Kind
	if p.Stars {
		s += ":" + ProviderStars
	}
	return s
}

// IsTip платёж за совет
func (p Payload) IsTip() bool {
	return p.Kind == KindTip
}

// ParsePayload разбирает payload счёта
func ParsePayload(s string) (Payload, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Payload{}, fmt.Errorf("%w: %q", ErrBadPayload, s)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return Payload{}, fmt.Errorf("%w: %q", ErrBadPayload, s)
	}
	if parts[1] == "" {
		return Payload{}, fmt.Errorf("%w: %q", ErrBadPayload, s)
	}
	p := Payload{UserID: id, Kind: parts[1]}
	if len(parts) == 3 {
		if parts[2] != ProviderStars {
			return Payload{}, fmt.Errorf("%w: %q", ErrBadPayload, s)
		}
		p.Stars = true
	}
	return p, nil
}
