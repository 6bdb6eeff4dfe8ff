package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitbot/internal/models"
	"fitbot/internal/repository"
)

// ErrYooKassaDisabled оплата картой не настроена
var ErrYooKassaDisabled = errors.New("ЮKassa не настроена")

// YooKassaAPI операции ЮKassa, которые нужны сервису
type YooKassaAPI interface {
	CreatePayment(ctx context.Context, userID int64, plan Plan, description string) (*YooPayment, error)
	GetPayment(ctx context.Context, id string) (*YooPayment, error)
}

// Activation результат успешной оплаты
type Activation struct {
	UserID  int64
	Plan    Plan
	End     time.Time
	Applied bool // false, если платёж уже был учтён

	ReferrerID  int64 // получил бонус за приглашение
	ReferrerEnd time.Time
}

// Service продлевает подписки по оплатам
type Service struct {
	repo    *repository.Repository
	catalog *Catalog
	yoo     YooKassaAPI
	pending *PendingStore
	now     func() time.Time
}

// NewService создаёт сервис. yoo может быть nil, тогда доступны только Stars.
func NewService(repo *repository.Repository, catalog *Catalog, yoo YooKassaAPI) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		yoo:     yoo,
		pending: NewPendingStore(),
		now:     time.Now,
	}
}

// Catalog тарифы
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Pending незавершённые платежи ЮKassa
func (s *Service) Pending() *PendingStore {
	return s.pending
}

// YooKassaEnabled можно ли платить картой
func (s *Service) YooKassaEnabled() bool {
	return s.yoo != nil
}

// ActivateStars учитывает оплату Telegram Stars. chargeID - идентификатор
// платежа Telegram, повторная обработка ничего не продлевает.
func (s *Service) ActivateStars(ctx context.Context, chargeID string, payload Payload, stars int) (*Activation, error) {
	plan, err := s.catalog.Plan(payload.Kind)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Payment.Get(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Activation{UserID: payload.UserID, Plan: plan}, nil
	}

	err = s.repo.Payment.Save(ctx, &models.Payment{
		ID:              chargeID,
		UserID:          payload.UserID,
		Provider:        ProviderStars,
		SubscriptionKey: plan.Key,
		Amount:          float64(stars),
		Currency:        CurrencyStars,
		Status:          repository.PaymentSucceeded,
	})
	if err != nil {
		return nil, err
	}
	return s.extend(ctx, payload.UserID, plan)
}

// CreateYooKassa создаёт платёж картой и запоминает его как ожидающий
func (s *Service) CreateYooKassa(ctx context.Context, userID int64, planKey, description string) (*YooPayment, error) {
	if s.yoo == nil {
		return nil, ErrYooKassaDisabled
	}
	plan, err := s.catalog.Plan(planKey)
	if err != nil {
		return nil, err
	}

	p, err := s.yoo.CreatePayment(ctx, userID, plan, description)
	if err != nil {
		return nil, err
	}

	err = s.repo.Payment.Save(ctx, &models.Payment{
		ID:              p.ID,
		UserID:          userID,
		Provider:        ProviderYooKassa,
		SubscriptionKey: plan.Key,
		Amount:          plan.RUB,
		Currency:        CurrencyRUB,
		Status:          repository.PaymentPending,
	})
	if err != nil {
		return nil, err
	}
	s.pending.Add(Pending{PaymentID: p.ID, UserID: userID, PlanKey: plan.Key, CreatedAt: s.now()})
	log.Printf("Создан платёж ЮKassa %s для пользователя %d (%s)", p.ID, userID, plan.Key)
	return p, nil
}

// CheckYooKassa запрашивает статус платежа и продлевает подписку, если он прошёл.
// nil без ошибки означает, что платёж ещё не оплачен.
func (s *Service) CheckYooKassa(ctx context.Context, paymentID string) (*Activation, error) {
	if s.yoo == nil {
		return nil, ErrYooKassaDisabled
	}
	p, err := s.yoo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.ConfirmYooKassa(ctx, p)
}

// ConfirmYooKassa учитывает платёж ЮKassa, статус которого уже получен из API
func (s *Service) ConfirmYooKassa(ctx context.Context, p *YooPayment) (*Activation, error) {
	if p.Status == StatusCanceled {
		if _, err := s.repo.Payment.UpdateStatus(ctx, p.ID, repository.PaymentPending, repository.PaymentCanceled); err != nil {
			return nil, err
		}
		s.pending.Remove(p.ID)
		return nil, nil
	}
	if !p.Succeeded() {
		return nil, nil
	}

	userID := p.UserID()
	plan, err := s.catalog.Plan(p.Metadata["subscription_key"])
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, fmt.Errorf("%w: платёж %s без user_id", ErrBadPayload, p.ID)
	}

	stored, err := s.repo.Payment.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		// платёж создан до перезапуска или другим экземпляром бота
		err = s.repo.Payment.Save(ctx, &models.Payment{
			ID:              p.ID,
			UserID:          userID,
			Provider:        ProviderYooKassa,
			SubscriptionKey: plan.Key,
			Amount:          p.Amount.Float(),
			Currency:        CurrencyRUB,
			Status:          repository.PaymentPending,
		})
		if err != nil {
			return nil, err
		}
	}

	applied, err := s.repo.Payment.UpdateStatus(ctx, p.ID, repository.PaymentPending, repository.PaymentSucceeded)
	if err != nil {
		return nil, err
	}
	s.pending.Remove(p.ID)
	if !applied {
		return &Activation{UserID: userID, Plan: plan}, nil
	}
	return s.extend(ctx, userID, plan)
}

func (s *Service) extend(ctx context.Context, userID int64, plan Plan) (*Activation, error) {
	now := s.now()
	end, err := s.repo.User.ExtendSubscription(ctx, userID, plan.Duration(), plan.RUB, now)
	if err != nil {
		return nil, err
	}
	log.Printf("Подписка %s пользователя %d продлена до %s", plan.Key, userID, end.Format("02.01.2006 15:04"))

	act := &Activation{UserID: userID, Plan: plan, End: end, Applied: true}

	referrer, err := s.repo.Referral.Referrer(ctx, userID)
	if err != nil {
		log.Printf("Ошибка чтения реферала %d: %v", userID, err)
		return act, nil
	}
	if referrer == 0 {
		return act, nil
	}
	first, err := s.repo.Referral.MarkRewarded(ctx, userID)
	if err != nil || !first {
		if err != nil {
			log.Printf("Ошибка отметки бонуса %d: %v", userID, err)
		}
		return act, nil
	}

	refEnd, err := s.repo.User.ExtendSubscription(ctx, referrer, ReferralBonusDays*24*time.Hour, 0, now)
	if err != nil {
		log.Printf("Ошибка начисления бонуса пригласившему %d: %v", referrer, err)
		return act, nil
	}
	act.ReferrerID = referrer
	act.ReferrerEnd = refEnd
	return act, nil
}
