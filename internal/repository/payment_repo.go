package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fitbot/internal/models"
)

// Статусы платежей
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentCanceled  = "canceled"
)

// PaymentRepository работает с таблицей payments
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository создаёт репозиторий платежей
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save создаёт платёж или обновляет статус существующего
func (r *PaymentRepository) Save(ctx context.Context, p *models.Payment) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO payments (id, user_id, provider, subscription_key, amount, currency, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status`),
		p.ID, p.UserID, p.Provider, p.SubscriptionKey, p.Amount, p.Currency, p.Status)
	if err != nil {
		return fmt.Errorf("ошибка сохранения платежа %s: %w", p.ID, err)
	}
	return nil
}

// Get возвращает платёж, nil если не найден
func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT id, user_id, provider, subscription_key, amount, currency, status, created_at
		FROM payments WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения платежа %s: %w", id, err)
	}
	return &p, nil
}

// UpdateStatus переводит платёж в новый статус, если он ещё в статусе from.
// false означает, что платёж уже обработан или не найден.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE payments SET status = ? WHERE id = ? AND status = ?`), to, id, from)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления платежа %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountSucceeded количество успешных оплат пользователя
func (r *PaymentRepository) CountSucceeded(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM payments WHERE user_id = ? AND status = ?`), userID, PaymentSucceeded)
	return n, err
}
