package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReferralRepository хранит, кто кого пригласил
type ReferralRepository struct {
	db *sqlx.DB
}

// NewReferralRepository создаёт репозиторий рефералов
func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Add записывает приглашение. Пользователя можно пригласить один раз,
// самого себя пригласить нельзя.
func (r *ReferralRepository) Add(ctx context.Context, referrerID, referredID int64) (bool, error) {
	if referrerID == referredID {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO referrals (referred_id, referrer_id)
		VALUES (?, ?)
		ON CONFLICT (referred_id) DO NOTHING`), referredID, referrerID)
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения реферала: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Count сколько пользователей пригласил referrerID
func (r *ReferralRepository) Count(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM referrals WHERE referrer_id = ?`), referrerID)
	return n, err
}

// Referrer кто пригласил пользователя, 0 если никто
func (r *ReferralRepository) Referrer(ctx context.Context, referredID int64) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT referrer_id FROM referrals WHERE referred_id = ?`), referredID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// MarkRewarded отмечает, что бонус за приглашение выдан.
// Возвращает true только при первом вызове.
func (r *ReferralRepository) MarkRewarded(ctx context.Context, referredID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE referrals SET rewarded = TRUE WHERE referred_id = ? AND rewarded = FALSE`), referredID)
	if err != nil {
		return false, fmt.Errorf("ошибка отметки бонуса: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
