// Package ratelimit ограничивает частоту генерации планов для пользователя
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Лимиты по умолчанию
const (
	PerMinute = 10
	PerHour   = 50
)

type visitor struct {
	minute *rate.Limiter
	hour   *rate.Limiter
}

// Limiter два окна на пользователя: минутное и часовое
type Limiter struct {
	mu        sync.Mutex
	visitors  map[int64]*visitor
	perMinute int
	perHour   int
}

// New создаёт ограничитель с лимитами в минуту и в час
func New(perMinute, perHour int) *Limiter {
	return &Limiter{
		visitors:  make(map[int64]*visitor),
		perMinute: perMinute,
		perHour:   perHour,
	}
}

func (l *Limiter) getVisitor(userID int64) *visitor {
	if v, ok := l.visitors[userID]; ok {
		return v
	}
	v := &visitor{
		minute: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute),
		hour:   rate.NewLimiter(rate.Every(time.Hour/time.Duration(l.perHour)), l.perHour),
	}
	l.visitors[userID] = v
	return v
}

// Allow регистрирует запрос. Если лимит исчерпан, запрос не учитывается
// и возвращается время ожидания.
func (l *Limiter) Allow(userID int64) (bool, time.Duration) {
	return l.AllowAt(userID, time.Now())
}

// AllowAt то же, что Allow, для заданного момента
func (l *Limiter) AllowAt(userID int64, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := l.getVisitor(userID)

	minute := v.minute.ReserveN(now, 1)
	if wait := minute.DelayFrom(now); wait > 0 {
		minute.CancelAt(now)
		return false, wait
	}

	hour := v.hour.ReserveN(now, 1)
	if wait := hour.DelayFrom(now); wait > 0 {
		hour.CancelAt(now)
		minute.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Cleanup забывает пользователей, у которых оба лимита восстановились полностью
func (l *Limiter) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, v := range l.visitors {
		if v.minute.TokensAt(now) >= float64(l.perMinute) && v.hour.TokensAt(now) >= float64(l.perHour) {
			delete(l.visitors, id)
			removed++
		}
	}
	return removed
}
