package payment

import (
	"sync"
	"time"
)

// Pending платёж ЮKassa, ожидающий подтверждения
type Pending struct {
	PaymentID string
	UserID    int64
	PlanKey   string
	CreatedAt time.Time
}

// PendingStore последние незавершённые платежи пользователей
type PendingStore struct {
	mu     sync.Mutex
	byID   map[string]Pending
	byUser map[int64]string
}

// NewPendingStore создаёт пустое хранилище
func NewPendingStore() *PendingStore {
	return &PendingStore{
		byID:   make(map[string]Pending),
		byUser: make(map[int64]string),
	}
}

// Add запоминает платёж, заменяя предыдущий платёж пользователя
func (s *PendingStore) Add(p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byUser[p.UserID]; ok {
		delete(s.byID, old)
	}
	s.byID[p.PaymentID] = p
	s.byUser[p.UserID] = p.PaymentID
}

// Get платёж по id
func (s *PendingStore) Get(paymentID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[paymentID]
	return p, ok
}

// ForUser последний платёж пользователя
func (s *PendingStore) ForUser(userID int64) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUser[userID]
	if !ok {
		return Pending{}, false
	}
	p, ok := s.byID[id]
	return p, ok
}

// Remove забывает платёж
func (s *PendingStore) Remove(paymentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byID[paymentID]; ok {
		delete(s.byID, paymentID)
		if s.byUser[p.UserID] == paymentID {
			delete(s.byUser, p.UserID)
		}
	}
}

// Expire удаляет платежи старше maxAge
func (s *PendingStore) Expire(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.byID {
		if now.Sub(p.CreatedAt) > maxAge {
			delete(s.byID, id)
			if s.byUser[p.UserID] == id {
				delete(s.byUser, p.UserID)
			}
			n++
		}
	}
	return n
}
