package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fitbot/internal/cache"
	"fitbot/internal/generator"
	"fitbot/internal/payment"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type fakeChecker struct {
	calls []string
	act   *payment.Activation
	err   error
}

func (f *fakeChecker) CheckYooKassa(_ context.Context, id string) (*payment.Activation, error) {
	f.calls = append(f.calls, id)
	return f.act, f.err
}

func newTestServer(t *testing.T, db Pinger, checker PaymentChecker) (*Server, *cache.FileCache) {
	t.Helper()
	plans := cache.NewFileCache(filepath.Join(t.TempDir(), "ai_cache.json"), cache.DefaultTTL)
	return NewServer(db, plans, checker), plans
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     fakeDB
		status int
	}{
		{"ok", fakeDB{}, http.StatusOK},
		{"база недоступна", fakeDB{err: errors.New("closed")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.db, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/", nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestPlanPage(t *testing.T) {
	s, plans := newTestServer(t, fakeDB{}, nil)
	if err := plans.Set(context.Background(), generator.CacheKindPlan, "abc", "🍽 План питания"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "🍽 План питания" {
		t.Errorf("ответ = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("нет плана: status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.org")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

const notification = `{"type":"notification","event":"payment.succeeded","object":{"id":"yk-1","status":"succeeded","paid":true}}`

func TestYooKassaNotification(t *testing.T) {
	act := &payment.Activation{
		UserID:  5,
		Plan:    payment.Plan{Key: "7_days", Days: 7},
		End:     time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Applied: true,
	}

	tests := []struct {
		name     string
		body     string
		checker  *fakeChecker
		status   int
		notified int
	}{
		{"успех", notification, &fakeChecker{act: act}, http.StatusOK, 1},
		{"повтор", notification, &fakeChecker{act: &payment.Activation{UserID: 5}}, http.StatusOK, 0},
		{"не оплачен", notification, &fakeChecker{}, http.StatusOK, 0},
		{"кривое тело", `{"object":{}}`, &fakeChecker{}, http.StatusBadRequest, 0},
		{"ошибка API", notification, &fakeChecker{err: errors.New("timeout")}, http.StatusInternalServerError, 0},
		{"выключена", notification, &fakeChecker{err: payment.ErrYooKassaDisabled}, http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, fakeDB{}, tt.checker)
			var notified []*payment.Activation
			s.OnPayment(func(a *payment.Activation) { notified = append(notified, a) })

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/yookassa", strings.NewReader(tt.body))
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if len(notified) != tt.notified {
				t.Errorf("уведомлений = %d, want %d", len(notified), tt.notified)
			}
			if tt.status != http.StatusBadRequest && (len(tt.checker.calls) != 1 || tt.checker.calls[0] != "yk-1") {
				t.Errorf("проверки = %v", tt.checker.calls)
			}
		})
	}
}

func TestYooKassaWithoutPayments(t *testing.T) {
	s, _ := newTestServer(t, fakeDB{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/yookassa", strings.NewReader(notification)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
