// Package web HTTP-часть бота: проверка здоровья, страницы планов и уведомления ЮKassa
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"fitbot/internal/cache"
	"fitbot/internal/generator"
	"fitbot/internal/payment"
)

// Pinger проверка доступности базы
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PaymentChecker проверяет платёж ЮKassa по API
type PaymentChecker interface {
	CheckYooKassa(ctx context.Context, paymentID string) (*payment.Activation, error)
}

// Server HTTP-сервер бота
type Server struct {
	db        Pinger
	plans     cache.PlanCache
	payments  PaymentChecker
	onPayment func(*payment.Activation)
}

// NewServer создаёт сервер. payments может быть nil, тогда уведомления отклоняются.
func NewServer(db Pinger, plans cache.PlanCache, payments PaymentChecker) *Server {
	return &Server{db: db, plans: plans, payments: payments}
}

// OnPayment вызывается после того, как уведомление продлило подписку
func (s *Server) OnPayment(fn func(*payment.Activation)) {
	s.onPayment = fn
}

// Handler роутер с middleware
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", s.handleHealth)
	r.Get("/plans/{id}", s.handlePlan)
	r.Post("/payments/yookassa", s.handleYooKassa)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

// Run слушает addr до отмены ctx
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP сервер слушает %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		log.Printf("Проверка здоровья: база недоступна: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "db": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	text, ok := s.plans.Get(r.Context(), generator.CacheKindPlan, id)
	if !ok {
		http.Error(w, "План не найден или устарел", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// handleYooKassa принимает уведомление, но статус берёт только из API ЮKassa
func (s *Server) handleYooKassa(w http.ResponseWriter, r *http.Request) {
	if s.payments == nil {
		http.Error(w, "ЮKassa не настроена", http.StatusNotFound)
		return
	}

	n, err := payment.ParseNotification(r.Body)
	if err != nil {
		log.Printf("Уведомление ЮKassa не разобрано: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	act, err := s.payments.CheckYooKassa(r.Context(), n.Object.ID)
	if errors.Is(err, payment.ErrYooKassaDisabled) {
		http.Error(w, "ЮKassa не настроена", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Ошибка проверки платежа %s (%s): %v", n.Object.ID, n.Event, err)
		// ЮKassa повторит уведомление
		http.Error(w, "ошибка проверки платежа", http.StatusInternalServerError)
		return
	}

	if act != nil && act.Applied {
		log.Printf("Платёж %s: подписка %s пользователя %d до %s", n.Object.ID, act.Plan.Key, act.UserID, act.End.Format("02.01.2006"))
		if s.onPayment != nil {
			s.onPayment(act)
		}
	}
	w.WriteHeader(http.StatusOK)
}
