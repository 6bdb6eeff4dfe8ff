package ratelimit

import (
	"testing"
	"time"
)

func TestMinuteLimit(t *testing.T) {
	l := New(PerMinute, PerHour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < PerMinute; i++ {
		if ok, _ := l.AllowAt(1, now); !ok {
			t.Fatalf("request %d denied", i+1)
		}
	}
	ok, wait := l.AllowAt(1, now)
	if ok || wait <= 0 || wait > time.Minute {
		t.Fatalf("11th request: ok=%v wait=%v", ok, wait)
	}

	if ok, _ := l.AllowAt(2, now); !ok {
		t.Error("other user limited")
	}
	if ok, _ := l.AllowAt(1, now.Add(wait)); !ok {
		t.Error("request after the wait denied")
	}
}

func TestHourLimit(t *testing.T) {
	l := New(PerMinute, PerHour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	allowed := 0
	for i := 0; i < 100; i++ {
		at := now.Add(time.Duration(i) * 10 * time.Second)
		if ok, _ := l.AllowAt(1, at); ok {
			allowed++
		}
	}
	// за 1000 секунд часовое окно успевает вернуть не больше 14 запросов
	if allowed < PerHour || allowed > PerHour+14 {
		t.Errorf("allowed %d requests, want about %d", allowed, PerHour)
	}

	ok, wait := l.AllowAt(1, now.Add(1000*time.Second))
	if ok {
		t.Fatal("request allowed after the hour limit")
	}
	if wait <= 0 || wait > time.Hour/PerHour {
		t.Errorf("wait = %v", wait)
	}
}

func TestDeniedRequestIsNotCounted(t *testing.T) {
	l := New(1, 10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	l.AllowAt(1, now)
	for i := 0; i < 5; i++ {
		if ok, _ := l.AllowAt(1, now); ok {
			t.Fatal("second request in a minute allowed")
		}
	}
	if ok, _ := l.AllowAt(1, now.Add(time.Minute)); !ok {
		t.Error("denied requests consumed tokens")
	}
}

func TestCleanup(t *testing.T) {
	l := New(PerMinute, PerHour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.AllowAt(1, now)

	if n := l.Cleanup(now); n != 0 {
		t.Errorf("Cleanup() removed active user")
	}
	if n := l.Cleanup(now.Add(2 * time.Hour)); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
}
