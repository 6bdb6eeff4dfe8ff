package storage

import (
	"strconv"
	"sync"
)

// Settings настройки бота (settings.json), например цены, изменённые админом
type Settings struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// OpenSettings загружает настройки из файла
func OpenSettings(path string) (*Settings, error) {
	s := &Settings{path: path, values: make(map[string]string)}
	if err := readJSON(path, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

// Get возвращает значение и признак наличия
func (s *Settings) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Int возвращает число или def, если ключа нет или значение не число
func (s *Settings) Int(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Set меняет значение и сохраняет файл
func (s *Settings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return writeJSON(s.path, s.values)
}

// All копия всех настроек
func (s *Settings) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
