package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"`
}

// FileCache кэш в JSON-файле (ai_cache.json)
type FileCache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]fileEntry
}

// NewFileCache загружает кэш из файла. Битый файл не ошибка, кэш начинается пустым.
func NewFileCache(path string, ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &FileCache{
		path:    path,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]fileEntry),
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &c.entries); err != nil {
			log.Printf("Кэш %s повреждён, начинаем с пустого: %v", path, err)
			c.entries = make(map[string]fileEntry)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Ошибка чтения кэша %s: %v", path, err)
	}
	return c
}

func (c *FileCache) expired(e fileEntry) bool {
	return c.now().Sub(time.Unix(e.Timestamp, 0)) >= c.ttl
}

// Get возвращает запись, если она не устарела. Устаревшая запись удаляется.
func (c *FileCache) Get(_ context.Context, kind, prompt string) (string, bool) {
	key := Key(kind, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.expired(e) {
		delete(c.entries, key)
		return "", false
	}
	return e.Response, true
}

// Set сохраняет запись и файл
func (c *FileCache) Set(_ context.Context, kind, prompt, response string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(kind, prompt)] = fileEntry{Response: response, Timestamp: c.now().Unix()}
	return c.save()
}

// ClearOld удаляет устаревшие записи
func (c *FileCache) ClearOld(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	log.Printf("Очищено %d устаревших записей кэша", removed)
	return removed, c.save()
}

// Len количество записей, включая устаревшие
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *FileCache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
