// Package cache хранит готовые тексты планов: в JSON-файле или в Redis
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"
)

// DefaultTTL время жизни записи
const DefaultTTL = 24 * time.Hour

// PlanCache кэш сгенерированных текстов. kind разделяет виды записей
// (например "plan" для ссылок на сайт), prompt - ключ внутри вида.
type PlanCache interface {
	Get(ctx context.Context, kind, prompt string) (string, bool)
	Set(ctx context.Context, kind, prompt, response string) error
	ClearOld(ctx context.Context) (int, error)
}

// Key md5 от kind и prompt
func Key(kind, prompt string) string {
	sum := md5.Sum([]byte(kind + prompt))
	return hex.EncodeToString(sum[:])
}
