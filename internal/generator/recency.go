package generator

import "sync"

// DefaultRecentSize размер истории недавно использованных продуктов и упражнений
const DefaultRecentSize = 20

// Recent - кольцевой буфер последних использованных ключей
type Recent struct {
	mu    sync.Mutex
	items []string
	next  int
	count int
}

// NewRecent создаёт буфер на size элементов, size <= 0 - размер по умолчанию
func NewRecent(size int) *Recent {
	if size <= 0 {
		size = DefaultRecentSize
	}
	return &Recent{items: make([]string, size)}
}

// Add добавляет ключи, вытесняя самые старые
func (r *Recent) Add(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		r.items[r.next] = k
		r.next = (r.next + 1) % len(r.items)
		if r.count < len(r.items) {
			r.count++
		}
	}
}

// Contains проверяет ключ среди последних n записей, n <= 0 - среди всех
func (r *Recent) Contains(key string, n int) bool {
	for _, k := range r.Last(n) {
		if k == key {
			return true
		}
	}
	return false
}

// Last возвращает последние n ключей от старых к новым
func (r *Recent) Last(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]string, 0, n)
	start := (r.next - n + len(r.items)) % len(r.items)
	for i := 0; i < n; i++ {
		out = append(out, r.items[(start+i)%len(r.items)])
	}
	return out
}

// Len количество сохранённых ключей
func (r *Recent) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
