package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"short", "один\n\nдва", 100, []string{"один\n\nдва"}},
		{"split on blank lines", "aaaa\n\nbbbb\n\ncccc", 10, []string{"aaaa\n\nbbbb", "cccc"}},
		{"long paragraph by lines", "aaaa\nbbbb\ncccc", 9, []string{"aaaa\nbbbb", "cccc"}},
		{"long line by runes", "ёёёёёё", 4, []string{"ёёёё", "ёё"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunks(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Chunks() = %q, want %q", got, tt.want)
			}
			for _, c := range got {
				if n := len([]rune(c)); n > tt.limit {
					t.Errorf("chunk of %d runes exceeds %d", n, tt.limit)
				}
			}
		})
	}
}

func TestChunksKeepText(t *testing.T) {
	text := strings.Repeat(strings.Repeat("слово ", 100)+"\n\n", 30)
	chunks := Chunks(text, MaxChunk)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if strings.Join(chunks, "\n\n") != text {
		t.Error("joined chunks differ from the text")
	}
}

func TestGoogleTranslate(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		calls++
		mu.Unlock()
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"translations": []map[string]string{
					{"translatedText": r.Form.Get("target") + ":" + r.Form.Get("q")},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	ctx := context.Background()
	g, err := NewGoogle(ctx, "", option.WithEndpoint(srv.URL+"/language/translate/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	got, err := g.Translate(ctx, "Привет", "en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "en:Привет" {
		t.Errorf("Translate() = %q", got)
	}

	same, err := g.Translate(ctx, "Привет", "ru")
	if err != nil || same != "Привет" {
		t.Errorf("Translate(ru) = %q, %v", same, err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}
