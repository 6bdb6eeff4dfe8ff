package i18n

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestT(t *testing.T) {
	tests := []struct {
		name string
		key  string
		lang Language
		want string
	}{
		{"russian", "label_protein", LangRussian, "Белки"},
		{"english", "label_protein", LangEnglish, "Protein"},
		{"uzbek", "label_fat", LangUzbek, "Yog'"},
		{"unknown language falls back to russian", "label_carbs", Language("de"), "Углеводы"},
		{"missing key returns key", "no_such_key", LangEnglish, "no_such_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := T(tt.key, tt.lang); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.key, tt.lang, got, tt.want)
			}
		})
	}
}

func TestTf(t *testing.T) {
	if got := Tf("dish_with", LangEnglish, "Rice", "chicken"); got != "Rice with chicken" {
		t.Errorf("Tf(dish_with) = %q", got)
	}
	if got := Tf("meal_total", LangRussian); got != "Итого в плане" {
		t.Errorf("Tf without args = %q", got)
	}
}

func TestVariants(t *testing.T) {
	for _, lang := range Languages {
		if got := Variants("step_serve", lang); len(got) < 2 {
			t.Errorf("Variants(step_serve, %s) = %d items, want at least 2", lang, len(got))
		}
	}
	if got := Variants("nothing_here", LangRussian); len(got) != 0 {
		t.Errorf("Variants(nothing_here) = %v, want empty", got)
	}
}

func TestLocalesAreAligned(t *testing.T) {
	if err := LoadEmbedded(); err != nil {
		t.Fatal(err)
	}

	cyrillic := regexp.MustCompile(`[А-Яа-яЁё]`)
	verbs := regexp.MustCompile(`%[+]?[.0-9]*[sdf]`)

	translations.RLock()
	defer translations.RUnlock()

	ru := translations.data[LangRussian]
	for _, lang := range []Language{LangEnglish, LangUzbek} {
		data := translations.data[lang]
		if len(data) != len(ru) {
			t.Errorf("%s has %d keys, ru has %d", lang, len(data), len(ru))
		}
		for key, text := range data {
			if cyrillic.MatchString(text) {
				t.Errorf("%s/%s contains cyrillic: %q", lang, key, text)
			}
			if a, b := verbs.FindAllString(ru[key], -1), verbs.FindAllString(text, -1); len(a) != len(b) {
				t.Errorf("%s/%s has %d format verbs, ru has %d", lang, key, len(b), len(a))
			}
		}
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range Languages {
		content := `{"greeting":"hi ` + string(lang) + `"}`
		if err := os.WriteFile(filepath.Join(dir, string(lang)+".json"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		if err := LoadEmbedded(); err != nil {
			t.Fatal(err)
		}
	})

	if err := Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := T("greeting", LangUzbek); got != "hi uz" {
		t.Errorf("T(greeting, uz) = %q, want %q", got, "hi uz")
	}

	if err := Load(filepath.Join(dir, "missing")); err == nil {
		t.Error("Load() of missing dir error = nil, want error")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"en", LangEnglish},
		{"UZ", LangUzbek},
		{" ru ", LangRussian},
		{"fr", LangRussian},
	}
	for _, tt := range tests {
		if got := ParseLanguage(tt.in); got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !IsValidLanguage("uz") || IsValidLanguage("de") {
		t.Error("IsValidLanguage() mismatch")
	}
	if GetLanguageFlag(LangUzbek) != "🇺🇿" || GetLanguageName(LangEnglish) != "English" {
		t.Error("language name/flag mismatch")
	}
}
