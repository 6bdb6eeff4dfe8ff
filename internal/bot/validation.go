package bot

import (
	"errors"
	"strings"
	"unicode"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Допустимые диапазоны ввода
const (
	minAge, maxAge           = 16, 100
	minHeight, maxHeight     = 120.0, 250.0
	minWeight, maxWeight     = 35.0, 250.0
	minMinutes, maxMinutes   = 1, 300
	minNameLen, maxNameLen   = 2, 50
	maxPreferenceItems       = 20
	maxLimitationsTextLength = 500
)

// errorKey ключ перевода для ошибки ввода
func errorKey(err error) string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return "err_" + ve.Field
	}
	return "error_generic"
}

// validateName проверяет имя и делает первую букву заглавной
func validateName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	runes := []rune(name)
	if len(runes) < minNameLen || len(runes) > maxNameLen {
		return "", ValidationError{Field: "name", Message: "имя должно быть от 2 до 50 символов"}
	}

	letters := 0
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '-' || r == ' ' || r == '\'':
		default:
			return "", ValidationError{Field: "name", Message: "имя должно содержать только буквы"}
		}
	}
	if letters < minNameLen {
		return "", ValidationError{Field: "name", Message: "в имени слишком мало букв"}
	}

	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

// validateAge validates age in years
func validateAge(s string) (int, error) {
	age := safeInt(s)
	if age < minAge || age > maxAge {
		return 0, ValidationError{Field: "age", Message: "возраст должен быть от 16 до 100 лет"}
	}
	return age, nil
}

// validateHeight validates height in cm
func validateHeight(s string) (float64, error) {
	h := safeFloat64(s)
	if h < minHeight || h > maxHeight {
		return 0, ValidationError{Field: "height", Message: "рост должен быть от 120 до 250 см"}
	}
	return h, nil
}

// validateWeight validates weight in kg
func validateWeight(s string) (float64, error) {
	w := safeFloat64(s)
	if w < minWeight || w > maxWeight {
		return 0, ValidationError{Field: "weight", Message: "вес должен быть от 35 до 250 кг"}
	}
	return w, nil
}

// validateMinutes validates workout duration
func validateMinutes(s string) (int, error) {
	m := safeInt(s)
	if m < minMinutes || m > maxMinutes {
		return 0, ValidationError{Field: "minutes", Message: "длительность должна быть от 1 до 300 минут"}
	}
	return m, nil
}

// validateLimitations обрезает слишком длинное описание ограничений
func validateLimitations(s string) string {
	return truncateString(strings.TrimSpace(s), maxLimitationsTextLength)
}

// validatePreferences ограничивает число продуктов в списке
func validatePreferences(items []string) []string {
	if len(items) > maxPreferenceItems {
		return items[:maxPreferenceItems]
	}
	return items
}
