package quality

import (
	"fmt"
	"strings"
)

// Report форматирует результат проверки для логов и администратора
func Report(r Result) string {
	var sb strings.Builder
	line := strings.Repeat("=", 50)

	sb.WriteString(line + "\n")
	sb.WriteString("ОТЧЁТ О ПРОВЕРКЕ КАЧЕСТВА\n")
	sb.WriteString(line + "\n\n")

	status := "✅ УСПЕШНО"
	if !r.Valid {
		status = "❌ ОШИБКИ"
	}
	sb.WriteString(fmt.Sprintf("Статус: %s\n", status))
	sb.WriteString(fmt.Sprintf("Оценка: %d/100\n\n", r.Score))

	if len(r.Errors) > 0 {
		sb.WriteString("ОШИБКИ:\n")
		for _, e := range r.Errors {
			sb.WriteString("  ❌ " + e + "\n")
		}
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("ПРЕДУПРЕЖДЕНИЯ:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  ⚠️  " + w + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(line)
	return sb.String()
}
