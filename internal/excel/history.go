// Package excel выгрузка истории пользователя в Excel
package excel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fitbot/internal/gamification"
	"fitbot/internal/models"
)

// Листы книги истории
const (
	SheetSummary      = "Сводка"
	SheetWorkouts     = "Тренировки"
	SheetMeals        = "Питание"
	SheetMeasurements = "Замеры"
)

// History данные для выгрузки
type History struct {
	User         *models.UserProfile
	Stats        models.WorkoutStats
	Workouts     []models.WorkoutEntry
	Meals        []models.MealEntry
	Measurements []models.Measurement
	Achievements []gamification.Achievement
	GeneratedAt  time.Time
}

type historyStyles struct {
	title  int
	header int
	label  int
	cell   int
	number int
}

func createHistoryStyles(f *excelize.File) (*historyStyles, error) {
	styles := &historyStyles{}
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "#BFBFBF", Style: 1},
		{Type: "right", Color: "#BFBFBF", Style: 1},
		{Type: "top", Color: "#BFBFBF", Style: 1},
		{Type: "bottom", Color: "#BFBFBF", Style: 1},
	}

	styles.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля title: %w", err)
	}

	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля header: %w", err)
	}

	styles.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля label: %w", err)
	}

	styles.cell, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля cell: %w", err)
	}

	decimals := "0.0"
	styles.number, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &decimals,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля number: %w", err)
	}

	return styles, nil
}

// ExportHistory собирает книгу со сводкой, тренировками, питанием и замерами
func ExportHistory(h History) (*excelize.File, error) {
	if h.User == nil {
		return nil, fmt.Errorf("нет профиля для выгрузки")
	}
	if h.GeneratedAt.IsZero() {
		h.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetSummary)
	f.NewSheet(SheetWorkouts)
	f.NewSheet(SheetMeals)
	f.NewSheet(SheetMeasurements)

	styles, err := createHistoryStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := fillSummarySheet(f, styles, h); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания сводки: %w", err)
	}
	if err := fillWorkoutsSheet(f, styles, h.Workouts); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания листа тренировок: %w", err)
	}
	if err := fillMealsSheet(f, styles, h.Meals); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания листа питания: %w", err)
	}
	if err := fillMeasurementsSheet(f, styles, h.Measurements); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания листа замеров: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// ExportHistoryBytes книга в виде байтов для отправки документом
func ExportHistoryBytes(h History) ([]byte, error) {
	f, err := ExportHistory(h)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи книги: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName имя файла выгрузки
func FileName(userID int64, at time.Time) string {
	return fmt.Sprintf("fitbot_%d_%s.xlsx", userID, at.Format("20060102"))
}

func fillSummarySheet(f *excelize.File, styles *historyStyles, h History) error {
	sheet := SheetSummary
	u := h.User

	f.SetCellValue(sheet, "A1", "ИСТОРИЯ ТРЕНИРОВОК И ПИТАНИЯ")
	f.MergeCell(sheet, "A1", "B1")
	f.SetCellStyle(sheet, "A1", "B1", styles.title)
	f.SetRowHeight(sheet, 1, 30)

	level := gamification.LevelFor(h.Stats.TotalWorkouts)
	info := [][]interface{}{
		{"Имя:", u.Name},
		{"Цель:", string(u.Goal)},
		{"Возраст:", u.Age},
		{"Рост, см:", u.HeightCm},
		{"Вес, кг:", u.WeightKg},
		{"Норма ккал:", u.DailyCalories},
		{"Тренировок всего:", h.Stats.TotalWorkouts},
		{"Минут всего:", h.Stats.TotalMinutes},
		{"Ккал сожжено:", h.Stats.TotalCalories},
		{"Текущая серия:", h.Stats.CurrentStreak},
		{"Лучшая серия:", h.Stats.LongestStreak},
		{"Уровень:", level.Number},
		{"Опыт:", level.XP},
		{"Достижений:", len(h.Achievements)},
		{"Выгружено:", h.GeneratedAt.Format("02.01.2006 15:04")},
	}

	for i, row := range info {
		rowNum := i + 3
		label := fmt.Sprintf("A%d", rowNum)
		f.SetCellValue(sheet, label, row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), row[1])
		f.SetCellStyle(sheet, label, label, styles.label)
	}

	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "B", 28)
	return nil
}

func writeHeader(f *excelize.File, sheet string, styles *historyStyles, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, styles.header)
	f.SetRowHeight(sheet, 1, 22)

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func fillWorkoutsSheet(f *excelize.File, styles *historyStyles, workouts []models.WorkoutEntry) error {
	sheet := SheetWorkouts
	if err := writeHeader(f, sheet, styles, []string{"Дата", "Тип", "Минут", "Ккал", "Упражнений"}); err != nil {
		return err
	}

	for i, w := range workouts {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), w.WorkoutDate.Format("02.01.2006"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), w.WorkoutType)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), w.DurationMinutes)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), w.CaloriesBurned)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), w.ExercisesCount)
	}
	if n := len(workouts); n > 0 {
		f.SetCellStyle(sheet, "A2", fmt.Sprintf("E%d", n+1), styles.cell)

		// итоговая строка
		total := n + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", total), "Итого")
		f.SetCellFormula(sheet, fmt.Sprintf("C%d", total), fmt.Sprintf("SUM(C2:C%d)", n+1))
		f.SetCellFormula(sheet, fmt.Sprintf("D%d", total), fmt.Sprintf("SUM(D2:D%d)", n+1))
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", total), fmt.Sprintf("E%d", total), styles.label)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 16)
	f.SetColWidth(sheet, "C", "E", 12)
	return nil
}

func fillMealsSheet(f *excelize.File, styles *historyStyles, meals []models.MealEntry) error {
	sheet := SheetMeals
	if err := writeHeader(f, sheet, styles, []string{"Дата", "Приём", "Блюдо", "Ккал", "Белки", "Жиры", "Углеводы"}); err != nil {
		return err
	}

	for i, m := range meals {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.MealDate.Format("02.01.2006"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.MealType)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), m.MealName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), m.Calories)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), m.Protein)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), m.Fats)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), m.Carbs)
	}
	if n := len(meals); n > 0 {
		f.SetCellStyle(sheet, "A2", fmt.Sprintf("D%d", n+1), styles.cell)
		f.SetCellStyle(sheet, "E2", fmt.Sprintf("G%d", n+1), styles.number)
	}

	f.SetColWidth(sheet, "A", "B", 14)
	f.SetColWidth(sheet, "C", "C", 32)
	f.SetColWidth(sheet, "D", "G", 11)
	return nil
}

func fillMeasurementsSheet(f *excelize.File, styles *historyStyles, measurements []models.Measurement) error {
	sheet := SheetMeasurements
	if err := writeHeader(f, sheet, styles, []string{"Дата", "Вес", "Грудь", "Талия", "Бёдра", "Бицепс", "Заметки"}); err != nil {
		return err
	}

	for i, m := range measurements {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.MeasurementDate.Format("02.01.2006"))
		for col, v := range []float64{m.Weight, m.Chest, m.Waist, m.Hips, m.Biceps} {
			if v == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row)
			f.SetCellValue(sheet, cell, v)
		}
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), m.Notes)
	}
	if n := len(measurements); n > 0 {
		f.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", n+1), styles.cell)
		f.SetCellStyle(sheet, "B2", fmt.Sprintf("F%d", n+1), styles.number)
		f.SetCellStyle(sheet, "G2", fmt.Sprintf("G%d", n+1), styles.cell)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "F", 10)
	f.SetColWidth(sheet, "G", "G", 30)
	return nil
}
