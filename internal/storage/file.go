// Package storage хранит небольшие JSON-файлы бота: журнал планов
// тренировок и настройки. Запись атомарная: временный файл и rename.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readJSON читает файл в v. Отсутствующий файл не ошибка, v остаётся как есть.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return nil
}

// writeJSON пишет v во временный файл рядом с path и переименовывает его
func writeJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка сохранения %s: %w", path, err)
	}
	return nil
}
