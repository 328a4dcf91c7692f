package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilePersistence хранит запись настроек в JSON-файле.
type FilePersistence struct {
	path string
}

// NewFilePersistence создает файловое хранилище по указанному пути.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

// Path возвращает путь к файлу настроек.
func (f *FilePersistence) Path() string {
	return f.path
}

// Load читает файл настроек. Отсутствующий или нечитаемый файл - это "нет записи".
func (f *FilePersistence) Load() ([]byte, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Save атомарно записывает настройки: временный файл и переименование.
func (f *FilePersistence) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию для настроек: %w", err)
	}

	tempFile := f.path + ".tmp"
	// Удалит временный файл и при успешном переименовании, и при ошибке.
	defer os.Remove(tempFile)

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать временный файл настроек: %w", err)
	}
	if err := os.Rename(tempFile, f.path); err != nil {
		return fmt.Errorf("не удалось сохранить настройки: %w", err)
	}
	return nil
}
