package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"batalert/internal/logger"
)

// CheckWriteAccess проверяет, что в директорию dir можно писать,
// создавая и удаляя в ней пробный файл.
func CheckWriteAccess(dir string, log *logger.Logger) error {
	log.Debug(fmt.Sprintf("Проверка прав на запись в директорию: %s", dir))

	testFilePath := filepath.Join(dir, ".write_access_test")
	defer os.Remove(testFilePath)

	if err := os.WriteFile(testFilePath, []byte("test"), 0644); err != nil {
		return fmt.Errorf("директория '%s' недоступна для записи: %w", dir, err)
	}

	log.Debug("Права на запись в директорию имеются.")
	return nil
}
