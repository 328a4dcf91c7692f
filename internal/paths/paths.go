// paths/paths.go
// Модуль для получения путей к часто используемым файлам.

package paths

import (
	"os"
	"path/filepath"
)

const AppName = "batalert"

// configDir возвращает директорию с файлами конфигурации приложения.
func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", AppName)
}

// ConfigPath возвращает путь к файлу конфигурации.
// @return string - путь к config.json
func ConfigPath() string {
	return filepath.Join(configDir(), "config.json")
}

// SettingsPath возвращает путь к файлу пользовательских настроек оповещения.
// @return string - путь к settings.json
func SettingsPath() string {
	return filepath.Join(configDir(), "settings.json")
}

// LogDir возвращает путь к директории логов.
func LogDir() string {
	return os.TempDir()
}

// LogPath возвращает путь к файлу логов.
// @return string - путь к batalert.log
func LogPath() string {
	return filepath.Join(LogDir(), AppName+".log")
}

// RunDir возвращает директорию для lock- и PID-файлов.
func RunDir() string {
	return os.TempDir()
}

// LockPath возвращает путь к lock-файлу процесса.
func LockPath(dir, processName string) string {
	return filepath.Join(dir, AppName+"-"+processName+".lock")
}

// PIDPath возвращает путь к PID-файлу процесса.
func PIDPath(dir, processName string) string {
	return filepath.Join(dir, AppName+"-"+processName+".pid")
}
