// Package config управляет конфигурацией приложения.
// Он предоставляет структуру Config и Manager для загрузки и сохранения
// параметров из файла JSON. Настройки оповещения (порог, звук и т.д.)
// хранятся отдельно, в пакете settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"batalert/internal/logger"
	"batalert/internal/paths"
)

// Config содержит все настраиваемые параметры приложения.
type Config struct {
	PollInterval        int    `json:"poll_interval"`        // секунды между опросами батареи
	NotificationTimeout int    `json:"notification_timeout"` // секунды на вызов уведомления
	LogFilePath         string `json:"log_file_path"`
	LogRotationLines    int    `json:"log_rotation_lines"`
	LogEnabled          bool   `json:"log_enabled"`
	DebugEnabled        bool   `json:"debug_enabled"`
	UseSimulator        bool   `json:"use_simulator"`
	SettingsPath        string `json:"settings_path"`
}

// PollDuration возвращает интервал опроса.
func (c *Config) PollDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// NotificationDuration возвращает таймаут уведомления.
func (c *Config) NotificationDuration() time.Duration {
	return time.Duration(c.NotificationTimeout) * time.Second
}

// Manager инкапсулирует логику управления файлом конфигурации.
type Manager struct {
	configPath string
	log        *logger.Logger
}

// New создает новый экземпляр менеджера конфигурации.
// @param log *logger.Logger - экземпляр логгера.
// @param customPath ...string - необязательный путь к файлу конфигурации.
// Если путь не указан, используется ~/.config/batalert/config.json.
// @return error - ошибка, если не удалось создать директорию.
func New(log *logger.Logger, customPath ...string) (*Manager, error) {
	var configPath string

	if len(customPath) > 0 && customPath[0] != "" {
		configPath = customPath[0]
	} else {
		configPath = paths.ConfigPath()
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для конфигурации %s: %w", configDir, err)
	}

	return &Manager{
		configPath: configPath,
		log:        log,
	}, nil
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		PollInterval:        30,
		NotificationTimeout: 5,
		LogFilePath:         paths.LogPath(),
		LogRotationLines:    1000,
		LogEnabled:          true,
		DebugEnabled:        false,
		UseSimulator:        false,
		SettingsPath:        paths.SettingsPath(),
	}
}

// ConfigPath возвращает путь к файлу конфигурации.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// Load загружает конфигурацию из файла.
// Если файл не существует, он создается с настройками по умолчанию.
// Отсутствующие в файле ключи заполняются значениями по умолчанию,
// недопустимые интервалы заменяются значениями по умолчанию.
func (m *Manager) Load() (*Config, error) {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.log.Info("Файл конфигурации не найден. Создание нового с настройками по умолчанию.")
		defaultCfg := Default()
		if err := m.Save(defaultCfg); err != nil {
			return nil, fmt.Errorf("не удалось сохранить конфигурацию по умолчанию: %w", err)
		}
		return defaultCfg, nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
	}

	// Карта присутствия ключей: по ней видно, какие поля отсутствуют в файле.
	presenceMap := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &presenceMap); err != nil {
		return nil, fmt.Errorf("ошибка при разборе файла конфигурации: %w", err)
	}

	finalCfg, wasModified, err := m.mergeWithDefaults(presenceMap)
	if err != nil {
		return nil, err
	}
	if m.validate(finalCfg) {
		wasModified = true
	}

	if wasModified {
		m.log.Info("Конфигурация была дополнена значениями по умолчанию. Сохраняем изменения...")
		if err := m.Save(finalCfg); err != nil {
			m.log.Debug(fmt.Sprintf("Не удалось автоматически сохранить дополненную конфигурацию: %v", err))
		}
	}

	return finalCfg, nil
}

// Save атомарно сохраняет конфигурацию через временный файл и переименование.
func (m *Manager) Save(cfg *Config) error {
	tempFile := m.configPath + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл конфигурации: %w", err)
	}
	defer os.Remove(tempFile)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(cfg); err != nil {
		file.Close()
		return fmt.Errorf("ошибка при кодировании конфигурации: %w", err)
	}
	file.Close()

	if err := os.Rename(tempFile, m.configPath); err != nil {
		return fmt.Errorf("не удалось сохранить конфигурацию: %w", err)
	}

	m.log.Debug("Конфигурация успешно сохранена.")
	return nil
}

// mergeWithDefaults дополняет прочитанные ключи значениями по умолчанию
// для всех ключей, которых нет в файле. Явно заданные нулевые значения сохраняются.
func (m *Manager) mergeWithDefaults(presenceMap map[string]json.RawMessage) (*Config, bool, error) {
	defaults, err := json.Marshal(Default())
	if err != nil {
		return nil, false, fmt.Errorf("ошибка при кодировании конфигурации по умолчанию: %w", err)
	}
	defaultMap := make(map[string]json.RawMessage)
	if err := json.Unmarshal(defaults, &defaultMap); err != nil {
		return nil, false, fmt.Errorf("ошибка при разборе конфигурации по умолчанию: %w", err)
	}

	keys := make([]string, 0, len(defaultMap))
	for key := range defaultMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changesMade := false
	for _, key := range keys {
		if _, ok := presenceMap[key]; ok {
			continue
		}
		m.log.Debug(fmt.Sprintf("Поле '%s' отсутствует. Установлено значение по умолчанию: %s", key, defaultMap[key]))
		presenceMap[key] = defaultMap[key]
		changesMade = true
	}

	merged, err := json.Marshal(presenceMap)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка при объединении конфигурации: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return nil, false, fmt.Errorf("ошибка при разборе файла конфигурации (в структуру): %w", err)
	}
	return &cfg, changesMade, nil
}

// validate заменяет недопустимые значения значениями по умолчанию.
// Возвращает true, если конфигурация была изменена.
func (m *Manager) validate(cfg *Config) bool {
	defaultCfg := Default()
	changed := false

	if cfg.PollInterval <= 0 {
		m.log.Error(fmt.Sprintf("Недопустимый интервал опроса %d, используется %d", cfg.PollInterval, defaultCfg.PollInterval))
		cfg.PollInterval = defaultCfg.PollInterval
		changed = true
	}
	if cfg.NotificationTimeout <= 0 {
		m.log.Error(fmt.Sprintf("Недопустимый таймаут уведомления %d, используется %d", cfg.NotificationTimeout, defaultCfg.NotificationTimeout))
		cfg.NotificationTimeout = defaultCfg.NotificationTimeout
		changed = true
	}
	if cfg.LogRotationLines <= 0 {
		cfg.LogRotationLines = defaultCfg.LogRotationLines
		changed = true
	}
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = defaultCfg.SettingsPath
		changed = true
	}
	if cfg.LogFilePath == "" {
		cfg.LogFilePath = defaultCfg.LogFilePath
		changed = true
	}
	return changed
}
