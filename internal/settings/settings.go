// Package settings хранит пользовательские параметры оповещения и флаг
// "оповещение уже показано" для текущего цикла зарядки.
package settings

import (
	"encoding/json"
	"fmt"

	"batalert/internal/logger"
)

const (
	// MinThreshold и MaxThreshold - допустимые границы порога оповещения, в процентах.
	MinThreshold = 1
	MaxThreshold = 100

	// DefaultThreshold - порог по умолчанию.
	DefaultThreshold = 80
)

// Settings содержит настраиваемые параметры оповещения.
type Settings struct {
	AlertThreshold             int  `json:"alert_threshold"`
	IsEnabled                  bool `json:"is_enabled"`
	SoundEnabled               bool `json:"sound_enabled"`
	VibrationEnabled           bool `json:"vibration_enabled"`
	HasAlertedForCurrentCharge bool `json:"has_alerted_for_current_charge"`
}

// Default возвращает настройки по умолчанию.
func Default() Settings {
	return Settings{
		AlertThreshold:   DefaultThreshold,
		IsEnabled:        true,
		SoundEnabled:     true,
		VibrationEnabled: true,
	}
}

// ClampThreshold приводит порог к диапазону [1, 100].
func ClampThreshold(value int) int {
	return max(MinThreshold, min(MaxThreshold, value))
}

// Persistence - хранилище сериализованной записи настроек.
// Load возвращает false, если запись отсутствует или не читается.
type Persistence interface {
	Load() ([]byte, bool)
	Save(data []byte) error
}

// Store загружает и сохраняет настройки через Persistence.
// Ошибки хранилища не возвращаются вызывающему: они пишутся в лог,
// а работа продолжается с настройками в памяти.
type Store struct {
	backend Persistence
	log     *logger.Logger
}

// NewStore создает хранилище настроек.
func NewStore(backend Persistence, log *logger.Logger) *Store {
	return &Store{backend: backend, log: log}
}

// Load возвращает сохраненные настройки или значения по умолчанию.
// Отсутствующие в записи поля получают значения по умолчанию,
// порог всегда приводится к допустимому диапазону.
func (s *Store) Load() Settings {
	data, ok := s.backend.Load()
	if !ok {
		s.log.Debug("Сохраненные настройки не найдены. Используются значения по умолчанию.")
		return Default()
	}

	loaded, err := decode(data)
	if err != nil {
		s.log.Error(fmt.Sprintf("Настройки повреждены, используются значения по умолчанию: %v", err))
		return Default()
	}

	if clamped := ClampThreshold(loaded.AlertThreshold); clamped != loaded.AlertThreshold {
		s.log.Info(fmt.Sprintf("Порог %d%% вне диапазона, исправлен на %d%%.", loaded.AlertThreshold, clamped))
		loaded.AlertThreshold = clamped
	}
	return loaded
}

// Save сохраняет настройки. Ошибка записи только логируется.
func (s *Store) Save(cfg Settings) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		s.log.Error(fmt.Sprintf("Ошибка при кодировании настроек: %v", err))
		return
	}
	if err := s.backend.Save(data); err != nil {
		s.log.Error(fmt.Sprintf("Не удалось сохранить настройки: %v", err))
		return
	}
	s.log.Debug("Настройки успешно сохранены.")
}

// decode разбирает запись поверх значений по умолчанию.
func decode(data []byte) (Settings, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}
