// Package monitor содержит основной цикл фонового процесса:
// опрос батареи, передачу замеров автомату оповещения и применение
// изменений настроек и конфигурации.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"batalert/internal/alert"
	"batalert/internal/battery"
	"batalert/internal/config"
	"batalert/internal/logger"
	"batalert/internal/settings"
)

//================================================================================
// СТРУКТУРЫ ДАННЫХ
//================================================================================

// thresholdAware - источник, которому нужен текущий порог (симулятор).
type thresholdAware interface {
	SetThreshold(threshold int)
}

// Monitor - основная структура фонового процесса.
// Все вызовы автомата выполняются из горутины Start.
type Monitor struct {
	config       config.Config
	cfgManager   *config.Manager // nil - без перезагрузки конфигурации
	machine      *alert.Machine
	source       battery.Source
	store        *settings.Store
	settingsPath string // пусто - без перезагрузки настроек
	log          *logger.Logger

	hasSample    bool
	lastLevel    int
	lastCharging bool
}

// Options - зависимости монитора.
type Options struct {
	Config        *config.Config
	ConfigManager *config.Manager
	Machine       *alert.Machine
	Source        battery.Source
	Store         *settings.Store
	SettingsPath  string
	Log           *logger.Logger
}

//================================================================================
// ОСНОВНАЯ ЛОГИКА МОНИТОРИНГА
//================================================================================

// NewMonitor создает новый экземпляр монитора.
func NewMonitor(opts Options) *Monitor {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config
	}
	m := &Monitor{
		config:       *cfg,
		cfgManager:   opts.ConfigManager,
		machine:      opts.Machine,
		source:       opts.Source,
		store:        opts.Store,
		settingsPath: opts.SettingsPath,
		log:          opts.Log,
	}
	m.machine.Subscribe(m.logState)
	m.syncSourceThreshold()
	return m
}

// Start запускает основной цикл монитора и блокируется до отмены ctx.
//
// Цикл обслуживает четыре источника событий: тикер опроса, сигналы
// изменений от источника батареи, перезагрузку файла настроек
// и перезагрузку файла конфигурации.
func (m *Monitor) Start(ctx context.Context) error {
	m.log.Info("Запуск основного цикла монитора.")

	settingsChanged := make(chan struct{}, 1)
	configChanged := make(chan struct{}, 1)

	if m.settingsPath != "" {
		go m.watch(ctx, m.settingsPath, settingsChanged)
	}
	if m.cfgManager != nil {
		go m.watch(ctx, m.cfgManager.ConfigPath(), configChanged)
	}

	var changes <-chan struct{}
	if w, ok := m.source.(battery.Watcher); ok {
		m.log.Debug("Источник батареи сообщает об изменениях сам.")
		changes = w.Changes()
	}

	ticker := time.NewTicker(m.pollInterval())
	defer ticker.Stop()

	m.log.Info(fmt.Sprintf("Мониторинг запущен. Интервал опроса: %v.", m.pollInterval()))
	m.Poll(time.Now())

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Мониторинг остановлен.")
			return nil

		case <-ticker.C:
			m.Poll(time.Now())

		case <-changes:
			m.Poll(time.Now())

		case <-settingsChanged:
			m.reloadSettings()

		case <-configChanged:
			m.reloadConfig(ticker)
		}
	}
}

// Poll выполняет разовый опрос батареи и возвращает true, если было отправлено оповещение.
// Ошибки чтения и неизвестный уровень пропускаются.
func (m *Monitor) Poll(now time.Time) bool {
	sample, err := m.source.Read()
	if err != nil {
		if errors.Is(err, battery.ErrUnknownLevel) {
			m.log.Debug("Уровень заряда неизвестен. Проверка пропущена.")
		} else {
			m.log.Error(fmt.Sprintf("Ошибка получения данных о батарее: %v.", err))
		}
		return false
	}

	if m.hasSample && sample.Level == m.lastLevel && sample.Charging == m.lastCharging {
		m.log.Debug("Состояние батареи не изменилось.")
	} else {
		m.log.Debug(fmt.Sprintf("Проверка состояния: Зарядка=%v, Уровень=%d%%", sample.Charging, sample.Level))
	}
	m.hasSample = true
	m.lastLevel = sample.Level
	m.lastCharging = sample.Charging

	if sample.At.IsZero() {
		sample.At = now
	}
	return m.machine.OnSample(sample.Level, sample.Charging, sample.At)
}

// watch пересылает уведомления наблюдателя за файлом в канал цикла.
func (m *Monitor) watch(ctx context.Context, path string, out chan<- struct{}) {
	err := config.Watch(ctx, path, func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}, m.log)
	if err != nil {
		m.log.Error(fmt.Sprintf("Наблюдение за %s недоступно: %v", path, err))
	}
}

// reloadSettings применяет настройки, измененные другим процессом.
// Собственные записи автомата возвращают те же настройки и пропускаются.
// Флаг оповещения меняет только автомат, поэтому значение из файла игнорируется.
func (m *Monitor) reloadSettings() {
	loaded := m.store.Load()
	loaded.HasAlertedForCurrentCharge = m.machine.Settings().HasAlertedForCurrentCharge
	if loaded == m.machine.Settings() {
		m.log.Debug("Файл настроек изменен, но настройки совпадают с текущими.")
		return
	}
	m.machine.UpdateSettings(loaded)
	m.syncSourceThreshold()
}

// reloadConfig применяет новую конфигурацию и перезапускает тикер.
func (m *Monitor) reloadConfig(ticker *time.Ticker) {
	newCfg, err := m.cfgManager.Load()
	if err != nil {
		m.log.Error(fmt.Sprintf("Не удалось перезагрузить конфигурацию после изменения: %v", err))
		return
	}
	m.log.Info("Получена новая конфигурация. Применение...")
	m.config = *newCfg
	m.log.EnableDebug(newCfg.DebugEnabled)
	m.log.EnableLogging(newCfg.LogEnabled)

	ticker.Reset(m.pollInterval())
	m.log.Info(fmt.Sprintf("Интервал проверки обновлен до %v.", m.pollInterval()))
}

// pollInterval возвращает интервал опроса из конфигурации.
func (m *Monitor) pollInterval() time.Duration {
	interval := m.config.PollDuration()
	if interval <= 0 {
		interval = config.Default().PollDuration()
	}
	return interval
}

// syncSourceThreshold передает текущий порог источнику, если он в нем нуждается.
func (m *Monitor) syncSourceThreshold() {
	if src, ok := m.source.(thresholdAware); ok {
		src.SetThreshold(m.machine.Settings().AlertThreshold)
	}
}

// logState записывает в лог каждое изменение состояния автомата.
func (m *Monitor) logState(state alert.State) {
	m.log.Debug(fmt.Sprintf("Состояние: уровень=%d%%, зарядка=%v, до порога=%s, фаза=%s",
		state.BatteryLevel, state.IsCharging, FormatETA(state.EstimatedMinutesToThreshold), m.machine.Phase()))
}
