// Package alert содержит конечный автомат оповещения о достижении порога заряда.
//
// Автомат получает замеры (уровень, зарядка), ведет оценку скорости зарядки
// и отправляет не более одного оповещения за цикл зарядки. Флаг
// "оповещение показано" сбрасывается только при отключении зарядки.
package alert

import (
	"fmt"
	"time"

	"batalert/internal/estimator"
	"batalert/internal/logger"
	"batalert/internal/settings"
)

//================================================================================
// СТРУКТУРЫ ДАННЫХ
//================================================================================

// Event - оповещение о достижении порога.
type Event struct {
	Level            int
	SoundEnabled     bool
	VibrationEnabled bool
	At               time.Time
}

// Notifier доставляет оповещение пользователю.
type Notifier interface {
	Notify(event Event) error
}

// State - наблюдаемое состояние монитора.
type State struct {
	BatteryLevel int
	IsCharging   bool
	// EstimatedMinutesToThreshold равен nil, если прогноз неизвестен.
	EstimatedMinutesToThreshold *int
}

// Phase - производное состояние автомата.
type Phase int

const (
	PhaseIdle  Phase = iota // Разрядка или нет данных
	PhaseArmed              // Зарядка, оповещение в этом цикле еще не показано
	PhaseFired              // Зарядка, оповещение уже показано
)

func (p Phase) String() string {
	switch p {
	case PhaseArmed:
		return "зарядка, ожидание порога"
	case PhaseFired:
		return "зарядка, оповещение показано"
	default:
		return "разрядка"
	}
}

// SettingsStore - хранилище настроек, которым пользуется автомат.
type SettingsStore interface {
	Load() settings.Settings
	Save(settings.Settings)
}

// Machine - автомат оповещения. Не потокобезопасен: все вызовы OnSample
// и UpdateSettings должны идти из одной горутины.
type Machine struct {
	store     SettingsStore
	settings  settings.Settings
	estimator *estimator.RateEstimator
	notifier  Notifier
	log       *logger.Logger
	state     State
	observers []func(State)
}

// NewMachine создает автомат и загружает настройки из хранилища.
func NewMachine(store SettingsStore, notifier Notifier, log *logger.Logger) *Machine {
	return &Machine{
		store:     store,
		settings:  store.Load(),
		estimator: estimator.New(),
		notifier:  notifier,
		log:       log,
	}
}

//================================================================================
// ОСНОВНАЯ ЛОГИКА
//================================================================================

// OnSample обрабатывает очередной замер батареи и возвращает true,
// если было отправлено оповещение.
func (m *Machine) OnSample(level int, charging bool, now time.Time) bool {
	wasCharging := m.state.IsCharging
	m.state.BatteryLevel = level
	m.state.IsCharging = charging

	if wasCharging != charging {
		m.log.Check(fmt.Sprintf("Смена режима заряда: зарядка=%v, уровень=%d%%.", charging, level))
	}

	if !charging {
		// Отключение зарядки снимает флаг. Он же сбрасывается, если
		// сохраненный флаг остался от предыдущего запуска.
		if m.settings.HasAlertedForCurrentCharge {
			m.settings.HasAlertedForCurrentCharge = false
			m.store.Save(m.settings)
			m.log.Debug("Флаг оповещения сброшен: зарядка отключена.")
		}
		m.estimator.OnChargingStopped()
	} else if !wasCharging {
		m.estimator.OnChargingStarted(level, now)
	} else {
		m.estimator.OnSample(level, now)
	}
	m.recomputeEstimate()

	fired := m.evaluate(now)
	m.publish()
	return fired
}

// evaluate проверяет условие оповещения и отправляет его.
func (m *Machine) evaluate(now time.Time) bool {
	if !m.settings.IsEnabled ||
		!m.state.IsCharging ||
		m.state.BatteryLevel < m.settings.AlertThreshold ||
		m.settings.HasAlertedForCurrentCharge {
		return false
	}

	// Флаг фиксируется до доставки: при ошибке доставки повторов не будет.
	m.settings.HasAlertedForCurrentCharge = true
	m.store.Save(m.settings)

	event := Event{
		Level:            m.state.BatteryLevel,
		SoundEnabled:     m.settings.SoundEnabled,
		VibrationEnabled: m.settings.VibrationEnabled,
		At:               now,
	}
	m.log.Check(fmt.Sprintf("Достигнут порог %d%%: уровень %d%%. Отправка оповещения.", m.settings.AlertThreshold, event.Level))
	if err := m.notifier.Notify(event); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось доставить оповещение: %v", err))
	}
	return true
}

// UpdateSettings применяет новые настройки и пересчитывает прогноз.
// Оповещение при этом не отправляется и флаг не сбрасывается.
func (m *Machine) UpdateSettings(newSettings settings.Settings) {
	newSettings.AlertThreshold = settings.ClampThreshold(newSettings.AlertThreshold)
	m.settings = newSettings
	m.store.Save(m.settings)
	m.recomputeEstimate()
	m.log.Info(fmt.Sprintf("Настройки обновлены: порог=%d%%, оповещения=%v, звук=%v, вибрация=%v.",
		m.settings.AlertThreshold, m.settings.IsEnabled, m.settings.SoundEnabled, m.settings.VibrationEnabled))
	m.publish()
}

// recomputeEstimate обновляет прогноз по текущему порогу.
func (m *Machine) recomputeEstimate() {
	minutes, ok := m.estimator.EstimateMinutesToThreshold(m.state.BatteryLevel, m.settings.AlertThreshold)
	if !ok {
		m.state.EstimatedMinutesToThreshold = nil
		return
	}
	m.state.EstimatedMinutesToThreshold = &minutes
}

//================================================================================
// ДОСТУП К СОСТОЯНИЮ
//================================================================================

// Subscribe регистрирует наблюдателя, вызываемого после каждого изменения состояния.
func (m *Machine) Subscribe(observer func(State)) {
	m.observers = append(m.observers, observer)
}

func (m *Machine) publish() {
	snapshot := m.State()
	for _, observer := range m.observers {
		observer(snapshot)
	}
}

// Settings возвращает текущие настройки.
func (m *Machine) Settings() settings.Settings {
	return m.settings
}

// State возвращает копию текущего состояния.
func (m *Machine) State() State {
	s := m.state
	if s.EstimatedMinutesToThreshold != nil {
		minutes := *s.EstimatedMinutesToThreshold
		s.EstimatedMinutesToThreshold = &minutes
	}
	return s
}

// Phase возвращает производное состояние автомата.
func (m *Machine) Phase() Phase {
	switch {
	case !m.state.IsCharging:
		return PhaseIdle
	case m.settings.HasAlertedForCurrentCharge:
		return PhaseFired
	default:
		return PhaseArmed
	}
}

// AverageRate возвращает сглаженную скорость зарядки в %/мин.
func (m *Machine) AverageRate() (float64, bool) {
	return m.estimator.AverageRate()
}
