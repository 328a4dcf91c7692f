package battery

import (
	"sync"
	"time"
)

// ManualSource - источник, значения которого задаются вызовом Set.
// Каждое изменение сигнализируется через Changes.
type ManualSource struct {
	mu      sync.Mutex
	sample  Sample
	known   bool
	changes chan struct{}
	now     func() time.Time
}

// NewManualSource создает источник без данных.
func NewManualSource() *ManualSource {
	return &ManualSource{changes: make(chan struct{}, 1), now: time.Now}
}

// Set задает уровень и состояние зарядки. Уровень вне 0-100 считается неизвестным.
func (m *ManualSource) Set(level int, charging bool) {
	m.mu.Lock()
	m.known = level >= 0 && level <= 100
	m.sample = Sample{Level: level, Charging: charging}
	m.mu.Unlock()

	// Сигнал не блокирует: один непрочитанный сигнал покрывает все изменения.
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Read возвращает последнее заданное значение.
func (m *ManualSource) Read() (Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known {
		return Sample{}, ErrUnknownLevel
	}
	s := m.sample
	s.At = m.now()
	return s, nil
}

// Changes возвращает канал сигналов об изменениях.
func (m *ManualSource) Changes() <-chan struct{} {
	return m.changes
}
