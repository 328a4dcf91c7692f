package simulator

import (
	"fmt"
	"sync"
	"time"

	"batalert/internal/battery"
	"batalert/internal/logger"
)

//================================================================================
// СИМУЛЯТОР БАТАРЕИ
//================================================================================

type simulatorState int

const (
	StateRampingUp   simulatorState = iota // Зарядка до порога по 1%
	StatePulsing                           // Колебания вокруг порога при подключенной зарядке
	StateRampingDown                       // Разрядка до нижней границы по 1%
)

const (
	// pulseTicks - сколько опросов уровень колеблется вокруг порога.
	pulseTicks = 4
)

/**
 * @struct BatterySimulator
 * @brief Имитирует циклы зарядки для проверки однократности оповещений.
 * @details Уровень растет до порога, несколько опросов колеблется вокруг него
 * (оповещение не должно повторяться), затем зарядка отключается и уровень
 * падает до floor, после чего зарядка снова подключается.
 */
type BatterySimulator struct {
	mu        sync.Mutex
	log       *logger.Logger
	sample    battery.Sample
	threshold int
	floor     int
	state     simulatorState
	pulses    int
	now       func() time.Time
}

// NewBatterySimulator создает симулятор.
//
// @param startLevel Начальный уровень заряда.
// @param startCharging Начальное состояние зарядки.
// @param threshold Порог оповещения, вокруг которого строится сценарий.
// @param floor Уровень, при котором симулятор снова подключает зарядку.
func NewBatterySimulator(log *logger.Logger, startLevel int, startCharging bool, threshold, floor int) *BatterySimulator {
	s := &BatterySimulator{
		log:       log,
		sample:    battery.Sample{Level: startLevel, Charging: startCharging},
		threshold: threshold,
		floor:     floor,
		now:       time.Now,
	}
	if startCharging {
		s.state = StateRampingUp
	} else {
		s.state = StateRampingDown
	}
	return s
}

// SetThreshold меняет порог, вокруг которого строится сценарий.
func (s *BatterySimulator) SetThreshold(threshold int) {
	s.mu.Lock()
	s.threshold = threshold
	s.mu.Unlock()
}

// Read выдает следующее состояние батареи.
func (s *BatterySimulator) Read() (battery.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRampingUp:
		s.sample.Level++
		s.log.Test(fmt.Sprintf("Фаза зарядки... %d%%", s.sample.Level))
		if s.sample.Level >= s.threshold {
			s.log.Test("Достигнут порог оповещения.")
			s.state = StatePulsing
			s.pulses = 0
		}

	case StatePulsing:
		s.pulses++
		if s.pulses > pulseTicks {
			s.log.Test("Отключаю зарядку.")
			s.sample.Charging = false
			s.state = StateRampingDown
			break
		}
		// Колебания вокруг порога.
		if s.sample.Level >= s.threshold {
			s.sample.Level = s.threshold - 1
		} else {
			s.sample.Level = s.threshold + 1
		}
		s.log.Test(fmt.Sprintf("Колебание заряда -> %d%%", s.sample.Level))

	case StateRampingDown:
		s.sample.Level--
		s.log.Test(fmt.Sprintf("Фаза разрядки... %d%%", s.sample.Level))
		if s.sample.Level <= s.floor {
			s.log.Test("Достигнута нижняя граница. Подключаю зарядку.")
			s.sample.Charging = true
			s.state = StateRampingUp
		}
	}

	// Удерживаем заряд в пределах 0-100
	s.sample.Level = max(0, min(100, s.sample.Level))

	out := s.sample
	out.At = s.now()
	return out, nil
}
