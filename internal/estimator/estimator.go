// Package estimator оценивает скорость зарядки батареи по последовательным
// замерам уровня и переводит ее в прогноз минут до порога.
package estimator

import (
	"math"
	"time"
)

const (
	// MaxRateSamples - размер скользящего окна скоростей.
	MaxRateSamples = 6

	// minUsableRate - скорость (%/мин), ниже которой прогноз не строится.
	minUsableRate = 0.01
)

// sample - опорный замер уровня.
type sample struct {
	level int
	at    time.Time
}

// RateEstimator хранит опорный замер и окно последних скоростей зарядки.
// Окно содержит только положительные скорости в пределах одной сессии зарядки.
// Не потокобезопасен: вызывается из единственной горутины монитора.
type RateEstimator struct {
	charging bool
	last     *sample
	rates    []float64
}

// New создает оценщик в состоянии "не заряжается".
func New() *RateEstimator {
	return &RateEstimator{rates: make([]float64, 0, MaxRateSamples+1)}
}

// OnChargingStarted начинает новую сессию с опорного замера.
func (e *RateEstimator) OnChargingStarted(level int, now time.Time) {
	e.charging = true
	e.last = &sample{level: level, at: now}
	e.rates = e.rates[:0]
}

// OnChargingStopped сбрасывает сессию, прогноз становится неизвестным.
func (e *RateEstimator) OnChargingStopped() {
	e.charging = false
	e.last = nil
	e.rates = e.rates[:0]
}

// OnSample учитывает очередной замер во время зарядки.
//
// Рост уровня добавляет скорость в окно, падение уровня начинает
// новый отсчет с очищенным окном, равный уровень ничего не меняет.
func (e *RateEstimator) OnSample(level int, now time.Time) {
	if !e.charging {
		return
	}
	if e.last == nil {
		e.last = &sample{level: level, at: now}
		return
	}

	switch {
	case level > e.last.level:
		deltaMinutes := now.Sub(e.last.at).Minutes()
		if deltaMinutes > 0 {
			rate := float64(level-e.last.level) / deltaMinutes
			e.rates = append(e.rates, rate)
			if len(e.rates) > MaxRateSamples {
				e.rates = append(e.rates[:0], e.rates[1:]...)
			}
		}
		e.last = &sample{level: level, at: now}

	case level < e.last.level:
		// Провал уровня при "зарядке": не усредняем через регрессию.
		e.last = &sample{level: level, at: now}
		e.rates = e.rates[:0]
	}
}

// Charging сообщает, идет ли сессия зарядки.
func (e *RateEstimator) Charging() bool {
	return e.charging
}

// Rates возвращает копию окна скоростей, от старых к новым.
func (e *RateEstimator) Rates() []float64 {
	return append([]float64(nil), e.rates...)
}

// AverageRate возвращает среднюю скорость зарядки в %/мин.
func (e *RateEstimator) AverageRate() (float64, bool) {
	if len(e.rates) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, r := range e.rates {
		sum += r
	}
	return sum / float64(len(e.rates)), true
}

// EstimateMinutesToThreshold возвращает прогноз минут до порога.
// Второе значение false означает, что прогноз неизвестен.
func (e *RateEstimator) EstimateMinutesToThreshold(currentLevel, threshold int) (int, bool) {
	if !e.charging {
		return 0, false
	}
	if currentLevel >= threshold {
		return 0, true
	}

	average, ok := e.AverageRate()
	if !ok || average <= minUsableRate {
		return 0, false
	}

	remaining := float64(threshold-currentLevel) / average
	return int(math.Ceil(remaining)), true
}
