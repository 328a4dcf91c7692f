/**
 * @file battery_info.go
 * @brief Граница между монитором и источниками данных о батарее.
 * @details Источник отдает только корректные замеры: неизвестный уровень
 * превращается в ErrUnknownLevel, и монитор пропускает такой опрос.
 */

package battery

import (
	"errors"
	"math"
	"time"
)

// ErrUnknownLevel возвращается, когда уровень заряда определить нельзя.
var ErrUnknownLevel = errors.New("уровень заряда батареи неизвестен")

/**
 * @struct Sample
 * @brief Один замер состояния батареи.
 */
type Sample struct {
	Level    int       // Текущий заряд в процентах, 0-100
	Charging bool      // Флаг зарядки
	At       time.Time // Время замера
}

// Source - источник замеров батареи.
type Source interface {
	Read() (Sample, error)
}

// Watcher реализуется источниками, которые сами сообщают об изменениях.
// Монитор читает такой источник сразу после сигнала, не дожидаясь таймера.
type Watcher interface {
	Changes() <-chan struct{}
}

// NormalizePercent переводит долю заряда (0.0-1.0) в целые проценты.
// Отрицательное значение означает "неизвестно".
func NormalizePercent(fraction float64) (int, bool) {
	if fraction < 0 || math.IsNaN(fraction) {
		return 0, false
	}
	raw := math.Max(0, math.Min(1, fraction))
	return int(math.Round(raw * 100)), true
}
