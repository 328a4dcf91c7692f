package battery

import (
	"fmt"
	"time"

	sysbattery "github.com/distatus/battery"
)

// SystemSource читает батарею средствами ОС: IOKit на macOS,
// sysfs на Linux, WMI на Windows.
type SystemSource struct {
	getAll func() ([]*sysbattery.Battery, error)
	now    func() time.Time
}

// NewSystemSource создает источник реальных данных.
func NewSystemSource() *SystemSource {
	return &SystemSource{getAll: sysbattery.GetAll, now: time.Now}
}

// Read возвращает суммарный заряд всех батарей устройства.
// Состояние "заряжено полностью" считается зарядкой: адаптер подключен.
func (s *SystemSource) Read() (Sample, error) {
	batteries, err := s.getAll()
	if len(batteries) == 0 {
		if err != nil {
			return Sample{}, fmt.Errorf("не удалось получить данные о батарее: %w", err)
		}
		return Sample{}, fmt.Errorf("батарея не найдена: %w", ErrUnknownLevel)
	}

	var current, full float64
	charging := false
	for _, bat := range batteries {
		if bat == nil || bat.Full <= 0 {
			continue
		}
		current += bat.Current
		full += bat.Full
		if bat.State.Raw == sysbattery.Charging || bat.State.Raw == sysbattery.Full {
			charging = true
		}
	}

	if full <= 0 {
		return Sample{}, ErrUnknownLevel
	}

	level, ok := NormalizePercent(current / full)
	if !ok {
		return Sample{}, ErrUnknownLevel
	}

	return Sample{Level: level, Charging: charging, At: s.now()}, nil
}
