package estimator

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func at(minutes float64) time.Time {
	return t0.Add(time.Duration(minutes * float64(time.Minute)))
}

// TestRateAndEstimate проверяет базовый расчет скорости и прогноза
func TestRateAndEstimate(t *testing.T) {
	e := New()
	e.OnChargingStarted(50, at(0))
	e.OnSample(60, at(10))

	rate, ok := e.AverageRate()
	if !ok || rate != 1.0 {
		t.Fatalf("AverageRate() = %v, %v; ожидалось 1.0", rate, ok)
	}

	minutes, ok := e.EstimateMinutesToThreshold(60, 80)
	if !ok || minutes != 20 {
		t.Errorf("EstimateMinutesToThreshold(60, 80) = %d, %v; ожидалось 20", minutes, ok)
	}
}

// TestEstimateRoundsUp проверяет округление прогноза вверх
func TestEstimateRoundsUp(t *testing.T) {
	e := New()
	e.OnChargingStarted(50, at(0))
	e.OnSample(53, at(2)) // 1.5 %/мин

	minutes, ok := e.EstimateMinutesToThreshold(53, 80)
	if !ok || minutes != 18 {
		t.Errorf("Прогноз = %d, %v; ожидалось 18 (27 / 1.5)", minutes, ok)
	}

	e.OnSample(54, at(4)) // 0.5 %/мин, среднее 1.0
	minutes, ok = e.EstimateMinutesToThreshold(54, 79)
	if !ok || minutes != 25 {
		t.Errorf("Прогноз = %d, %v; ожидалось 25", minutes, ok)
	}
}

// TestDipResetsRates проверяет сброс окна при падении уровня
func TestDipResetsRates(t *testing.T) {
	e := New()
	e.OnChargingStarted(60, at(0))
	e.OnSample(70, at(5))
	if len(e.Rates()) != 1 {
		t.Fatalf("Ожидалась одна скорость, получено %v", e.Rates())
	}

	e.OnSample(65, at(6))

	if len(e.Rates()) != 0 {
		t.Errorf("Окно скоростей должно быть очищено после провала, получено %v", e.Rates())
	}
	if _, ok := e.EstimateMinutesToThreshold(65, 80); ok {
		t.Error("Прогноз должен быть неизвестен после провала")
	}

	// Новый отсчет идет от уровня провала.
	e.OnSample(67, at(8))
	if rate, _ := e.AverageRate(); rate != 1.0 {
		t.Errorf("Скорость после провала = %v, ожидалось 1.0", rate)
	}
}

// TestEqualLevelIsNoop проверяет, что одинаковый уровень не меняет опорный замер
func TestEqualLevelIsNoop(t *testing.T) {
	e := New()
	e.OnChargingStarted(50, at(0))
	e.OnSample(50, at(5))
	e.OnSample(50, at(9))
	if len(e.Rates()) != 0 {
		t.Fatalf("Скорости не должны добавляться при равном уровне: %v", e.Rates())
	}

	// Опорный замер остался на t=0, поэтому скорость 10% за 10 минут.
	e.OnSample(60, at(10))
	if rate, _ := e.AverageRate(); rate != 1.0 {
		t.Errorf("Скорость = %v, ожидалось 1.0", rate)
	}
}

// TestZeroDeltaMinutes проверяет замер с тем же временем
func TestZeroDeltaMinutes(t *testing.T) {
	e := New()
	e.OnChargingStarted(50, at(0))
	e.OnSample(52, at(0))
	if len(e.Rates()) != 0 {
		t.Fatalf("При нулевом интервале скорость не считается: %v", e.Rates())
	}

	// Опорный замер все равно сдвинулся на 52%.
	e.OnSample(54, at(1))
	if rate, _ := e.AverageRate(); rate != 2.0 {
		t.Errorf("Скорость = %v, ожидалось 2.0", rate)
	}
}

// TestWindowEviction проверяет вытеснение старых скоростей
func TestWindowEviction(t *testing.T) {
	e := New()
	e.OnChargingStarted(10, at(0))

	// Первая скорость 10 %/мин, затем семь по 1 %/мин.
	e.OnSample(20, at(1))
	level := 20
	for i := 2; i <= 8; i++ {
		level++
		e.OnSample(level, at(float64(i)))
	}

	rates := e.Rates()
	if len(rates) != MaxRateSamples {
		t.Fatalf("Размер окна = %d, ожидалось %d", len(rates), MaxRateSamples)
	}
	for _, r := range rates {
		if r != 1.0 {
			t.Errorf("Старая скорость не вытеснена: %v", rates)
			break
		}
	}
}

// TestEstimateEdgeCases проверяет граничные случаи прогноза
func TestEstimateEdgeCases(t *testing.T) {
	e := New()
	if _, ok := e.EstimateMinutesToThreshold(50, 80); ok {
		t.Error("Без зарядки прогноз должен быть неизвестен")
	}

	e.OnChargingStarted(50, at(0))
	if _, ok := e.EstimateMinutesToThreshold(50, 80); ok {
		t.Error("Без скоростей прогноз должен быть неизвестен")
	}
	if m, ok := e.EstimateMinutesToThreshold(80, 80); !ok || m != 0 {
		t.Errorf("При достигнутом пороге ожидался 0, получено %d, %v", m, ok)
	}
	if m, ok := e.EstimateMinutesToThreshold(95, 80); !ok || m != 0 {
		t.Errorf("Выше порога ожидался 0, получено %d, %v", m, ok)
	}

	// 1% за 200 минут = 0.005 %/мин, это ниже порога пригодности.
	e.OnSample(51, at(200))
	if _, ok := e.EstimateMinutesToThreshold(51, 80); ok {
		t.Error("При почти нулевой скорости прогноз должен быть неизвестен")
	}

	e.OnChargingStopped()
	if _, ok := e.EstimateMinutesToThreshold(51, 80); ok {
		t.Error("После остановки зарядки прогноз должен быть неизвестен")
	}
	if e.Charging() || len(e.Rates()) != 0 {
		t.Error("Состояние не сброшено после остановки зарядки")
	}
}

// TestSampleIgnoredWhenNotCharging проверяет игнорирование замеров без зарядки
func TestSampleIgnoredWhenNotCharging(t *testing.T) {
	e := New()
	e.OnSample(40, at(0))
	e.OnSample(50, at(10))
	if len(e.Rates()) != 0 {
		t.Errorf("Без зарядки скорости не накапливаются: %v", e.Rates())
	}
}
