package settings

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"batalert/internal/logger"
)

// memoryPersistence - хранилище в памяти для тестов
type memoryPersistence struct {
	data    []byte
	saveErr error
	saves   int
}

func (m *memoryPersistence) Load() ([]byte, bool) {
	if m.data == nil {
		return nil, false
	}
	return m.data, true
}

func (m *memoryPersistence) Save(data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(filepath.Join(t.TempDir(), "test.log"), 100, true, true)
}

// TestClampThreshold проверяет диапазон и идемпотентность
func TestClampThreshold(t *testing.T) {
	values := []int{math.MinInt, -1000, -1, 0, 1, 2, 50, 80, 99, 100, 101, 1000, math.MaxInt}
	for v := -300; v <= 300; v++ {
		values = append(values, v)
	}

	for _, v := range values {
		c := ClampThreshold(v)
		if c < MinThreshold || c > MaxThreshold {
			t.Fatalf("ClampThreshold(%d) = %d, вне диапазона", v, c)
		}
		if ClampThreshold(c) != c {
			t.Fatalf("ClampThreshold не идемпотентна для %d", v)
		}
		if v >= MinThreshold && v <= MaxThreshold && c != v {
			t.Fatalf("ClampThreshold(%d) = %d, значение в диапазоне не должно меняться", v, c)
		}
	}
}

// TestLoadDefaults проверяет значения по умолчанию при отсутствии записи
func TestLoadDefaults(t *testing.T) {
	store := NewStore(&memoryPersistence{}, testLogger(t))
	got := store.Load()
	want := Settings{AlertThreshold: 80, IsEnabled: true, SoundEnabled: true, VibrationEnabled: true}
	if got != want {
		t.Errorf("Load() = %+v, ожидалось %+v", got, want)
	}
}

// TestRoundTrip проверяет, что сохраненные настройки загружаются без изменений
func TestRoundTrip(t *testing.T) {
	tests := []Settings{
		{AlertThreshold: 1},
		{AlertThreshold: 100, IsEnabled: true, HasAlertedForCurrentCharge: true},
		{AlertThreshold: 42, SoundEnabled: true, VibrationEnabled: false},
		{AlertThreshold: 80, IsEnabled: true, SoundEnabled: true, VibrationEnabled: true, HasAlertedForCurrentCharge: true},
	}

	for _, want := range tests {
		path := filepath.Join(t.TempDir(), "settings.json")
		store := NewStore(NewFilePersistence(path), testLogger(t))
		store.Save(want)

		if got := store.Load(); got != want {
			t.Errorf("Load(Save(%+v)) = %+v", want, got)
		}
	}
}

// TestLoadCorrupted проверяет возврат к значениям по умолчанию при повреждении
func TestLoadCorrupted(t *testing.T) {
	for _, raw := range []string{"{не json", "[1,2,3]", `{"alert_threshold":"восемьдесят"}`, "80"} {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatal(err)
		}
		store := NewStore(NewFilePersistence(path), testLogger(t))
		if got := store.Load(); got != Default() {
			t.Errorf("Для записи %q ожидались значения по умолчанию, получено %+v", raw, got)
		}
	}
}

// TestLoadClampsThreshold проверяет исправление порога вне диапазона
func TestLoadClampsThreshold(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"alert_threshold": 150}`, 100},
		{`{"alert_threshold": 0}`, 1},
		{`{"alert_threshold": -20}`, 1},
		{`{"alert_threshold": 65}`, 65},
	}

	for _, tt := range tests {
		store := NewStore(&memoryPersistence{data: []byte(tt.raw)}, testLogger(t))
		if got := store.Load().AlertThreshold; got != tt.want {
			t.Errorf("Для %s порог = %d, ожидалось %d", tt.raw, got, tt.want)
		}
	}
}

// TestLoadPartial проверяет, что отсутствующие поля берутся по умолчанию
func TestLoadPartial(t *testing.T) {
	store := NewStore(&memoryPersistence{data: []byte(`{"alert_threshold": 90, "sound_enabled": false}`)}, testLogger(t))
	got := store.Load()
	want := Settings{AlertThreshold: 90, IsEnabled: true, SoundEnabled: false, VibrationEnabled: true}
	if got != want {
		t.Errorf("Load() = %+v, ожидалось %+v", got, want)
	}
}

// TestSaveFailureSwallowed проверяет, что ошибка записи не прерывает работу
func TestSaveFailureSwallowed(t *testing.T) {
	backend := &memoryPersistence{saveErr: errors.New("диск только для чтения")}
	store := NewStore(backend, testLogger(t))

	store.Save(Default())

	if backend.saves != 1 {
		t.Errorf("Ожидалась одна попытка записи, получено %d", backend.saves)
	}
	if got := store.Load(); got != Default() {
		t.Errorf("После неудачной записи ожидались значения по умолчанию, получено %+v", got)
	}
}

// TestFilePersistenceMissing проверяет отсутствие файла
func TestFilePersistenceMissing(t *testing.T) {
	p := NewFilePersistence(filepath.Join(t.TempDir(), "нет", "settings.json"))
	if _, ok := p.Load(); ok {
		t.Error("Load() должен вернуть false для отсутствующего файла")
	}
	if err := p.Save([]byte("{}")); err != nil {
		t.Errorf("Save() должен создать директорию: %v", err)
	}
	if _, err := os.Stat(p.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Временный файл не удален после сохранения")
	}
}
