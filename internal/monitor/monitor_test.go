package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"batalert/internal/alert"
	"batalert/internal/battery"
	"batalert/internal/logger"
	"batalert/internal/settings"
	"batalert/internal/simulator"
)

// chanNotifier пересылает оповещения в канал
type chanNotifier struct {
	events chan alert.Event
}

func (n *chanNotifier) Notify(e alert.Event) error {
	n.events <- e
	return nil
}

// savingStore сообщает о каждом сохранении настроек
type savingStore struct {
	*settings.Store
	saved chan settings.Settings
}

func (s *savingStore) Save(cfg settings.Settings) {
	s.Store.Save(cfg)
	select {
	case s.saved <- cfg:
	default:
	}
}

// sequenceSource выдает заранее заданные замеры
type sequenceSource struct {
	samples []battery.Sample
	errs    []error
	pos     int
}

func (s *sequenceSource) Read() (battery.Sample, error) {
	i := s.pos
	s.pos++
	if i < len(s.errs) && s.errs[i] != nil {
		return battery.Sample{}, s.errs[i]
	}
	return s.samples[i], nil
}

type fixture struct {
	log          *logger.Logger
	store        *settings.Store
	settingsPath string
	notifier     *chanNotifier
}

func newFixture(t *testing.T, initial settings.Settings) *fixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.New(filepath.Join(dir, "monitor.log"), 10000, true, true)
	path := filepath.Join(dir, "settings.json")
	store := settings.NewStore(settings.NewFilePersistence(path), log)
	store.Save(initial)
	return &fixture{
		log:          log,
		store:        store,
		settingsPath: path,
		notifier:     &chanNotifier{events: make(chan alert.Event, 10)},
	}
}

// TestPoll проверяет опрос, пропуск ошибок и однократное оповещение
func TestPoll(t *testing.T) {
	f := newFixture(t, settings.Default())
	t0 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	src := &sequenceSource{
		samples: []battery.Sample{
			{Level: 70, Charging: true, At: t0},
			{},
			{},
			{Level: 75, Charging: true, At: t0.Add(5 * time.Minute)},
			{Level: 80, Charging: true, At: t0.Add(10 * time.Minute)},
			{Level: 81, Charging: true, At: t0.Add(11 * time.Minute)},
		},
		errs: []error{nil, battery.ErrUnknownLevel, errors.New("нет доступа")},
	}

	machine := alert.NewMachine(f.store, f.notifier, f.log)
	m := NewMonitor(Options{Machine: machine, Source: src, Store: f.store, Log: f.log})

	var fired []bool
	for range src.samples {
		fired = append(fired, m.Poll(t0))
	}

	want := []bool{false, false, false, false, true, false}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("Опрос %d: оповещение=%v, ожидалось %v", i, fired[i], want[i])
		}
	}
	if len(f.notifier.events) != 1 {
		t.Errorf("Ожидалось одно оповещение, получено %d", len(f.notifier.events))
	}

	state := machine.State()
	if state.BatteryLevel != 81 || state.EstimatedMinutesToThreshold == nil || *state.EstimatedMinutesToThreshold != 0 {
		t.Errorf("Неожиданное состояние: %+v", state)
	}
}

// TestPollUsesNowForZeroTime проверяет подстановку времени опроса
func TestPollUsesNowForZeroTime(t *testing.T) {
	f := newFixture(t, settings.Default())
	src := &sequenceSource{samples: []battery.Sample{
		{Level: 50, Charging: true},
		{Level: 60, Charging: true},
	}}
	machine := alert.NewMachine(f.store, f.notifier, f.log)
	m := NewMonitor(Options{Machine: machine, Source: src, Store: f.store, Log: f.log})

	t0 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	m.Poll(t0)
	m.Poll(t0.Add(20 * time.Minute))

	eta := machine.State().EstimatedMinutesToThreshold
	if eta == nil || *eta != 40 {
		t.Errorf("Прогноз = %v, ожидалось 40 минут", eta)
	}
}

// TestSimulatorThresholdSync проверяет передачу порога симулятору
func TestSimulatorThresholdSync(t *testing.T) {
	initial := settings.Default()
	initial.AlertThreshold = 60
	f := newFixture(t, initial)

	sim := simulator.NewBatterySimulator(f.log, 58, true, 80, 40)
	machine := alert.NewMachine(f.store, f.notifier, f.log)
	m := NewMonitor(Options{Machine: machine, Source: sim, Store: f.store, Log: f.log})

	now := time.Now()
	if m.Poll(now) {
		t.Fatal("Оповещение на 59% при пороге 60%")
	}
	if !m.Poll(now.Add(time.Minute)) {
		t.Fatal("Ожидалось оповещение на 60%")
	}
	for i := 0; i < 4; i++ {
		if m.Poll(now.Add(time.Duration(i+2) * time.Minute)) {
			t.Fatal("Повторное оповещение во время колебаний у порога")
		}
	}
}

// TestStart проверяет цикл с push-источником и перезагрузкой настроек
func TestStart(t *testing.T) {
	f := newFixture(t, settings.Default())
	store := &savingStore{Store: f.store, saved: make(chan settings.Settings, 10)}
	src := battery.NewManualSource()
	machine := alert.NewMachine(store, f.notifier, f.log)
	m := NewMonitor(Options{
		Machine:      machine,
		Source:       src,
		Store:        f.store,
		SettingsPath: f.settingsPath,
		Log:          f.log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	defer func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Монитор не остановился после отмены контекста")
		}
	}()

	// Даем наблюдателю время зарегистрироваться.
	time.Sleep(150 * time.Millisecond)

	// Другой процесс меняет порог.
	other := settings.NewStore(settings.NewFilePersistence(f.settingsPath), f.log)
	changed := settings.Default()
	changed.AlertThreshold = 90
	other.Save(changed)

	deadline := time.After(3 * time.Second)
	for applied := false; !applied; {
		select {
		case s := <-store.saved:
			applied = s.AlertThreshold == 90
		case <-deadline:
			t.Fatal("Новые настройки не применены")
		}
	}

	src.Set(85, true)
	select {
	case e := <-f.notifier.events:
		t.Fatalf("Оповещение ниже нового порога: %+v", e)
	case <-time.After(300 * time.Millisecond):
	}

	src.Set(90, true)
	select {
	case e := <-f.notifier.events:
		if e.Level != 90 {
			t.Errorf("Уровень оповещения = %d, ожидалось 90", e.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Оповещение не получено")
	}
}

// TestLevelBand проверяет цветовые зоны
func TestLevelBand(t *testing.T) {
	tests := []struct {
		level, threshold int
		want             Band
	}{
		{80, 80, BandGood},
		{95, 80, BandGood},
		{79, 80, BandMedium},
		{20, 80, BandMedium},
		{19, 80, BandLow},
		{10, 10, BandGood},
	}
	for _, tt := range tests {
		if got := LevelBand(tt.level, tt.threshold); got != tt.want {
			t.Errorf("LevelBand(%d, %d) = %v, ожидалось %v", tt.level, tt.threshold, got, tt.want)
		}
	}
}

// TestFormatETA проверяет форматирование прогноза
func TestFormatETA(t *testing.T) {
	value := func(v int) *int { return &v }
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "неизвестно"},
		{value(0), "порог достигнут"},
		{value(20), "~20 мин"},
		{value(125), "~2 ч 5 мин"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.in); got != tt.want {
			t.Errorf("FormatETA() = %q, ожидалось %q", got, tt.want)
		}
	}
	if HealthTip() == "" {
		t.Error("Рекомендация не должна быть пустой")
	}
}

// TestCheckFiles проверяет поиск ключей в файлах
func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	log := logger.New(filepath.Join(dir, "check.log"), 100, true, true)
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{\n\"alert_threshold\": 80,\n\"is_enabled\": true\n}"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := CheckFiles(map[string][]string{path: {"alert_threshold", "is_enabled"}}, log)
	if err != nil || !ok {
		t.Errorf("CheckFiles() = %v, %v; ожидалось true", ok, err)
	}

	ok, _ = CheckFiles(map[string][]string{path: {"sound_enabled"}}, log)
	if ok {
		t.Error("Отсутствующий ключ не обнаружен")
	}

	ok, err = CheckFiles(map[string][]string{filepath.Join(dir, "missing.json"): nil}, log)
	if err != nil || ok {
		t.Errorf("Отсутствующий файл: %v, %v", ok, err)
	}
}
