package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"batalert/internal/alert"
	"batalert/internal/background"
	"batalert/internal/battery"
	"batalert/internal/monitor"
	"batalert/internal/notify"
	"batalert/internal/paths"
	"batalert/internal/settings"
	"batalert/internal/simulator"
	"batalert/internal/utils"
)

// commands описывает все команды приложения.
func (a *App) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r", "start"},
			Usage:   "запустить мониторинг в текущем терминале",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "simulate", Aliases: []string{"s"}, Usage: "использовать симулятор батареи"},
				&cli.BoolFlag{Name: "detach", Aliases: []string{"d"}, Usage: "запустить в фоновом режиме"},
			},
			Action: a.runCommand,
		},
		{
			Name:   "stop",
			Usage:  "остановить запущенный мониторинг",
			Action: a.stopCommand,
		},
		{
			Name:    "status",
			Aliases: []string{"st"},
			Usage:   "показать состояние батареи и мониторинга",
			Action:  a.statusCommand,
		},
		{
			Name:    "settings",
			Aliases: []string{"opt"},
			Usage:   "просмотр и изменение настроек оповещения",
			Subcommands: []*cli.Command{
				{
					Name:   "show",
					Usage:  "показать настройки",
					Action: a.settingsShowCommand,
				},
				{
					Name:  "set",
					Usage: "изменить настройки",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "threshold", Aliases: []string{"t"}, Usage: fmt.Sprintf("порог оповещения, %d-%d%%", settings.MinThreshold, settings.MaxThreshold)},
						&cli.BoolFlag{Name: "enabled", Usage: "оповещения включены"},
						&cli.BoolFlag{Name: "sound", Usage: "звук при оповещении"},
						&cli.BoolFlag{Name: "vibration", Usage: "вибрация при оповещении"},
					},
					Action: a.settingsSetCommand,
				},
			},
		},
		{
			Name:   "tip",
			Usage:  "совет по уходу за батареей",
			Action: a.tipCommand,
		},
		{
			Name:      "logs",
			Aliases:   []string{"l", "log"},
			Usage:     "показать последние строки лога",
			ArgsUsage: "[уровень: info|debug|error|check|test]",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Usage: "число строк", Value: DefaultLogLines},
			},
			Action: a.logsCommand,
		},
		{
			Name:  "version",
			Usage: "показать версию",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s %s\n", paths.AppName, version)
				return nil
			},
		},
	}
}

//================================================================================
// МОНИТОРИНГ
//================================================================================

// runCommand запускает монитор в текущем процессе или отдельным процессом.
func (a *App) runCommand(c *cli.Context) error {
	simulate := c.Bool("simulate") || a.cfg.UseSimulator

	if c.Bool("detach") {
		args := []string{"--config", a.cfgManager.ConfigPath()}
		if a.runDir != "" {
			args = append(args, "--run-dir", a.runDir)
		}
		args = append(args, "run")
		if simulate {
			args = append(args, "--simulate")
		}
		pid, err := a.bg.LaunchDetached(args...)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Fprintf(c.App.Writer, "Мониторинг запущен в фоне с PID: %d\n", pid)
		return nil
	}

	if err := utils.CheckWriteAccess(filepath.Dir(a.cfg.LogFilePath), a.log); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Предупреждение: %v\n", err)
	}

	err := a.bg.Run(c.Context, MonitorProcessName, func(ctx context.Context) error {
		return a.newMonitor(simulate).Start(ctx)
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Не удалось запустить мониторинг: %v", err), 1)
	}
	return nil
}

// newMonitor собирает монитор из источника, уведомителя и автомата оповещения.
func (a *App) newMonitor(simulate bool) *monitor.Monitor {
	cfg := *a.cfg
	var (
		source   battery.Source
		notifier alert.Notifier
	)

	logNotifier := notify.NewLogNotifier(a.log)
	if simulate {
		a.log.Test("Режим работы: СИМУЛЯТОР.")
		cfg.PollInterval = int(SimulatorInterval / time.Second)
		source = simulator.NewBatterySimulator(a.log, SimulatorStartLevel, true, settings.DefaultThreshold, SimulatorFloor)
		notifier = logNotifier
	} else {
		a.log.Info("Режим работы: РЕАЛЬНЫЕ ДАННЫЕ.")
		source = battery.NewSystemSource()
		notifier = notify.NewFallback(notify.NewSystemNotifier(a.log, cfg.NotificationDuration()), logNotifier)
	}

	machine := alert.NewMachine(a.store, notifier, a.log)
	return monitor.NewMonitor(monitor.Options{
		Config:        &cfg,
		ConfigManager: a.cfgManager,
		Machine:       machine,
		Source:        source,
		Store:         a.store,
		SettingsPath:  cfg.SettingsPath,
		Log:           a.log,
	})
}

// stopCommand останавливает запущенный монитор.
func (a *App) stopCommand(c *cli.Context) error {
	err := a.bg.Kill(MonitorProcessName)
	switch {
	case errors.Is(err, background.ErrNotRunning):
		fmt.Fprintln(c.App.Writer, "Мониторинг не запущен.")
		return nil
	case err != nil:
		return cli.Exit(fmt.Sprintf("Не удалось остановить мониторинг: %v", err), 1)
	}
	fmt.Fprintln(c.App.Writer, "Сигнал остановки отправлен.")
	return nil
}

//================================================================================
// СОСТОЯНИЕ И НАСТРОЙКИ
//================================================================================

// statusCommand выводит разовый замер батареи, настройки и состояние монитора.
func (a *App) statusCommand(c *cli.Context) error {
	cfg := a.store.Load()
	box := utils.NewWindowBuffer(WindowWidth)
	box.AddLine("Состояние "+paths.AppName, "", utils.ColorBold)
	box.AddDivider()

	sample, err := battery.NewSystemSource().Read()
	if err != nil {
		a.log.Debug(fmt.Sprintf("Батарея недоступна: %v", err))
		box.AddLine("Уровень заряда", "неизвестен", utils.ColorYellow)
	} else {
		box.AddLine("Уровень заряда", fmt.Sprintf("%d%%", sample.Level), bandColor(monitor.LevelBand(sample.Level, cfg.AlertThreshold)))
		box.AddLine("Зарядка", utils.BoolToYesNo(sample.Charging), "")
	}
	box.AddLine("Порог оповещения", fmt.Sprintf("%d%%", cfg.AlertThreshold), "")
	box.AddLine("Оповещение в этом цикле", utils.BoolToYesNo(cfg.HasAlertedForCurrentCharge), "")
	box.AddDivider()

	if a.bg.IsRunning(MonitorProcessName) {
		state := "запущен"
		if pid, err := a.bg.PID(MonitorProcessName); err == nil {
			state = fmt.Sprintf("запущен (PID %d)", pid)
		}
		box.AddLine("Мониторинг", state, utils.ColorGreen)
	} else {
		box.AddLine("Мониторинг", "остановлен", utils.ColorRed)
	}
	if pids, err := background.FindOtherInstances(filepath.Base(os.Args[0])); err == nil && len(pids) > 0 {
		box.AddLine("Другие процессы", fmt.Sprint(pids), "")
	}

	filesOK, err := monitor.CheckFiles(map[string][]string{
		a.cfgManager.ConfigPath(): {"poll_interval", "settings_path"},
		a.cfg.SettingsPath:        {"alert_threshold", "is_enabled"},
	}, a.log)
	if err != nil {
		a.log.Error(fmt.Sprintf("Ошибка проверки файлов: %v", err))
	}
	box.AddLine("Файлы настроек", okText(filesOK), "")

	box.Render(c.App.Writer)
	return nil
}

// settingsShowCommand выводит текущие настройки.
func (a *App) settingsShowCommand(c *cli.Context) error {
	a.printSettings(c, a.store.Load())
	return nil
}

// settingsSetCommand меняет только явно заданные параметры.
// Запущенный монитор подхватит изменения через наблюдателя за файлом.
func (a *App) settingsSetCommand(c *cli.Context) error {
	cfg := a.store.Load()
	changed := false

	if c.IsSet("threshold") {
		cfg.AlertThreshold = settings.ClampThreshold(c.Int("threshold"))
		changed = true
	}
	if c.IsSet("enabled") {
		cfg.IsEnabled = c.Bool("enabled")
		changed = true
	}
	if c.IsSet("sound") {
		cfg.SoundEnabled = c.Bool("sound")
		changed = true
	}
	if c.IsSet("vibration") {
		cfg.VibrationEnabled = c.Bool("vibration")
		changed = true
	}

	if !changed {
		return cli.Exit("Не задано ни одного параметра. Используйте --threshold, --enabled, --sound или --vibration.", 1)
	}

	a.store.Save(cfg)
	a.log.Info(fmt.Sprintf("Настройки изменены из командной строки: порог=%d%%", cfg.AlertThreshold))
	a.printSettings(c, cfg)
	return nil
}

func (a *App) printSettings(c *cli.Context, cfg settings.Settings) {
	box := utils.NewWindowBuffer(WindowWidth)
	box.AddLine("Настройки оповещения", "", utils.ColorBold)
	box.AddDivider()
	box.AddLine("Порог", fmt.Sprintf("%d%%", cfg.AlertThreshold), utils.ColorCyan)
	box.AddLine("Оповещения", utils.BoolToYesNo(cfg.IsEnabled), "")
	box.AddLine("Звук", utils.BoolToYesNo(cfg.SoundEnabled), "")
	box.AddLine("Вибрация", utils.BoolToYesNo(cfg.VibrationEnabled), "")
	box.AddLine("Файл", a.cfg.SettingsPath, "")
	box.Render(c.App.Writer)
}

// tipCommand выводит совет по уходу за батареей.
func (a *App) tipCommand(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, monitor.HealthTip())
	return nil
}

// logsCommand выводит последние строки лога, при необходимости только заданного уровня.
func (a *App) logsCommand(c *cli.Context) error {
	level := strings.ToUpper(c.Args().First())
	lines, err := tailLog(a.log.FilePath(), level, c.Int("lines"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Не удалось прочитать лог: %v", err), 1)
	}
	if len(lines) == 0 {
		fmt.Fprintln(c.App.Writer, "Лог пуст.")
		return nil
	}
	for _, line := range lines {
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

//================================================================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
//================================================================================

// tailLog возвращает не более n последних строк лога уровня level (пустой - все уровни).
func tailLog(path, level string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if n <= 0 {
		n = DefaultLogLines
	}
	marker := ""
	if level != "" {
		marker = "] " + level + ": "
	}

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if marker != "" && !strings.Contains(line, marker) {
			continue
		}
		lines = append(lines, line)
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

func bandColor(band monitor.Band) string {
	switch band {
	case monitor.BandGood:
		return utils.ColorGreen
	case monitor.BandMedium:
		return utils.ColorYellow
	default:
		return utils.ColorRed
	}
}

func okText(ok bool) string {
	if ok {
		return "в порядке"
	}
	return "требуют внимания"
}
