package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"batalert/internal/background"
	"batalert/internal/config"
	"batalert/internal/logger"
	"batalert/internal/paths"
	"batalert/internal/settings"
)

// App связывает CLI с конфигурацией, логом и хранилищем настроек.
// Зависимости создаются в Before, после разбора глобальных параметров.
type App struct {
	cli        *cli.App
	log        *logger.Logger
	cfg        *config.Config
	cfgManager *config.Manager
	store      *settings.Store
	bg         *background.Manager
	runDir     string
}

// NewApp создает приложение со всеми командами.
func NewApp() *App {
	a := &App{}

	cli.AppHelpTemplate = RussianHelpTemplate
	cli.CommandHelpTemplate = RussianCommandHelpTemplate
	cli.SubcommandHelpTemplate = RussianSubcommandHelpTemplate

	a.cli = &cli.App{
		Name:        cases.Title(language.Russian).String(paths.AppName),
		HelpName:    paths.AppName,
		Usage:       AppUsage,
		Description: AppDescription,
		Version:     version,
		Compiled:    time.Now(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "путь к файлу конфигурации",
				Value:   paths.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "включить отладочные сообщения в логе",
			},
			&cli.StringFlag{
				Name:   "run-dir",
				Usage:  "директория lock- и PID-файлов",
				Hidden: true,
			},
		},
		Before: a.setup,
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(c.App.Writer, "Неизвестная команда: %q\n", command)
			_ = cli.ShowAppHelp(c)
		},
		// Код выхода выставляет main.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       a.commands(),
	}
	return a
}

// Run запускает CLI с аргументами args.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cli.RunContext(ctx, args)
}

// Logger возвращает лог приложения (nil до разбора параметров).
func (a *App) Logger() *logger.Logger {
	return a.log
}

// setup загружает конфигурацию и создает зависимости команд.
func (a *App) setup(c *cli.Context) error {
	debug := c.Bool("debug")
	bootstrap := logger.New(paths.LogPath(), 0, true, debug)

	cfgManager, err := config.New(bootstrap, c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Ошибка инициализации конфигурации: %v", err), 1)
	}
	cfg, err := cfgManager.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Ошибка загрузки конфигурации: %v", err), 1)
	}

	a.cfg = cfg
	a.cfgManager = cfgManager
	a.log = logger.New(cfg.LogFilePath, cfg.LogRotationLines, cfg.LogEnabled, cfg.DebugEnabled || debug)
	a.store = settings.NewStore(settings.NewFilePersistence(cfg.SettingsPath), a.log)
	a.runDir = c.String("run-dir")
	a.bg = background.New(a.log, a.runDir)

	a.log.Debug(fmt.Sprintf("Запуск команды: %v", c.Args().Slice()))
	return nil
}
