// Package notify доставляет оповещения о достижении порога заряда:
// системное уведомление, звук и запись в лог.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"batalert/internal/alert"
	"batalert/internal/logger"
)

const (
	// Title - заголовок уведомления.
	Title = "Battery Alert!"

	// DefaultTimeout - ограничение времени на один системный вызов уведомления.
	DefaultTimeout = 5 * time.Second

	darwinSound = "Glass"
	linuxSound  = "/usr/share/sounds/freedesktop/stereo/complete.oga"
)

// Message формирует текст оповещения.
func Message(event alert.Event) string {
	return fmt.Sprintf("Your battery has reached %d%%. Time to unplug!", event.Level)
}

// runner запускает внешнюю команду.
type runner func(ctx context.Context, name string, args ...string) error

// runCommand - реализация runner через exec.CommandContext.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

//================================================================================
// СИСТЕМНЫЕ УВЕДОМЛЕНИЯ
//================================================================================

// SystemNotifier показывает уведомление средствами ОС:
// osascript на macOS, notify-send и paplay на Linux.
type SystemNotifier struct {
	log     *logger.Logger
	timeout time.Duration
	goos    string
	run     runner
}

// NewSystemNotifier создает уведомитель для текущей ОС.
func NewSystemNotifier(log *logger.Logger, timeout time.Duration) *SystemNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SystemNotifier{log: log, timeout: timeout, goos: runtime.GOOS, run: runCommand}
}

// Notify отправляет одно уведомление. Повторных попыток нет.
func (n *SystemNotifier) Notify(event alert.Event) error {
	message := Message(event)
	n.log.Info(fmt.Sprintf("Отправка уведомления: %s", message))

	if event.VibrationEnabled {
		n.log.Debug("Вибрация недоступна на этом устройстве, канал пропущен.")
	}

	switch n.goos {
	case "darwin":
		return n.notifyDarwin(event, message)
	case "linux":
		return n.notifyLinux(event, message)
	default:
		return fmt.Errorf("системные уведомления не поддерживаются на %s", n.goos)
	}
}

func (n *SystemNotifier) notifyDarwin(event alert.Event, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(Title))
	if event.SoundEnabled {
		script += fmt.Sprintf(` sound name "%s"`, darwinSound)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	n.log.Debug("Выполнение команды osascript для отображения уведомления")
	if err := n.run(ctx, "osascript", "-e", script); err != nil {
		return fmt.Errorf("не удалось отправить уведомление: %w", err)
	}
	n.log.Debug("Уведомление успешно отправлено")
	return nil
}

func (n *SystemNotifier) notifyLinux(event alert.Event, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	if err := n.run(ctx, "notify-send", "--urgency=critical", "--app-name=batalert", Title, message); err != nil {
		return fmt.Errorf("не удалось отправить уведомление: %w", err)
	}

	if event.SoundEnabled {
		// Звук - дополнительный канал: его ошибка не считается ошибкой доставки.
		if err := n.run(ctx, "paplay", linuxSound); err != nil {
			n.log.Debug(fmt.Sprintf("paplay недоступен: %v", err))
			if err := n.run(ctx, "canberra-gtk-play", "-i", "complete"); err != nil {
				n.log.Error(fmt.Sprintf("Не удалось воспроизвести звук: %v", err))
			}
		}
	}
	n.log.Debug("Уведомление успешно отправлено")
	return nil
}

// escapeAppleScript экранирует строку для вставки в AppleScript.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

//================================================================================
// ЛОГ
//================================================================================

// LogNotifier записывает оповещение только в лог.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier создает уведомитель, пишущий в лог.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify записывает оповещение в лог.
func (n *LogNotifier) Notify(event alert.Event) error {
	n.log.Check(fmt.Sprintf("ОПОВЕЩЕНИЕ: %s (звук=%v, вибрация=%v)", Message(event), event.SoundEnabled, event.VibrationEnabled))
	return nil
}

//================================================================================
// РЕЗЕРВНЫЙ КАНАЛ
//================================================================================

// Fallback отправляет оповещение через primary, а при его ошибке через secondary.
type Fallback struct {
	primary   alert.Notifier
	secondary alert.Notifier
}

// NewFallback создает уведомитель с резервным каналом.
func NewFallback(primary, secondary alert.Notifier) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Notify возвращает ошибку основного канала, даже если резервный сработал.
func (f *Fallback) Notify(event alert.Event) error {
	err := f.primary.Notify(event)
	if err != nil {
		if fallbackErr := f.secondary.Notify(event); fallbackErr != nil {
			return fmt.Errorf("%w; резервный канал: %v", err, fallbackErr)
		}
	}
	return err
}
