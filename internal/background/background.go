// Package background управляет жизненным циклом фонового процесса:
// lock-файл против повторного запуска, PID-файл, сигналы завершения
// и остановка запущенного экземпляра.
package background

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"batalert/internal/logger"
	"batalert/internal/paths"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrNotRunning возвращается, когда процесс не запущен.
var ErrNotRunning = errors.New("процесс не запущен")

//================================================================================
// СТРУКТУРЫ ДАННЫХ
//================================================================================

// Manager управляет фоновыми процессами приложения.
type Manager struct {
	log *logger.Logger
	dir string // директория lock- и PID-файлов
}

// New создает новый экземпляр Manager.
// Пустой dir означает временную директорию системы.
func New(log *logger.Logger, dir string) *Manager {
	if dir == "" {
		dir = paths.RunDir()
	}
	return &Manager{log: log, dir: dir}
}

//================================================================================
// ОСНОВНЫЕ МЕТОДЫ
//================================================================================

// Run выполняет задачу, удерживая блокировку для процесса processName.
// SIGINT и SIGTERM отменяют контекст задачи. Метод возвращается после
// завершения задачи.
func (m *Manager) Run(ctx context.Context, processName string, task func(ctx context.Context) error) error {
	lockFile, err := m.lock(processName)
	if err != nil {
		return fmt.Errorf("процесс '%s' уже запущен или произошла ошибка блокировки: %w", processName, err)
	}
	defer m.unlock(lockFile)

	if err := m.writePID(processName); err != nil {
		m.log.Info(fmt.Sprintf("Не удалось записать PID-файл для '%s': %v", processName, err))
	}
	defer m.removePID(processName)

	m.log.Info(fmt.Sprintf("Процесс '%s' успешно запущен и заблокирован.", processName))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = task(ctx)
	m.log.Info(fmt.Sprintf("Задача процесса '%s' завершена. Снятие блокировки.", processName))
	return err
}

// LaunchDetached запускает исполняемый файл приложения с аргументами
// в отдельной группе процессов и не ждет его завершения.
func (m *Manager) LaunchDetached(args ...string) (int, error) {
	binPath, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("не удалось получить путь к исполняемому файлу: %w", err)
	}

	cmd := exec.Command(binPath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("не удалось запустить фоновый процесс: %w", err)
	}
	pid := cmd.Process.Pid
	m.log.Info(fmt.Sprintf("Процесс '%s' запущен в фоновом режиме с PID %d.", strings.Join(args, " "), pid))
	_ = cmd.Process.Release()
	return pid, nil
}

// IsRunning проверяет, удерживает ли какой-либо процесс lock-файл processName.
func (m *Manager) IsRunning(processName string) bool {
	file, err := os.Open(paths.LockPath(m.dir, processName))
	if err != nil {
		return false
	}
	defer file.Close()

	// Удалось заблокировать - значит, владельца нет.
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		return false
	}
	return true
}

// PID возвращает PID из PID-файла processName.
func (m *Manager) PID(processName string) (int32, error) {
	pidPath := paths.PIDPath(m.dir, processName)
	pidBytes, err := os.ReadFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("не удалось прочитать PID-файл для '%s': %w", processName, err)
	}

	pid, err := strconv.ParseInt(strings.TrimSpace(string(pidBytes)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("некорректный PID в файле '%s': %w", pidPath, err)
	}
	return int32(pid), nil
}

// Kill отправляет SIGTERM процессу из PID-файла. Если процесса уже нет,
// оставшиеся файлы удаляются и возвращается ErrNotRunning.
func (m *Manager) Kill(processName string) error {
	pid, err := m.PID(processName)
	if err != nil {
		return err
	}

	exists, err := process.PidExists(pid)
	if err != nil {
		return fmt.Errorf("не удалось проверить процесс с PID %d: %w", pid, err)
	}
	if !exists {
		m.log.Info(fmt.Sprintf("Процесс '%s' (PID: %d) уже был завершен.", processName, pid))
		m.removePID(processName)
		_ = os.Remove(paths.LockPath(m.dir, processName))
		return ErrNotRunning
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("не удалось найти процесс с PID %d: %w", pid, err)
	}
	if err := proc.Terminate(); err != nil {
		return fmt.Errorf("не удалось отправить сигнал завершения процессу с PID %d: %w", pid, err)
	}

	m.log.Info(fmt.Sprintf("Сигнал завершения отправлен процессу '%s' (PID: %d).", processName, pid))
	return nil
}

// FindOtherInstances ищет процессы с именем name, исключая текущий.
func FindOtherInstances(name string) ([]int32, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список процессов: %w", err)
	}

	current := int32(os.Getpid())
	var found []int32
	for _, p := range processes {
		if p.Pid == current {
			continue
		}
		// Системные процессы могут не отдавать имя.
		pName, err := p.Name()
		if err != nil {
			continue
		}
		if pName == name {
			found = append(found, p.Pid)
		}
	}
	return found, nil
}

//================================================================================
// ВНУТРЕННИЕ МЕТОДЫ
//================================================================================

func (m *Manager) writePID(processName string) error {
	pidPath := paths.PIDPath(m.dir, processName)
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось записать PID-файл в '%s': %v", pidPath, err))
		return err
	}
	m.log.Debug(fmt.Sprintf("PID %d записан в %s", pid, pidPath))
	return nil
}

func (m *Manager) removePID(processName string) {
	pidPath := paths.PIDPath(m.dir, processName)
	if err := os.Remove(pidPath); err != nil && !os.IsNotExist(err) {
		m.log.Info(fmt.Sprintf("Не удалось удалить PID-файл '%s': %v", pidPath, err))
		return
	}
	m.log.Debug(fmt.Sprintf("PID-файл '%s' удален.", pidPath))
}

// lock создает lock-файл и блокирует его без ожидания.
// Файл открывается без усечения: его может держать другой процесс.
func (m *Manager) lock(processName string) (*os.File, error) {
	lockPath := paths.LockPath(m.dir, processName)
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать lock-файл '%s': %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("не удалось заблокировать lock-файл '%s', возможно, процесс уже запущен: %w", lockPath, err)
	}
	return file, nil
}

// unlock снимает блокировку и удаляет lock-файл.
func (m *Manager) unlock(file *os.File) {
	lockPath := file.Name()
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		m.log.Error(fmt.Sprintf("Не удалось удалить lock-файл '%s': %v", lockPath, err))
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_UN); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось разблокировать lock-файл '%s': %v", lockPath, err))
	}
	if err := file.Close(); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось закрыть lock-файл '%s': %v", lockPath, err))
	}
}
