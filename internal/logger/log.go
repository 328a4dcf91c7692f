// Package logger предоставляет файловое логирование с уровнями
// и ротацией по количеству строк.

package logger

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

//================================================================================
// ОСНОВНАЯ СТРУКТУРА ЛОГГЕРА
//================================================================================

// Logger - это основной объект для управления логированием.
// Он инкапсулирует всю конфигурацию и состояние, включая ротацию файлов.
type Logger struct {
	mu             sync.Mutex // Для обеспечения потокобезопасности
	filePath       string
	maxLines       int
	currentLines   int
	isLogEnabled   bool
	isDebugEnabled bool
}

// New создает и инициализирует новый экземпляр Logger.
// Если лог-файл уже существует, запись продолжается в него: монитор и
// команды CLI пишут в один и тот же файл, поэтому при открытии он не удаляется.
//
// @param filePath - Основной путь к лог-файлу.
// @param maxLines - Максимальное количество строк до ротации.
// @param logEnabled - Включает или отключает логирование в файл.
// @param debugEnabled - Включает или отключает логирование уровня DEBUG.
// @return *Logger - Указатель на новый экземпляр логгера.
func New(filePath string, maxLines int, logEnabled bool, debugEnabled bool) *Logger {
	if maxLines <= 0 {
		maxLines = 1000
	}

	return &Logger{
		filePath:       filePath,
		maxLines:       maxLines,
		isLogEnabled:   logEnabled,
		isDebugEnabled: debugEnabled,
		currentLines:   countLines(filePath),
	}
}

// countLines подсчитывает количество строк в существующем лог-файле.
func countLines(filePath string) int {
	f, err := os.Open(filePath)
	if err != nil {
		return 0
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	return lines
}

// FilePath возвращает путь к текущему лог-файлу.
func (l *Logger) FilePath() string {
	return l.filePath
}

//================================================================================
// МЕТОДЫ ЛОГИРОВАНИЯ
//================================================================================

// EnableLogging включает или отключает логирование
// @param enabled bool - true для включения, false для отключения
func (l *Logger) EnableLogging(enabled bool) {
	l.mu.Lock()
	l.isLogEnabled = enabled
	l.mu.Unlock()
}

// EnableDebug включает или отключает сообщения уровня DEBUG.
func (l *Logger) EnableDebug(enabled bool) {
	l.mu.Lock()
	l.isDebugEnabled = enabled
	l.mu.Unlock()
}

// Test записывает сообщение симулятора.
func (l *Logger) Test(message string) {
	l.logMessage("TEST", message)
}

// Info записывает информационное сообщение в лог.
func (l *Logger) Info(message string) {
	l.logMessage("INFO", message)
}

// Check записывает специальное сообщение о проверке состояния.
func (l *Logger) Check(message string) {
	l.logMessage("CHECK", message)
}

// Debug записывает отладочное сообщение в лог.
func (l *Logger) Debug(message string) {
	l.mu.Lock()
	debug := l.isDebugEnabled
	l.mu.Unlock()
	if debug {
		l.logMessage("DEBUG", message)
	}
}

// Error записывает сообщение об ошибке в лог.
func (l *Logger) Error(message string) {
	l.logMessage("ERROR", message)
}

// logMessage - это внутренний метод для записи сообщений в файл.
// Он управляет ротацией и форматированием строк.
func (l *Logger) logMessage(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.isLogEnabled {
		return
	}

	// Шаг 1: Проверяем, не пора ли выполнять ротацию.
	if l.currentLines >= l.maxLines {
		if err := l.rotate(); err != nil {
			// Запись в файл может быть невозможна, поэтому используем стандартный вывод ошибок.
			log.Printf("Критическая ошибка: не удалось выполнить ротацию лога: %v", err)
		}
	}

	// Шаг 2: Открываем файл для добавления записи.
	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Критическая ошибка: не удалось открыть лог-файл %s: %v", l.filePath, err)
		return
	}
	defer f.Close()

	// Шаг 3: Форматируем и записываем сообщение.
	// Многострочные сообщения сворачиваются в одну строку, чтобы счетчик строк оставался точным.
	text := strings.ReplaceAll(strings.TrimSpace(message), "\n", " | ")
	logEntry := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format(TimeFormat), level, text)

	if _, err := f.WriteString(logEntry); err != nil {
		log.Printf("Критическая ошибка: не удалось записать в лог: %v", err)
		return
	}

	l.currentLines++
}

// TimeFormat - формат временной метки в строках лога.
const TimeFormat = "02-01-2006 15:04:05"

// rotate выполняет ротацию лог-файла.
func (l *Logger) rotate() error {
	timestamp := time.Now().Format("2006-01-02T15_04_05")
	newName := fmt.Sprintf("%s_%s.log", strings.TrimSuffix(l.filePath, ".log"), timestamp)

	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		// Файла нет, нечего ротировать.
		l.currentLines = 0
		return nil
	}

	if err := os.Rename(l.filePath, newName); err != nil {
		return err
	}

	// Следующая запись создаст новый пустой файл.
	l.currentLines = 0
	return nil
}
