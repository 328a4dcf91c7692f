package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"batalert/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay - пауза, в течение которой серия событий записи сливается в одно.
const DebounceDelay = 200 * time.Millisecond

// Watch следит за файлом path и вызывает onChange после каждой серии изменений.
//
// Наблюдение ведется за родительской директорией: атомарное сохранение
// (временный файл + переименование) заменяет сам файл, и прямое наблюдение
// за ним прекратилось бы после первой записи. События других файлов
// отбрасываются. Функция блокируется до отмены ctx.
func Watch(ctx context.Context, path string, onChange func(), log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("не удалось создать наблюдателя за файлами: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("не удалось добавить директорию %s в наблюдение: %w", dir, err)
	}
	log.Info(fmt.Sprintf("Наблюдатель запущен для файла: %s", path))

	timer := time.NewTimer(DebounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug(fmt.Sprintf("Наблюдатель за %s остановлен", path))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug(fmt.Sprintf("Обнаружено изменение файла %s (%s)", event.Name, event.Op))
			timer.Reset(DebounceDelay)

		case <-timer.C:
			log.Info(fmt.Sprintf("Файл %s изменен. Перезагрузка...", path))
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(fmt.Sprintf("Ошибка наблюдателя за файлами: %v", err))
		}
	}
}
