package monitor

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"batalert/internal/logger"
)

// healthTip - единственная рекомендация о здоровье батареи, которую выдает приложение.
const healthTip = "Для продления срока службы литий-ионной батареи держите заряд между 20% и 80%. " +
	"Отключайте зарядку, когда батарея достигла порога, и избегайте полной разрядки."

// HealthTip возвращает статическую рекомендацию по уходу за батареей.
func HealthTip() string {
	return healthTip
}

// Band - цветовая зона уровня заряда.
type Band int

const (
	BandGood   Band = iota // уровень не ниже порога
	BandMedium             // уровень не ниже LowLevel
	BandLow                // уровень ниже LowLevel
)

// LowLevel - граница между средней и низкой зоной.
const LowLevel = 20

// LevelBand определяет цветовую зону уровня относительно порога.
func LevelBand(level, threshold int) Band {
	switch {
	case level >= threshold:
		return BandGood
	case level >= LowLevel:
		return BandMedium
	default:
		return BandLow
	}
}

// FormatETA форматирует прогноз времени до порога.
func FormatETA(minutes *int) string {
	switch {
	case minutes == nil:
		return "неизвестно"
	case *minutes == 0:
		return "порог достигнут"
	case *minutes < 60:
		return fmt.Sprintf("~%d мин", *minutes)
	default:
		return fmt.Sprintf("~%d ч %d мин", *minutes/60, *minutes%60)
	}
}

//================================================================================
// ПРОВЕРКА ФАЙЛОВ
//================================================================================

// CheckFiles проверяет, что все файлы существуют и содержат все указанные ключи.
//
// @param filesToSearch Карта "путь к файлу -> строки, которые должны в нем быть".
// @return bool true, только если проверка пройдена для каждого файла.
// @return error Ошибка доступа к файлу (отсутствие файла ошибкой не считается).
func CheckFiles(filesToSearch map[string][]string, log *logger.Logger) (bool, error) {
	for filePath, requiredStrings := range filesToSearch {
		_, err := os.Stat(filePath)
		if os.IsNotExist(err) {
			log.Debug(fmt.Sprintf("Проверка не пройдена: файл '%s' не найден.", filePath))
			return false, nil
		} else if err != nil {
			return false, fmt.Errorf("ошибка при доступе к файлу %s: %w", filePath, err)
		}

		found, err := allStringsExistInFile(filePath, requiredStrings)
		if err != nil {
			return false, err
		}
		if !found {
			log.Debug(fmt.Sprintf("Проверка не пройдена: в файле '%s' найдены не все требуемые строки.", filePath))
			return false, nil
		}
		log.Debug(fmt.Sprintf("В файле '%s' найдены все требуемые строки.", filePath))
	}
	return true, nil
}

// allStringsExistInFile проверяет, что все строки из среза есть в файле.
func allStringsExistInFile(filePath string, requiredStrings []string) (bool, error) {
	if len(requiredStrings) == 0 {
		return true, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("не удалось открыть файл %s: %w", filePath, err)
	}
	defer file.Close()

	found := make(map[string]bool, len(requiredStrings))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		for _, required := range requiredStrings {
			if !found[required] && strings.Contains(line, required) {
				found[required] = true
			}
		}
		if len(found) == len(requiredStrings) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("ошибка при чтении файла %s: %w", filePath, err)
	}
	return len(found) == len(requiredStrings), nil
}
