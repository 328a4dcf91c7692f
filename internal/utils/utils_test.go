package utils

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"batalert/internal/logger"
)

// TestRender проверяет рамку и выравнивание строк
func TestRender(t *testing.T) {
	wb := NewWindowBuffer(20)
	wb.SetColors(true)
	wb.AddLine("Уровень", "80%", ColorGreen)
	wb.AddLine(DividerSymbol, "", "")
	wb.AddLine("Зарядка", "да", "")

	var out bytes.Buffer
	wb.Render(&out)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")

	if len(lines) != 5 {
		t.Fatalf("Ожидалось 5 строк, получено %d:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "╔") || !strings.HasPrefix(lines[2], "╠") || !strings.HasPrefix(lines[4], "╚") {
		t.Errorf("Неверная рамка:\n%s", out.String())
	}
	if !strings.Contains(lines[1], ColorGreen+"80%"+ColorReset) {
		t.Errorf("Значение не окрашено: %q", lines[1])
	}

	width := utf8.RuneCountInString(lines[0])
	for i, line := range lines {
		if got := visibleLen(line); got != width {
			t.Errorf("Строка %d имеет ширину %d, ожидалось %d: %q", i, got, width, line)
		}
	}
}

// TestRenderNoColors проверяет вывод без цветов и пустой буфер
func TestRenderNoColors(t *testing.T) {
	wb := NewWindowBuffer(10)
	var out bytes.Buffer
	wb.Render(&out)
	if out.Len() != 0 {
		t.Errorf("Пустой буфер не должен ничего выводить: %q", out.String())
	}

	wb.SetColors(false)
	wb.AddLine("Порог", "80%", ColorRed)
	wb.Render(&out)
	if strings.Contains(out.String(), "\033[") {
		t.Errorf("Цвета должны быть выключены: %q", out.String())
	}
}

// TestBoolToYesNo проверяет преобразование булевых значений
func TestBoolToYesNo(t *testing.T) {
	if BoolToYesNo(true) != "да" || BoolToYesNo(false) != "нет" {
		t.Error("Неверное преобразование")
	}
}

// TestCheckWriteAccess проверяет права на запись
func TestCheckWriteAccess(t *testing.T) {
	dir := t.TempDir()
	log := logger.New(filepath.Join(dir, "utils.log"), 100, true, true)

	if err := CheckWriteAccess(dir, log); err != nil {
		t.Errorf("CheckWriteAccess() вернул ошибку: %v", err)
	}
	if err := CheckWriteAccess(filepath.Join(dir, "missing"), log); err == nil {
		t.Error("Ожидалась ошибка для несуществующей директории")
	}
}
