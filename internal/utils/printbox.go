package utils

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

var ansiColorRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const (
	leftMargin    = 2   // отступ от левой границы
	rightMargin   = 2   // отступ от правой границы
	valueGap      = 4   // отступ значения от самого длинного параметра
	borderWidth   = 2   // левая и правая граница
	DividerSymbol = "-" // параметр-разделитель в AddLine
)

// ANSI коды цветов для значений.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

const (
	boxTopLeft     = "╔"
	boxTopRight    = "╗"
	boxBottomLeft  = "╚"
	boxBottomRight = "╝"
	boxHorizontal  = "═"
	boxDivider     = "─"
	boxVertical    = "║"
	boxCrossLeft   = "╠"
	boxCrossRight  = "╣"
)

type boxItem struct {
	parameter string
	value     string
	color     string
	divider   bool
}

// WindowBuffer накапливает строки "параметр - значение" и выводит их в рамке.
type WindowBuffer struct {
	items       []boxItem
	minWidth    int
	maxParamLen int
	colors      bool
}

// NewWindowBuffer создает буфер окна с минимальной шириной minWidth.
// Цвета включены, только если стандартный вывод - терминал.
func NewWindowBuffer(minWidth int) *WindowBuffer {
	return &WindowBuffer{
		minWidth: minWidth,
		colors:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// SetColors включает или выключает цветной вывод.
func (wb *WindowBuffer) SetColors(enabled bool) {
	wb.colors = enabled
}

// AddLine добавляет строку. Параметр "-" добавляет разделитель.
func (wb *WindowBuffer) AddLine(parameter, value, color string) {
	if parameter == DividerSymbol {
		wb.AddDivider()
		return
	}
	wb.maxParamLen = max(wb.maxParamLen, utf8.RuneCountInString(parameter))
	wb.items = append(wb.items, boxItem{parameter: parameter, value: value, color: color})
}

// AddDivider добавляет горизонтальный разделитель.
func (wb *WindowBuffer) AddDivider() {
	wb.items = append(wb.items, boxItem{divider: true})
}

// width вычисляет ширину окна, не превышающую ширину терминала.
func (wb *WindowBuffer) width() int {
	width := wb.minWidth
	for _, item := range wb.items {
		if item.divider {
			continue
		}
		content := leftMargin + wb.maxParamLen + valueGap + visibleLen(item.value) + rightMargin
		width = max(width, content+borderWidth)
	}
	if cols := TerminalWidth(); width > cols && cols > wb.minWidth {
		width = cols
	}
	return width
}

func (wb *WindowBuffer) formatLine(item boxItem, width int) string {
	inner := width - borderWidth
	if item.divider {
		return boxCrossLeft + strings.Repeat(boxDivider, inner) + boxCrossRight
	}

	gap := strings.Repeat(" ", wb.maxParamLen+valueGap-utf8.RuneCountInString(item.parameter))
	line := strings.Repeat(" ", leftMargin) + item.parameter + gap + item.value
	padding := max(1, inner-visibleLen(line))

	value := item.value
	if wb.colors && item.color != "" {
		value = item.color + value + ColorReset
	}
	return boxVertical + strings.Repeat(" ", leftMargin) + item.parameter + gap + value + strings.Repeat(" ", padding) + boxVertical
}

// Render записывает окно в w. Пустой буфер ничего не выводит.
func (wb *WindowBuffer) Render(w io.Writer) {
	if len(wb.items) == 0 {
		return
	}
	width := wb.width()
	inner := width - borderWidth

	fmt.Fprintln(w, boxTopLeft+strings.Repeat(boxHorizontal, inner)+boxTopRight)
	for _, item := range wb.items {
		fmt.Fprintln(w, wb.formatLine(item, width))
	}
	fmt.Fprintln(w, boxBottomLeft+strings.Repeat(boxHorizontal, inner)+boxBottomRight)
}

// PrintBox выводит окно в стандартный вывод.
func (wb *WindowBuffer) PrintBox() {
	wb.Render(os.Stdout)
}

// visibleLen возвращает длину строки без ANSI кодов в символах.
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiColorRegex.ReplaceAllString(s, ""))
}

// TerminalWidth возвращает ширину терминала или 80, если вывод не в терминал.
func TerminalWidth() int {
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return cols
	}
	return 80
}
