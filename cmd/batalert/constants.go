package main

import "time"

// Константы приложения
const (
	AppUsage       = "оповещение о достижении порога заряда батареи"
	AppDescription = "следит за зарядкой и один раз за цикл зарядки сообщает, что пора отключить зарядное устройство"

	// version содержит версию приложения в формате SemVer
	version = "1.0.0"

	// MonitorProcessName - имя процесса для lock- и PID-файлов монитора
	MonitorProcessName = "monitor"

	// Параметры режима симуляции
	SimulatorInterval   = time.Second
	SimulatorStartLevel = 70
	SimulatorFloor      = 60

	// Ширина окна вывода
	WindowWidth = 50

	// DefaultLogLines - число строк лога по умолчанию
	DefaultLogLines = 20
)
