package models

import (
	"fmt"
	"time"
)

// Константы участка наблюдения. Порог и горизонт прогноза фиксированы системно
// и совпадают между окном загрузки и окном выборки, чтобы рассылка никогда
// не сообщала о событиях за пределами реально загруженных данных.
const (
	// StationID идентификатор станции NOAA (Richardson Bay).
	StationID = "9414819"
	// FloodThresholdFt высота прилива в футах, начиная с которой прогноз считается наводнением.
	FloodThresholdFt = 6.4
	// ForecastDays горизонт прогноза в днях.
	ForecastDays = 30
	// StationTimezone часовой пояс станции.
	StationTimezone = "America/Los_Angeles"
)

// Типы приливов, сохраняемые в архиве. Записи без классификации
// отбрасываются при загрузке.
const (
	TideTypeHigh = "High"
	TideTypeLow  = "Low"
)

// TidePrediction прогноз экстремума прилива.
// Time хранится как локальное гражданское время станции.
type TidePrediction struct {
	Time     time.Time // Момент экстремума, локальное время станции
	HeightFt float64   // Высота в футах относительно датума MLLW
	TideType string    // High, Low или пустая строка, если источник не классифицировал запись
}

// FloodEvent производное событие наводнения для отображения и писем.
// Никогда не сохраняется в хранилище.
type FloodEvent struct {
	Time          time.Time `json:"time"`           // Исходное время события, нужно для повторной фильтрации кеша
	DisplayTime   string    `json:"display_time"`   // Например "Thursday, October 5 at 2:30PM"
	DisplayHeight string    `json:"display_height"` // Высота с двумя знаками после запятой
}

// NewFloodEvent формирует отображаемое событие из строки архива.
func NewFloodEvent(predictionTime time.Time, heightFt float64) FloodEvent {
	return FloodEvent{
		Time:          predictionTime,
		DisplayTime:   predictionTime.Format("Monday, January 2 at 3:04PM"),
		DisplayHeight: fmt.Sprintf("%.2f", heightFt),
	}
}
