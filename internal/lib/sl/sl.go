// Package sl содержит вспомогательные функции для работы с логгером slog,
// чтобы поля об ошибках во всех сервисах выглядели единообразно.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to refresh tides", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
