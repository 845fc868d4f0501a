// Package sl содержит общие атрибуты slog, которыми сервисы помечают записи лога.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. nil логируется как "<nil>",
// чтобы лишний вызов на успешном пути не ронял обработчик.
//
//	log.Error("failed to create booking", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут "op" с именем операции вида "handlers.booking.create".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
