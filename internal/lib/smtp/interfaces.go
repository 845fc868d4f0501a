// Package smtp предоставляет SMTP-транспорт для отправки писем
// и интерфейсы, позволяющие подменять его в тестах.
package smtp

import "io"

// Client интерфейс для SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface интерфейс для SMTP транспорта.
type TransportInterface interface {
	Connect() (Client, error)
	// Sender возвращает адрес, указываемый в MAIL FROM.
	Sender() string
	// From возвращает значение заголовка From.
	From() string
}
