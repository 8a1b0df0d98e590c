package chat_webhook

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_callback"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_message"
)

// MessageUseCase интерфейс обработчика текстовых сообщений
type MessageUseCase interface {
	Execute(ctx context.Context, req *handle_message.Request) error
}

// CallbackUseCase интерфейс обработчика нажатий inline-кнопок
type CallbackUseCase interface {
	Execute(ctx context.Context, req *handle_callback.Request) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
