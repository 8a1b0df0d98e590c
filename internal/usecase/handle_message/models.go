package handle_message

import "github.com/goodgood52099-bit/XFWH-BOT/internal/domain"

// Request входящее текстовое сообщение
type Request struct {
	ChatID   int64
	ChatKind domain.ChatKind
	UserID   int64
	UserName string
	Text     string
}
