package pending_reply

import "github.com/goodgood52099-bit/XFWH-BOT/internal/domain"

// Request входящий текстовый ответ на активный диалоговый шаг
type Request struct {
	UserID int64
	ChatID int64
	Text   string

	Action *domain.PendingAction
}
