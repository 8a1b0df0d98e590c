package botapi

import "github.com/goodgood52099-bit/XFWH-BOT/internal/domain"

// inlineButton кнопка inline-клавиатуры Bot API
type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// inlineKeyboard разметка inline-клавиатуры
type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

// sendMessageRequest тело запроса sendMessage
type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

// answerCallbackRequest тело запроса answerCallbackQuery
type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert"`
}

// apiResponse обёртка ответа Bot API
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// toInlineKeyboard конвертирует сетку кнопок в разметку Bot API
func toInlineKeyboard(grid domain.ButtonGrid) *inlineKeyboard {
	if len(grid) == 0 {
		return nil
	}
	kb := &inlineKeyboard{InlineKeyboard: make([][]inlineButton, 0, len(grid))}
	for _, row := range grid {
		buttons := make([]inlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineButton{Text: b.Label, CallbackData: b.Action})
		}
		kb.InlineKeyboard = append(kb.InlineKeyboard, buttons)
	}
	return kb
}
