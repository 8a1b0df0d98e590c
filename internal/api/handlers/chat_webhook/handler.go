package chat_webhook

import (
	"context"
	"net/http"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/api/handlers"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_callback"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_message"
)

// Handler обработчик webhook-обновлений Bot API.
// Всегда отвечает 200 OK: ошибка в ответе заставит Bot API
// повторять доставку того же обновления
type Handler struct {
	messages  MessageUseCase
	callbacks CallbackUseCase
	logger    Logger
}

// NewHandler создает новый обработчик
func NewHandler(messages MessageUseCase, callbacks CallbackUseCase, logger Logger) *Handler {
	return &Handler{
		messages:  messages,
		callbacks: callbacks,
		logger:    logger,
	}
}

// Handle обрабатывает POST /webhook
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := handlers.DecodeJSON(r, &update); err != nil {
		h.logger.Warn("ChatWebhook: failed to decode update: %v", err)
		handlers.RespondJSON(w, http.StatusOK, nil)
		return
	}

	ctx := r.Context()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	default:
		h.logger.Info("ChatWebhook: ignoring update without message or callback id=%d", update.UpdateID)
	}

	handlers.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	req := &handle_message.Request{
		ChatID:   msg.Chat.ID,
		ChatKind: domain.ChatKind(msg.Chat.Type),
		UserID:   msg.From.ID,
		UserName: msg.From.FirstName,
		Text:     msg.Text,
	}
	if err := h.messages.Execute(ctx, req); err != nil {
		h.logger.Error("ChatWebhook: message processing failed chat=%d user=%d: %v", msg.Chat.ID, msg.From.ID, err)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil {
		h.logger.Warn("ChatWebhook: callback without message id=%s", cb.ID)
		return
	}
	req := &handle_callback.Request{
		CallbackID: cb.ID,
		UserID:     cb.From.ID,
		ChatID:     cb.Message.Chat.ID,
		Data:       cb.Data,
	}
	if err := h.callbacks.Execute(ctx, req); err != nil {
		h.logger.Error("ChatWebhook: callback processing failed chat=%d user=%d: %v", cb.Message.Chat.ID, cb.From.ID, err)
	}
}
