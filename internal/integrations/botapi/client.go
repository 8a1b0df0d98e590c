package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// Client клиент для работы с Bot API чат-платформы
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Bot API
func NewClient(baseURL, token string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendMessage отправляет текст в чат, опционально с inline-клавиатурой
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) error {
	payload := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: toInlineKeyboard(buttons),
	}
	if err := c.call(ctx, "sendMessage", payload); err != nil {
		return fmt.Errorf("SendMessage - chat=%d: %w", chatID, err)
	}
	return nil
}

// AnswerCallback подтверждает нажатие кнопки, опционально с всплывающим текстом
func (c *Client) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	payload := answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}
	if err := c.call(ctx, "answerCallbackQuery", payload); err != nil {
		return fmt.Errorf("AnswerCallback - id=%s: %w", callbackID, err)
	}
	return nil
}

// call выполняет POST на метод Bot API и валидирует обёртку ответа
func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal payload: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if !api.OK {
		return fmt.Errorf("%w: %s: %s", ErrAPIRejected, method, api.Description)
	}
	return nil
}
