package handle_callback

// Request входящее нажатие кнопки
type Request struct {
	CallbackID string
	UserID     int64
	ChatID     int64
	Data       string
}
