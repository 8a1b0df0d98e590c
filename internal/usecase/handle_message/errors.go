package handle_message

import "errors"

var (
	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("handle_message.usecase: internal error")
)
