package handle_callback

import "errors"

var (
	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("handle_callback.usecase: internal error")
)
