package pending_reply

import "errors"

var (
	// ErrUnknownAction возвращается для шага с неизвестным типом
	ErrUnknownAction = errors.New("pending_reply.usecase: unknown pending action")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("pending_reply.usecase: internal error")
)
