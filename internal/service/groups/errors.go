package groups

import "errors"

var (
	// ErrUnauthorized возвращается, когда операция требует привилегий администратора
	ErrUnauthorized = errors.New("groups.service: user is not an admin")

	// ErrInternal возвращается при внутренней ошибке сервиса
	ErrInternal = errors.New("groups.service: internal error")
)
