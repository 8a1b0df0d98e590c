package botapi

import "errors"

var (
	// ErrInternal возвращается при ошибке построения или выполнения запроса
	ErrInternal = errors.New("botapi.client: internal error")

	// ErrInvalidResponse возвращается при неожиданном ответе Bot API
	ErrInvalidResponse = errors.New("botapi.client: invalid response")

	// ErrAPIRejected возвращается, когда Bot API отклонил запрос (ok=false)
	ErrAPIRejected = errors.New("botapi.client: request rejected")
)
