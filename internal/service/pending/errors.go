package pending

import "errors"

var (
	// ErrFlowActive возвращается, когда у пользователя уже есть незавершённый шаг
	ErrFlowActive = errors.New("pending.service: another flow is active")

	// ErrInternal возвращается при внутренней ошибке сервиса
	ErrInternal = errors.New("pending.service: internal error")
)
