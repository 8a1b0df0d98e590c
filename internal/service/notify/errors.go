package notify

import "errors"

var (
	// ErrInternal возвращается, когда список получателей недоступен
	ErrInternal = errors.New("notify.service: internal error")
)
