package pending

import "errors"

var (
	// ErrPendingNotFound возвращается, когда у пользователя нет активного шага
	ErrPendingNotFound = errors.New("pending.repository: pending action not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("pending.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("pending.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("pending.repository: failed to scan row")

	// ErrEncodePayload возвращается при ошибке сериализации состояния
	ErrEncodePayload = errors.New("pending.repository: failed to encode payload")

	// ErrDecodePayload возвращается при ошибке десериализации состояния
	ErrDecodePayload = errors.New("pending.repository: failed to decode payload")
)
