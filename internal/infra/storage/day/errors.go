package day

import "errors"

var (
	// ErrDayNotFound возвращается, когда документа для указанного дня нет
	ErrDayNotFound = errors.New("day.repository: day document not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("day.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("day.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("day.repository: failed to scan row")

	// ErrEncodeDoc возвращается при ошибке сериализации документа
	ErrEncodeDoc = errors.New("day.repository: failed to encode document")

	// ErrDecodeDoc возвращается при ошибке десериализации документа
	ErrDecodeDoc = errors.New("day.repository: failed to decode document")
)
