package daystore

import "errors"

var (
	// ErrDayNotFound возвращается, когда документ дня отсутствует и в очереди, и в хранилище
	ErrDayNotFound = errors.New("daystore: day document not found")

	// ErrStoreClosed возвращается при обращении к остановленному коалесцеру
	ErrStoreClosed = errors.New("daystore: store is closed")

	// ErrNilDocument возвращается, когда мутация вернула nil вместо документа
	ErrNilDocument = errors.New("daystore: mutation returned nil document")
)
