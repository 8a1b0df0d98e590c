package bookings

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот с указанной меткой отсутствует
	ErrSlotNotFound = errors.New("bookings.service: slot not found")

	// ErrSlotExists возвращается при попытке добавить слот с занятой меткой
	ErrSlotExists = errors.New("bookings.service: slot already exists")

	// ErrSlotFull возвращается, когда в слоте нет свободных мест
	ErrSlotFull = errors.New("bookings.service: slot is full")

	// ErrBookingNotFound возвращается, когда резервация не найдена
	ErrBookingNotFound = errors.New("bookings.service: booking not found")

	// ErrInternal возвращается при внутренней ошибке сервиса
	ErrInternal = errors.New("bookings.service: internal error")
)
