package schedule

import "errors"

var (
	// ErrInternal возвращается при внутренней ошибке сервиса расписания
	ErrInternal = errors.New("schedule.service: internal error")
)
