package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeString время в формате HH:MM (метка слота в расписании дня)
type TimeString string

// NewTimeString создает TimeString из time.Time (усечение до минут)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString парсит и валидирует строку HH:MM
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(strings.TrimSpace(s))
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	hh, mm, err := t.parts()
	if err != nil {
		return err
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return fmt.Errorf("invalid time string format: %q", string(t))
	}
	return nil
}

// Hour возвращает часовую составляющую
func (t TimeString) Hour() (int, error) {
	hh, _, err := t.parts()
	return hh, err
}

// AddMinutes возвращает время через указанное число минут (в пределах суток)
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	hh, mm, err := t.parts()
	if err != nil {
		return "", err
	}
	total := (hh*60 + mm + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore возвращает true, если t раньше other в пределах одного дня
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t позже other в пределах одного дня
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// At привязывает метку к конкретной дате в указанной зоне
func (t TimeString) At(day time.Time, loc *time.Location) (time.Time, error) {
	hh, mm, err := t.parts()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, loc), nil
}

func (t TimeString) parts() (int, int, error) {
	s := string(t)
	sep := strings.IndexByte(s, ':')
	if sep < 0 {
		return 0, 0, fmt.Errorf("invalid time string format: %q", s)
	}
	hh, err := strconv.Atoi(s[:sep])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time string format: %q", s)
	}
	mm, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time string format: %q", s)
	}
	return hh, mm, nil
}
