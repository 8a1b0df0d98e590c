package domain

import "time"

// Default schedule values
const (
	DefaultSlotCapacity = 3
	DefaultOpenHour     = 13 // первый слот дня, 13:00
	DefaultCloseHour    = 22 // последний слот дня, 22:00

	DefaultAnnounceFromHour  = 12
	DefaultAnnounceUntilHour = 22
)

// PendingTTL время жизни незавершённого диалогового состояния
const PendingTTL = 180 * time.Second

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Button layout constants
const (
	SlotButtonsPerRow    = 3
	BookingButtonsPerRow = 2
)
