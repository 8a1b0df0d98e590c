package domain

import (
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// PendingKind тип активного диалогового шага пользователя
type PendingKind string

const (
	PendingReservationName  PendingKind = "reserve_wait_name"
	PendingArrivalAmount    PendingKind = "arrive_wait_amount"
	PendingClientDetails    PendingKind = "input_client"
	PendingSecondStaffName  PendingKind = "double_wait_second"
	PendingCompletionAmount PendingKind = "complete_wait_amount"
	PendingNoSaleReason     PendingKind = "not_consumed_wait_reason"
	PendingModifyName       PendingKind = "modify_wait_name"
)

// PendingAction активный диалоговый шаг: следующее текстовое сообщение
// пользователя трактуется как ответ на него
// У пользователя может быть не более одного активного шага
type PendingAction struct {
	UserID int64       `json:"user_id"`
	Kind   PendingKind `json:"action"`

	SlotTime    types.TimeString `json:"hhmm,omitempty"`
	Name        string           `json:"name,omitempty"`
	GroupChatID int64            `json:"group_chat,omitempty"`

	// поля модификации резервации
	OldSlotTime types.TimeString `json:"old_hhmm,omitempty"`
	OldName     string           `json:"old_name,omitempty"`
	NewSlotTime types.TimeString `json:"new_hhmm,omitempty"`

	// поля сервисных потоков
	BusinessName   string   `json:"business_name,omitempty"`
	BusinessChatID int64    `json:"business_chat_id,omitempty"`
	FirstStaff     string   `json:"first_staff,omitempty"`
	StaffList      []string `json:"staff_list,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Expired возвращает true, если шаг пережил свой TTL
func (p *PendingAction) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PendingTTL
}
