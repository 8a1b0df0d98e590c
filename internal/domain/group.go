package domain

// GroupRole роль чат-группы
type GroupRole string

const (
	// RoleBusiness группы, создающие и ведущие резервации
	RoleBusiness GroupRole = "business"
	// RoleStaff группы, получающие уведомления о прибытии и фиксирующие результат
	RoleStaff GroupRole = "staff"
)

// ChatKind тип чата во входящем событии
type ChatKind string

const (
	ChatKindGroup      ChatKind = "group"
	ChatKindSupergroup ChatKind = "supergroup"
	ChatKindPrivate    ChatKind = "private"
)

// IsGroup возвращает true для групповых чатов; только они попадают в реестр
func (k ChatKind) IsGroup() bool {
	return k == ChatKindGroup || k == ChatKindSupergroup
}

// Group запись реестра чат-групп
type Group struct {
	ChatID int64     `json:"id"`
	Role   GroupRole `json:"type"`
}
