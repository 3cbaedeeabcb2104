package models

// UserRole — роль актёра, прилетающая в JWT от внешнего сервиса аутентификации.
type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

// Actor — непрозрачная идентичность вызывающей стороны. Сервис комнат не
// занимается аутентификацией: ID и роль берутся из проверенного токена.
type Actor struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
}

// IsAdmin сообщает, действует ли актёр с повышенными привилегиями.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor используется для мутаций, инициированных планировщиком
// (авто-блокировка комнаты перед стартом), а не живым пользователем.
var SystemActor = Actor{UserID: 0, Role: RoleAdmin}
