package booking

import "github.com/google/uuid"

// Роль вызывающего. Выдаётся внешним модулем аутентификации,
// движок ей доверяет.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Caller — явная идентичность вызывающего, передаётся в каждую операцию
// жизненного цикла, где нужна проверка владения.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// CanManage сообщает, может ли вызывающий менять брони чужих пользователей.
func (c Caller) CanManage() bool {
	return c.Role == RoleStaff || c.Role == RoleAdmin
}
