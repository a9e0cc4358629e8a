package entity

import "time"

// Roles de usuario de la aplicación.
const (
	RoleAdmin        = "admin"
	RoleFarmaceutico = "farmaceutico"
	RoleConsulta     = "consulta"
)

// User representa un usuario del sistema (personal de farmacia).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	LocationID   string // sede por defecto; vacío = todas
	CreatedAt    time.Time
}
