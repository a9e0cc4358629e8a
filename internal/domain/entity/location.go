package entity

import "time"

// Location representa una ubicación de almacenamiento (farmacia o bodega de sede).
type Location struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
}
