package entity

import "time"

// Formas farmacéuticas soportadas en el catálogo.
const (
	MedFormTablet    = "tableta"
	MedFormCapsule   = "capsula"
	MedFormSyrup     = "jarabe"
	MedFormInjection = "inyectable"
	MedFormCream     = "crema"
	MedFormOther     = "otro"
)

// Medication representa un medicamento del catálogo de la farmacia.
// WarningHorizonDays en cero usa el horizonte global de configuración.
type Medication struct {
	ID                 string
	Code               string // código interno o CUM
	Name               string
	Form               string
	Concentration      string
	IsControlled       bool // sujeto a reporte de sustancias controladas
	RequiresLotTracking bool
	WarningHorizonDays int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
