package dto

// CreateMedicationRequest body para POST /api/medications.
type CreateMedicationRequest struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Form                string `json:"form"`
	Concentration       string `json:"concentration,omitempty"`
	IsControlled        bool   `json:"is_controlled"`
	RequiresLotTracking bool   `json:"requires_lot_tracking"`
	WarningHorizonDays  int    `json:"warning_horizon_days,omitempty"`
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
