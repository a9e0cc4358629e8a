package fefo

import (
	"time"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// Classify clasifica el riesgo de vencimiento de un lote relativo a la fecha
// de referencia y el horizonte de alerta en días (servicio de dominio, puro).
//
// Política:
//   - sin fecha de vencimiento        -> SAFE (stock sin vencimiento rastreado)
//   - vencimiento < referencia        -> EXPIRED
//   - referencia <= venc <= ref+h     -> EXPIRING_SOON
//   - en otro caso                    -> SAFE
//
// La comparación es por día calendario: las horas se descartan.
func Classify(expiration *time.Time, reference time.Time, horizonDays int) entity.RiskLevel {
	if expiration == nil {
		return entity.RiskSafe
	}
	exp := dateOnly(*expiration)
	ref := dateOnly(reference)

	if exp.Before(ref) {
		return entity.RiskExpired
	}
	horizon := ref.AddDate(0, 0, horizonDays)
	if !exp.After(horizon) {
		return entity.RiskExpiringSoon
	}
	return entity.RiskSafe
}

// DaysUntilExpiry devuelve los días calendario hasta el vencimiento
// (negativo si ya venció). Sin fecha devuelve ok=false.
func DaysUntilExpiry(expiration *time.Time, reference time.Time) (days int, ok bool) {
	if expiration == nil {
		return 0, false
	}
	exp := dateOnly(*expiration)
	ref := dateOnly(reference)
	return int(exp.Sub(ref).Hours() / 24), true
}

// dateOnly trunca un instante a su día calendario en UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
