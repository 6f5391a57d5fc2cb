package sla

import (
	"time"
)

// Clock supplies the current time. Injected so the calculator and every
// monitor job can run against a fixed instant in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Instant time.Time
}

func (f FixedClock) Now() time.Time {
	return f.Instant
}

// Tier thresholds as percent of the SLA window consumed. Tuned here, never
// at call sites.
const (
	UmbralAlerta  = 75.0
	Umbral90      = 90.0
	UmbralVencido = 100.0
)

// Ventana describes one item's SLA window.
type Ventana struct {
	Inicio time.Time
	Limite time.Time
	Horas  int
}

// HorasTranscurridas returns whole hours elapsed since the window opened.
// Negative when now precedes the window start.
func HorasTranscurridas(v Ventana, now time.Time) float64 {
	return now.Sub(v.Inicio).Hours()
}

// HorasRestantes returns hours until the deadline, floored at zero.
func HorasRestantes(v Ventana, now time.Time) float64 {
	restantes := v.Limite.Sub(now).Hours()
	if restantes < 0 {
		return 0
	}
	return restantes
}

// PorcentajeConsumido returns the share of the window already spent, in
// [0, 100]. Monotonically non-decreasing in now and saturating at 100.
func PorcentajeConsumido(v Ventana, now time.Time) float64 {
	if v.Horas <= 0 {
		return 100
	}
	pct := HorasTranscurridas(v, now) / float64(v.Horas) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// EstaVencida reports whether the deadline has passed.
func EstaVencida(v Ventana, now time.Time) bool {
	return now.After(v.Limite)
}

// Tier returns the alert tier the consumed percentage falls in: "" below the
// first threshold, then SLA_75, SLA_90, SLA_VENCIDO.
func Tier(pct float64) string {
	switch {
	case pct >= UmbralVencido:
		return "SLA_VENCIDO"
	case pct >= Umbral90:
		return "SLA_90"
	case pct >= UmbralAlerta:
		return "SLA_75"
	}
	return ""
}

// RequiereAlerta reports whether the window crossed the first alert
// threshold. Callers must additionally check the item is in an open state.
func RequiereAlerta(v Ventana, now time.Time) bool {
	return PorcentajeConsumido(v, now) >= UmbralAlerta
}
