package prestamo

import (
	"time"
)

// Loan lifecycle states.
const (
	EstadoSolicitud    = "SOLICITUD"
	EstadoEvaluacion   = "EVALUACION"
	EstadoAprobado     = "APROBADO"
	EstadoRechazado    = "RECHAZADO"
	EstadoDesembolsado = "DESEMBOLSADO"
	EstadoVigente      = "VIGENTE"
	EstadoMora         = "MORA"
	EstadoCancelado    = "CANCELADO"
	EstadoRefinanciado = "REFINANCIADO"
	EstadoCastigado    = "CASTIGADO"
)

// Arrears bands in days, used to scale auto-generated collection work.
const (
	MoraTemprana = 15
	MoraMedia    = 30
)

// Prestamo carries the loan fields the collections agenda needs; the full
// loan servicing model lives elsewhere.
type Prestamo struct {
	ID               string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	NumeroPrestamo   string     `gorm:"column:numero_prestamo;uniqueIndex;type:varchar(50)"`
	ClienteID        string     `gorm:"column:cliente_id;index;not null;type:varchar(64)"`
	SucursalID       string     `gorm:"column:sucursal_id;index;not null;type:varchar(64)"`
	UsuarioID        string     `gorm:"column:usuario_id;index;not null;type:varchar(64)"`
	Estado           string     `gorm:"column:estado;index;not null;default:SOLICITUD;type:varchar(20)"`
	Monto            float64    `gorm:"column:monto;not null;type:decimal(12,2)"`
	MontoTotal       float64    `gorm:"column:monto_total;not null;type:decimal(12,2)"`
	MontoPagado      float64    `gorm:"column:monto_pagado;not null;default:0;type:decimal(12,2)"`
	CuotaMensual     float64    `gorm:"column:cuota_mensual;not null;type:decimal(12,2)"`
	FechaInicio      time.Time  `gorm:"column:fecha_inicio;not null"`
	FechaVencimiento time.Time  `gorm:"column:fecha_vencimiento;index;not null"`
	ProximoPago      *time.Time `gorm:"column:proximo_pago;index"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Prestamo) TableName() string {
	return "prestamos"
}

// DiasMora computes days in arrears comparing calendar dates only, so a
// payment due at any hour of day D counts one full day of arrears starting
// on D+1. The comparison ignores the time-of-day component on both sides.
func (p *Prestamo) DiasMora(now time.Time) int {
	vence := p.FechaVencimiento
	if p.ProximoPago != nil {
		vence = *p.ProximoPago
	}
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	fechaVence := time.Date(vence.Year(), vence.Month(), vence.Day(), 0, 0, 0, 0, now.Location())
	if !hoy.After(fechaVence) {
		return 0
	}
	return int(hoy.Sub(fechaVence).Hours() / 24)
}

// EnMora reports whether the loan carries at least one day of arrears.
func (p *Prestamo) EnMora(now time.Time) bool {
	return p.DiasMora(now) > 0
}

// SaldoPendiente returns the outstanding balance.
func (p *Prestamo) SaldoPendiente() float64 {
	saldo := p.MontoTotal - p.MontoPagado
	if saldo < 0 {
		return 0
	}
	return saldo
}
