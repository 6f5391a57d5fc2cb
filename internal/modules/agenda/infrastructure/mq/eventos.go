package mq

import (
	"context"
	"encoding/json"
	"time"

	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

// Event names emitted on the bus for audit and downstream
// consumers.
const (
	EventoSolicitudCreada    = "solicitud.creada"
	EventoSolicitudEstado    = "solicitud.estado_cambiado"
	EventoActividadCreada    = "cobranza.actividad_creada"
	EventoActividadEstado    = "cobranza.estado_cambiado"
	EventoReprogramada       = "cobranza.reprogramada"
	EventoAlertaGenerada     = "alerta.generada"
	EventoAlertaEnviada      = "alerta.enviada"
	EventoAlertaFallida      = "alerta.fallida"
	EventoReporteSolicitudes = "solicitud.reporte_diario"
	EventoMonitorResumen     = "monitor.resumen"
)

// Evento is the wire envelope for one domain event.
type Evento struct {
	Nombre    string                 `json:"nombre"`
	Origen    string                 `json:"origen,omitempty"`
	ItemID    string                 `json:"item_id,omitempty"`
	Datos     map[string]interface{} `json:"datos,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Eventos publishes domain events best-effort: failures are logged at Warn
// and never propagate to the triggering transition.
type Eventos struct {
	pub   Publisher
	topic string
}

func NewEventos(pub Publisher, topic string) *Eventos {
	return &Eventos{pub: pub, topic: topic}
}

// Emitir publishes one event keyed by item id so per-item ordering holds
// within a partition.
func (e *Eventos) Emitir(ctx context.Context, ev Evento) {
	if e == nil || e.pub == nil || e.topic == "" {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		zlog.Warn("evento marshal failed", zap.String("nombre", ev.Nombre), zap.Error(err))
		return
	}
	_, err = e.pub.Publish(ctx, Message{
		Topic: e.topic,
		Key:   []byte(ev.Origen + ":" + ev.ItemID),
		Value: payload,
		Headers: map[string]string{
			"evento": ev.Nombre,
		},
	})
	if err != nil {
		zlog.Warn("evento publish failed",
			zap.String("nombre", ev.Nombre),
			zap.String("item_id", ev.ItemID),
			zap.Error(err))
	}
}
