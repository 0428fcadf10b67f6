package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados of a MovimientoPendiente.
const (
	PendienteEstadoPendiente = "pendiente"
	PendienteEstadoEnviado   = "enviado"
	PendienteEstadoError     = "error"
)

// MovimientoPendiente is an outbox row: the ingreso paired with a sale that the
// remote API already accepted but whose movement POST failed. The retry cron
// re-sends it until it succeeds or exhausts its retries.
type MovimientoPendiente struct {
	ID          string          `gorm:"type:varchar(36);primaryKey"`
	CajaID      int64           `gorm:"index;not null"`
	VentaID     int64           `gorm:"not null;default:0"`
	Tipo        string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion string          `gorm:"not null"`
	Fecha       string          `gorm:"type:varchar(19);not null"`
	Estado      string          `gorm:"type:varchar(12);not null;default:'pendiente';index"`
	// Retry fields, driven by the outbox cron
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"index"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MovimientoPendiente) TableName() string { return "movimientos_pendientes" }

func (m *MovimientoPendiente) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// NuevoMovimientoPendiente wraps a movement for the outbox, due immediately.
// Outbox timestamps are always UTC.
func NuevoMovimientoPendiente(mov Movimiento, ventaID int64, now time.Time) *MovimientoPendiente {
	due := now.UTC()
	return &MovimientoPendiente{
		CajaID:      mov.CajaID,
		VentaID:     ventaID,
		Tipo:        string(mov.Tipo),
		Monto:       mov.Monto,
		Descripcion: mov.Descripcion,
		Fecha:       mov.Fecha,
		Estado:      PendienteEstadoPendiente,
		NextRetryAt: &due,
	}
}

// Movimiento rebuilds the wire body.
func (m MovimientoPendiente) Movimiento() Movimiento {
	return Movimiento{
		Tipo:        TipoMovimiento(m.Tipo),
		Monto:       m.Monto,
		Descripcion: m.Descripcion,
		Fecha:       m.Fecha,
		CajaID:      m.CajaID,
	}
}
