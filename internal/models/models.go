package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shipment lifecycle states. A flete has no estado until an import or the UI
// assigns one.
const (
	EstadoTransporte        = "transporte"
	EstadoViajesEnCamino    = "viajes en camino"
	EstadoViajesConcretados = "viajes concretados"
)

// ValidEstados lists the recognized lifecycle states.
var ValidEstados = map[string]bool{
	EstadoTransporte:        true,
	EstadoViajesEnCamino:    true,
	EstadoViajesConcretados: true,
}

// Transportista represents a hauling company referenced by fletes
type Transportista struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Nombre    string    `gorm:"size:255;not null;uniqueIndex" json:"nombre"`
	Fletes    []Flete   `gorm:"foreignKey:TransportistaID" json:"-"`
}

// Flete represents one freight movement, keyed by the O.Carga number from the
// order of loading. O.Carga is the natural key the spreadsheets are reconciled
// against.
type Flete struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Fecha *time.Time `gorm:"type:date" json:"fecha"`
	Dia   *string    `gorm:"size:30" json:"dia"`

	OCarga  string  `gorm:"column:o_carga;size:80;not null;uniqueIndex" json:"o_carga"`
	AnioMes *string `gorm:"size:20" json:"anio_mes"`

	ClienteDestino *string `gorm:"size:255" json:"cliente_destino"`

	TransportistaID uint          `gorm:"not null" json:"transportista_id"`
	Transportista   Transportista `gorm:"foreignKey:TransportistaID" json:"-"`

	CodTransporte     *string `gorm:"size:80" json:"cod_transporte"`
	IngreseTransporte *string `gorm:"size:255" json:"ingrese_transporte"`

	Km            *decimal.Decimal `gorm:"type:decimal(12,2)" json:"km"`
	TnOrdenCarga  *decimal.Decimal `gorm:"type:decimal(12,3)" json:"tn_orden_carga"`
	TnCargadas    *decimal.Decimal `gorm:"type:decimal(12,3)" json:"tn_cargadas"`
	Aforo         *decimal.Decimal `gorm:"type:decimal(12,3)" json:"aforo"`
	TarifaAsign   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"tarifa_asign"`
	FleteCobrado  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"flete_cobrado"`
	TarifaTte     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"tarifa_tte"`
	FletePagado   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"flete_pagado"`
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"diferencia"`

	Observacion *string `gorm:"size:500" json:"observacion"`
	Estado      *string `gorm:"size:60;index" json:"estado"`
}

// TableName keeps the legacy table name from the planilla-era schema
func (Transportista) TableName() string { return "transportistas" }

// TableName keeps the legacy table name from the planilla-era schema
func (Flete) TableName() string { return "fletes" }

// ComputeDiferencia returns cobrado minus pagado, treating missing operands as
// zero. Diferencia is always derived at write time, never taken from input.
func ComputeDiferencia(cobrado, pagado *decimal.Decimal) decimal.Decimal {
	c := decimal.Zero
	if cobrado != nil {
		c = *cobrado
	}
	p := decimal.Zero
	if pagado != nil {
		p = *pagado
	}
	return c.Sub(p)
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Transportista{},
		&Flete{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
