package repositories

import (
	"context"

	"example.com/conecar/services/fletes/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransportistaRepository provides access to transportista data
type TransportistaRepository struct {
	db *gorm.DB
}

// NewTransportistaRepository creates a new transportista repository
func NewTransportistaRepository(db *gorm.DB) *TransportistaRepository {
	return &TransportistaRepository{db: db}
}

// GetByID gets a transportista by ID
func (r *TransportistaRepository) GetByID(ctx context.Context, id uint) (*models.Transportista, error) {
	var t models.Transportista
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transportista by ID")
	}
	return &t, nil
}

// GetByNombre gets a transportista by exact name
func (r *TransportistaRepository) GetByNombre(ctx context.Context, nombre string) (*models.Transportista, error) {
	var t models.Transportista
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&t).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transportista by nombre")
	}
	return &t, nil
}

// Create inserts a new transportista
func (r *TransportistaRepository) Create(ctx context.Context, t *models.Transportista) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return errors.Wrap(err, "failed to create transportista")
	}
	return nil
}

// List returns all transportistas ordered by name
func (r *TransportistaRepository) List(ctx context.Context) ([]models.Transportista, error) {
	var rows []models.Transportista
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transportistas")
	}
	return rows, nil
}

// FleteFilter narrows a flete listing
type FleteFilter struct {
	Estado          string
	AnioMes         string
	TransportistaID uint
	Query           string
	Limit           int
	Offset          int
}

// FleteRepository provides access to flete data
type FleteRepository struct {
	db *gorm.DB
}

// NewFleteRepository creates a new flete repository
func NewFleteRepository(db *gorm.DB) *FleteRepository {
	return &FleteRepository{db: db}
}

// GetByOCarga gets a flete by its O.Carga natural key
func (r *FleteRepository) GetByOCarga(ctx context.Context, oCarga string) (*models.Flete, error) {
	var f models.Flete
	err := r.db.WithContext(ctx).Where("o_carga = ?", oCarga).First(&f).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get flete by o_carga")
	}
	return &f, nil
}

// Create inserts a new flete
func (r *FleteRepository) Create(ctx context.Context, f *models.Flete) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return errors.Wrap(err, "failed to create flete")
	}
	return nil
}

// List returns fletes matching the filter, newest first
func (r *FleteRepository) List(ctx context.Context, filter FleteFilter) ([]models.Flete, error) {
	q := r.db.WithContext(ctx).Model(&models.Flete{})

	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.AnioMes != "" {
		q = q.Where("anio_mes = ?", filter.AnioMes)
	}
	if filter.TransportistaID != 0 {
		q = q.Where("transportista_id = ?", filter.TransportistaID)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("o_carga ILIKE ? OR cliente_destino ILIKE ?", pattern, pattern)
	}

	var rows []models.Flete
	err := q.Order("fecha DESC NULLS LAST, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fletes")
	}
	return rows, nil
}

// ListByEstado returns all fletes in one state in export order: fecha
// ascending with nulls last, then o_carga ascending
func (r *FleteRepository) ListByEstado(ctx context.Context, estado string) ([]models.Flete, error) {
	var rows []models.Flete
	err := r.db.WithContext(ctx).
		Where("estado = ?", estado).
		Order("fecha ASC NULLS LAST, o_carga ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fletes by estado")
	}
	return rows, nil
}

// ExistingOCargas fetches the set of all O.Carga keys currently stored
func (r *FleteRepository) ExistingOCargas(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&models.Flete{}).Pluck("o_carga", &keys).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch existing o_carga keys")
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// UpdateEstado persists a new lifecycle state for a flete
func (r *FleteRepository) UpdateEstado(ctx context.Context, f *models.Flete, estado string) error {
	err := r.db.WithContext(ctx).Model(f).Update("estado", estado).Error
	if err != nil {
		return errors.Wrap(err, "failed to update flete estado")
	}
	return nil
}

// AnalyticsTotals aggregates the whole fletes table
type AnalyticsTotals struct {
	Cantidad   int64           `json:"cantidad"`
	Cobrado    decimal.Decimal `json:"cobrado"`
	Pagado     decimal.Decimal `json:"pagado"`
	Diferencia decimal.Decimal `json:"diferencia"`
}

// AnalyticsByMes aggregates fletes per AÑO.MES bucket
type AnalyticsByMes struct {
	AnioMes    string          `json:"anio_mes"`
	Cobrado    decimal.Decimal `json:"cobrado"`
	Pagado     decimal.Decimal `json:"pagado"`
	Diferencia decimal.Decimal `json:"diferencia"`
}

// AnalyticsByEstado aggregates fletes per lifecycle state
type AnalyticsByEstado struct {
	Estado     *string         `json:"estado"`
	Cantidad   int64           `json:"cantidad"`
	Cobrado    decimal.Decimal `json:"cobrado"`
	Pagado     decimal.Decimal `json:"pagado"`
	Diferencia decimal.Decimal `json:"diferencia"`
}

// Totals returns the table-wide aggregates
func (r *FleteRepository) Totals(ctx context.Context) (*AnalyticsTotals, error) {
	var t AnalyticsTotals
	err := r.db.WithContext(ctx).Model(&models.Flete{}).
		Select("COUNT(id) AS cantidad, " +
			"COALESCE(SUM(flete_cobrado), 0) AS cobrado, " +
			"COALESCE(SUM(flete_pagado), 0) AS pagado, " +
			"COALESCE(SUM(diferencia), 0) AS diferencia").
		Scan(&t).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate flete totals")
	}
	return &t, nil
}

// TotalsByMes returns per-month aggregates for rows with an AÑO.MES bucket
func (r *FleteRepository) TotalsByMes(ctx context.Context) ([]AnalyticsByMes, error) {
	var rows []AnalyticsByMes
	err := r.db.WithContext(ctx).Model(&models.Flete{}).
		Select("anio_mes, "+
			"COALESCE(SUM(flete_cobrado), 0) AS cobrado, "+
			"COALESCE(SUM(flete_pagado), 0) AS pagado, "+
			"COALESCE(SUM(diferencia), 0) AS diferencia").
		Where("anio_mes IS NOT NULL").
		Group("anio_mes").
		Order("anio_mes ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate fletes by mes")
	}
	return rows, nil
}

// TotalsByEstado returns per-state aggregates
func (r *FleteRepository) TotalsByEstado(ctx context.Context) ([]AnalyticsByEstado, error) {
	var rows []AnalyticsByEstado
	err := r.db.WithContext(ctx).Model(&models.Flete{}).
		Select("estado, COUNT(id) AS cantidad, " +
			"COALESCE(SUM(flete_cobrado), 0) AS cobrado, " +
			"COALESCE(SUM(flete_pagado), 0) AS pagado, " +
			"COALESCE(SUM(diferencia), 0) AS diferencia").
		Group("estado").
		Order("estado ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate fletes by estado")
	}
	return rows, nil
}
