package services

import (
	"context"
	"strings"
	"time"

	"example.com/conecar/services/fletes/internal/cache"
	"example.com/conecar/services/fletes/internal/models"
	"example.com/conecar/services/fletes/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Business failure sentinels, mapped to HTTP statuses by the handlers
var (
	ErrTransportistaExists   = errors.New("transportista ya existe")
	ErrTransportistaNotFound = errors.New("transportista no existe")
	ErrFleteExists           = errors.New("o_carga ya existe")
	ErrFleteNotFound         = errors.New("no existe ese o_carga")
	ErrOCargaRequired        = errors.New("o_carga es obligatorio")
	ErrNombreRequired        = errors.New("nombre es obligatorio")
	ErrInvalidEstado         = errors.New("estado inválido")
)

// analyticsTTL bounds staleness if a cache invalidation is ever missed
const analyticsTTL = 10 * time.Minute

// FleteService handles flete and transportista business logic
type FleteService struct {
	db                *gorm.DB
	transportistaRepo *repositories.TransportistaRepository
	fleteRepo         *repositories.FleteRepository
	cache             *cache.RedisCache
}

// NewFleteService creates a new flete service
func NewFleteService(db *gorm.DB, redisCache *cache.RedisCache) *FleteService {
	return &FleteService{
		db:                db,
		transportistaRepo: repositories.NewTransportistaRepository(db),
		fleteRepo:         repositories.NewFleteRepository(db),
		cache:             redisCache,
	}
}

// CreateTransportista registers a new carrier with a unique trimmed name
func (s *FleteService) CreateTransportista(ctx context.Context, nombre string) (*models.Transportista, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, ErrNombreRequired
	}

	_, err := s.transportistaRepo.GetByNombre(ctx, nombre)
	if err == nil {
		return nil, ErrTransportistaExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t := &models.Transportista{Nombre: nombre}
	if err := s.transportistaRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	log.Info().Uint("id", t.ID).Str("nombre", t.Nombre).Msg("Transportista created")
	return t, nil
}

// ListTransportistas returns all carriers ordered by name
func (s *FleteService) ListTransportistas(ctx context.Context) ([]models.Transportista, error) {
	return s.transportistaRepo.List(ctx)
}

// CreateFleteInput carries a manual flete creation. Estado is nil on the
// legacy creation path; the web path supplies one of the recognized states.
type CreateFleteInput struct {
	Fecha   *time.Time
	Dia     *string
	OCarga  string
	AnioMes *string

	ClienteDestino *string

	TransportistaID uint

	CodTransporte     *string
	IngreseTransporte *string

	Km           *decimal.Decimal
	TnOrdenCarga *decimal.Decimal
	TnCargadas   *decimal.Decimal
	Aforo        *decimal.Decimal

	TarifaAsign  *decimal.Decimal
	FleteCobrado *decimal.Decimal
	TarifaTte    *decimal.Decimal
	FletePagado  *decimal.Decimal

	Observacion *string
	Estado      *string
}

// CreateFlete registers a new flete. The O.Carga must be unused, the
// transportista must exist, and diferencia is derived here regardless of
// the input.
func (s *FleteService) CreateFlete(ctx context.Context, in CreateFleteInput) (*models.Flete, error) {
	oCarga := strings.TrimSpace(in.OCarga)
	if oCarga == "" {
		return nil, ErrOCargaRequired
	}

	_, err := s.fleteRepo.GetByOCarga(ctx, oCarga)
	if err == nil {
		return nil, ErrFleteExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var estado *string
	if in.Estado != nil {
		normalized, err := normalizeEstado(*in.Estado)
		if err != nil {
			return nil, err
		}
		estado = &normalized
	}

	if _, err := s.transportistaRepo.GetByID(ctx, in.TransportistaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransportistaNotFound
		}
		return nil, err
	}

	diferencia := models.ComputeDiferencia(in.FleteCobrado, in.FletePagado)

	f := &models.Flete{
		Fecha:             in.Fecha,
		Dia:               in.Dia,
		OCarga:            oCarga,
		AnioMes:           in.AnioMes,
		ClienteDestino:    in.ClienteDestino,
		Estado:            estado,
		TransportistaID:   in.TransportistaID,
		CodTransporte:     in.CodTransporte,
		IngreseTransporte: in.IngreseTransporte,
		Km:                in.Km,
		TnOrdenCarga:      in.TnOrdenCarga,
		TnCargadas:        in.TnCargadas,
		Aforo:             in.Aforo,
		TarifaAsign:       in.TarifaAsign,
		FleteCobrado:      in.FleteCobrado,
		TarifaTte:         in.TarifaTte,
		FletePagado:       in.FletePagado,
		Diferencia:        &diferencia,
		Observacion:       in.Observacion,
	}

	if err := s.fleteRepo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx)

	log.Info().Str("o_carga", f.OCarga).Uint("transportista_id", f.TransportistaID).Msg("Flete created")
	return f, nil
}

// ListFletes returns fletes matching the filter, with the limit clamped to
// 1..2000 and the offset floored at zero
func (s *FleteService) ListFletes(ctx context.Context, filter repositories.FleteFilter) ([]models.Flete, error) {
	return s.fleteRepo.List(ctx, clampFilter(filter))
}

// clampFilter bounds paging and trims the filter values
func clampFilter(filter repositories.FleteFilter) repositories.FleteFilter {
	if filter.Limit < 1 {
		filter.Limit = 200
	}
	if filter.Limit > 2000 {
		filter.Limit = 2000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Estado = strings.ToLower(strings.TrimSpace(filter.Estado))
	filter.AnioMes = strings.TrimSpace(filter.AnioMes)
	filter.Query = strings.TrimSpace(filter.Query)
	return filter
}

// CambiarEstado moves an existing flete to a new lifecycle state
func (s *FleteService) CambiarEstado(ctx context.Context, oCarga, estado string) (string, error) {
	oCarga = strings.TrimSpace(oCarga)

	f, err := s.fleteRepo.GetByOCarga(ctx, oCarga)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFleteNotFound
		}
		return "", err
	}

	normalized, err := normalizeEstado(estado)
	if err != nil {
		return "", err
	}

	if err := s.fleteRepo.UpdateEstado(ctx, f, normalized); err != nil {
		return "", err
	}

	s.invalidateAnalytics(ctx)

	log.Info().Str("o_carga", oCarga).Str("estado", normalized).Msg("Flete estado updated")
	return normalized, nil
}

// AnalyticsResponse aggregates cobrado, pagado and diferencia across the
// whole table, per AÑO.MES bucket and per estado
type AnalyticsResponse struct {
	Totales   repositories.AnalyticsTotals     `json:"totales"`
	PorMes    []repositories.AnalyticsByMes    `json:"por_mes"`
	PorEstado []repositories.AnalyticsByEstado `json:"por_estado"`
}

// Analytics returns the aggregate report, served cache-aside from Redis
func (s *FleteService) Analytics(ctx context.Context) (*AnalyticsResponse, error) {
	var cached AnalyticsResponse
	if err := s.cache.Get(ctx, cache.AnalyticsKey, &cached); err == nil {
		return &cached, nil
	}

	totales, err := s.fleteRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	porMes, err := s.fleteRepo.TotalsByMes(ctx)
	if err != nil {
		return nil, err
	}
	porEstado, err := s.fleteRepo.TotalsByEstado(ctx)
	if err != nil {
		return nil, err
	}

	resp := &AnalyticsResponse{
		Totales:   *totales,
		PorMes:    porMes,
		PorEstado: porEstado,
	}

	if err := s.cache.Set(ctx, cache.AnalyticsKey, resp, analyticsTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache analytics response")
	}

	return resp, nil
}

func (s *FleteService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.AnalyticsKey); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate analytics cache")
	}
}

// normalizeEstado lower-cases and validates a requested state against the
// three recognized values
func normalizeEstado(estado string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(estado))
	if !models.ValidEstados[normalized] {
		return "", ErrInvalidEstado
	}
	return normalized, nil
}
