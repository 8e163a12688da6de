package importer

import (
	"bytes"
	"context"
	"strings"

	"example.com/conecar/services/fletes/config"
	"example.com/conecar/services/fletes/internal/cache"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Import failure sentinels
var (
	// ErrNoMatchingSheet means no recognized sheet was found in the whole
	// workbook; the import fails rather than reporting success with zero
	// sheets.
	ErrNoMatchingSheet = errors.New("no matching sheet found in workbook")

	// ErrMissingTransportista means a data row had no carrier name. This
	// aborts the whole import.
	ErrMissingTransportista = errors.New("fila sin TRANSPORTISTA")
)

// targetSheets are the sheet labels recognized for import, matched after
// trimming and lower-casing the sheet name. "base datos" is the legacy name
// of the completed-trips sheet and stamps that state.
var targetSheets = map[string]string{
	"transporte":         "transporte",
	"viajes en camino":   "viajes en camino",
	"viajes concretados": "viajes concretados",
	"base datos":         "viajes concretados",
}

// Summary reports what an import run did
type Summary struct {
	ProcessedSheets       []string `json:"processed_sheets"`
	Inserted              int      `json:"inserted"`
	Skipped               int      `json:"skipped"`
	TransportistasCreated int      `json:"transportistas_created"`
}

// Service drives workbook import and export
type Service struct {
	db    *gorm.DB
	cache *cache.RedisCache
	cfg   config.ImportConfig
}

// NewService creates a new import service
func NewService(db *gorm.DB, redisCache *cache.RedisCache, cfg config.ImportConfig) *Service {
	return &Service{
		db:    db,
		cache: redisCache,
		cfg:   cfg,
	}
}

// ImportWorkbook ingests a whole workbook into the store and returns the
// run summary. Flete rows commit in batches; rows flushed before a failure
// stay persisted, as do transportistas created along the way.
func (s *Service) ImportWorkbook(ctx context.Context, fileBytes []byte) (*Summary, error) {
	summary, err := s.importWithStore(ctx, fileBytes, newGormStore(s.db))
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Delete(ctx, cache.AnalyticsKey); cacheErr != nil {
		log.Warn().Err(cacheErr).Msg("Failed to invalidate analytics cache after import")
	}

	log.Info().
		Strs("sheets", summary.ProcessedSheets).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("transportistas_created", summary.TransportistasCreated).
		Msg("Workbook import finished")

	return summary, nil
}

// importWithStore runs the import against any Store implementation
func (s *Service) importWithStore(ctx context.Context, fileBytes []byte, st Store) (*Summary, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer wb.Close()

	existing, err := st.ExistingOCargas(ctx)
	if err != nil {
		return nil, err
	}

	state := &importState{
		existing:       existing,
		transportistas: make(map[string]uint),
	}
	summary := &Summary{ProcessedSheets: []string{}}

	for _, name := range wb.GetSheetList() {
		label := strings.ToLower(strings.TrimSpace(name))
		estado, ok := targetSheets[label]
		if !ok {
			continue
		}

		rows, err := wb.GetRows(name)
		if err != nil {
			st.Rollback(ctx)
			return nil, errors.Wrapf(err, "failed to read sheet %q", name)
		}

		headerRow, colMap, found := LocateHeader(rows, s.cfg.HeaderScanRows)
		if !found {
			// A target sheet without locatable anchors is optional data,
			// not an error
			log.Debug().Str("sheet", name).Msg("No header row located, sheet skipped")
			continue
		}

		summary.ProcessedSheets = append(summary.ProcessedSheets, name)

		if err := s.ingestSheet(ctx, st, state, rows, headerRow, colMap, estado); err != nil {
			st.Rollback(ctx)
			return nil, errors.Wrapf(err, "sheet %q", name)
		}

		log.Info().Str("sheet", name).Str("estado", estado).Msg("Sheet ingested")
	}

	if err := st.Flush(ctx); err != nil {
		return nil, err
	}

	if len(summary.ProcessedSheets) == 0 {
		return nil, ErrNoMatchingSheet
	}

	summary.Inserted = state.inserted
	summary.Skipped = state.skipped
	summary.TransportistasCreated = state.transportistasCreated
	return summary, nil
}
