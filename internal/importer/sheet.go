package importer

import (
	"context"
	"strings"
	"time"

	"example.com/conecar/services/fletes/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Store is the transactional persistence collaborator of an import run.
// Transportista writes commit immediately and independently of the flete
// batches; InsertFlete buffers into the current batch transaction until
// Flush commits it.
type Store interface {
	ExistingOCargas(ctx context.Context) (map[string]struct{}, error)
	FindTransportista(ctx context.Context, nombre string) (*models.Transportista, error)
	CreateTransportista(ctx context.Context, t *models.Transportista) error
	InsertFlete(ctx context.Context, f *models.Flete) error
	Flush(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// importState carries the caches and counters shared by every sheet of a
// single import run. One run owns one instance; nothing here is global.
type importState struct {
	existing       map[string]struct{}
	transportistas map[string]uint

	inserted              int
	skipped               int
	transportistasCreated int
}

// resolveTransportista returns the id for a carrier name, creating the
// carrier when it is not stored yet. A blank name is a validation error that
// aborts the whole import: a tolerable number cell can be dropped, a flete
// without a carrier cannot.
func (s *Service) resolveTransportista(ctx context.Context, st Store, state *importState, nombre string) (uint, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return 0, ErrMissingTransportista
	}

	if id, ok := state.transportistas[nombre]; ok {
		return id, nil
	}

	t, err := st.FindTransportista(ctx, nombre)
	if err != nil {
		return 0, err
	}
	if t == nil {
		t = &models.Transportista{Nombre: nombre}
		if err := st.CreateTransportista(ctx, t); err != nil {
			return 0, err
		}
		state.transportistasCreated++
	}

	state.transportistas[nombre] = t.ID
	return t.ID, nil
}

// ingestSheet walks one located sheet row by row, emitting flete inserts.
// The scan ends after blankRowStreak consecutive rows with no O.Carga value;
// a sheet's nominal extent can be enormous and mostly empty, and a long
// blank run is the practical end-of-data signal.
func (s *Service) ingestSheet(ctx context.Context, st Store, state *importState, rows [][]string, headerRow int, colMap map[string]int, estado string) error {
	blankStreak := 0

	for r := headerRow + 1; r < len(rows); r++ {
		oCarga := strings.TrimSpace(cellAt(rows, r, colMap[FieldOCarga]))
		if oCarga == "" {
			blankStreak++
			if blankStreak >= s.cfg.BlankRowStreak {
				break
			}
			continue
		}
		blankStreak = 0

		// Idempotent re-import: a known O.Carga is skipped, never updated
		if _, exists := state.existing[oCarga]; exists {
			state.skipped++
			continue
		}

		transportistaID, err := s.resolveTransportista(ctx, st, state, cellAt(rows, r, colMap[FieldTransportista]))
		if err != nil {
			return errors.Wrapf(err, "row %d", r+1)
		}

		fleteCobrado := decimalField(rows, r, colMap, FieldFleteCobrado)
		fletePagado := decimalField(rows, r, colMap, FieldFletePagado)
		diferencia := models.ComputeDiferencia(fleteCobrado, fletePagado)
		estadoValue := estado

		f := &models.Flete{
			Fecha:             dateField(rows, r, colMap, FieldFecha),
			Dia:               textField(rows, r, colMap, FieldDia),
			OCarga:            oCarga,
			AnioMes:           textField(rows, r, colMap, FieldAnioMes),
			ClienteDestino:    textField(rows, r, colMap, FieldClienteDestino),
			Estado:            &estadoValue,
			TransportistaID:   transportistaID,
			CodTransporte:     textField(rows, r, colMap, FieldCodTransporte),
			IngreseTransporte: textField(rows, r, colMap, FieldIngreseTransporte),
			Km:                decimalField(rows, r, colMap, FieldKm),
			TnOrdenCarga:      decimalField(rows, r, colMap, FieldTnOrdenCarga),
			TnCargadas:        decimalField(rows, r, colMap, FieldTnCargadas),
			Aforo:             decimalField(rows, r, colMap, FieldAforo),
			TarifaAsign:       decimalField(rows, r, colMap, FieldTarifaAsign),
			FleteCobrado:      fleteCobrado,
			TarifaTte:         decimalField(rows, r, colMap, FieldTarifaTte),
			FletePagado:       fletePagado,
			Diferencia:        &diferencia,
			Observacion:       textField(rows, r, colMap, FieldObservacion),
		}

		if err := st.InsertFlete(ctx, f); err != nil {
			return errors.Wrapf(err, "row %d", r+1)
		}

		state.inserted++
		// Marked immediately so a copy-pasted duplicate later in this run,
		// even on another sheet, is skipped instead of double-inserted
		state.existing[oCarga] = struct{}{}

		if state.inserted%s.cfg.BatchSize == 0 {
			if err := st.Flush(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// cellAt is a bounds-safe cell read; excelize trims trailing empty cells
// from each row slice.
func cellAt(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	row := rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

func textField(rows [][]string, r int, colMap map[string]int, field string) *string {
	c, ok := colMap[field]
	if !ok {
		return nil
	}
	s := strings.TrimSpace(cellAt(rows, r, c))
	if s == "" {
		return nil
	}
	return &s
}

func dateField(rows [][]string, r int, colMap map[string]int, field string) *time.Time {
	c, ok := colMap[field]
	if !ok {
		return nil
	}
	return ToDate(cellAt(rows, r, c))
}

func decimalField(rows [][]string, r int, colMap map[string]int, field string) *decimal.Decimal {
	c, ok := colMap[field]
	if !ok {
		return nil
	}
	return ToDecimal(cellAt(rows, r, c))
}
