package importer

import (
	"context"
	"testing"

	"example.com/conecar/services/fletes/config"
	"example.com/conecar/services/fletes/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memStore is an in-memory Store with the same commit semantics as the
// production one: transportistas persist immediately, fletes only on Flush.
type memStore struct {
	fletes              map[string]*models.Flete
	pending             []*models.Flete
	transportistas      map[string]*models.Transportista
	nextTransportistaID uint
	flushes             int
}

func newMemStore() *memStore {
	return &memStore{
		fletes:         make(map[string]*models.Flete),
		transportistas: make(map[string]*models.Transportista),
	}
}

func (s *memStore) ExistingOCargas(ctx context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(s.fletes))
	for k := range s.fletes {
		set[k] = struct{}{}
	}
	return set, nil
}

func (s *memStore) FindTransportista(ctx context.Context, nombre string) (*models.Transportista, error) {
	return s.transportistas[nombre], nil
}

func (s *memStore) CreateTransportista(ctx context.Context, t *models.Transportista) error {
	s.nextTransportistaID++
	t.ID = s.nextTransportistaID
	s.transportistas[t.Nombre] = t
	return nil
}

func (s *memStore) InsertFlete(ctx context.Context, f *models.Flete) error {
	s.pending = append(s.pending, f)
	return nil
}

func (s *memStore) Flush(ctx context.Context) error {
	for _, f := range s.pending {
		s.fletes[f.OCarga] = f
	}
	s.pending = nil
	s.flushes++
	return nil
}

func (s *memStore) Rollback(ctx context.Context) error {
	s.pending = nil
	return nil
}

// testService runs the importer on the knobs LoadConfig actually resolves,
// so a configuration regression that zeroes them fails here instead of being
// papered over by test-local constants. Non-zero override fields win.
func testService(t *testing.T, override config.ImportConfig) *Service {
	t.Helper()

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	imp := cfg.Import
	if override.HeaderScanRows != 0 {
		imp.HeaderScanRows = override.HeaderScanRows
	}
	if override.BlankRowStreak != 0 {
		imp.BlankRowStreak = override.BlankRowStreak
	}
	if override.BatchSize != 0 {
		imp.BatchSize = override.BatchSize
	}
	return &Service{cfg: imp}
}

type sheetDef struct {
	name string
	rows [][]interface{}
}

func buildWorkbook(t *testing.T, sheets []sheetDef) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	for _, sheet := range sheets {
		_, err := wb.NewSheet(sheet.name)
		require.NoError(t, err)
		for i, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, wb.SetSheetRow(sheet.name, cell, &r))
		}
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var standardHeader = []interface{}{
	"FECHA", "Día", "O.Carga", "AÑO.MES", "CLIENTE / DESTINO", "TRANSPORTISTA",
	"KM", "FLETE COBRADO", "FLETE PAGADO", "OBSERVACION",
}

func TestImportWorkbookTwiceIsIdempotent(t *testing.T) {
	content := buildWorkbook(t, []sheetDef{
		{
			name: "transporte",
			rows: [][]interface{}{
				{"Planilla fletes"},
				standardHeader,
				{"05/03/2024", "martes", "OC-1", "2024.03", "ACME Rosario", "Transporte Sur", "120", "1.500,00", "1.200,00", ""},
				{"06/03/2024", "miércoles", "OC-2", "2024.03", "ACME Rosario", "Transporte Sur", "abc", "1500", "", "sin pagar"},
				{"", "", "OC-3", "", "Molino Norte", "Camiones del Litoral", "", "", "", ""},
			},
		},
		{
			name: "viajes en camino",
			rows: [][]interface{}{
				standardHeader,
				{"07/03/2024", "jueves", "OC-4", "2024.03", "Molino Norte", "Transporte Sur", "90", "2.000,50", "1000", ""},
			},
		},
	})

	st := newMemStore()
	svc := testService(t, config.ImportConfig{})

	summary, err := svc.importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, []string{"transporte", "viajes en camino"}, summary.ProcessedSheets)
	require.Equal(t, 4, summary.Inserted)
	require.Equal(t, 0, summary.Skipped)
	require.Equal(t, 2, summary.TransportistasCreated)
	require.Len(t, st.fletes, 4)

	// Row detail: coercion, diferencia, estado stamping
	oc1 := st.fletes["OC-1"]
	require.NotNil(t, oc1.Fecha)
	require.Equal(t, "2024-03-05", oc1.Fecha.Format("2006-01-02"))
	require.True(t, decimal.RequireFromString("1500").Equal(*oc1.FleteCobrado))
	require.True(t, decimal.RequireFromString("300").Equal(*oc1.Diferencia))
	require.Equal(t, models.EstadoTransporte, *oc1.Estado)
	require.Nil(t, oc1.Observacion)

	// A dirty number cell drops to null, never aborts; diferencia then
	// falls back to cobrado alone
	oc2 := st.fletes["OC-2"]
	require.Nil(t, oc2.Km)
	require.Nil(t, oc2.FletePagado)
	require.True(t, decimal.RequireFromString("1500").Equal(*oc2.Diferencia))
	require.Equal(t, "sin pagar", *oc2.Observacion)

	oc4 := st.fletes["OC-4"]
	require.Equal(t, models.EstadoViajesEnCamino, *oc4.Estado)
	require.True(t, decimal.RequireFromString("2000.50").Equal(*oc4.FleteCobrado))

	// Same name on both sheets resolves to one transportista
	require.Len(t, st.transportistas, 2)
	require.Equal(t, st.fletes["OC-1"].TransportistaID, oc4.TransportistaID)

	// Second run against the unchanged store: everything skips
	summary, err = svc.importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Inserted)
	require.Equal(t, 4, summary.Skipped)
	require.Equal(t, 0, summary.TransportistasCreated)
	require.Len(t, st.fletes, 4)
}

func TestImportWorkbookBaseDatosAlias(t *testing.T) {
	content := buildWorkbook(t, []sheetDef{
		{
			name: "Base Datos",
			rows: [][]interface{}{
				standardHeader,
				{"", "", "OC-9", "", "", "Transporte Sur", "", "", "", ""},
			},
		},
	})

	st := newMemStore()
	summary, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, []string{"Base Datos"}, summary.ProcessedSheets)
	require.Equal(t, 1, summary.Inserted)
	require.Equal(t, models.EstadoViajesConcretados, *st.fletes["OC-9"].Estado)
}

func TestImportWorkbookDuplicateAcrossSheets(t *testing.T) {
	row := []interface{}{"", "", "OC-7", "", "", "Transporte Sur", "", "", "", ""}
	content := buildWorkbook(t, []sheetDef{
		{name: "transporte", rows: [][]interface{}{standardHeader, row}},
		{name: "viajes concretados", rows: [][]interface{}{standardHeader, row}},
	})

	st := newMemStore()
	summary, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted)
	require.Equal(t, 1, summary.Skipped)
	// The first sheet won; the duplicate on the second sheet was skipped
	require.Equal(t, models.EstadoTransporte, *st.fletes["OC-7"].Estado)
}

func TestImportWorkbookNoMatchingSheet(t *testing.T) {
	content := buildWorkbook(t, []sheetDef{
		{name: "resumen", rows: [][]interface{}{{"nada que importar"}}},
	})

	st := newMemStore()
	_, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), content, st)
	require.ErrorIs(t, err, ErrNoMatchingSheet)
	require.Empty(t, st.fletes)
}

func TestImportWorkbookHeaderlessTargetSheetIsSkipped(t *testing.T) {
	content := buildWorkbook(t, []sheetDef{
		// Target name but no locatable anchors: optional data, not an error
		{name: "transporte", rows: [][]interface{}{{"solo un título"}}},
		{
			name: "viajes concretados",
			rows: [][]interface{}{
				standardHeader,
				{"", "", "OC-5", "", "", "Transporte Sur", "", "", "", ""},
			},
		},
	})

	st := newMemStore()
	summary, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, []string{"viajes concretados"}, summary.ProcessedSheets)
	require.Equal(t, 1, summary.Inserted)
}

func TestImportWorkbookBlankTransportistaAborts(t *testing.T) {
	content := buildWorkbook(t, []sheetDef{
		{
			name: "transporte",
			rows: [][]interface{}{
				standardHeader,
				{"", "", "OC-1", "", "", "Transporte Sur", "", "", "", ""},
				{"", "", "OC-2", "", "", "Camiones del Litoral", "", "", "", ""},
				{"", "", "OC-3", "", "", "   ", "", "", "", ""},
				{"", "", "OC-4", "", "", "Transporte Sur", "", "", "", ""},
			},
		},
	})

	st := newMemStore()
	svc := testService(t, config.ImportConfig{BatchSize: 2})

	_, err := svc.importWithStore(context.Background(), content, st)
	require.ErrorIs(t, err, ErrMissingTransportista)

	// The batch committed before the failing row stays persisted, nothing
	// after it does, and the transportistas created along the way survive
	require.Len(t, st.fletes, 2)
	require.Contains(t, st.fletes, "OC-1")
	require.Contains(t, st.fletes, "OC-2")
	require.Len(t, st.transportistas, 2)
	require.Empty(t, st.pending)
}

func TestIngestSheetBlankStreakTermination(t *testing.T) {
	rows := [][]string{
		{"O.Carga", "TRANSPORTISTA"},
		{"OC-1", "Transporte Sur"},
		{"", ""},
		{"", ""},
		{"", ""},
		{"OC-2", "Transporte Sur"}, // beyond the streak, never reached
	}

	st := newMemStore()
	svc := testService(t, config.ImportConfig{BlankRowStreak: 3})
	state := &importState{
		existing:       map[string]struct{}{},
		transportistas: map[string]uint{},
	}

	headerRow, colMap, found := LocateHeader(rows, 120)
	require.True(t, found)

	err := svc.ingestSheet(context.Background(), st, state, rows, headerRow, colMap, models.EstadoTransporte)
	require.NoError(t, err)
	require.NoError(t, st.Flush(context.Background()))
	require.Len(t, st.fletes, 1)
	require.Contains(t, st.fletes, "OC-1")
}

func TestIngestSheetBlankStreakResets(t *testing.T) {
	rows := [][]string{
		{"O.Carga", "TRANSPORTISTA"},
		{"OC-1", "Transporte Sur"},
		{"", ""},
		{"", ""},
		{"OC-2", "Transporte Sur"}, // streak below threshold, still reached
	}

	st := newMemStore()
	svc := testService(t, config.ImportConfig{BlankRowStreak: 3})
	state := &importState{
		existing:       map[string]struct{}{},
		transportistas: map[string]uint{},
	}

	headerRow, colMap, found := LocateHeader(rows, 120)
	require.True(t, found)

	require.NoError(t, svc.ingestSheet(context.Background(), st, state, rows, headerRow, colMap, models.EstadoTransporte))
	require.NoError(t, st.Flush(context.Background()))
	require.Len(t, st.fletes, 2)
}

func TestImportWorkbookRejectsGarbage(t *testing.T) {
	_, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), []byte("not an xlsx"), newMemStore())
	require.Error(t, err)
	require.NotErrorIs(t, errors.Cause(err), ErrNoMatchingSheet)
}
